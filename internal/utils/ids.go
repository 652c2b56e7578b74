package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	nanoid "github.com/jaevor/go-nanoid"
)

const lowerAlnum = "0123456789abcdefghijklmnopqrstuvwxyz"

var (
	productIDGen   = mustGenerator(nanoid.CustomASCII(lowerAlnum, 12))
	fingerprintGen = mustGenerator(nanoid.CustomASCII(lowerAlnum, 13))
)

func mustGenerator(gen func() string, err error) func() string {
	if err != nil {
		panic(err)
	}
	return gen
}

// NewID returns a UUID string for votes, comments and profiles.
func NewID() string {
	return uuid.NewString()
}

// NewProductID returns a short URL-safe product id.
func NewProductID() string {
	return productIDGen()
}

// NewFingerprint returns "<unix-millis>-<random suffix>".
// Uniqueness is a convenience, not a security property.
func NewFingerprint() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), fingerprintGen())
}
