package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrAlreadyVoted    = errors.New("already voted on this product")
	ErrRateLimited     = errors.New("too many vote attempts, try again later")
	ErrInvalidComment  = errors.New("comment must be at most 1000 characters")
	ErrInvalidVoteType = errors.New("vote type must be rebuy or not")
	ErrProductNotFound = errors.New("product not found")
	ErrNotFound        = errors.New("record not found")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidInput       = errors.New("invalid input")

	// ErrBackend marks datastore or network failures.
	ErrBackend = errors.New("backend failure")
)

// backendErr wraps err so that errors.Is matches both ErrBackend and the cause.
func backendErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrBackend, err)
}

// invalid wraps a validation message with ErrInvalidInput.
func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// notFoundOr maps gorm.ErrRecordNotFound to target, anything else to a backend error.
func notFoundOr(op string, err error, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return backendErr(op, err)
}

// isDuplicate 兼容未翻译错误的驱动
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}
