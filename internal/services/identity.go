package services

import (
	"strings"

	"rebuyrnot/internal/utils"
)

const (
	// MaxFingerprintLength bounds client-supplied fingerprints.
	MaxFingerprintLength = 128

	// AnonymousPrefix namespaces fingerprint voter ids away from user ids.
	AnonymousPrefix = "fp:"
)

// Voter is whoever casts a vote: a signed-in user or an anonymous browser.
type Voter struct {
	ID     string
	UserID string // empty for anonymous voters
}

// Anonymous reports whether the voter is identified by fingerprint only.
func (v Voter) Anonymous() bool {
	return v.UserID == ""
}

// Fingerprint returns the raw browser fingerprint, empty for signed-in users.
func (v Voter) Fingerprint() string {
	if !v.Anonymous() {
		return ""
	}
	return strings.TrimPrefix(v.ID, AnonymousPrefix)
}

// ResolveVoter picks the signed-in user id when present, otherwise the stored
// fingerprint, otherwise a fresh one. fresh is true when the caller must
// persist the generated fingerprint.
func ResolveVoter(userID, fingerprint string) (voter Voter, fresh bool) {
	if userID != "" {
		return Voter{ID: userID, UserID: userID}, false
	}
	if ValidFingerprint(fingerprint) {
		return Voter{ID: AnonymousPrefix + fingerprint}, false
	}
	return Voter{ID: AnonymousPrefix + utils.NewFingerprint()}, true
}

// ValidFingerprint accepts 1..128 printable ASCII characters.
func ValidFingerprint(s string) bool {
	if len(s) == 0 || len(s) > MaxFingerprintLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}
