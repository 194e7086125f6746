package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// LegacyPrefix marks password digests imported from the previous deployment,
// which stored an unsalted SHA-256 hex digest.
const LegacyPrefix = "sha256$"

var ErrPasswordTooLong = errors.New("password too long")

// HashPassword returns a bcrypt hash of password. Length policy for new
// passwords belongs to registration validation, so legacy passwords of any
// length can still be upgraded.
func HashPassword(password string) (string, error) {
	// bcrypt ignores input past 72 bytes.
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// LegacyDigest returns the legacy deterministic digest of password.
func LegacyDigest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// CheckPassword reports whether password matches hash. Both bcrypt hashes and
// legacy "sha256$<hex>" digests are accepted.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	if digest, ok := strings.CutPrefix(hash, LegacyPrefix); ok {
		want := LegacyDigest(password)
		return subtle.ConstantTimeCompare([]byte(strings.ToLower(digest)), []byte(want)) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NeedsRehash reports whether hash should be replaced by a fresh bcrypt hash.
func NeedsRehash(hash string) bool {
	if strings.HasPrefix(hash, LegacyPrefix) {
		return true
	}
	cost, err := bcrypt.Cost([]byte(hash))
	return err != nil || cost < bcrypt.DefaultCost
}
