package security

import (
	"strings"

	"github.com/google/uuid"
)

// TokenLength is the length of tokens produced by NewToken.
const TokenLength = 64

// NewToken returns an opaque random token: two UUIDv4 values without dashes,
// 64 lowercase hex characters.
func NewToken() string {
	a := uuid.New()
	b := uuid.New()
	return strings.ReplaceAll(a.String()+b.String(), "-", "")
}

// ValidToken reports whether s has the shape of a token produced by NewToken.
func ValidToken(s string) bool {
	if len(s) != TokenLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
