package security

import (
	"errors"

	"github.com/gorilla/securecookie"
)

// CookieCodec signs, and optionally encrypts, cookie values.
type CookieCodec struct {
	sc *securecookie.SecureCookie
}

// NewCookieCodec builds a codec. hashKey is required; blockKey enables encryption
// and must be 16, 24 or 32 bytes when set.
func NewCookieCodec(hashKey, blockKey []byte, maxAgeSec int) (*CookieCodec, error) {
	if len(hashKey) < 32 {
		return nil, errors.New("cookie hash key must be at least 32 bytes")
	}
	if n := len(blockKey); n != 0 && n != 16 && n != 24 && n != 32 {
		return nil, errors.New("cookie block key must be 16, 24 or 32 bytes")
	}
	if len(blockKey) == 0 {
		blockKey = nil
	}
	sc := securecookie.New(hashKey, blockKey)
	if maxAgeSec > 0 {
		sc.MaxAge(maxAgeSec)
	}
	return &CookieCodec{sc: sc}, nil
}

// Encode returns the signed cookie value for name.
func (c *CookieCodec) Encode(name, value string) (string, error) {
	return c.sc.Encode(name, value)
}

// Decode verifies and returns the value stored in a cookie named name.
func (c *CookieCodec) Decode(name, encoded string) (string, error) {
	var value string
	if err := c.sc.Decode(name, encoded, &value); err != nil {
		return "", err
	}
	return value, nil
}
