package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
	assert.False(t, NeedsRehash(hash))

	other, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "bcrypt hashes are salted")
}

func TestHashPasswordLength(t *testing.T) {
	hash, err := HashPassword("abc")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "abc"))

	_, err = HashPassword(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestLegacyDigest(t *testing.T) {
	d1 := LegacyDigest("password123")
	d2 := LegacyDigest("password123")

	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64)
	assert.Equal(t, strings.ToLower(d1), d1)
	assert.Equal(t, "ef92b778bafe771e89245b89ecbc08a44a4e166c06659911881f383d4473e94f", d1)
	assert.NotEqual(t, d1, LegacyDigest("password124"))
}

func TestCheckPasswordLegacy(t *testing.T) {
	hash := LegacyPrefix + LegacyDigest("password123")

	assert.True(t, CheckPassword(hash, "password123"))
	assert.False(t, CheckPassword(hash, "password1234"))
	assert.True(t, NeedsRehash(hash))
}

func TestCheckPasswordEmptyHash(t *testing.T) {
	assert.False(t, CheckPassword("", ""))
	assert.False(t, CheckPassword("", "anything"))
}

func TestNeedsRehashLowCost(t *testing.T) {
	b, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, NeedsRehash(string(b)))
	assert.True(t, NeedsRehash("garbage"))
}

func TestNewToken(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		tok := NewToken()
		assert.Len(t, tok, TokenLength)
		assert.True(t, ValidToken(tok), tok)
		assert.NotContains(t, tok, "-")
		_, dup := seen[tok]
		assert.False(t, dup)
		seen[tok] = struct{}{}
	}
}

func TestValidToken(t *testing.T) {
	valid := strings.Repeat("ab12", 16)

	assert.True(t, ValidToken(valid))
	assert.False(t, ValidToken(""))
	assert.False(t, ValidToken(valid[:63]))
	assert.False(t, ValidToken(valid+"a"))
	assert.False(t, ValidToken(strings.ToUpper(valid)))
	assert.False(t, ValidToken(strings.Repeat("zz12", 16)))
}

func TestCookieCodec(t *testing.T) {
	hashKey := []byte(strings.Repeat("h", 32))
	blockKey := []byte(strings.Repeat("b", 32))

	codec, err := NewCookieCodec(hashKey, blockKey, 3600)
	require.NoError(t, err)

	enc, err := codec.Encode("nara_session", "token-value")
	require.NoError(t, err)
	assert.NotContains(t, enc, "token-value")

	got, err := codec.Decode("nara_session", enc)
	require.NoError(t, err)
	assert.Equal(t, "token-value", got)

	_, err = codec.Decode("other_cookie", enc)
	assert.Error(t, err, "value is bound to the cookie name")

	_, err = codec.Decode("nara_session", enc+"x")
	assert.Error(t, err)
}

func TestNewCookieCodecValidation(t *testing.T) {
	_, err := NewCookieCodec([]byte("short"), nil, 0)
	assert.Error(t, err)

	_, err = NewCookieCodec([]byte(strings.Repeat("h", 32)), []byte("bad"), 0)
	assert.Error(t, err)

	codec, err := NewCookieCodec([]byte(strings.Repeat("h", 32)), nil, 0)
	require.NoError(t, err)
	enc, err := codec.Encode("c", "v")
	require.NoError(t, err)
	got, err := codec.Decode("c", enc)
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}
