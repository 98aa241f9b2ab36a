package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.Contains(t, hash, "argon2id$v=19$")

	assert.NoError(t, VerifyPassword(hash, "s3cret!"))
	assert.ErrorIs(t, VerifyPassword(hash, "wrong"), ErrInvalidPassword)
	assert.ErrorIs(t, VerifyPassword("plain", "s3cret!"), ErrInvalidHash)

	other, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salts must differ")
}

func TestTokenIssuer(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour)
	assert.Error(t, err)

	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	token, claims, err := issuer.Issue(42, "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	id, err := got.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "admin", got.Role)
	assert.Equal(t, claims.ID, got.ID)

	other, err := NewTokenIssuer("other-secret", time.Hour)
	require.NoError(t, err)
	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestTokenIssuerRejectsExpired(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", time.Minute)
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := issuer.Issue(1, "sales")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestNormalizePhone(t *testing.T) {
	got, err := NormalizePhone("081234 56789", "IN")
	require.NoError(t, err)
	assert.Equal(t, "+918123456789", got)

	got, err = NormalizePhone("+1 650-253-0000", "IN")
	require.NoError(t, err)
	assert.Equal(t, "+16502530000", got)

	got, err = NormalizePhone("  ", "IN")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = NormalizePhone("12", "IN")
	assert.Error(t, err)
	_, err = NormalizePhone("call me", "IN")
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	id, err := ParseID(" 17 ")
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := ParseID(bad)
		assert.Error(t, err, bad)
	}

	opt, err := ParseOptionalID("")
	require.NoError(t, err)
	assert.Nil(t, opt)
}

func TestParseTime(t *testing.T) {
	loc := time.UTC
	cases := map[string]time.Time{
		"2024-03-05T10:30:00Z": time.Date(2024, 3, 5, 10, 30, 0, 0, loc),
		"2024-03-05 10:30":     time.Date(2024, 3, 5, 10, 30, 0, 0, loc),
		"2024-03-05 10:30:15":  time.Date(2024, 3, 5, 10, 30, 15, 0, loc),
		"2024-03-05":           time.Date(2024, 3, 5, 0, 0, 0, 0, loc),
	}
	for in, want := range cases {
		got, err := ParseTime(in, loc)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
	}

	_, err := ParseTime("05/03/2024", loc)
	assert.Error(t, err)
}

func TestStartOfWeek(t *testing.T) {
	wed := time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), StartOfWeek(wed))

	sun := time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), StartOfWeek(sun))
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), StartOfDay(sun))
}
