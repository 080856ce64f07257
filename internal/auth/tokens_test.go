package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuslink/internal/domain"
)

func TestVerifyRoundTrip(t *testing.T) {
	v := NewVerifier([]byte("test-secret"))

	token, err := v.Sign(domain.Identity{
		UserID:    "user-1",
		Role:      domain.RoleStudent,
		CollegeID: "college-1",
	}, time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.UserID)
	assert.Equal(t, domain.RoleStudent, id.Role)
	assert.Equal(t, "college-1", id.CollegeID)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	v := NewVerifier([]byte("test-secret"))

	cases := map[string]string{
		"empty":     "",
		"garbage":   "not-a-token",
		"truncated": "eyJhbGciOiJIUzI1NiJ9",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(tok)
			assert.ErrorIs(t, err, domain.ErrAuthInvalid)
		})
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewVerifier([]byte("secret-a")).Sign(domain.Identity{UserID: "user-1"}, time.Hour)
	require.NoError(t, err)

	_, err = NewVerifier([]byte("secret-b")).Verify(token)
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
}

func TestVerifyRejectsExpired(t *testing.T) {
	v := NewVerifier([]byte("test-secret"))
	token, err := v.Sign(domain.Identity{UserID: "user-1"}, -time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
}

func TestVerifyRequiresUserID(t *testing.T) {
	v := NewVerifier([]byte("test-secret"))
	token, err := v.Sign(domain.Identity{}, time.Hour)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
}
