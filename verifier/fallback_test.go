package verifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sessionkeeper/models"
)

func testFallback(t *testing.T) *Fallback {
	t.Helper()
	hash, err := HashPassword("fallback1")
	require.NoError(t, err)
	disabledHash, err := HashPassword("gone123")
	require.NoError(t, err)

	return NewFallback([]FallbackUser{
		{
			Username:     "admin",
			PasswordHash: hash,
			Profile: models.UserProfile{
				Username: "admin", DisplayName: "Administrator",
				Role: models.RoleAdmin, Status: models.StatusActive,
			},
		},
		{
			Username:     "gone",
			PasswordHash: disabledHash,
			Profile: models.UserProfile{
				Username: "gone", Role: models.RoleUser, Status: models.StatusDisabled,
			},
		},
	})
}

func TestFallback_CorrectPassword(t *testing.T) {
	f := testFallback(t)

	profile, err := f.Authenticate("admin", "fallback1")
	require.NoError(t, err)
	assert.Equal(t, "admin", profile.Username)
	assert.Equal(t, models.RoleAdmin, profile.Role)
}

func TestFallback_WrongPasswordIsDenied(t *testing.T) {
	f := testFallback(t)

	_, err := f.Authenticate("admin", "wrong123")
	require.ErrorIs(t, err, ErrDenied)
}

func TestFallback_UnknownUserStaysUnreachable(t *testing.T) {
	f := testFallback(t)

	_, err := f.Authenticate("stranger", "whatever")
	require.ErrorIs(t, err, ErrUnreachable,
		"the allow-list is not an authority on who does not exist")
}

func TestFallback_DisabledEntry(t *testing.T) {
	f := testFallback(t)

	_, err := f.Authenticate("gone", "gone123")
	require.ErrorIs(t, err, ErrDisabled)
}
