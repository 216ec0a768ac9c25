package auth

import (
	"testing"
	"time"

	"github.com/BearBump/CargoGate/internal/models"
	"github.com/stretchr/testify/require"
)

func testPrincipal() *models.Principal {
	return &models.Principal{
		ID:       7,
		Username: "admin",
		Roles:    []string{models.RoleAdmin},
	}
}

func TestTokenManager_IssueVerify(t *testing.T) {
	m := NewTokenManager("secret", "cargogate", time.Hour)

	token, expiresAt, err := m.Issue(testPrincipal())
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	info, err := m.Verify(token)
	require.NoError(t, err)
	require.Equal(t, uint64(7), info.Subject)
	require.Equal(t, []string{models.RoleAdmin}, info.Roles)
	require.WithinDuration(t, expiresAt, info.ExpiresAt, time.Second)
}

func TestTokenManager_VerifyRejectsWrongSecret(t *testing.T) {
	m1 := NewTokenManager("secret-one", "cargogate", time.Hour)
	m2 := NewTokenManager("secret-two", "cargogate", time.Hour)

	token, _, err := m1.Issue(testPrincipal())
	require.NoError(t, err)

	_, err = m2.Verify(token)
	require.Error(t, err)
}

func TestTokenManager_VerifyRejectsMalformed(t *testing.T) {
	m := NewTokenManager("secret", "cargogate", time.Hour)

	_, err := m.Verify("")
	require.Error(t, err)

	_, err = m.Verify("not.a.token")
	require.Error(t, err)
}

func TestTokenManager_VerifyRejectsWrongIssuer(t *testing.T) {
	m1 := NewTokenManager("secret", "other-issuer", time.Hour)
	m2 := NewTokenManager("secret", "cargogate", time.Hour)

	token, _, err := m1.Issue(testPrincipal())
	require.NoError(t, err)

	_, err = m2.Verify(token)
	require.Error(t, err)
}

func TestTokenManager_Expiry(t *testing.T) {
	m := NewTokenManager("secret", "cargogate", time.Hour)
	issued := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issued }

	token, _, err := m.Issue(testPrincipal())
	require.NoError(t, err)

	m.now = time.Now

	// Verify истёкший токен отклоняет, Decode — нет.
	_, err = m.Verify(token)
	require.Error(t, err)

	info, err := m.Decode(token)
	require.NoError(t, err)
	require.Equal(t, uint64(7), info.Subject)

	require.True(t, m.IsExpired(token))
}

func TestTokenManager_IsExpired(t *testing.T) {
	m := NewTokenManager("secret", "cargogate", time.Hour)

	token, _, err := m.Issue(testPrincipal())
	require.NoError(t, err)
	require.False(t, m.IsExpired(token))

	// Битый токен считается истёкшим.
	require.True(t, m.IsExpired("garbage"))
}
