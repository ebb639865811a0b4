package session_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"carbids/internal/auth"
	"carbids/internal/session"

	"github.com/stretchr/testify/require"
)

func tempProvider(t *testing.T) *session.FileProvider {
	t.Helper()
	return session.NewFileProvider(filepath.Join(t.TempDir(), "session.json"))
}

func TestFileProviderRoundTrip(t *testing.T) {
	p := tempProvider(t)

	saved := session.Session{Token: "abc", Type: session.RoleUser}
	require.NoError(t, p.Save(saved))

	loaded, err := p.Load()
	require.NoError(t, err)
	require.Equal(t, saved, loaded)
}

func TestFileProviderFilePermissions(t *testing.T) {
	p := tempProvider(t)
	require.NoError(t, p.Save(session.Session{Token: "abc", Type: session.RoleUser}))

	info, err := os.Stat(p.Path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadMissingFile(t *testing.T) {
	p := tempProvider(t)

	_, err := p.Load()
	require.ErrorIs(t, err, session.ErrNotLoggedIn)
}

func TestClearIsIdempotent(t *testing.T) {
	p := tempProvider(t)
	require.NoError(t, p.Save(session.Session{Token: "abc", Type: session.RoleUser}))

	require.NoError(t, p.Clear())
	require.NoError(t, p.Clear())

	_, err := p.Load()
	require.ErrorIs(t, err, session.ErrNotLoggedIn)
}

func TestRequireWrongRole(t *testing.T) {
	p := tempProvider(t)
	require.NoError(t, p.Save(session.Session{Token: "abc", Type: session.RoleGarage}))

	_, err := session.Require(p, session.RoleUser)
	require.ErrorIs(t, err, session.ErrWrongRole)

	s, err := session.Require(p, session.RoleGarage)
	require.NoError(t, err)
	require.Equal(t, "abc", s.Token)
}

func TestRequireNotLoggedIn(t *testing.T) {
	p := tempProvider(t)

	_, err := session.Require(p, session.RoleUser)
	require.ErrorIs(t, err, session.ErrNotLoggedIn)
}

func TestParseClaims(t *testing.T) {
	svc := auth.NewService("secret", time.Hour)
	token, err := svc.GenerateToken(42, "user1", session.RoleUser)
	require.NoError(t, err)

	claims, err := session.ParseClaims(token)
	require.NoError(t, err)
	require.Equal(t, 42, claims.Subject)
	require.Equal(t, "user1", claims.Username)
	require.Equal(t, session.RoleUser, claims.Role)
}

func TestParseClaimsGarbage(t *testing.T) {
	_, err := session.ParseClaims("not-a-token")
	require.Error(t, err)
}
