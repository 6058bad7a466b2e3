package api

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pmanser/svnd/internal/domain"
	"github.com/pmanser/svnd/internal/errors"
)

// mockSessionAuthenticator implements the SessionAuthenticator contract for testing.
type mockSessionAuthenticator struct {
	users    map[string]string
	sessions map[string]domain.Identity
	issued   int
}

func newMockSessionAuthenticator() *mockSessionAuthenticator {
	return &mockSessionAuthenticator{
		users:    make(map[string]string),
		sessions: make(map[string]domain.Identity),
	}
}

func (m *mockSessionAuthenticator) Login(_ context.Context, username, secret string) (string, error) {
	if m.users[username] != secret || secret == "" {
		return "", fmt.Errorf("%w: invalid credentials", errors.ErrAuthFailed)
	}
	m.issued++
	token := fmt.Sprintf("token-%d", m.issued)
	m.sessions[token] = domain.Identity{Username: username}
	return token, nil
}

func (m *mockSessionAuthenticator) Resolve(token string) (domain.Identity, bool) {
	identity, ok := m.sessions[token]
	return identity, ok
}

func (m *mockSessionAuthenticator) Logout(token string) {
	delete(m.sessions, token)
}

func TestHandleLogin(t *testing.T) {
	t.Parallel()

	sessions := newMockSessionAuthenticator()
	sessions.users["jsmith"] = "hunter2"

	resp, err := handleLogin(context.Background(), sessions, 8*time.Hour, "jsmith", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "jsmith", resp.Body.Username)

	cookie := resp.SetCookie
	require.Equal(t, SessionCookie, cookie.Name)
	require.Equal(t, "token-1", cookie.Value)
	require.Equal(t, int((8 * time.Hour).Seconds()), cookie.MaxAge)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, "/", cookie.Path)
}

func TestHandleLogin_BadCredentials(t *testing.T) {
	t.Parallel()

	sessions := newMockSessionAuthenticator()
	sessions.users["jsmith"] = "hunter2"

	_, err := handleLogin(context.Background(), sessions, 8*time.Hour, "jsmith", "wrong")
	require.ErrorIs(t, err, errors.ErrAuthFailed)
}

func TestHandleLogout(t *testing.T) {
	t.Parallel()

	sessions := newMockSessionAuthenticator()
	sessions.users["jsmith"] = "hunter2"

	token, err := sessions.Login(context.Background(), "jsmith", "hunter2")
	require.NoError(t, err)

	resp, err := handleLogout(sessions, token)
	require.NoError(t, err)

	// Session revoked server-side, cookie expired client-side.
	_, ok := sessions.Resolve(token)
	require.False(t, ok)
	require.Empty(t, resp.SetCookie.Value)
	require.Equal(t, -1, resp.SetCookie.MaxAge)
}

func TestHandleLogout_UnknownToken(t *testing.T) {
	t.Parallel()

	sessions := newMockSessionAuthenticator()

	// Revoking a token that never existed is not an error.
	resp, err := handleLogout(sessions, "bogus")
	require.NoError(t, err)
	require.Equal(t, -1, resp.SetCookie.MaxAge)
}
