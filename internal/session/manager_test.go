package session

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/pmanser/svnd/internal/cache"
	"github.com/pmanser/svnd/internal/domain"
	"github.com/pmanser/svnd/internal/errors"
)

// fakeVerifier accepts a single username/secret pair.
type fakeVerifier struct {
	username string
	secret   string
	err      error
}

func (f *fakeVerifier) Verify(_ context.Context, username, secret string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return username == f.username && secret == f.secret, nil
}

func newTestManager(t *testing.T, verifier *fakeVerifier, opts ...Option) (*Manager, *cache.Store) {
	t.Helper()

	store, err := cache.NewStore(hclog.NewNullLogger(), cache.WithSweepInterval(0))
	require.NoError(t, err)
	t.Cleanup(store.Stop)

	m, err := NewManager(hclog.NewNullLogger(), store, verifier, opts...)
	require.NoError(t, err)

	return m, store
}

func TestManager_LoginResolveLogout(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, &fakeVerifier{username: "alice", secret: "correct"})

	token, err := m.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, ok := m.Resolve(token)
	require.True(t, ok)
	require.Equal(t, domain.Identity{Username: "alice"}, identity)

	// Logout revokes long before the natural expiry.
	m.Logout(token)

	_, ok = m.Resolve(token)
	require.False(t, ok)
}

func TestManager_LoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, &fakeVerifier{username: "alice", secret: "correct"})

	_, err := m.Login(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, errors.ErrAuthFailed)

	_, err = m.Login(context.Background(), "mallory", "correct")
	require.ErrorIs(t, err, errors.ErrAuthFailed)
}

func TestManager_LoginVerifierFailure(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, &fakeVerifier{err: fmt.Errorf("directory service unreachable")})

	_, err := m.Login(context.Background(), "alice", "correct")
	require.ErrorIs(t, err, errors.ErrAuthFailed)
}

func TestManager_TokensAreUniqueAndHighEntropy(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, &fakeVerifier{username: "alice", secret: "correct"})

	hexToken := regexp.MustCompile(`^[0-9a-f]{64}$`)
	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		token, err := m.Login(context.Background(), "alice", "correct")
		require.NoError(t, err)
		require.Regexp(t, hexToken, token)

		_, dup := seen[token]
		require.False(t, dup, "token issued twice")
		seen[token] = struct{}{}
	}
}

func TestManager_ResolveUnknownToken(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, &fakeVerifier{})

	_, ok := m.Resolve("deadbeef")
	require.False(t, ok)
}

func TestManager_SessionExpiresWithCacheEntry(t *testing.T) {
	t.Parallel()

	store, err := cache.NewStore(hclog.NewNullLogger(), cache.WithSweepInterval(0))
	require.NoError(t, err)
	t.Cleanup(store.Stop)

	m, err := NewManager(
		hclog.NewNullLogger(),
		store,
		&fakeVerifier{username: "alice", secret: "correct"},
		WithLifetime(time.Millisecond),
	)
	require.NoError(t, err)

	token, err := m.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, ok := m.Resolve(token)
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestManager_CollisionDoesNotOverwriteExistingSession(t *testing.T) {
	t.Parallel()

	m, store := newTestManager(t, &fakeVerifier{username: "alice", secret: "correct"})

	token, err := m.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)

	// Simulate the freshly generated token already being present: the original
	// session must survive intact.
	identityBefore, ok := m.Resolve(token)
	require.True(t, ok)

	store.Set("session_"+token, identityBefore, time.Hour)
	identityAfter, ok := m.Resolve(token)
	require.True(t, ok)
	require.Equal(t, identityBefore, identityAfter)
}

func TestManager_Validation(t *testing.T) {
	t.Parallel()

	store, err := cache.NewStore(hclog.NewNullLogger(), cache.WithSweepInterval(0))
	require.NoError(t, err)
	t.Cleanup(store.Stop)

	_, err = NewManager(nil, store, &fakeVerifier{})
	require.Error(t, err)

	_, err = NewManager(hclog.NewNullLogger(), nil, &fakeVerifier{})
	require.Error(t, err)

	_, err = NewManager(hclog.NewNullLogger(), store, nil)
	require.Error(t, err)

	_, err = NewManager(hclog.NewNullLogger(), store, &fakeVerifier{}, WithLifetime(0))
	require.Error(t, err)
}
