// Package session issues, resolves and revokes the opaque tokens that gate
// every authenticated request. Sessions live in the shared cache store under
// the session_<token> key namespace and expire with their cache entry.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/pmanser/svnd/internal/contracts"
	"github.com/pmanser/svnd/internal/domain"
	"github.com/pmanser/svnd/internal/errors"
)

var _ contracts.SessionAuthenticator = (*Manager)(nil)

// tokenBytes is the entropy of a session token; tokens are the hex encoding
// of this many random bytes.
const tokenBytes = 32

// Store is the slice of the cache store the session manager relies on.
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
}

// Manager maps session tokens to authenticated identities.
// NewManager should be used to create instances of Manager.
type Manager struct {
	// logger is used for logging session operations.
	logger hclog.Logger

	// store holds session entries alongside repository metadata.
	store Store

	// verifier checks credentials against the external directory service.
	verifier contracts.CredentialVerifier

	// lifetime is the fixed duration a session stays valid after login.
	lifetime time.Duration
}

// NewManager creates a session manager with the provided collaborators.
func NewManager(logger hclog.Logger, store Store, verifier contracts.CredentialVerifier, opt ...Option) (*Manager, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if verifier == nil {
		return nil, fmt.Errorf("verifier cannot be nil")
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	return &Manager{
		logger:   logger.Named("session"),
		store:    store,
		verifier: verifier,
		lifetime: opts.lifetime,
	}, nil
}

// Login verifies credentials and returns a fresh session token.
// A verifier rejection and a token collision with an existing session both
// fail with errors.ErrAuthFailed; an existing session is never overwritten.
func (m *Manager) Login(ctx context.Context, username, secret string) (string, error) {
	ok, err := m.verifier.Verify(ctx, username, secret)
	if err != nil {
		m.logger.Error("Credential verifier unavailable", "username", username, "error", err)
		return "", fmt.Errorf("%w: verifier error: %v", errors.ErrAuthFailed, err)
	}
	if !ok {
		m.logger.Info("Login rejected", "username", username)
		return "", fmt.Errorf("%w: invalid credentials for '%s'", errors.ErrAuthFailed, username)
	}

	token, err := newToken()
	if err != nil {
		return "", fmt.Errorf("%w: token generation: %v", errors.ErrAuthFailed, err)
	}

	key := keySession(token)
	if _, exists := m.store.Get(key); exists {
		m.logger.Warn("Session token collision", "username", username)
		return "", fmt.Errorf("%w: token collision", errors.ErrAuthFailed)
	}

	m.store.Set(key, domain.Identity{Username: username}, m.lifetime)
	m.logger.Info("Session issued", "username", username, "lifetime", m.lifetime)

	return token, nil
}

// Resolve maps a token to an identity. An expired, revoked or unknown token
// resolves to no identity; this is a normal result, never an error.
func (m *Manager) Resolve(token string) (domain.Identity, bool) {
	v, ok := m.store.Get(keySession(token))
	if !ok {
		return domain.Identity{}, false
	}

	identity, ok := v.(domain.Identity)
	return identity, ok
}

// Logout revokes a token immediately. Resolving it afterwards returns no
// identity even before its natural expiry.
func (m *Manager) Logout(token string) {
	m.store.Delete(keySession(token))
	m.logger.Info("Session revoked")
}

// Lifetime returns the fixed session lifetime, which the boundary layer uses
// for the session cookie's max age.
func (m *Manager) Lifetime() time.Duration {
	return m.lifetime
}

// newToken returns a cryptographically unguessable session token.
func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func keySession(token string) string {
	return "session_" + token
}
