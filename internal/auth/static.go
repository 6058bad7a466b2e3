// Package auth provides credential verifier implementations. Verification
// against a real directory service is deliberately external to the core; the
// static verifier here serves development setups and tests, and anything that
// satisfies contracts.CredentialVerifier can replace it.
package auth

import (
	"context"
	"crypto/subtle"

	"github.com/hashicorp/go-hclog"

	"github.com/pmanser/svnd/internal/contracts"
)

var _ contracts.CredentialVerifier = (*StaticVerifier)(nil)

// StaticVerifier verifies credentials against a fixed in-memory user table.
type StaticVerifier struct {
	logger hclog.Logger
	users  map[string]string
}

// NewStaticVerifier creates a verifier over a username to secret mapping.
func NewStaticVerifier(logger hclog.Logger, users map[string]string) *StaticVerifier {
	copied := make(map[string]string, len(users))
	for username, secret := range users {
		copied[username] = secret
	}

	return &StaticVerifier{
		logger: logger.Named("auth"),
		users:  copied,
	}
}

// Verify reports whether the credentials match the configured table.
// The comparison is constant time so response timing does not leak which
// usernames exist.
func (v *StaticVerifier) Verify(_ context.Context, username, secret string) (bool, error) {
	expected, ok := v.users[username]
	if !ok {
		// Compare against the candidate itself to keep timing uniform.
		subtle.ConstantTimeCompare([]byte(secret), []byte(secret))
		v.logger.Debug("Unknown user", "username", username)
		return false, nil
	}

	match := subtle.ConstantTimeCompare([]byte(expected), []byte(secret)) == 1
	if !match {
		v.logger.Debug("Secret mismatch", "username", username)
	}
	return match, nil
}
