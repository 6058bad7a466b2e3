package daemon

import (
	"fmt"
	"reflect"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/pmanser/svnd/internal/contracts"
)

// APIDependencies contains the required external dependencies for the API server.
// NewAPIDependencies should be used to create instances of APIDependencies.
type APIDependencies struct {
	// Addr specifies the network address to bind (e.g., "0.0.0.0:5000").
	Addr string

	// Metadata serves cached repository metadata.
	Metadata contracts.MetadataProvider

	// Sessions issues and resolves session tokens.
	Sessions contracts.SessionAuthenticator

	// Lifecycle runs coordinated creation requests.
	Lifecycle contracts.LifecycleRunner

	// SessionLifetime is surfaced to clients as the session cookie max-age.
	SessionLifetime time.Duration

	// Logger for API server operations.
	Logger hclog.Logger
}

// NewAPIDependencies creates and validates APIDependencies.
func NewAPIDependencies(
	logger hclog.Logger,
	metadata contracts.MetadataProvider,
	sessions contracts.SessionAuthenticator,
	lifecycle contracts.LifecycleRunner,
	sessionLifetime time.Duration,
	addr string,
) (APIDependencies, error) {
	deps := APIDependencies{
		Addr:            addr,
		Metadata:        metadata,
		Sessions:        sessions,
		Lifecycle:       lifecycle,
		SessionLifetime: sessionLifetime,
		Logger:          logger,
	}

	if err := deps.Validate(); err != nil {
		return APIDependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d APIDependencies) Validate() error {
	if err := validateAddr(d.Addr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.Addr, err)
	}
	if d.Metadata == nil || reflect.ValueOf(d.Metadata).IsNil() {
		return fmt.Errorf("metadata provider cannot be nil")
	}
	if d.Sessions == nil || reflect.ValueOf(d.Sessions).IsNil() {
		return fmt.Errorf("session authenticator cannot be nil")
	}
	if d.Lifecycle == nil || reflect.ValueOf(d.Lifecycle).IsNil() {
		return fmt.Errorf("lifecycle runner cannot be nil")
	}
	if d.SessionLifetime <= 0 {
		return fmt.Errorf("session lifetime must be positive, got %v", d.SessionLifetime)
	}
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}
	return nil
}
