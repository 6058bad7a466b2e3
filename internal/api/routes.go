package api

import (
	"fmt"
	"net/url"
	"reflect"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pmanser/svnd/internal/contracts"
)

// APIVersion is the version used in the OpenAPI spec and URL paths.
const APIVersion = "v1"

// RegisterRoutes registers all API routes on the provided Huma router.
// This is the single source of truth for the API route structure.
// Returns the API path prefix (e.g., "/api/v1") under which the routes are created.
func RegisterRoutes(
	router huma.API,
	provider contracts.MetadataProvider,
	sessions contracts.SessionAuthenticator,
	runner contracts.LifecycleRunner,
	sessionLifetime time.Duration,
) (string, error) {
	if router == nil || reflect.ValueOf(router).IsNil() {
		return "", fmt.Errorf("router cannot be nil")
	}
	if provider == nil || reflect.ValueOf(provider).IsNil() {
		return "", fmt.Errorf("metadata provider cannot be nil")
	}
	if sessions == nil || reflect.ValueOf(sessions).IsNil() {
		return "", fmt.Errorf("session authenticator cannot be nil")
	}
	if runner == nil || reflect.ValueOf(runner).IsNil() {
		return "", fmt.Errorf("lifecycle runner cannot be nil")
	}
	if sessionLifetime <= 0 {
		return "", fmt.Errorf("session lifetime must be positive, got %v", sessionLifetime)
	}

	// Safe way to ensure /api/{version}.
	apiPathPrefix, err := url.JoinPath("/api", APIVersion)
	if err != nil {
		return "", fmt.Errorf("failed to construct API path prefix: %w", err)
	}

	// Group all routes under the /api/{version} prefix.
	// Creations register on the same /repositories resource as browsing.
	versionedGroup := huma.NewGroup(router, apiPathPrefix)
	RegisterAuthRoutes(versionedGroup, sessions, sessionLifetime, "/auth")
	RegisterRepositoryRoutes(versionedGroup, provider, sessions, "/repositories")
	RegisterLifecycleRoutes(versionedGroup, runner, sessions, "/repositories")

	return apiPathPrefix, nil
}
