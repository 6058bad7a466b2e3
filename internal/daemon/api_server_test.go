package daemon

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/pmanser/svnd/internal/domain"
	"github.com/pmanser/svnd/internal/errors"
)

// stubMetadataProvider satisfies the MetadataProvider contract for wiring tests.
type stubMetadataProvider struct{}

func (stubMetadataProvider) Names() []string { return nil }

func (stubMetadataProvider) RepositoryList(context.Context, []string) ([]domain.RepositoryRecord, error) {
	return nil, nil
}

func (stubMetadataProvider) Repository(context.Context, string) (domain.RepositoryRecord, error) {
	return domain.RepositoryRecord{}, nil
}

func (stubMetadataProvider) Directory(context.Context, string, string) ([]domain.Entry, error) {
	return nil, nil
}

func (stubMetadataProvider) History(context.Context, string) ([]domain.LogEntry, error) {
	return nil, nil
}

func (stubMetadataProvider) File(context.Context, string, string) ([]byte, error) {
	return nil, nil
}

func (stubMetadataProvider) Changeset(context.Context, string, int64, int64) ([]domain.ChangeSummary, error) {
	return nil, nil
}

func (stubMetadataProvider) ChangesetDiff(context.Context, string, int64, int64) (string, error) {
	return "", nil
}

func (stubMetadataProvider) Tags(context.Context, string) ([]string, error)     { return nil, nil }
func (stubMetadataProvider) Branches(context.Context, string) ([]string, error) { return nil, nil }
func (stubMetadataProvider) Invalidate(string)                                  {}

// stubSessionAuthenticator satisfies the SessionAuthenticator contract for wiring tests.
type stubSessionAuthenticator struct{}

func (stubSessionAuthenticator) Login(context.Context, string, string) (string, error) {
	return "", nil
}

func (stubSessionAuthenticator) Resolve(string) (domain.Identity, bool) {
	return domain.Identity{}, false
}

func (stubSessionAuthenticator) Logout(string) {}

// stubLifecycleRunner satisfies the LifecycleRunner contract for wiring tests.
type stubLifecycleRunner struct{}

func (stubLifecycleRunner) Run(context.Context, domain.CreationRequest) (domain.CreationResult, error) {
	return domain.CreationResult{}, nil
}

func testAPIDependencies(t *testing.T) APIDependencies {
	t.Helper()

	deps, err := NewAPIDependencies(
		hclog.NewNullLogger(),
		stubMetadataProvider{},
		stubSessionAuthenticator{},
		stubLifecycleRunner{},
		8*time.Hour,
		"localhost:5000",
	)
	require.NoError(t, err)

	return deps
}

func TestNewAPIServer_AppliesDefaults(t *testing.T) {
	t.Parallel()

	deps := testAPIDependencies(t)

	// Test with no options - should get defaults
	server, err := NewAPIServer(deps)
	require.NoError(t, err)
	require.NotNil(t, server)
	require.Equal(t, DefaultAPIShutdownTimeout(), server.shutdownTimeout)
	require.False(t, server.cors.Enabled)

	// Test with some options - should get defaults + overrides
	server2, err := NewAPIServer(deps, WithShutdownTimeout(10*time.Second), WithCORSEnabled(true))
	require.NoError(t, err)
	require.NotNil(t, server2)
	require.Equal(t, 10*time.Second, server2.shutdownTimeout)
	require.True(t, server2.cors.Enabled)

	// Test with nil options - should still work
	server3, err := NewAPIServer(deps, nil, WithShutdownTimeout(3*time.Second), nil)
	require.NoError(t, err)
	require.NotNil(t, server3)
	require.Equal(t, 3*time.Second, server3.shutdownTimeout)
}

func TestNewAPIServer_RejectsInvalidOptions(t *testing.T) {
	t.Parallel()

	deps := testAPIDependencies(t)

	_, err := NewAPIServer(deps, WithShutdownTimeout(-1*time.Second))
	require.Error(t, err)
	require.Contains(t, err.Error(), "shutdown timeout must be positive")
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "invalid name",
			err:        fmt.Errorf("%w: 'bad name'", errors.ErrInvalidName),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "auth failed",
			err:        fmt.Errorf("%w: invalid credentials", errors.ErrAuthFailed),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unauthenticated",
			err:        fmt.Errorf("%w: no session cookie", errors.ErrUnauthenticated),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "repository not found",
			err:        fmt.Errorf("%w: widgets", errors.ErrRepositoryNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "path not found",
			err:        fmt.Errorf("%w: list 'trunk/nope'", errors.ErrPathNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "no tags directory",
			err:        fmt.Errorf("%w: widgets", errors.ErrNoTagsDirectory),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "no branches directory",
			err:        fmt.Errorf("%w: widgets", errors.ErrNoBranchesDirectory),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "name exists",
			err:        fmt.Errorf("%w: 1.2.0", errors.ErrNameExists),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "backend unavailable",
			err:        fmt.Errorf("%w: exec failed", errors.ErrBackendUnavailable),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "backend parse failure",
			err:        fmt.Errorf("%w: bad xml", errors.ErrBackendParse),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "backend operation failed",
			err:        fmt.Errorf("%w: copy", errors.ErrBackendOperationFailed),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "author attribution failed",
			err:        fmt.Errorf("%w: jsmith", errors.ErrAuthorAttributionFailed),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "backend timeout",
			err:        fmt.Errorf("%w: 30s elapsed", errors.ErrBackendTimeout),
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:       "unexpected error",
			err:        fmt.Errorf("something else entirely"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			statusErr := mapError(hclog.NewNullLogger(), tc.err)
			require.Equal(t, tc.wantStatus, statusErr.GetStatus())
		})
	}
}
