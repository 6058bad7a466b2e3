package daemon

import (
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/pmanser/svnd/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Addr:         "0.0.0.0:5000",
		Repositories: map[string]string{"widgets": "http://svn.example.com/widgets"},
		Backend: config.BackendConfig{
			Binary:           "svn",
			CreateRepoBinary: "createrepo",
			Timeout:          config.Duration(30 * time.Second),
		},
		Cache: config.CacheConfig{
			SweepInterval:     config.Duration(time.Minute),
			RepositoryListTTL: config.Duration(time.Hour),
			MetadataTTL:       config.Duration(20 * time.Minute),
		},
		Sessions: config.SessionConfig{
			Lifetime: config.Duration(8 * time.Hour),
		},
		Users: map[string]string{"jsmith": "hunter2"},
	}
}

func TestNewDependencies(t *testing.T) {
	t.Parallel()

	deps, err := NewDependencies(hclog.NewNullLogger(), testConfig(), "localhost:5000")
	require.NoError(t, err)
	require.Equal(t, "localhost:5000", deps.APIAddr)

	_, err = NewDependencies(nil, testConfig(), "localhost:5000")
	require.Error(t, err)
	require.Contains(t, err.Error(), "logger cannot be nil")

	_, err = NewDependencies(hclog.NewNullLogger(), nil, "localhost:5000")
	require.Error(t, err)
	require.Contains(t, err.Error(), "config cannot be nil")

	_, err = NewDependencies(hclog.NewNullLogger(), testConfig(), "nope")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid API address")
}

func TestNewDaemon_WiresFullStack(t *testing.T) {
	t.Parallel()

	deps, err := NewDependencies(hclog.NewNullLogger(), testConfig(), "localhost:5000")
	require.NoError(t, err)

	d, err := NewDaemon(deps, WithAPIOptions(WithShutdownTimeout(2*time.Second)))
	require.NoError(t, err)
	require.NotNil(t, d)
	require.NotNil(t, d.apiServer)
	require.Equal(t, 2*time.Second, d.apiServer.shutdownTimeout)

	// Background resources exist and shut down cleanly.
	require.NotNil(t, d.store)
	d.store.Stop()
}
