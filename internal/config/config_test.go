package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_TOML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, ".svnd.toml", `
addr = "127.0.0.1:5000"

[repositories]
widgets = "https://svn.example.com/repos/widgets"
gadgets = "https://svn.example.com/repos/gadgets"

[backend]
binary = "/usr/bin/svn"
timeout = "10s"

[cache]
repository_list_ttl = "2h"
metadata_ttl = "15m"

[sessions]
lifetime = "4h"

[users]
alice = "wonderland"
`)

	loader := &DefaultLoader{}
	cfg, err := loader.Load(path)
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:5000", cfg.Addr)
	require.Len(t, cfg.Repositories, 2)
	require.Equal(t, "https://svn.example.com/repos/widgets", cfg.Repositories["widgets"])
	require.Equal(t, "/usr/bin/svn", cfg.Backend.Binary)
	require.Equal(t, 10*time.Second, cfg.Backend.Timeout.Std())
	require.Equal(t, 2*time.Hour, cfg.Cache.RepositoryListTTL.Std())
	require.Equal(t, 15*time.Minute, cfg.Cache.MetadataTTL.Std())
	require.Equal(t, 4*time.Hour, cfg.Sessions.Lifetime.Std())
	require.Equal(t, "wonderland", cfg.Users["alice"])
	require.Equal(t, path, cfg.ConfigFilePath())

	// Unset fields pick up defaults.
	require.Equal(t, "createrepo", cfg.Backend.CreateRepoBinary)
	require.Equal(t, DefaultSweepInterval, cfg.Cache.SweepInterval.Std())
}

func TestLoad_YAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "svnd.yaml", `
addr: "127.0.0.1:5000"
repositories:
  widgets: "https://svn.example.com/repos/widgets"
backend:
  timeout: "5s"
sessions:
  lifetime: "1h"
`)

	loader := &DefaultLoader{}
	cfg, err := loader.Load(path)
	require.NoError(t, err)

	require.Equal(t, "https://svn.example.com/repos/widgets", cfg.Repositories["widgets"])
	require.Equal(t, 5*time.Second, cfg.Backend.Timeout.Std())
	require.Equal(t, time.Hour, cfg.Sessions.Lifetime.Std())
}

func TestLoad_Failures(t *testing.T) {
	t.Parallel()

	loader := &DefaultLoader{}

	tc := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr error
	}{
		{
			name:    "empty path",
			path:    func(t *testing.T) string { return "" },
			wantErr: ErrConfigLoadFailed,
		},
		{
			name: "missing file",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.toml")
			},
			wantErr: ErrConfigLoadFailed,
		},
		{
			name: "malformed toml",
			path: func(t *testing.T) string {
				return writeConfig(t, "bad.toml", `addr = `)
			},
			wantErr: ErrConfigLoadFailed,
		},
		{
			name: "bad repository name",
			path: func(t *testing.T) string {
				return writeConfig(t, "bad-name.toml", `
[repositories]
"has space" = "https://svn.example.com/x"
`)
			},
			wantErr: ErrConfigLoadFailed,
		},
		{
			name: "empty repository url",
			path: func(t *testing.T) string {
				return writeConfig(t, "empty-url.toml", `
[repositories]
widgets = ""
`)
			},
			wantErr: ErrConfigLoadFailed,
		},
	}

	for _, testCase := range tc {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := loader.Load(testCase.path(t))
			require.ErrorIs(t, err, testCase.wantErr)
		})
	}
}

func TestInit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".svnd.toml")
	loader := &DefaultLoader{}

	require.NoError(t, loader.Init(path))

	// The skeleton must load cleanly.
	cfg, err := loader.Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultAddr, cfg.Addr)
	require.Empty(t, cfg.Repositories)

	// Re-initializing an existing file is refused.
	require.Error(t, loader.Init(path))
}

func TestValidatingLoader(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, ".svnd.toml", `
[repositories]
widgets = "https://svn.example.com/repos/widgets"
`)

	requireUsers := func(c *Config) error {
		if len(c.Users) == 0 {
			return fmt.Errorf("at least one user is required")
		}
		return nil
	}

	loader := NewValidatingLoader(&DefaultLoader{}, requireUsers)
	_, err := loader.Load(path)
	require.ErrorContains(t, err, "at least one user")

	// Without predicates the same file loads fine.
	_, err = NewValidatingLoader(&DefaultLoader{}).Load(path)
	require.NoError(t, err)
}
