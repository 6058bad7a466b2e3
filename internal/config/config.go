// Package config loads and validates the daemon configuration file. TOML is
// the primary format; YAML is accepted for setups that already manage their
// repository inventory that way.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/pmanser/svnd/internal/perms"
)

// Defaults applied to fields the config file leaves unset.
const (
	DefaultAddr           = "0.0.0.0:5000"
	DefaultBackendTimeout = 30 * time.Second
	DefaultSweepInterval  = 1 * time.Minute
	DefaultListTTL        = 1 * time.Hour
	DefaultMetadataTTL    = 20 * time.Minute
	DefaultSessionTTL     = 8 * time.Hour
)

// Init creates the base skeleton configuration file for the svnd daemon.
func (d *DefaultLoader) Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	content := `addr = "0.0.0.0:5000"

[repositories]
# widgets = "https://svn.example.com/repos/widgets"

[backend]
binary = "svn"
create_repo_binary = "createrepo"
timeout = "30s"

[cache]
sweep_interval = "1m"
repository_list_ttl = "1h"
metadata_ttl = "20m"

[sessions]
lifetime = "8h"

[users]
# alice = "change-me"
`

	if err := os.WriteFile(path, []byte(content), perms.SecureFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func (d *DefaultLoader) Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrConfigLoadFailed)
	}

	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: config file cannot be found, run: 'svnd init'", ErrConfigLoadFailed)
		}
		return nil, fmt.Errorf("%w: failed to stat config file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	cfg, err := decodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode config from file (%s): %w", ErrConfigLoadFailed, path, err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: config file is empty (%s)", ErrConfigLoadFailed, path)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: failed to validate config (%s): %w", ErrConfigLoadFailed, path, err)
	}

	// Track the path that loaded this file.
	cfg.configFilePath = path

	return cfg, nil
}

// decodeFile picks the decoder from the file extension.
func decodeFile(path string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var cfg *Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	default:
		var cfg *Config
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
}

// applyDefaults fills fields the file left unset.
func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Addr) == "" {
		c.Addr = DefaultAddr
	}
	if c.Backend.Binary == "" {
		c.Backend.Binary = "svn"
	}
	if c.Backend.CreateRepoBinary == "" {
		c.Backend.CreateRepoBinary = "createrepo"
	}
	if c.Backend.Timeout.Std() <= 0 {
		c.Backend.Timeout = Duration(DefaultBackendTimeout)
	}
	if c.Cache.SweepInterval.Std() <= 0 {
		c.Cache.SweepInterval = Duration(DefaultSweepInterval)
	}
	if c.Cache.RepositoryListTTL.Std() <= 0 {
		c.Cache.RepositoryListTTL = Duration(DefaultListTTL)
	}
	if c.Cache.MetadataTTL.Std() <= 0 {
		c.Cache.MetadataTTL = Duration(DefaultMetadataTTL)
	}
	if c.Sessions.Lifetime.Std() <= 0 {
		c.Sessions.Lifetime = Duration(DefaultSessionTTL)
	}
}
