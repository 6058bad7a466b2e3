package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	_ Provider = (*DefaultLoader)(nil)

	// repoName matches the same allow-list lifecycle creation enforces, so a
	// config file cannot introduce names the rest of the system rejects.
	repoName = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

type Loader interface {
	Load(path string) (*Config, error)
}

type Initializer interface {
	Init(path string) error
}

type Provider interface {
	Initializer
	Loader
}

type DefaultLoader struct{}

// Config represents the .svnd.toml (or .yaml) file structure.
type Config struct {
	// Addr is the network address the API server binds.
	Addr string `toml:"addr" yaml:"addr"`

	// Repositories maps repository short names to their backend URLs.
	Repositories map[string]string `toml:"repositories" yaml:"repositories"`

	// Backend configures the version control backend adapter.
	Backend BackendConfig `toml:"backend" yaml:"backend"`

	// Cache configures the shared cache store and TTL classes.
	Cache CacheConfig `toml:"cache" yaml:"cache"`

	// Sessions configures session issuing.
	Sessions SessionConfig `toml:"sessions" yaml:"sessions"`

	// Users is the static development credential table. Production setups
	// replace this with an external verifier.
	Users map[string]string `toml:"users" yaml:"users"`

	configFilePath string `toml:"-" yaml:"-"`
}

// BackendConfig configures the version control backend adapter.
type BackendConfig struct {
	// Binary is the svn client executable.
	Binary string `toml:"binary" yaml:"binary"`

	// CreateRepoBinary is the executable that provisions a new repository.
	CreateRepoBinary string `toml:"create_repo_binary" yaml:"create_repo_binary"`

	// Timeout bounds every single backend invocation.
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// CacheConfig configures the shared cache store and TTL classes.
type CacheConfig struct {
	// SweepInterval is how often expired entries are actively removed.
	SweepInterval Duration `toml:"sweep_interval" yaml:"sweep_interval"`

	// RepositoryListTTL applies to aggregate repository-list records.
	RepositoryListTTL Duration `toml:"repository_list_ttl" yaml:"repository_list_ttl"`

	// MetadataTTL applies to directory listings, history and single-repository reads.
	MetadataTTL Duration `toml:"metadata_ttl" yaml:"metadata_ttl"`
}

// SessionConfig configures session issuing.
type SessionConfig struct {
	// Lifetime is the fixed duration a session stays valid after login.
	Lifetime Duration `toml:"lifetime" yaml:"lifetime"`
}

// Duration is a time.Duration that decodes from a human-readable string
// ("30s", "20m", "1h") in both TOML and YAML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler for YAML decoding.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(raw))
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ConfigFilePath returns the path this config was loaded from.
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// RepositoryNames returns the configured repository names.
func (c *Config) RepositoryNames() []string {
	names := make([]string, 0, len(c.Repositories))
	for name := range c.Repositories {
		names = append(names, name)
	}
	return names
}

// validate checks invariants the rest of the system depends on.
func (c *Config) validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return NewErrInvalidValue("addr", c.Addr)
	}

	for name, url := range c.Repositories {
		if !repoName.MatchString(name) {
			return fmt.Errorf("%w: repository name '%s'", ErrInvalidValue, name)
		}
		if strings.TrimSpace(url) == "" {
			return fmt.Errorf("%w: repository '%s' has an empty URL", ErrInvalidValue, name)
		}
	}

	return nil
}
