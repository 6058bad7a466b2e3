package options

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pmanser/svnd/internal/config"
)

type stubLoader struct{}

func (stubLoader) Load(string) (*config.Config, error) { return &config.Config{}, nil }

type stubInitializer struct{}

func (stubInitializer) Init(string) error { return nil }

func TestNewOptions_Defaults(t *testing.T) {
	t.Parallel()

	opts, err := NewOptions()
	require.NoError(t, err)
	require.NotNil(t, opts.ConfigLoader)
	require.NotNil(t, opts.ConfigInitializer)
}

func TestNewOptions_SkipsNilOptions(t *testing.T) {
	t.Parallel()

	opts, err := NewOptions(nil, nil)
	require.NoError(t, err)
	require.NotNil(t, opts.ConfigLoader)
}

func TestNewOptions_Overrides(t *testing.T) {
	t.Parallel()

	loader := stubLoader{}
	initializer := stubInitializer{}

	opts, err := NewOptions(
		WithConfigLoader(loader),
		WithConfigInitializer(initializer),
	)
	require.NoError(t, err)
	require.Equal(t, loader, opts.ConfigLoader)
	require.Equal(t, initializer, opts.ConfigInitializer)
}
