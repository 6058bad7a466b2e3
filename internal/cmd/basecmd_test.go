package cmd

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func TestBaseCmd_Logger_FallsBackToDefault(t *testing.T) {
	c := &BaseCmd{}

	logger := c.Logger()
	require.NotNil(t, logger)

	// Repeated calls return the same instance.
	require.Equal(t, logger, c.Logger())
}

func TestBaseCmd_SetLogger(t *testing.T) {
	c := &BaseCmd{}
	custom := hclog.NewNullLogger()

	c.SetLogger(custom)
	require.Equal(t, custom, c.Logger())
}

func TestVersion(t *testing.T) {
	require.Equal(t, "dev", Version())
}
