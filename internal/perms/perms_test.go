package perms

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilePermissionConstants(t *testing.T) {
	t.Parallel()

	require.Equal(t, os.FileMode(0o644), RegularFile)
	require.Equal(t, os.FileMode(0o600), SecureFile)
}
