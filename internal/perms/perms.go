// Package perms provides centralized file permission constants so every file
// the daemon writes uses a deliberate mode.
package perms

import "os"

const (
	// RegularFile permissions for standard files (logs, exports).
	// Mode 0644: owner read/write, group read, others read.
	RegularFile os.FileMode = 0o644

	// SecureFile permissions for sensitive files (configuration with credentials).
	// Mode 0600: owner read/write only, no group or other access.
	SecureFile os.FileMode = 0o600
)
