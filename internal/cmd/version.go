package cmd

// version is set at build time using -ldflags.
var version = "dev"

// Version returns the application version.
func Version() string {
	return version
}
