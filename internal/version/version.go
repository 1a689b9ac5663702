// Package version exposes build metadata injected via -ldflags.
package version

var (
	// Version is the semantic version of the tradewatch binary.
	Version = "dev"
	// Commit is the git commit hash the binary was built from.
	Commit = "unknown"
	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)
