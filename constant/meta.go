// Package constant defines immutable application-level identifiers and build metadata.
package constant

const (
	// Kplay is the canonical application identifier used for filesystem paths and CLI branding.
	Kplay = "kplay"

	// Version is the current application semantic version string.
	Version = "0.3.0"
)

// Build metadata, overridden at link time via -ldflags "-X".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
