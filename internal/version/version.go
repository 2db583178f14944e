package version

// Overridden at build time with -ldflags "-X teddywatch/internal/version.VERSION=...".
var (
	VERSION = "dev"
	COMMIT  = "unknown"
)
