package config

// Build metadata, stamped with -ldflags "-X ..." by release builds.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
