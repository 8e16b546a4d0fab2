package version

var (
	// Version contains the semantic version set at build time
	Version = "dev"
	// GitCommit contains the commit hash set at build time
	GitCommit = "unknown"
	// FullVersion is used by the root command
	FullVersion = Version + " (" + GitCommit + ")"
)
