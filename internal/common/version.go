package common

// Set at build time via -ldflags, e.g.
// -X worklog-reconciler/internal/common.Version=1.2.0
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// GetVersion returns the semantic version.
func GetVersion() string {
	return Version
}

// GetBuild returns the build timestamp.
func GetBuild() string {
	return Build
}

// GetGitCommit returns the git commit hash.
func GetGitCommit() string {
	return GitCommit
}

// GetFullVersion combines the version with the build stamp and an
// abbreviated commit when they were stamped in.
func GetFullVersion() string {
	full := Version
	if Build != "unknown" {
		full += "-" + Build
	}
	if GitCommit != "unknown" && len(GitCommit) >= 7 {
		full += "+" + GitCommit[:7]
	}
	return full
}
