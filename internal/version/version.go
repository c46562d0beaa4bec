// Package version carries build identification, set via -ldflags.
package version

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String returns the version with the short commit SHA appended.
func String() string {
	sha := GitSHA
	if len(sha) > 8 {
		sha = sha[:8]
	}
	return Version + " (" + sha + ")"
}
