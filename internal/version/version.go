package version

// Build metadata, overridden at link time with -ldflags "-X".
//
//nolint:gochecknoglobals // Set by the linker.
var (
	// Version is the semantic version of the build.
	Version = "0.3.0"
	// Commit is the VCS revision of the build.
	Commit = "none"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// Short returns the bare version string.
func Short() string {
	return Version
}

// Full returns the version together with commit and build time.
func Full() string {
	return "version: " + Version + ", commit: " + Commit + ", built at: " + BuildTime
}
