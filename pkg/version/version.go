// Package version holds build-time identification for the depfix binary.
// Values are set via -ldflags at build time; zero values fall back to
// "dev"/"none"/"unknown" for local builds.
package version

// Version is depfix's semantic version, set via -ldflags at build time.
var Version = "dev"

// Commit is the git commit hash the binary was built from.
var Commit = "none"

// Date is the build timestamp in RFC3339 form.
var Date = "unknown"

// String returns a human-readable one-line version string.
func String() string {
	return "depfix " + Version + " (commit: " + Commit + ", built: " + Date + ")"
}
