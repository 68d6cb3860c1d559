// Package buildinfo reports which plotline build is running.
//
// Release builds stamp Version, Commit and Date with -ldflags -X. Binaries
// built without them (go install, go run) fall back to the module version and
// VCS settings the toolchain embeds, see GetInfo.
package buildinfo

var (
	// Version is the release version without a leading "v", or "dev".
	Version = "dev"

	// Commit is the short git commit SHA, or "unknown".
	Commit = "unknown"

	// Date is the UTC build timestamp in RFC3339 format, or "unknown".
	Date = "unknown"
)
