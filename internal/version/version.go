// Package version carries build metadata. The values are overridden at
// link time, e.g.
//
//	go build -ldflags "-X github.com/banshee-data/helixprop/internal/version.Version=v0.3.0" ./cmd/trfscan
package version

var (
	// Version is the release tag.
	Version = "dev"
	// GitSHA is the commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// String formats the metadata for -version output.
func String() string {
	return Version + " (" + GitSHA + ", built " + BuildTime + ")"
}
