// Package version provides the archlens tool version.
package version

// Version is the archlens tool version.
// Can be overridden at build time with:
//   go build -ldflags "-X github.com/archlens/archlens/pkg/version.Version=1.2.0"
var Version = "dev"
