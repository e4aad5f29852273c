// Package version holds build-time version information.
package version

// Version is overridden at build time:
//
//	go build -ldflags "-X github.com/ndewijer/SnapCharts-Backend/internal/version.Version=1.2.3"
var Version = "dev"
