package app

import (
	"fmt"
	"strings"
)

// Build-time variables, stamped by the release build:
//
//	go build -ldflags "\
//	  -X github.com/reeltune/reeltune/internal/app.Version=1.4.0 \
//	  -X github.com/reeltune/reeltune/internal/app.GitCommit=$(git rev-parse --short HEAD) \
//	  -X github.com/reeltune/reeltune/internal/app.GitTag=$(git describe --tags --exact-match) \
//	  -X github.com/reeltune/reeltune/internal/app.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	  ./cmd
var (
	Version   = "dev"
	GitCommit = "unknown"
	GitTag    = ""
	BuildTime = "unknown"
)

// VersionInfo describes the running ReelTune build.
type VersionInfo struct {
	Version   string
	GitCommit string
	GitTag    string
	BuildTime string
}

// GetVersionInfo returns the version stamped into this binary.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// String is the short form shown to users, e.g. "ReelTune v1.4.0".
// A release tag wins over the version variable.
func (v VersionInfo) String() string {
	version := v.Version
	if v.GitTag != "" {
		version = v.GitTag
	}
	if version != "dev" && !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return "ReelTune " + version
}

// FullString adds commit and build time for logs. Parts the build did not
// stamp are left out.
func (v VersionInfo) FullString() string {
	var details []string
	if v.GitCommit != "" && v.GitCommit != "unknown" {
		details = append(details, "commit: "+v.GitCommit)
	}
	if v.BuildTime != "" && v.BuildTime != "unknown" {
		details = append(details, "built: "+v.BuildTime)
	}
	if len(details) == 0 {
		return v.String()
	}
	return fmt.Sprintf("%s (%s)", v, strings.Join(details, ", "))
}
