// Package version reports which build of igmod is running
package version

import (
	"runtime"
	"runtime/debug"
	"sync"
)

// BuildInfo is what /meta/version answers with
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

// stamped with -ldflags "-X github.com/maurolguin1/ig-moderation/internal/core/version.version=v0.3.0"
// (commit and date the same way); empty values fall back to the vcs settings go build records
var (
	version = "dev"
	commit  = ""
	date    = ""
)

var info = sync.OnceValue(func() BuildInfo {
	bi := BuildInfo{Service: "igmod", Version: version, Commit: commit, Date: date, Go: runtime.Version()}
	if b, ok := debug.ReadBuildInfo(); ok {
		rev, at := fromVCS(b.Settings)
		if bi.Commit == "" {
			bi.Commit = rev
		}
		if bi.Date == "" {
			bi.Date = at
		}
	}
	if bi.Commit == "" {
		bi.Commit = "unknown"
	}
	if bi.Date == "" {
		bi.Date = "unknown"
	}
	return bi
})

// Info returns the build of the running binary
func Info() BuildInfo { return info() }

// fromVCS returns the short revision, marked -dirty for modified trees, and the commit time
func fromVCS(settings []debug.BuildSetting) (rev, at string) {
	dirty := false
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value[:min(7, len(s.Value))]
		case "vcs.time":
			at = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty && rev != "" {
		rev += "-dirty"
	}
	return rev, at
}
