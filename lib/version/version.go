// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags -X by release builds.
var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	GitDirty  = ""
	BuildTime = ""
)

// revision is the commit and dirty flag the binary was built from:
// the ldflags values when set, else the VCS stamp the go command
// embeds, else "unknown".
func revision() (commit string, dirty bool) {
	if GitCommit != "" {
		return GitCommit, GitDirty == "true"
	}
	commit = "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return commit, false
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			commit = setting.Value
			if len(commit) > 12 {
				commit = commit[:12]
			}
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return commit, dirty
}

// Info is the one-line form: "0.1.0-dev (a1b2c3d4e5f6-dirty, 2026-05-04T10:00:00Z)".
func Info() string {
	commit, dirty := revision()
	if dirty {
		commit += "-dirty"
	}
	built := BuildTime
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("%s (%s, %s)", Version, commit, built)
}

// Full adds the Go toolchain and platform to Info, one per line.
func Full() string {
	return fmt.Sprintf("%s\n  go: %s\n  platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns Version alone.
func Short() string {
	return Version
}
