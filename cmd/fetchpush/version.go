// Copyright 2025 the fetchpush authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// buildInfo is the subset of embedded build metadata the version banner
// renders.
type buildInfo struct {
	version  string
	revision string
	dirty    bool
	builtAt  time.Time
}

// readBuildInfo extracts the banner fields from the binary's build info.
// Binaries built outside a git checkout carry version "dev" and no revision.
func readBuildInfo() buildInfo {
	info := buildInfo{version: "dev"}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.version = v
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.revision = setting.Value
		case "vcs.time":
			if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
				info.builtAt = t
			}
		case "vcs.modified":
			info.dirty = setting.Value == "true"
		}
	}

	return info
}

// FormatVersion renders the --version banner. The revision line appears only
// when the build was stamped from a checkout.
func FormatVersion() string {
	info := readBuildInfo()

	var b strings.Builder
	fmt.Fprintf(&b, "fetchpush %s (%s, %s/%s)\n", info.version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if info.revision != "" {
		revision := info.revision
		if len(revision) > 12 {
			revision = revision[:12]
		}
		if info.dirty {
			revision += "-dirty"
		}
		fmt.Fprintf(&b, "revision %s", revision)
		if !info.builtAt.IsZero() {
			fmt.Fprintf(&b, ", built %s", info.builtAt.Format(time.RFC3339))
		}
		b.WriteString("\n")
	}
	return b.String()
}
