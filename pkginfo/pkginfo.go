// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package pkginfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Stamped at build time via
//
//	-ldflags "-X github.com/lician/licdata/pkginfo.Version=v1.2.3 ..."
//
// Binaries built without ldflags fall back to the module and vcs metadata
// the toolchain recorded.
var (
	Version string
	Commit  string
	Built   string
)

// Short returns just the version number, for `licdata version --short`.
func Short() string {
	version, _, _ := resolve()
	return version
}

// Long returns the multi-line build report printed by `licdata version`.
func Long() string {
	version, commit, built := resolve()

	var sb strings.Builder
	fmt.Fprintf(&sb, "licdata %s %s/%s\n", version, runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&sb, "  commit: %s\n", commit)
	fmt.Fprintf(&sb, "  built:  %s\n", built)
	fmt.Fprintf(&sb, "  go:     %s", runtime.Version())
	return sb.String()
}

// Dependencies returns every module compiled into the binary as
// "path version" pairs, sorted by path.
func Dependencies() []string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		log.Error().Msg("build info is not available in this binary")
		return nil
	}

	deps := make([]string, 0, len(info.Deps))
	for _, dep := range info.Deps {
		deps = append(deps, fmt.Sprintf("%s %s", dep.Path, dep.Version))
	}
	sort.Strings(deps)
	return deps
}

// resolve prefers the ldflags-stamped values over build metadata.
func resolve() (version, commit, built string) {
	version, commit, built = Version, Commit, Built

	info, ok := debug.ReadBuildInfo()
	if !ok {
		if version == "" {
			version = "(devel)"
		}
		return version, commit, built
	}

	if version == "" {
		version = info.Main.Version
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if commit == "" {
				commit = setting.Value
			}
		case "vcs.time":
			if built == "" {
				built = setting.Value
			}
		}
	}
	return version, commit, built
}
