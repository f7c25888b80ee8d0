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

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lician/licdata/pkginfo"
)

var (
	versionDeps  bool
	versionShort bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build details",
	Run: func(cmd *cobra.Command, args []string) {
		if versionShort {
			fmt.Println(pkginfo.Short())
		} else {
			fmt.Println(pkginfo.Long())
		}

		if versionDeps {
			fmt.Println()
			for _, dep := range pkginfo.Dependencies() {
				fmt.Println(dep)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&versionDeps, "deps", "d", false, "list the modules compiled into the binary")
	versionCmd.Flags().BoolVarP(&versionShort, "short", "s", false, "only print the version number")
}
