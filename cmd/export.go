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
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lician/licdata/backblaze"
	"github.com/lician/licdata/snapshot"
	"github.com/lician/licdata/store"
)

var (
	exportOut    string
	exportUpload bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the fundamentals table to a parquet snapshot",
	Long: `The export sub-command writes every row of the fundamentals table to a
dated parquet file, optionally uploading the file to a Backblaze B2 bucket
for archival.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		myStore, err := store.NewFromDB(ctx, viper.GetString("database.url"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}
		defer myStore.Close()

		fn, numRecords, err := snapshot.Export(ctx, myStore, exportOut)
		if err != nil {
			log.Fatal().Err(err).Msg("export failed")
		}

		log.Info().Str("FileName", fn).Int("NumRecords", numRecords).Msg("exported fundamentals snapshot")

		if exportUpload {
			if err := backblaze.Upload(fn, viper.GetString("backblaze.bucket"), "fundamentals"); err != nil {
				log.Fatal().Err(err).Msg("upload to backblaze failed")
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOut, "out", ".", "directory to write the parquet file to")
	exportCmd.Flags().BoolVar(&exportUpload, "upload", false, "upload the snapshot to backblaze")
}
