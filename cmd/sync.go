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
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lician/licdata/data"
	"github.com/lician/licdata/edgar"
	"github.com/lician/licdata/healthcheck"
	"github.com/lician/licdata/pipeline"
	"github.com/lician/licdata/store"
)

var (
	syncLimit      int
	syncOffset     int
	syncContinue   bool
	syncDryRun     bool
	syncWorkers    int
	syncFromCursor bool
	syncTickers    []string
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync company fundamentals from SEC EDGAR",
	Long: `The sync sub-command fetches XBRL fact documents from SEC EDGAR for a
batch of companies, normalizes the reported concepts into one row per fiscal
period, and upserts those rows into the fundamentals table.

Companies are processed in registry order. A fresh run walks the
[--offset, --offset+--limit) slice of the registry; --continue instead skips
companies that already have stored rows; --tickers processes an explicit
list. Individual company failures are counted and reported but never abort
the batch.

The process exits non-zero when any company failed so schedulers can tell a
clean run from a degraded one.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		myStore, err := store.NewFromDB(ctx, viper.GetString("database.url"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}
		defer myStore.Close()

		client, err := edgar.NewClient(viper.GetString("edgar.user_agent"), viper.GetFloat64("edgar.rate_limit"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not create edgar client")
		}

		syncer := pipeline.New(myStore, client, pipeline.Config{
			Limit:      syncLimit,
			Offset:     syncOffset,
			Continue:   syncContinue,
			DryRun:     syncDryRun,
			Workers:    syncWorkers,
			FromCursor: syncFromCursor,
			Tickers:    syncTickers,
		})

		run, err := syncer.Run(ctx)
		if err != nil {
			if !syncDryRun {
				pingFailure()
			}
			log.Fatal().Err(err).Msg("sync failed")
		}

		printRunSummary(run)

		if run.Failed > 0 {
			if !run.DryRun {
				pingFailure()
			}
			os.Exit(1)
		}

		if !run.DryRun {
			pingSuccess()
		}
	},
}

func printRunSummary(run *data.SyncRun) {
	var sb strings.Builder
	keyword := func(s string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Render(s)
	}

	title := "SYNC COMPLETE"
	if run.DryRun {
		title = "SYNC COMPLETE (DRY RUN)"
	}

	fmt.Fprintf(&sb,
		"%s\n\nRun ID: %s\nStatus: %s\nProcessed: %s\nSucceeded: %s\nFailed: %s\nRows Written: %s\nRun Time: %s\n",
		lipgloss.NewStyle().Bold(true).Render(title),
		keyword(run.ID.String()),
		keyword(string(run.Status)),
		keyword(strconv.Itoa(run.Processed)),
		keyword(strconv.Itoa(run.Succeeded)),
		keyword(strconv.Itoa(run.Failed)),
		keyword(strconv.Itoa(run.RowsWritten)),
		keyword(run.Duration().Round(time.Second).String()),
	)

	fmt.Println(
		lipgloss.NewStyle().
			Width(60).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2).
			Render(sb.String()),
	)
}

func pingSuccess() {
	if checkID := viper.GetString("healthchecks.check_id"); checkID != "" {
		if err := healthcheck.Ping(checkID); err != nil {
			log.Error().Err(err).Msg("could not ping healthcheck")
		}
	}
}

func pingFailure() {
	if checkID := viper.GetString("healthchecks.check_id"); checkID != "" {
		if err := healthcheck.PingFail(checkID); err != nil {
			log.Error().Err(err).Msg("could not ping healthcheck")
		}
	}
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().IntVar(&syncLimit, "limit", pipeline.DefaultLimit, "maximum number of companies to process")
	syncCmd.Flags().IntVar(&syncOffset, "offset", 0, "registry offset to start at")
	syncCmd.Flags().BoolVar(&syncContinue, "continue", false, "only process companies with no stored fundamentals")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "skip all writes and report would-be row counts")
	syncCmd.Flags().IntVar(&syncWorkers, "workers", 1, "number of concurrent fetch workers")
	syncCmd.Flags().BoolVar(&syncFromCursor, "from-cursor", false, "start at the stored progress cursor instead of --offset")
	syncCmd.Flags().StringSliceVar(&syncTickers, "tickers", nil, "sync only the listed tickers (comma separated)")
}
