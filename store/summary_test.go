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
package store_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock/v3"

	"github.com/lician/licdata/data"
	"github.com/lician/licdata/store"
)

var _ = Describe("HealthSummary", func() {
	var (
		mock    pgxmock.PgxPoolIface
		myStore *store.Store
		ctx     context.Context
	)

	BeforeEach(func() {
		var err error
		mock, err = pgxmock.NewPool()
		Expect(err).To(BeNil())

		myStore = &store.Store{Pool: mock}
		ctx = context.Background()
	})

	AfterEach(func() {
		Expect(mock.ExpectationsWereMet()).To(Succeed())
		mock.Close()
	})

	It("renders the full report", func() {
		lastSuccess := time.Now().Add(-2 * time.Hour)
		mock.ExpectQuery("AS total_runs").
			WithArgs(30 * 24 * time.Hour).
			WillReturnRows(pgxmock.NewRows([]string{
				"total_runs", "failed_runs", "partial_runs", "rows_written", "last_success",
			}).AddRow(30, 1, 2, int64(273401), &lastSuccess))

		started := time.Now().Add(-2 * time.Hour)
		mock.ExpectQuery("ORDER BY started_at DESC").
			WithArgs(10).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "source", "started_at", "finished_at", "processed",
				"succeeded", "failed", "rows_written", "dry_run", "status",
			}).AddRow(
				uuid.New(), "edgar-facts", started, started.Add(90*time.Second),
				100, 99, 1, 3500, true, data.RunSuccess,
			))

		jobName := "licdata edgar-facts sync"
		jobStart := time.Now().Add(-30 * time.Minute)
		jobEnd := jobStart.Add(9 * time.Minute)
		mock.ExpectQuery("cron.job_run_details").
			WithArgs(25).
			WillReturnRows(pgxmock.NewRows([]string{
				"jobname", "status", "return_message", "start_time", "end_time",
			}).AddRow(&jobName, "succeeded", "", jobStart, &jobEnd).
				AddRow(&jobName, "failed", "connection to server lost", jobStart.Add(-24*time.Hour), nil))

		report, err := myStore.HealthSummary(ctx, 10, 25)
		Expect(err).To(BeNil())

		Expect(report).To(ContainSubstring("# Sync health"))
		Expect(report).To(ContainSubstring("## Last 30 days"))
		Expect(report).To(ContainSubstring("  * Runs: 30"))
		Expect(report).To(ContainSubstring("  * Failed: 1"))
		Expect(report).To(ContainSubstring("  * Rows Written: 273,401"))
		Expect(report).To(ContainSubstring("Last Clean Run: 2 hours ago"))

		Expect(report).To(ContainSubstring("## Recent runs"))
		Expect(report).To(ContainSubstring("success edgar-facts (dry-run): 100 processed, 1 failed, 3,500 rows in 1m30s"))

		Expect(report).To(ContainSubstring("## Scheduled jobs"))
		Expect(report).To(ContainSubstring("succeeded licdata edgar-facts sync"))
		Expect(report).To(ContainSubstring("    * connection to server lost"))
	})

	It("degrades gracefully on an empty database without pg_cron", func() {
		mock.ExpectQuery("AS total_runs").
			WithArgs(30 * 24 * time.Hour).
			WillReturnRows(pgxmock.NewRows([]string{
				"total_runs", "failed_runs", "partial_runs", "rows_written", "last_success",
			}).AddRow(0, 0, 0, int64(0), nil))

		mock.ExpectQuery("ORDER BY started_at DESC").
			WithArgs(10).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "source", "started_at", "finished_at", "processed",
				"succeeded", "failed", "rows_written", "dry_run", "status",
			}))

		mock.ExpectQuery("cron.job_run_details").
			WithArgs(25).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UndefinedTable})

		report, err := myStore.HealthSummary(ctx, 10, 25)
		Expect(err).To(BeNil())

		Expect(report).To(ContainSubstring("Last Clean Run: Never"))
		Expect(report).To(ContainSubstring("pg_cron is not installed; no scheduled job history available"))
	})
})
