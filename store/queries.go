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
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/lician/licdata/data"
)

// ErrNoCronHistory indicates the cron schema is not installed in the
// database, so scheduled job history cannot be reported
var ErrNoCronHistory = errors.New("cron history tables are not installed")

// SyncedCIKs returns the set of company identifiers that already have rows in
// the given table. Failures are logged and yield an empty set so a resumed
// run degrades to re-processing rather than aborting.
func (myStore *Store) SyncedCIKs(ctx context.Context, tbl string) map[string]struct{} {
	var ciks []string

	sql := fmt.Sprintf(`SELECT DISTINCT cik FROM %[1]s`, tbl)
	if err := pgxscan.Select(ctx, myStore.Pool, &ciks, sql); err != nil {
		log.Error().Err(err).Str("SQL", sql).Msg("querying synced ciks failed; treating all companies as unsynced")
		return map[string]struct{}{}
	}

	synced := make(map[string]struct{}, len(ciks))
	for _, cik := range ciks {
		synced[cik] = struct{}{}
	}

	return synced
}

// Cursor returns the stored resume offset for a source. A source that has
// never saved a cursor starts at 0.
func (myStore *Store) Cursor(ctx context.Context, source string) (int, error) {
	var next int

	sql := fmt.Sprintf(`SELECT next_offset FROM %[1]s WHERE source = $1`, SyncProgressTable)
	err := myStore.Pool.QueryRow(ctx, sql, source).Scan(&next)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return next, nil
}

// SaveCursor records the registry offset the next run of a source should
// start from
func (myStore *Store) SaveCursor(ctx context.Context, source string, nextOffset int) error {
	sql := fmt.Sprintf(`INSERT INTO %[1]s (
		"source",
		"next_offset",
		"updated_at"
	) VALUES (
		$1, $2, now()
	) ON CONFLICT (source) DO UPDATE SET
		next_offset = EXCLUDED.next_offset,
		updated_at = EXCLUDED.updated_at`, SyncProgressTable)

	_, err := myStore.Pool.Exec(ctx, sql, source, nextOffset)
	return err
}

// RecentRuns returns the most recent sync runs, newest first
func (myStore *Store) RecentRuns(ctx context.Context, limit int) ([]*data.SyncRun, error) {
	var runs []*data.SyncRun

	sql := fmt.Sprintf(`SELECT id, source, started_at, finished_at, processed, succeeded,
	failed, rows_written, dry_run, status FROM %[1]s ORDER BY started_at DESC LIMIT $1`, SyncRunsTable)
	if err := pgxscan.Select(ctx, myStore.Pool, &runs, sql, limit); err != nil {
		return nil, err
	}

	return runs, nil
}

// RunHealth aggregates sync run outcomes over a trailing window
type RunHealth struct {
	TotalRuns   int        `db:"total_runs"`
	FailedRuns  int        `db:"failed_runs"`
	PartialRuns int        `db:"partial_runs"`
	RowsWritten int64      `db:"rows_written"`
	LastSuccess *time.Time `db:"last_success"`
}

func (myStore *Store) RunHealth(ctx context.Context, window time.Duration) (*RunHealth, error) {
	health := &RunHealth{}

	sql := fmt.Sprintf(`SELECT
	count(*) AS total_runs,
	count(*) FILTER (WHERE status = 'failed') AS failed_runs,
	count(*) FILTER (WHERE status = 'partial') AS partial_runs,
	coalesce(sum(rows_written), 0) AS rows_written,
	max(finished_at) FILTER (WHERE status = 'success') AS last_success
FROM %[1]s WHERE started_at > now() - $1::interval`, SyncRunsTable)
	if err := pgxscan.Get(ctx, myStore.Pool, health, sql, window); err != nil {
		return nil, err
	}

	return health, nil
}

// CronJobRun is one row of pg_cron's execution history
type CronJobRun struct {
	JobName       *string    `db:"jobname"`
	Status        string     `db:"status"`
	ReturnMessage string     `db:"return_message"`
	StartTime     time.Time  `db:"start_time"`
	EndTime       *time.Time `db:"end_time"`
}

// CronJobRuns returns recent scheduled job executions from pg_cron, newest
// first. Databases without pg_cron installed return ErrNoCronHistory.
func (myStore *Store) CronJobRuns(ctx context.Context, limit int) ([]*CronJobRun, error) {
	var jobRuns []*CronJobRun

	err := pgxscan.Select(ctx, myStore.Pool, &jobRuns,
		`SELECT j.jobname, d.status, coalesce(d.return_message, '') AS return_message,
	d.start_time, d.end_time FROM cron.job_run_details d
	LEFT JOIN cron.job j ON j.jobid = d.jobid
	ORDER BY d.start_time DESC LIMIT $1`, limit)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
			return nil, ErrNoCronHistory
		}

		return nil, err
	}

	return jobRuns, nil
}
