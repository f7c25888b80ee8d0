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
package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SyncRun records the outcome of a single sync invocation. One row per run
// keeps enough history for the status command to report on.
type SyncRun struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Source      string    `db:"source" json:"source"`
	StartedAt   time.Time `db:"started_at" json:"started_at"`
	FinishedAt  time.Time `db:"finished_at" json:"finished_at"`
	Processed   int       `db:"processed" json:"processed"`
	Succeeded   int       `db:"succeeded" json:"succeeded"`
	Failed      int       `db:"failed" json:"failed"`
	RowsWritten int       `db:"rows_written" json:"rows_written"`
	DryRun      bool      `db:"dry_run" json:"dry_run"`
	Status      RunStatus `db:"status" json:"status"`
}

func (run *SyncRun) Duration() time.Duration {
	return run.FinishedAt.Sub(run.StartedAt)
}

func (run *SyncRun) SaveDB(ctx context.Context, tbl string, db DB) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Commit(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Error().Err(err).Msg("error committing sync run transaction to database")
		}
	}()

	sql := fmt.Sprintf(`INSERT INTO %[1]s (
		"id",
		"source",
		"started_at",
		"finished_at",
		"processed",
		"succeeded",
		"failed",
		"rows_written",
		"dry_run",
		"status"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
	) ON CONFLICT (id) DO UPDATE SET
		finished_at = EXCLUDED.finished_at,
		processed = EXCLUDED.processed,
		succeeded = EXCLUDED.succeeded,
		failed = EXCLUDED.failed,
		rows_written = EXCLUDED.rows_written,
		status = EXCLUDED.status`, tbl)

	_, err = tx.Exec(ctx, sql, run.ID, run.Source, run.StartedAt, run.FinishedAt,
		run.Processed, run.Succeeded, run.Failed, run.RowsWritten, run.DryRun, run.Status)

	if err != nil {
		log.Error().Err(err).Str("SQL", sql).Object("SyncRun", run).Msg("save sync run to DB failed")
		if err2 := tx.Rollback(ctx); err2 != nil {
			log.Error().Err(err2).Msg("error rolling back tx")
		}
	}

	return err
}

func (run *SyncRun) MarshalZerologObject(e *zerolog.Event) {
	e.Str("ID", run.ID.String())
	e.Str("Source", run.Source)
	e.Int("Processed", run.Processed)
	e.Int("Succeeded", run.Succeeded)
	e.Int("Failed", run.Failed)
	e.Int("RowsWritten", run.RowsWritten)
	e.Str("Status", string(run.Status))
}
