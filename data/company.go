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

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Company is a registrant from the SEC company registry. The CIK is assigned
// by the registry and never changes; licdata looks companies up but does not
// mutate them.
type Company struct {
	CIK         string    `db:"cik" json:"cik"`
	Ticker      string    `db:"ticker" json:"ticker"`
	Title       string    `db:"title" json:"title"`
	LastUpdated time.Time `db:"last_updated" json:"last_updated"`
}

// PaddedCIK returns the identifier zero-padded to the 10 digits the EDGAR
// document endpoints expect
func (company *Company) PaddedCIK() string {
	return fmt.Sprintf("%010s", company.CIK)
}

func (company *Company) SaveDB(ctx context.Context, tbl string, db DB) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Commit(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Error().Err(err).Msg("error committing company transaction to database")
		}
	}()

	sql := fmt.Sprintf(`INSERT INTO %[1]s (
		"cik",
		"ticker",
		"title",
		"last_updated"
	) VALUES (
		$1, $2, $3, $4
	) ON CONFLICT (cik) DO UPDATE SET
		ticker = EXCLUDED.ticker,
		title = EXCLUDED.title,
		last_updated = EXCLUDED.last_updated`, tbl)

	_, err = tx.Exec(ctx, sql, company.CIK, company.Ticker, company.Title, company.LastUpdated)

	if err != nil {
		log.Error().Err(err).Str("SQL", sql).Object("Company", company).Msg("save company to DB failed")
		if err2 := tx.Rollback(ctx); err2 != nil {
			log.Error().Err(err2).Msg("error rolling back tx")
		}
	}

	return err
}

func (company *Company) MarshalZerologObject(e *zerolog.Event) {
	e.Str("CIK", company.CIK)
	e.Str("Ticker", company.Ticker)
	e.Str("Title", company.Title)
}
