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

// Fundamental is one normalized reporting period for a company. Rows are
// uniquely identified by (CIK, ReportPeriod, Period); concept values that
// never appeared in the source document stay nil and persist as NULL.
type Fundamental struct {
	// CIK is the SEC-assigned registrant identifier
	CIK string `db:"cik" json:"cik"`

	// Ticker is the primary trading symbol at the time of the sync
	Ticker string `db:"ticker" json:"ticker"`

	// ReportPeriod is the end date of the reporting period
	ReportPeriod time.Time `db:"report_period" json:"report_period"`

	// Period classifies the filing as annual (10-K) or quarterly (10-Q)
	Period Period `db:"period" json:"period"`

	// FiscalYear and FiscalPeriod are the registrant's own labels for the
	// period, e.g. 2023 / FY or 2024 / Q2
	FiscalYear   int    `db:"fiscal_year" json:"fiscal_year"`
	FiscalPeriod string `db:"fiscal_period" json:"fiscal_period"`

	// Currency is the unit the revenue observations were reported in
	Currency string `db:"currency" json:"currency"`

	// Revenue seeds the record and is always present
	Revenue float64 `db:"revenue" json:"revenue"`

	NetIncome       *float64 `db:"net_income" json:"net_income"`
	GrossProfit     *float64 `db:"gross_profit" json:"gross_profit"`
	OperatingIncome *float64 `db:"operating_income" json:"operating_income"`
	EPS             *float64 `db:"eps" json:"eps"`
	EPSDiluted      *float64 `db:"eps_diluted" json:"eps_diluted"`

	Source      string    `db:"source" json:"source"`
	LastUpdated time.Time `db:"last_updated" json:"last_updated"`
}

// Key returns the composite period key that uniquely identifies the record
// for a single company
func (fundamental *Fundamental) Key() string {
	return fmt.Sprintf("%s-%s", fundamental.ReportPeriod.Format("2006-01-02"), fundamental.Period)
}

// SaveDB upserts the record. On conflict the existing row is replaced in
// full, refreshing the source tag and update timestamp.
func (fundamental *Fundamental) SaveDB(ctx context.Context, tbl string, db DB) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Commit(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Error().Err(err).Msg("error committing fundamental transaction to database")
		}
	}()

	sql := fmt.Sprintf(`INSERT INTO %[1]s (
		"cik",
		"ticker",
		"report_period",
		"period",
		"fiscal_year",
		"fiscal_period",
		"currency",
		"revenue",
		"net_income",
		"gross_profit",
		"operating_income",
		"eps",
		"eps_diluted",
		"source",
		"last_updated"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
	) ON CONFLICT (cik, report_period, period) DO UPDATE SET
		ticker = EXCLUDED.ticker,
		fiscal_year = EXCLUDED.fiscal_year,
		fiscal_period = EXCLUDED.fiscal_period,
		currency = EXCLUDED.currency,
		revenue = EXCLUDED.revenue,
		net_income = EXCLUDED.net_income,
		gross_profit = EXCLUDED.gross_profit,
		operating_income = EXCLUDED.operating_income,
		eps = EXCLUDED.eps,
		eps_diluted = EXCLUDED.eps_diluted,
		source = EXCLUDED.source,
		last_updated = EXCLUDED.last_updated`, tbl)

	_, err = tx.Exec(ctx, sql,
		fundamental.CIK,
		fundamental.Ticker,
		fundamental.ReportPeriod,
		fundamental.Period,
		fundamental.FiscalYear,
		fundamental.FiscalPeriod,
		fundamental.Currency,
		fundamental.Revenue,
		fundamental.NetIncome,
		fundamental.GrossProfit,
		fundamental.OperatingIncome,
		fundamental.EPS,
		fundamental.EPSDiluted,
		fundamental.Source,
		fundamental.LastUpdated,
	)

	if err != nil {
		log.Error().Err(err).Str("SQL", sql).Object("Fundamental", fundamental).Msg("save fundamental to DB failed")
		if err2 := tx.Rollback(ctx); err2 != nil {
			log.Error().Err(err2).Msg("error rolling back tx")
		}
	}

	return err
}

func (fundamental *Fundamental) MarshalZerologObject(e *zerolog.Event) {
	e.Str("CIK", fundamental.CIK)
	e.Str("Ticker", fundamental.Ticker)
	e.Time("ReportPeriod", fundamental.ReportPeriod)
	e.Str("Period", string(fundamental.Period))
}
