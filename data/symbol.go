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

// ExchangeSymbol is one listing from an EODHD exchange symbol directory.
// Ticker formats are exchange dependent and may carry suffixes for non-US
// venues.
type ExchangeSymbol struct {
	Code         string    `csv:"Code" db:"code" json:"code"`
	Name         string    `csv:"Name" db:"name" json:"name"`
	Country      string    `csv:"Country" db:"country" json:"country"`
	Exchange     string    `csv:"Exchange" db:"exchange" json:"exchange"`
	Currency     string    `csv:"Currency" db:"currency" json:"currency"`
	SecurityType string    `csv:"Type" db:"security_type" json:"security_type"`
	Isin         string    `csv:"Isin" db:"isin" json:"isin"`
	LastUpdated  time.Time `csv:"-" db:"last_updated" json:"last_updated"`
}

func (symbol *ExchangeSymbol) SaveDB(ctx context.Context, tbl string, db DB) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Commit(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Error().Err(err).Msg("error committing exchange symbol transaction to database")
		}
	}()

	sql := fmt.Sprintf(`INSERT INTO %[1]s (
		"code",
		"exchange",
		"name",
		"country",
		"currency",
		"security_type",
		"isin",
		"last_updated"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8
	) ON CONFLICT (code, exchange) DO UPDATE SET
		name = EXCLUDED.name,
		country = EXCLUDED.country,
		currency = EXCLUDED.currency,
		security_type = EXCLUDED.security_type,
		isin = EXCLUDED.isin,
		last_updated = EXCLUDED.last_updated`, tbl)

	_, err = tx.Exec(ctx, sql, symbol.Code, symbol.Exchange, symbol.Name, symbol.Country,
		symbol.Currency, symbol.SecurityType, symbol.Isin, symbol.LastUpdated)

	if err != nil {
		log.Error().Err(err).Str("SQL", sql).Object("ExchangeSymbol", symbol).Msg("save exchange symbol to DB failed")
		if err2 := tx.Rollback(ctx); err2 != nil {
			log.Error().Err(err2).Msg("error rolling back tx")
		}
	}

	return err
}

func (symbol *ExchangeSymbol) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Code", symbol.Code)
	e.Str("Exchange", symbol.Exchange)
	e.Str("Name", symbol.Name)
}
