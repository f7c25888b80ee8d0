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
package snapshot

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/lician/licdata/data"
	"github.com/lician/licdata/store"
)

// fundamentalRow is the parquet projection of a fundamentals row. Dates are
// serialized as strings because the parquet writer has no native time type.
type fundamentalRow struct {
	CIK             string   `parquet:"name=cik, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Ticker          string   `parquet:"name=ticker, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ReportPeriod    string   `parquet:"name=report_period, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Period          string   `parquet:"name=period, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	FiscalYear      int32    `parquet:"name=fiscal_year, type=INT32"`
	FiscalPeriod    string   `parquet:"name=fiscal_period, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Currency        string   `parquet:"name=currency, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Revenue         float64  `parquet:"name=revenue, type=DOUBLE"`
	NetIncome       *float64 `parquet:"name=net_income, type=DOUBLE, repetitiontype=OPTIONAL"`
	GrossProfit     *float64 `parquet:"name=gross_profit, type=DOUBLE, repetitiontype=OPTIONAL"`
	OperatingIncome *float64 `parquet:"name=operating_income, type=DOUBLE, repetitiontype=OPTIONAL"`
	EPS             *float64 `parquet:"name=eps, type=DOUBLE, repetitiontype=OPTIONAL"`
	EPSDiluted      *float64 `parquet:"name=eps_diluted, type=DOUBLE, repetitiontype=OPTIONAL"`
	Source          string   `parquet:"name=source, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	LastUpdated     string   `parquet:"name=last_updated, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

// Export writes the full fundamentals table to a dated parquet file under
// outDir and returns the file name and row count
func Export(ctx context.Context, myStore *store.Store, outDir string) (string, int, error) {
	var fundamentals []*data.Fundamental

	sql := fmt.Sprintf(`SELECT cik, ticker, report_period, period, fiscal_year, fiscal_period,
	currency, revenue, net_income, gross_profit, operating_income, eps, eps_diluted, source,
	last_updated FROM %[1]s ORDER BY cik, report_period, period`, store.FundamentalsTable)
	if err := pgxscan.Select(ctx, myStore.Pool, &fundamentals, sql); err != nil {
		log.Error().Err(err).Str("SQL", sql).Msg("querying fundamentals for export failed")
		return "", 0, err
	}

	fn := filepath.Join(outDir, fmt.Sprintf("fundamentals-%s.parquet", time.Now().Format("20060102")))
	if err := writeParquet(fundamentals, fn); err != nil {
		return "", 0, err
	}

	return fn, len(fundamentals), nil
}

func writeParquet(fundamentals []*data.Fundamental, fn string) error {
	var err error

	fh, err := local.NewLocalFileWriter(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create local file")
		return err
	}
	defer fh.Close()

	pw, err := writer.NewParquetWriter(fh, new(fundamentalRow), 4)
	if err != nil {
		log.Error().
			Str("OriginalError", err.Error()).
			Msg("Parquet write failed")
		return err
	}

	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for _, fundamental := range fundamentals {
		row := &fundamentalRow{
			CIK:             fundamental.CIK,
			Ticker:          fundamental.Ticker,
			ReportPeriod:    fundamental.ReportPeriod.Format("2006-01-02"),
			Period:          string(fundamental.Period),
			FiscalYear:      int32(fundamental.FiscalYear),
			FiscalPeriod:    fundamental.FiscalPeriod,
			Currency:        fundamental.Currency,
			Revenue:         fundamental.Revenue,
			NetIncome:       fundamental.NetIncome,
			GrossProfit:     fundamental.GrossProfit,
			OperatingIncome: fundamental.OperatingIncome,
			EPS:             fundamental.EPS,
			EPSDiluted:      fundamental.EPSDiluted,
			Source:          fundamental.Source,
			LastUpdated:     fundamental.LastUpdated.Format(time.RFC3339),
		}

		if err = pw.Write(row); err != nil {
			log.Error().
				Str("OriginalError", err.Error()).
				Str("CIK", fundamental.CIK).Str("Ticker", fundamental.Ticker).
				Msg("Parquet write failed for record")
		}
	}

	if err = pw.WriteStop(); err != nil {
		log.Error().Err(err).Msg("Parquet write failed")
		return err
	}

	log.Info().Int("NumRecords", len(fundamentals)).Msg("Parquet write finished")
	return nil
}
