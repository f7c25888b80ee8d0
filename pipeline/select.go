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
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lician/licdata/data"
	"github.com/lician/licdata/store"
)

var ErrUnknownTicker = errors.New("ticker not present in company registry")

// selectCandidates fixes the company list for this run. The list is resolved
// once, up front; registry order is preserved in every mode.
func (syncer *Syncer) selectCandidates(ctx context.Context, companies []*data.Company) ([]*data.Company, error) {
	config := syncer.Config

	// explicit ticker list
	if len(config.Tickers) > 0 {
		byCIK := make(map[string]*data.Company, len(companies))
		for _, company := range companies {
			byCIK[company.CIK] = company
		}

		candidates := make([]*data.Company, 0, len(config.Tickers))
		for _, ticker := range config.Tickers {
			cik, ok := syncer.cikByTicker.Get(strings.ToUpper(ticker))
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
			}

			candidates = append(candidates, byCIK[cik])
		}

		return candidates, nil
	}

	// continue mode: skip companies that already have rows, keep registry
	// order, truncate to the limit
	if config.Continue {
		synced := syncer.Store.SyncedCIKs(ctx, store.FundamentalsTable)

		candidates := make([]*data.Company, 0, config.Limit)
		for _, company := range companies {
			if _, ok := synced[company.CIK]; ok {
				continue
			}

			candidates = append(candidates, company)
			if len(candidates) == config.Limit {
				break
			}
		}

		return candidates, nil
	}

	// fresh mode: [offset, offset+limit) slice of the registry
	offset := config.Offset
	if config.FromCursor {
		cursor, err := syncer.Store.Cursor(ctx, Source)
		if err != nil {
			log.Error().Err(err).Msg("could not read progress cursor; falling back to configured offset")
		} else {
			offset = cursor
		}
	}

	// cursor writes advance from the offset the run actually started at,
	// not the configured one
	syncer.Config.Offset = offset

	if offset >= len(companies) {
		return []*data.Company{}, nil
	}

	end := offset + config.Limit
	if end > len(companies) {
		end = len(companies)
	}

	return companies[offset:end], nil
}
