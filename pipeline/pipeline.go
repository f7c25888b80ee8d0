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
	"time"

	"github.com/alphadose/haxmap"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/lician/licdata/data"
	"github.com/lician/licdata/edgar"
	"github.com/lician/licdata/store"
)

const (
	// Source identifies this pipeline in run records and progress cursors
	Source = "edgar-facts"

	// DefaultLimit caps a run at the full registry; EDGAR lists roughly
	// 10k filers with tickers
	DefaultLimit = 10000

	progressInterval = 100
)

// Config selects which companies a run processes and how results are
// persisted
type Config struct {
	Limit      int
	Offset     int
	Continue   bool
	DryRun     bool
	Workers    int
	FromCursor bool
	Tickers    []string
}

// Syncer drives one batch of company fact syncs: enumerate the registry,
// fetch and normalize each candidate, upsert the rows, and record the run.
type Syncer struct {
	Store  *store.Store
	Edgar  *edgar.Client
	Config Config

	// ticker to CIK lookup, owned by the syncer so repeated runs in one
	// process never see stale entries from another instance
	cikByTicker *haxmap.Map[string, string]
}

func New(myStore *store.Store, client *edgar.Client, config Config) *Syncer {
	if config.Limit <= 0 {
		config.Limit = DefaultLimit
	}

	if config.Workers <= 0 {
		config.Workers = 1
	}

	return &Syncer{
		Store:       myStore,
		Edgar:       client,
		Config:      config,
		cikByTicker: haxmap.New[string, string](),
	}
}

type result struct {
	idx     int
	company *data.Company
	records []*data.Fundamental
	err     error
}

// Run processes the candidate companies and returns the run record. Only a
// registry fetch or candidate selection failure aborts the run; per-company
// failures are counted and the loop continues.
func (syncer *Syncer) Run(ctx context.Context) (*data.SyncRun, error) {
	run := &data.SyncRun{
		ID:        uuid.New(),
		Source:    Source,
		StartedAt: time.Now(),
		DryRun:    syncer.Config.DryRun,
	}

	companies, err := syncer.Edgar.Companies(ctx)
	if err != nil {
		log.Error().Err(err).Msg("could not fetch company registry")
		return nil, err
	}

	for _, company := range companies {
		syncer.cikByTicker.GetOrSet(company.Ticker, company.CIK)
	}

	candidates, err := syncer.selectCandidates(ctx, companies)
	if err != nil {
		return nil, err
	}

	log.Info().Int("NumCandidates", len(candidates)).Int("Workers", syncer.Config.Workers).
		Bool("DryRun", syncer.Config.DryRun).Msg("starting company sync")

	results := make(chan *result, 100)

	go func() {
		var group errgroup.Group
		group.SetLimit(syncer.Config.Workers)

		for idx, company := range candidates {
			idx, company := idx, company
			group.Go(func() error {
				doc, err := syncer.Edgar.CompanyFacts(ctx, company)
				if err != nil {
					results <- &result{idx: idx, company: company, err: err}
					return nil
				}

				results <- &result{idx: idx, company: company, records: edgar.Normalize(company, doc)}
				return nil
			})
		}

		if err := group.Wait(); err != nil {
			log.Error().Err(err).Msg("worker group returned an error")
		}

		close(results)
	}()

	started := time.Now()
	processed := 0
	completed := newCompletionLog(len(candidates))

	for res := range results {
		processed++
		prefix := completed.Mark(res.idx)

		if res.err != nil {
			log.Error().Err(res.err).Str("Ticker", res.company.Ticker).Str("CIK", res.company.CIK).
				Msg("company sync failed")
			run.Failed++
		} else {
			rowsWritten, err := syncer.write(ctx, res.records)
			run.RowsWritten += rowsWritten
			if err != nil {
				log.Error().Err(err).Str("Ticker", res.company.Ticker).Str("CIK", res.company.CIK).
					Msg("could not save records for company")
				run.Failed++
			} else {
				run.Succeeded++
			}
		}

		if processed%progressInterval == 0 {
			perItem := time.Since(started) / time.Duration(processed)
			timeLeft := perItem * time.Duration(len(candidates)-processed)
			log.Info().Int("Completed", processed).Int("NumCompaniesLeft", len(candidates)-processed).
				Str("SinceStarted", time.Since(started).Round(time.Second).String()).
				Str("PerItem", perItem.Round(time.Millisecond).String()).
				Str("ETA", timeLeft.Round(time.Second).String()).
				Msg("company sync progress")

			syncer.saveCursor(ctx, prefix)
		}
	}

	run.Processed = processed
	run.FinishedAt = time.Now()

	switch {
	case run.Failed == 0:
		run.Status = data.RunSuccess
	case run.Succeeded == 0:
		run.Status = data.RunFailed
	default:
		run.Status = data.RunPartial
	}

	syncer.saveCursor(ctx, processed)

	if !syncer.Config.DryRun {
		if err := run.SaveDB(ctx, store.SyncRunsTable, syncer.Store.Pool); err != nil {
			log.Error().Err(err).Object("SyncRun", run).Msg("could not save sync run record")
		}
	}

	log.Info().Object("SyncRun", run).Str("RunTime", run.Duration().Round(time.Second).String()).
		Msg("company sync finished")

	return run, nil
}

// write persists one company's records, one upsert per composite key. Rows
// written before a failure stay written; the error fails the company as a
// whole and the run moves on.
func (syncer *Syncer) write(ctx context.Context, records []*data.Fundamental) (int, error) {
	if syncer.Config.DryRun {
		return len(records), nil
	}

	for idx, fundamental := range records {
		if err := fundamental.SaveDB(ctx, store.FundamentalsTable, syncer.Store.Pool); err != nil {
			return idx, err
		}
	}

	return len(records), nil
}

// saveCursor records how far into the registry this run has progressed. The
// cursor tracks position, not success; re-syncing failed companies is what
// continue mode is for. Modes that don't walk the registry in order have no
// meaningful cursor and skip the write.
func (syncer *Syncer) saveCursor(ctx context.Context, processed int) {
	if syncer.Config.DryRun || syncer.Config.Continue || len(syncer.Config.Tickers) > 0 {
		return
	}

	if err := syncer.Store.SaveCursor(ctx, Source, syncer.Config.Offset+processed); err != nil {
		log.Error().Err(err).Int("NextOffset", syncer.Config.Offset+processed).Msg("could not save progress cursor")
	}
}
