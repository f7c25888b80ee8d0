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
package edgar

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lician/licdata/data"
)

// Concept tag fallback chains, in preference order. Filers report the same
// economic quantity under different us-gaap tags; the first tag present with
// at least one observation wins.
var (
	revenueTags = []string{
		"Revenues",
		"RevenueFromContractWithCustomerExcludingAssessedTax",
		"RevenueFromContractWithCustomerIncludingAssessedTax",
		"SalesRevenueNet",
	}
	netIncomeTags       = []string{"NetIncomeLoss", "ProfitLoss"}
	grossProfitTags     = []string{"GrossProfit"}
	operatingIncomeTags = []string{"OperatingIncomeLoss"}
	epsTags             = []string{"EarningsPerShareBasic"}
	epsDilutedTags      = []string{"EarningsPerShareDiluted"}
)

// Normalize flattens a facts document into one row per reporting period.
// Revenue observations seed rows keyed by end date and period type;
// secondary concepts attach to an already seeded period and are dropped when
// none exists. Rows come back in the order periods were first seen.
func Normalize(company *data.Company, doc *FactsDocument) []*data.Fundamental {
	if doc == nil {
		return nil
	}

	currency, revenueObs := doc.concept(revenueTags)
	if len(revenueObs) == 0 {
		if _, netIncomeObs := doc.concept(netIncomeTags); len(netIncomeObs) == 0 {
			return nil
		}
	}

	records := make(map[string]*data.Fundamental, len(revenueObs))
	order := make([]string, 0, len(revenueObs))
	now := time.Now()

	for _, obs := range revenueObs {
		period, ok := periodFromForm(obs.Form)
		if !ok {
			continue
		}

		endDate, err := time.Parse("2006-01-02", obs.End)
		if err != nil {
			log.Warn().Err(err).Str("Ticker", company.Ticker).Str("End", obs.End).
				Msg("skipping revenue observation with unparseable end date")
			continue
		}

		fundamental := &data.Fundamental{
			CIK:          company.CIK,
			Ticker:       company.Ticker,
			ReportPeriod: endDate,
			Period:       period,
			FiscalYear:   obs.FiscalYear,
			FiscalPeriod: obs.FiscalPeriod,
			Currency:     currency,
			Revenue:      obs.Value,
			Source:       data.SourceEdgar,
			LastUpdated:  now,
		}

		// restatements repeat a period; the first observation wins
		key := fundamental.Key()
		if _, ok := records[key]; ok {
			continue
		}

		records[key] = fundamental
		order = append(order, key)
	}

	attach(doc, records, netIncomeTags, func(fundamental *data.Fundamental, value float64) {
		fundamental.NetIncome = &value
	})
	attach(doc, records, grossProfitTags, func(fundamental *data.Fundamental, value float64) {
		fundamental.GrossProfit = &value
	})
	attach(doc, records, operatingIncomeTags, func(fundamental *data.Fundamental, value float64) {
		fundamental.OperatingIncome = &value
	})
	attach(doc, records, epsTags, func(fundamental *data.Fundamental, value float64) {
		fundamental.EPS = &value
	})
	attach(doc, records, epsDilutedTags, func(fundamental *data.Fundamental, value float64) {
		fundamental.EPSDiluted = &value
	})

	fundamentals := make([]*data.Fundamental, 0, len(order))
	for _, key := range order {
		fundamentals = append(fundamentals, records[key])
	}

	return fundamentals
}

// attach merges a secondary concept into seeded rows. Observations for
// periods without a revenue row are dropped.
func attach(doc *FactsDocument, records map[string]*data.Fundamental, tags []string, set func(*data.Fundamental, float64)) {
	_, observations := doc.concept(tags)

	for _, obs := range observations {
		period, ok := periodFromForm(obs.Form)
		if !ok {
			continue
		}

		key := fmt.Sprintf("%s-%s", obs.End, period)
		if fundamental, ok := records[key]; ok {
			set(fundamental, obs.Value)
		}
	}
}

// concept returns observations for the first tag of the chain that has any,
// along with the unit the values are denominated in
func (doc *FactsDocument) concept(tags []string) (string, []Observation) {
	gaap, ok := doc.Facts["us-gaap"]
	if !ok {
		return "", nil
	}

	for _, tag := range tags {
		fact, ok := gaap[tag]
		if !ok {
			continue
		}

		if unit, observations := firstUnit(fact.Units); len(observations) > 0 {
			return unit, observations
		}
	}

	return "", nil
}

// firstUnit selects the unit series to read, preferring USD denominated
// values and falling back to the lexicographically first unit so repeated
// runs make the same choice
func firstUnit(units map[string][]Observation) (string, []Observation) {
	if observations, ok := units["USD"]; ok && len(observations) > 0 {
		return "USD", observations
	}

	unitKeys := make([]string, 0, len(units))
	for unit := range units {
		unitKeys = append(unitKeys, unit)
	}
	sort.Strings(unitKeys)

	for _, unit := range unitKeys {
		if observations := units[unit]; len(observations) > 0 {
			return unit, observations
		}
	}

	return "", nil
}

// periodFromForm maps a filing form to the period type it reports. Only
// annual and quarterly reports carry period data; every other form (8-K,
// amendments, foreign filer forms) is ignored.
func periodFromForm(form string) (data.Period, bool) {
	switch form {
	case "10-K":
		return data.PeriodAnnual, true
	case "10-Q":
		return data.PeriodQuarterly, true
	}

	return "", false
}
