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
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/lician/licdata/data"
)

// FactsDocument is EDGAR's companyfacts response: every reported value for
// one company, grouped by taxonomy and concept tag.
type FactsDocument struct {
	CIK        int64                         `json:"cik"`
	EntityName string                        `json:"entityName"`
	Facts      map[string]map[string]Concept `json:"facts"`
}

type Concept struct {
	Label       string                   `json:"label"`
	Description string                   `json:"description"`
	Units       map[string][]Observation `json:"units"`
}

// Observation is a single reported value for a concept. End dates use the
// YYYY-MM-DD format throughout EDGAR.
type Observation struct {
	Start        string  `json:"start"`
	End          string  `json:"end"`
	Value        float64 `json:"val"`
	Accession    string  `json:"accn"`
	FiscalYear   int     `json:"fy"`
	FiscalPeriod string  `json:"fp"`
	Form         string  `json:"form"`
	Filed        string  `json:"filed"`
	Frame        string  `json:"frame"`
}

// CompanyFacts fetches the facts document for one company. Companies with no
// XBRL filings return a nil document; callers treat that as zero new records,
// not an error.
func (api *Client) CompanyFacts(ctx context.Context, company *data.Company) (*FactsDocument, error) {
	if err := api.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	factsURL := fmt.Sprintf("%s/CIK%s.json", api.FactsURL, company.PaddedCIK())

	resp, err := api.client.R().
		SetContext(ctx).
		Get(factsURL)
	if err != nil {
		log.Error().Err(err).Str("URL", factsURL).Msg("resty returned an error when querying company facts")
		return nil, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		log.Debug().Str("Ticker", company.Ticker).Str("CIK", company.CIK).Msg("no facts filed for company")
		return nil, nil
	}

	if resp.StatusCode() >= 300 {
		log.Error().Int("StatusCode", resp.StatusCode()).Str("URL", factsURL).
			Msg("received an invalid status code when querying company facts")
		return nil, fmt.Errorf("%w (%d): %s", ErrInvalidStatusCode, resp.StatusCode(), string(resp.Body()))
	}

	doc := &FactsDocument{}
	if err := json.Unmarshal(resp.Body(), doc); err != nil {
		log.Error().Err(err).Str("Ticker", company.Ticker).Msg("could not deserialize company facts document")
		return nil, err
	}

	return doc, nil
}
