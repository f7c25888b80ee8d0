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
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/lician/licdata/data"
)

const (
	companyTickersURL = "https://www.sec.gov/files/company_tickers.json"
	companyFactsURL   = "https://data.sec.gov/api/xbrl/companyfacts"

	// DefaultRateLimit is the request budget, in requests per second, that
	// SEC fair-access guidance allows
	DefaultRateLimit = 10.0
)

var (
	ErrInvalidStatusCode = errors.New("invalid status code received")
	ErrUserAgentRequired = errors.New("edgar requires an identifying user agent")
)

// Client fetches the company registry and per-company fact documents from
// SEC EDGAR. All requests pass through a shared limiter so callers stay
// inside the configured request budget no matter how they interleave calls.
type Client struct {
	RegistryURL string
	FactsURL    string

	client  *resty.Client
	limiter *rate.Limiter
}

// NewClient builds an EDGAR client. SEC rejects anonymous traffic, so the
// identifying user agent is required. A rateLimit of zero or less selects
// DefaultRateLimit.
func NewClient(userAgent string, rateLimit float64) (*Client, error) {
	if userAgent == "" {
		return nil, ErrUserAgentRequired
	}

	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}

	return &Client{
		RegistryURL: companyTickersURL,
		FactsURL:    companyFactsURL,
		client:      resty.New().SetHeader("User-Agent", userAgent),
		limiter:     rate.NewLimiter(rate.Limit(rateLimit), 1),
	}, nil
}

// Companies fetches the full company registry. Document order is preserved;
// EDGAR lists entries roughly by market cap so the head of the registry is
// the most useful slice for bounded runs.
func (api *Client) Companies(ctx context.Context) ([]*data.Company, error) {
	if err := api.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := api.client.R().
		SetContext(ctx).
		Get(api.RegistryURL)
	if err != nil {
		log.Error().Err(err).Str("URL", api.RegistryURL).Msg("resty returned an error when querying the company registry")
		return nil, err
	}

	if resp.StatusCode() >= 300 {
		log.Error().Int("StatusCode", resp.StatusCode()).Str("URL", api.RegistryURL).
			Msg("received an invalid status code when querying the company registry")
		return nil, fmt.Errorf("%w (%d): %s", ErrInvalidStatusCode, resp.StatusCode(), string(resp.Body()))
	}

	companies := make([]*data.Company, 0, 10000)
	now := time.Now()

	gjson.ParseBytes(resp.Body()).ForEach(func(_, value gjson.Result) bool {
		companies = append(companies, &data.Company{
			CIK:         strconv.FormatInt(value.Get("cik_str").Int(), 10),
			Ticker:      value.Get("ticker").String(),
			Title:       value.Get("title").String(),
			LastUpdated: now,
		})
		return true
	})

	log.Info().Int("Count", len(companies)).Msg("got companies from edgar registry")

	return companies, nil
}
