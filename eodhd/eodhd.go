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
package eodhd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"

	"github.com/lician/licdata/data"
)

const exchangeSymbolURL = "https://eodhd.com/api/exchange-symbol-list"

var (
	ErrInvalidStatusCode = errors.New("invalid status code received")
	ErrTokenRequired     = errors.New("eodhd requires an api token")
)

// Client fetches exchange listings from EODHD
type Client struct {
	BaseURL string

	client *resty.Client
	token  string
}

func NewClient(token string) (*Client, error) {
	if token == "" {
		return nil, ErrTokenRequired
	}

	return &Client{
		BaseURL: exchangeSymbolURL,
		client:  resty.New(),
		token:   token,
	}, nil
}

// ExchangeSymbols fetches the symbol directory for an exchange, e.g. "US"
// or "LSE"
func (api *Client) ExchangeSymbols(ctx context.Context, exchange string) ([]*data.ExchangeSymbol, error) {
	symbolURL := fmt.Sprintf("%s/%s", api.BaseURL, exchange)

	resp, err := api.client.R().
		SetContext(ctx).
		SetQueryParam("api_token", api.token).
		SetQueryParam("fmt", "csv").
		Get(symbolURL)
	if err != nil {
		log.Error().Err(err).Str("URL", symbolURL).Msg("resty returned an error when querying the exchange symbol list")
		return nil, err
	}

	if resp.StatusCode() >= 300 {
		log.Error().Int("StatusCode", resp.StatusCode()).Str("URL", symbolURL).
			Msg("received an invalid status code when querying the exchange symbol list")
		return nil, fmt.Errorf("%w (%d): %s", ErrInvalidStatusCode, resp.StatusCode(), string(resp.Body()))
	}

	symbols := make([]*data.ExchangeSymbol, 0, 10000)
	if err := gocsv.UnmarshalBytes(resp.Body(), &symbols); err != nil {
		log.Error().Err(err).Str("Exchange", exchange).Msg("failed to unmarshal exchange symbol csv")
		return nil, err
	}

	now := time.Now()
	for _, symbol := range symbols {
		symbol.LastUpdated = now
		if symbol.Exchange == "" {
			symbol.Exchange = exchange
		}
	}

	log.Info().Int("Count", len(symbols)).Str("Exchange", exchange).Msg("got symbols from eodhd")

	return symbols, nil
}
