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
package eodhd_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lician/licdata/eodhd"
)

const symbolCSV = `Code,Name,Country,Exchange,Currency,Type,Isin
AAPL,Apple Inc,USA,NASDAQ,USD,Common Stock,US0378331005
GM,General Motors Company,USA,NYSE,USD,Common Stock,US37045V1008
VTSAX,Vanguard Total Stock Market Index Fund,USA,,USD,Fund,
`

var _ = Describe("NewClient", func() {
	It("rejects an empty token", func() {
		_, err := eodhd.NewClient("")
		Expect(err).To(MatchError(eodhd.ErrTokenRequired))
	})
})

var _ = Describe("ExchangeSymbols", func() {
	var (
		server *httptest.Server
		client *eodhd.Client
		path   string
		query  url.Values
		status int
		body   string
	)

	BeforeEach(func() {
		status = http.StatusOK
		body = symbolCSV

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			query = r.URL.Query()
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))

		var err error
		client, err = eodhd.NewClient("demo-token")
		Expect(err).To(BeNil())
		client.BaseURL = server.URL
	})

	AfterEach(func() {
		server.Close()
	})

	It("requests the exchange directory as csv", func() {
		_, err := client.ExchangeSymbols(context.Background(), "US")
		Expect(err).To(BeNil())

		Expect(path).To(Equal("/US"))
		Expect(query.Get("api_token")).To(Equal("demo-token"))
		Expect(query.Get("fmt")).To(Equal("csv"))
	})

	It("parses the symbol listing", func() {
		symbols, err := client.ExchangeSymbols(context.Background(), "US")
		Expect(err).To(BeNil())
		Expect(symbols).To(HaveLen(3))

		Expect(symbols[0].Code).To(Equal("AAPL"))
		Expect(symbols[0].Name).To(Equal("Apple Inc"))
		Expect(symbols[0].Country).To(Equal("USA"))
		Expect(symbols[0].Exchange).To(Equal("NASDAQ"))
		Expect(symbols[0].Currency).To(Equal("USD"))
		Expect(symbols[0].SecurityType).To(Equal("Common Stock"))
		Expect(symbols[0].Isin).To(Equal("US0378331005"))
		Expect(symbols[0].LastUpdated).ToNot(BeZero())
	})

	It("fills a blank exchange column with the requested exchange", func() {
		symbols, err := client.ExchangeSymbols(context.Background(), "US")
		Expect(err).To(BeNil())
		Expect(symbols[2].Code).To(Equal("VTSAX"))
		Expect(symbols[2].Exchange).To(Equal("US"))
	})

	It("returns a wrapped error on a non-2xx status", func() {
		status = http.StatusPaymentRequired
		body = "subscription expired"

		_, err := client.ExchangeSymbols(context.Background(), "US")
		Expect(err).To(MatchError(eodhd.ErrInvalidStatusCode))
		Expect(err.Error()).To(ContainSubstring("(402)"))
		Expect(err.Error()).To(ContainSubstring("subscription expired"))
	})
})
