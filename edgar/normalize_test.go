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
package edgar_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lician/licdata/data"
	"github.com/lician/licdata/edgar"
)

// usdDoc builds a facts document with every concept reported in USD
func usdDoc(concepts map[string][]edgar.Observation) *edgar.FactsDocument {
	gaap := make(map[string]edgar.Concept, len(concepts))
	for tag, observations := range concepts {
		gaap[tag] = edgar.Concept{
			Label: tag,
			Units: map[string][]edgar.Observation{"USD": observations},
		}
	}

	return &edgar.FactsDocument{
		CIK:        320193,
		EntityName: "Apple Inc.",
		Facts:      map[string]map[string]edgar.Concept{"us-gaap": gaap},
	}
}

var _ = Describe("Normalize", func() {
	var company *data.Company

	BeforeEach(func() {
		company = &data.Company{CIK: "320193", Ticker: "AAPL", Title: "Apple Inc."}
	})

	It("seeds one record per revenue period", func() {
		doc := usdDoc(map[string][]edgar.Observation{
			"Revenues": {
				{End: "2023-09-30", Value: 383285000000, FiscalYear: 2023, FiscalPeriod: "FY", Form: "10-K"},
				{End: "2023-07-01", Value: 81797000000, FiscalYear: 2023, FiscalPeriod: "Q3", Form: "10-Q"},
			},
		})

		fundamentals := edgar.Normalize(company, doc)
		Expect(fundamentals).To(HaveLen(2))

		Expect(fundamentals[0].CIK).To(Equal("320193"))
		Expect(fundamentals[0].Ticker).To(Equal("AAPL"))
		Expect(fundamentals[0].ReportPeriod).To(Equal(time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC)))
		Expect(fundamentals[0].Period).To(Equal(data.PeriodAnnual))
		Expect(fundamentals[0].FiscalYear).To(Equal(2023))
		Expect(fundamentals[0].FiscalPeriod).To(Equal("FY"))
		Expect(fundamentals[0].Currency).To(Equal("USD"))
		Expect(fundamentals[0].Revenue).To(Equal(383285000000.0))
		Expect(fundamentals[0].Source).To(Equal(data.SourceEdgar))

		Expect(fundamentals[1].Period).To(Equal(data.PeriodQuarterly))
		Expect(fundamentals[1].Revenue).To(Equal(81797000000.0))
	})

	It("falls back through the revenue tag chain", func() {
		doc := usdDoc(map[string][]edgar.Observation{
			"RevenueFromContractWithCustomerExcludingAssessedTax": {
				{End: "2023-09-30", Value: 383285000000, Form: "10-K"},
			},
		})

		fundamentals := edgar.Normalize(company, doc)
		Expect(fundamentals).To(HaveLen(1))
		Expect(fundamentals[0].Revenue).To(Equal(383285000000.0))
	})

	It("prefers the first tag of the chain when several are reported", func() {
		doc := usdDoc(map[string][]edgar.Observation{
			"Revenues": {
				{End: "2023-09-30", Value: 100, Form: "10-K"},
			},
			"RevenueFromContractWithCustomerExcludingAssessedTax": {
				{End: "2023-09-30", Value: 200, Form: "10-K"},
			},
		})

		fundamentals := edgar.Normalize(company, doc)
		Expect(fundamentals).To(HaveLen(1))
		Expect(fundamentals[0].Revenue).To(Equal(100.0))
	})

	It("skips a chain tag whose unit lists are all empty", func() {
		doc := usdDoc(map[string][]edgar.Observation{
			"Revenues": {},
			"SalesRevenueNet": {
				{End: "2023-09-30", Value: 300, Form: "10-K"},
			},
		})

		fundamentals := edgar.Normalize(company, doc)
		Expect(fundamentals).To(HaveLen(1))
		Expect(fundamentals[0].Revenue).To(Equal(300.0))
	})

	It("attaches secondary concepts by period key", func() {
		doc := usdDoc(map[string][]edgar.Observation{
			"Revenues": {
				{End: "2023-09-30", Value: 383285000000, Form: "10-K"},
			},
			"NetIncomeLoss": {
				{End: "2023-09-30", Value: 96995000000, Form: "10-K"},
			},
			"GrossProfit": {
				{End: "2023-09-30", Value: 169148000000, Form: "10-K"},
			},
			"OperatingIncomeLoss": {
				{End: "2023-09-30", Value: 114301000000, Form: "10-K"},
			},
			"EarningsPerShareBasic": {
				{End: "2023-09-30", Value: 6.16, Form: "10-K"},
			},
			"EarningsPerShareDiluted": {
				{End: "2023-09-30", Value: 6.13, Form: "10-K"},
			},
		})

		fundamentals := edgar.Normalize(company, doc)
		Expect(fundamentals).To(HaveLen(1))

		fundamental := fundamentals[0]
		Expect(fundamental.NetIncome).To(HaveValue(Equal(96995000000.0)))
		Expect(fundamental.GrossProfit).To(HaveValue(Equal(169148000000.0)))
		Expect(fundamental.OperatingIncome).To(HaveValue(Equal(114301000000.0)))
		Expect(fundamental.EPS).To(HaveValue(Equal(6.16)))
		Expect(fundamental.EPSDiluted).To(HaveValue(Equal(6.13)))
	})

	It("drops a secondary value whose period has no revenue record", func() {
		// annual revenue plus a quarterly net income sharing the end date:
		// the quarterly key was never seeded, so the net income vanishes
		doc := usdDoc(map[string][]edgar.Observation{
			"Revenues": {
				{End: "2023-09-30", Value: 383285000000, FiscalYear: 2023, FiscalPeriod: "FY", Form: "10-K"},
			},
			"NetIncomeLoss": {
				{End: "2023-09-30", Value: 22956000000, FiscalYear: 2023, FiscalPeriod: "Q4", Form: "10-Q"},
			},
		})

		fundamentals := edgar.Normalize(company, doc)
		Expect(fundamentals).To(HaveLen(1))
		Expect(fundamentals[0].Period).To(Equal(data.PeriodAnnual))
		Expect(fundamentals[0].Revenue).To(Equal(383285000000.0))
		Expect(fundamentals[0].NetIncome).To(BeNil())
	})

	It("produces nothing when only net income is reported", func() {
		// periods cannot be seeded by a secondary concept; this locks in the
		// revenue-first behavior
		doc := usdDoc(map[string][]edgar.Observation{
			"NetIncomeLoss": {
				{End: "2023-09-30", Value: 96995000000, Form: "10-K"},
			},
		})

		Expect(edgar.Normalize(company, doc)).To(BeEmpty())
	})

	It("returns an empty list when neither revenue nor net income is reported", func() {
		doc := usdDoc(map[string][]edgar.Observation{
			"GrossProfit": {
				{End: "2023-09-30", Value: 169148000000, Form: "10-K"},
			},
		})

		Expect(edgar.Normalize(company, doc)).To(BeEmpty())
	})

	It("ignores observations from forms other than 10-K and 10-Q", func() {
		doc := usdDoc(map[string][]edgar.Observation{
			"Revenues": {
				{End: "2023-09-30", Value: 383285000000, Form: "8-K"},
				{End: "2023-09-30", Value: 383285000000, Form: "10-K/A"},
				{End: "2023-07-01", Value: 81797000000, Form: "10-Q"},
			},
		})

		fundamentals := edgar.Normalize(company, doc)
		Expect(fundamentals).To(HaveLen(1))
		Expect(fundamentals[0].Period).To(Equal(data.PeriodQuarterly))
	})

	It("keeps the first observation when a period repeats", func() {
		doc := usdDoc(map[string][]edgar.Observation{
			"Revenues": {
				{End: "2023-09-30", Value: 383285000000, FiscalYear: 2023, Form: "10-K"},
				{End: "2023-09-30", Value: 383285000001, FiscalYear: 2024, Form: "10-K"},
			},
		})

		fundamentals := edgar.Normalize(company, doc)
		Expect(fundamentals).To(HaveLen(1))
		Expect(fundamentals[0].Revenue).To(Equal(383285000000.0))
		Expect(fundamentals[0].FiscalYear).To(Equal(2023))
	})

	It("preserves discovery order across periods", func() {
		doc := usdDoc(map[string][]edgar.Observation{
			"Revenues": {
				{End: "2022-09-24", Value: 394328000000, Form: "10-K"},
				{End: "2021-09-25", Value: 365817000000, Form: "10-K"},
				{End: "2023-09-30", Value: 383285000000, Form: "10-K"},
			},
		})

		fundamentals := edgar.Normalize(company, doc)
		Expect(fundamentals).To(HaveLen(3))
		Expect(fundamentals[0].ReportPeriod.Format("2006-01-02")).To(Equal("2022-09-24"))
		Expect(fundamentals[1].ReportPeriod.Format("2006-01-02")).To(Equal("2021-09-25"))
		Expect(fundamentals[2].ReportPeriod.Format("2006-01-02")).To(Equal("2023-09-30"))
	})

	It("skips revenue observations with unparseable end dates", func() {
		doc := usdDoc(map[string][]edgar.Observation{
			"Revenues": {
				{End: "not-a-date", Value: 1, Form: "10-K"},
				{End: "2023-09-30", Value: 383285000000, Form: "10-K"},
			},
		})

		fundamentals := edgar.Normalize(company, doc)
		Expect(fundamentals).To(HaveLen(1))
		Expect(fundamentals[0].Revenue).To(Equal(383285000000.0))
	})

	It("records the unit revenue was reported in", func() {
		doc := &edgar.FactsDocument{
			CIK: 1318605,
			Facts: map[string]map[string]edgar.Concept{
				"us-gaap": {
					"Revenues": {
						Units: map[string][]edgar.Observation{
							"EUR": {
								{End: "2023-12-31", Value: 12000000000, Form: "10-K"},
							},
						},
					},
				},
			},
		}

		fundamentals := edgar.Normalize(company, doc)
		Expect(fundamentals).To(HaveLen(1))
		Expect(fundamentals[0].Currency).To(Equal("EUR"))
	})

	It("returns nothing for a nil document", func() {
		Expect(edgar.Normalize(company, nil)).To(BeNil())
	})

	It("returns nothing for a document with no us-gaap facts", func() {
		doc := &edgar.FactsDocument{
			CIK:   320193,
			Facts: map[string]map[string]edgar.Concept{"dei": {}},
		}

		Expect(edgar.Normalize(company, doc)).To(BeEmpty())
	})
})
