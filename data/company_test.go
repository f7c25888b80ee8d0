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
package data_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock/v3"

	"github.com/lician/licdata/data"
)

var _ = Describe("Company", func() {
	var (
		ctx  context.Context
		mock pgxmock.PgxPoolIface
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		mock, err = pgxmock.NewPool()
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		mock.Close()
	})

	Describe("PaddedCIK", func() {
		It("zero pads short identifiers to 10 characters", func() {
			company := &data.Company{CIK: "320193"}
			Expect(company.PaddedCIK()).To(Equal("0000320193"))
		})

		It("leaves 10 character identifiers untouched", func() {
			company := &data.Company{CIK: "1234567890"}
			Expect(company.PaddedCIK()).To(Equal("1234567890"))
		})
	})

	Describe("SaveDB", func() {
		It("upserts the company row inside a transaction", func() {
			now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
			company := &data.Company{CIK: "320193", Ticker: "AAPL", Title: "Apple Inc.", LastUpdated: now}

			mock.ExpectBegin()
			mock.ExpectExec("INSERT INTO companies").
				WithArgs("320193", "AAPL", "Apple Inc.", now).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
			mock.ExpectCommit()

			Expect(company.SaveDB(ctx, "companies", mock)).To(Succeed())
			Expect(mock.ExpectationsWereMet()).To(Succeed())
		})

		It("rolls back and returns the error when the upsert fails", func() {
			company := &data.Company{CIK: "320193", Ticker: "AAPL"}

			mock.ExpectBegin()
			mock.ExpectExec("INSERT INTO companies").
				WithArgs("320193", "AAPL", "", pgxmock.AnyArg()).
				WillReturnError(errors.New("connection reset"))
			mock.ExpectRollback()

			Expect(company.SaveDB(ctx, "companies", mock)).To(MatchError("connection reset"))
			Expect(mock.ExpectationsWereMet()).To(Succeed())
		})
	})
})
