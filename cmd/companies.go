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
package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lician/licdata/edgar"
	"github.com/lician/licdata/store"
)

// companiesCmd represents the companies command
var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Sync the SEC company registry into the companies table",
	Long: `The companies sub-command fetches the full EDGAR company registry and
upserts one row per company so downstream consumers can join ticker and title
without refetching EDGAR.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		myStore, err := store.NewFromDB(ctx, viper.GetString("database.url"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}
		defer myStore.Close()

		client, err := edgar.NewClient(viper.GetString("edgar.user_agent"), viper.GetFloat64("edgar.rate_limit"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not create edgar client")
		}

		companies, err := client.Companies(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not fetch company registry")
		}

		saved := 0
		for _, company := range companies {
			if err := company.SaveDB(ctx, store.CompaniesTable, myStore.Pool); err != nil {
				log.Error().Err(err).Str("CIK", company.CIK).Str("Ticker", company.Ticker).
					Msg("could not save company")
				continue
			}
			saved++
		}

		log.Info().Int("NumCompanies", len(companies)).Int("Saved", saved).Msg("company registry synced")
	},
}

func init() {
	rootCmd.AddCommand(companiesCmd)
}
