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

	"github.com/lician/licdata/eodhd"
	"github.com/lician/licdata/store"
)

var symbolExchanges []string

// symbolsCmd represents the symbols command
var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "Sync exchange symbol directories from EODHD",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		myStore, err := store.NewFromDB(ctx, viper.GetString("database.url"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}
		defer myStore.Close()

		client, err := eodhd.NewClient(viper.GetString("eodhd.token"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not create eodhd client")
		}

		for _, exchange := range symbolExchanges {
			symbols, err := client.ExchangeSymbols(ctx, exchange)
			if err != nil {
				log.Error().Err(err).Str("Exchange", exchange).Msg("could not fetch exchange symbols")
				continue
			}

			saved := 0
			for _, symbol := range symbols {
				if err := symbol.SaveDB(ctx, store.SymbolsTable, myStore.Pool); err != nil {
					log.Error().Err(err).Str("Code", symbol.Code).Str("Exchange", exchange).
						Msg("could not save symbol")
					continue
				}
				saved++
			}

			log.Info().Str("Exchange", exchange).Int("NumSymbols", len(symbols)).Int("Saved", saved).
				Msg("exchange symbols synced")
		}
	},
}

func init() {
	rootCmd.AddCommand(symbolsCmd)

	symbolsCmd.Flags().StringSliceVar(&symbolExchanges, "exchange", []string{"US"}, "exchange codes to sync")
}
