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
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lician/licdata/edgar"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "licdata",
	Short: "licdata syncs company fundamentals from SEC EDGAR into PostgreSQL",
	Long: `licdata is a command line utility that builds and maintains a database
of company fundamentals reported to the SEC. It walks the EDGAR company
registry, fetches each filer's XBRL fact document, normalizes the reported
concepts into one row per fiscal period, and upserts those rows into
PostgreSQL.

Data sources:

	* [SEC EDGAR](https://www.sec.gov/search-filings/edgar-application-programming-interfaces)
	* [EODHD](https://eodhd.com) exchange symbol directories

Filers report the same economic quantities under different taxonomy tags and
on different schedules, which makes raw EDGAR documents awkward to query.
licdata solves this by flattening each document against a fixed set of
concept fallback chains so downstream consumers see a single stable schema.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.licdata.toml)")
	rootCmd.PersistentFlags().String("database-url", "", "database connection string")
	if err := viper.BindPFlag("database.url", rootCmd.PersistentFlags().Lookup("database-url")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for database-url failed")
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".licdata" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".licdata")
	}

	for key, env := range map[string]string{
		"database.url":          "DATABASE_URL",
		"edgar.user_agent":      "EDGAR_USER_AGENT",
		"edgar.rate_limit":      "EDGAR_RATE_LIMIT",
		"eodhd.token":           "EODHD_TOKEN",
		"healthchecks.check_id": "HEALTHCHECKS_CHECK_ID",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Panic().Err(err).Str("Key", key).Msg("BindEnv failed")
		}
	}

	viper.SetDefault("edgar.rate_limit", edgar.DefaultRateLimit)

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}
