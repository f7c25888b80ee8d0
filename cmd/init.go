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
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lician/licdata/db"
	"github.com/lician/licdata/edgar"
	"github.com/lician/licdata/healthcheck"
)

var initMonitor bool

type licdataConfig struct {
	Database struct {
		URL string `toml:"url"`
	} `toml:"database"`
	Edgar struct {
		UserAgent string  `toml:"user_agent"`
		RateLimit float64 `toml:"rate_limit"`
	} `toml:"edgar"`
	Eodhd struct {
		Token string `toml:"token"`
	} `toml:"eodhd"`
	Healthchecks struct {
		APIKey  string `toml:"apikey"`
		CheckID string `toml:"check_id"`
	} `toml:"healthchecks"`
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather configuration and setup the database schema",
	Run: func(cmd *cobra.Command, args []string) {
		config := licdataConfig{}
		config.Edgar.RateLimit = edgar.DefaultRateLimit

		groups := []*huh.Group{
			// Get details about the database
			huh.NewGroup(
				huh.NewInput().
					Title("Provide the DSN for connecting to your PostgreSQL database (postgres://[user[:password]@][netloc][:port][/dbname][?param1=value1&...])").
					Value(&config.Database.URL).
					Validate(func(dsn string) error {
						_, err := pgx.ParseConfig(dsn)
						return err
					}),
			),

			// Gather upstream API settings
			huh.NewGroup(
				huh.NewInput().
					Title("What user agent should be sent to SEC EDGAR? (e.g. Jane Doe jane@example.com)").
					Value(&config.Edgar.UserAgent).
					Validate(func(userAgent string) error {
						if userAgent == "" {
							return edgar.ErrUserAgentRequired
						}
						return nil
					}),

				huh.NewInput().
					Title("EODHD API token (leave blank to skip exchange symbol sync):").
					Value(&config.Eodhd.Token),
			),
		}

		if initMonitor {
			groups = append(groups, huh.NewGroup(
				huh.NewInput().
					Title("healthchecks.io API key:").
					Value(&config.Healthchecks.APIKey),
			))
		}

		form := huh.NewForm(groups...)
		if err := form.Run(); err != nil {
			log.Fatal().Err(err).Msg("error gathering settings")
		}

		log.Info().Msg("creating database tables")

		// run migration
		dbURL := strings.Replace(config.Database.URL, "postgres://", "pgx5://", -1)
		if err := db.Migrate(dbURL); err != nil {
			log.Fatal().Err(err).Msg("error running database migration")
		}

		log.Info().Msg("database tables created")

		if initMonitor {
			// the healthcheck client reads the management key from viper
			viper.Set("healthchecks.apikey", config.Healthchecks.APIKey)

			// checks run on a workday schedule with a randomized start so a
			// fleet of installs doesn't stampede EDGAR at the same minute
			minuteChoice := rand.Intn(12) * 5
			hourChoice := rand.Intn(9)
			schedule := fmt.Sprintf("%d %d * * 1-5", minuteChoice, hourChoice)

			checkName := "licdata edgar-facts sync"
			checkID, err := healthcheck.Create(healthcheck.Check{
				Name:     checkName,
				Slug:     slug.Make(checkName),
				Tags:     []string{"licdata", "edgar"},
				Schedule: schedule,
			})
			if err != nil {
				log.Fatal().Err(err).Msg("creating healthcheck failed")
			}

			config.Healthchecks.CheckID = checkID
			log.Info().Str("CheckID", checkID).Str("Schedule", schedule).Msg("healthcheck monitor created")
		}

		// save settings to config file
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("could not determine user home directory")
		}

		configFN := filepath.Join(home, ".licdata.toml")
		log.Info().Str("ConfigFile", configFN).Msg("Saving settings to config file")
		configData, err := toml.Marshal(config)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		if err := os.WriteFile(configFN, configData, 0644); err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		log.Info().Msg("licdata has been initialized")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initMonitor, "monitor", false, "create a healthchecks.io monitor for the sync schedule")
}
