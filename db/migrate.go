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
package db

import (
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*
var migrationFS embed.FS

// Migrate brings the schema up to the latest migration. Running against an
// already current database is not an error.
func Migrate(databaseURL string) error {
	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return err
	}

	migration, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return err
	}

	defer func() {
		srcErr, dbErr := migration.Close()
		if srcErr != nil {
			log.Error().Err(srcErr).Msg("could not close migration source")
		}
		if dbErr != nil {
			log.Error().Err(dbErr).Msg("could not close migration database handle")
		}
	}()

	if err := migration.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("database schema is already current")
			return nil
		}
		return err
	}

	version, dirty, err := migration.Version()
	if err != nil {
		return err
	}

	log.Info().Uint("SchemaVersion", version).Bool("Dirty", dirty).Msg("database schema migrated")
	return nil
}
