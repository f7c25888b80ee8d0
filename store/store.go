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
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Table names the pipeline reads and writes
const (
	CompaniesTable    = "companies"
	FundamentalsTable = "fundamentals"
	SymbolsTable      = "exchange_symbols"
	SyncRunsTable     = "sync_runs"
	SyncProgressTable = "sync_progress"
)

// Conn is the slice of pgxpool.Pool the store uses. pgxmock pools also
// implement it, which keeps the query layer testable without a live database.
type Conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

type Store struct {
	DBUrl string

	Pool Conn
}

// NewFromDB connects to the configured database and verifies the connection
// is usable before handing the store to callers.
func NewFromDB(ctx context.Context, dbURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{
		DBUrl: dbURL,
		Pool:  pool,
	}, nil
}

// Close the database pool
func (myStore *Store) Close() {
	if myStore.Pool != nil {
		myStore.Pool.Close()
	}
}
