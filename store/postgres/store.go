// Copyright 2024 The Prbot Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package postgres implements core.Store against PostgreSQL with sqlx,
// the production counterpart to store/memory's test fake.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	lru "github.com/hashicorp/golang-lru"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/prbot/prbot/core"
)

// repoCacheSize bounds the read-through cache keyed by owner/name lookups,
// the hot path every webhook delivery takes.
const repoCacheSize = 1024

// Store is a PostgreSQL-backed core.Store.
type Store struct {
	db        *sqlx.DB
	repoCache *lru.Cache
}

// Open connects to dsn and wraps the connection in a Store. It does not run
// migrations; operators apply Schema with an external migration tool
// before pointing a process at the database.
func Open(dsn string, maxOpenConns int) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, core.Implementation(err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	cache, err := lru.New(repoCacheSize)
	if err != nil {
		return nil, core.Implementation(err)
	}
	return &Store{db: db, repoCache: cache}, nil
}

// HealthCheck verifies the connection pool can serve a query.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return core.Implementation(err)
	}
	return nil
}

func pqErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// isUniqueViolation reports whether err is a Postgres 23505 (unique_violation).
func isUniqueViolation(err error) bool {
	return pqErrorCode(err) == "23505"
}

// isForeignKeyViolation reports whether err is a Postgres 23503
// (foreign_key_violation), surfaced when a child row names a parent id that
// does not exist (e.g. a merge rule for a deleted repository).
func isForeignKeyViolation(err error) bool {
	return pqErrorCode(err) == "23503"
}

// classifyWrite maps a write-path error (insert/update) to a typed core
// error. Not-found mapping is the caller's job since only it knows which
// Unknown* constructor applies.
func classifyWrite(err error, entity string) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return core.ConflictError(entity, err)
	}
	if isForeignKeyViolation(err) {
		return core.InputError("%s references a row that does not exist: %v", entity, err)
	}
	return core.Implementation(err)
}

// isNoRows reports whether err is sql.ErrNoRows, sqlx's signal for "no
// matching row", letting callers translate it to the right Unknown* error.
func isNoRows(err error) bool {
	return err == sql.ErrNoRows
}

// requireRowsAffected turns a zero-rows-affected update/delete into
// notFoundErr, since Postgres silently no-ops an UPDATE/DELETE whose WHERE
// clause matches nothing.
func requireRowsAffected(res sql.Result, notFoundErr error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return core.Implementation(err)
	}
	if n == 0 {
		return notFoundErr
	}
	return nil
}

var _ core.Store = (*Store)(nil)
