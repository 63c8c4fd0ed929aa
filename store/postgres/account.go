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

package postgres

import (
	"context"

	"github.com/prbot/prbot/core"
)

type accountRow struct {
	Username  string `db:"username"`
	IsAdmin   bool   `db:"is_admin"`
	CreatedAt any    `db:"created_at"`
}

func (r accountRow) toCore() *core.Account {
	return &core.Account{Username: r.Username, IsAdmin: r.IsAdmin}
}

func (s *Store) CreateAccount(ctx context.Context, a *core.Account) (*core.Account, error) {
	const q = `INSERT INTO account (username, is_admin) VALUES ($1, $2)`
	if _, err := s.db.ExecContext(ctx, q, a.Username, a.IsAdmin); err != nil {
		return nil, classifyWrite(err, "account")
	}
	out := *a
	return &out, nil
}

func (s *Store) GetAccount(ctx context.Context, username string) (*core.Account, error) {
	var row accountRow
	const q = `SELECT * FROM account WHERE username = $1`
	if err := s.db.GetContext(ctx, &row, q, username); err != nil {
		if isNoRows(err) {
			return nil, core.UnknownAccount(username)
		}
		return nil, core.Implementation(err)
	}
	return row.toCore(), nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]*core.Account, error) {
	var rows []accountRow
	const q = `SELECT * FROM account ORDER BY username`
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, core.Implementation(err)
	}
	out := make([]*core.Account, len(rows))
	for i, row := range rows {
		out[i] = row.toCore()
	}
	return out, nil
}

func (s *Store) ListAdminAccounts(ctx context.Context) ([]*core.Account, error) {
	var rows []accountRow
	const q = `SELECT * FROM account WHERE is_admin ORDER BY username`
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, core.Implementation(err)
	}
	out := make([]*core.Account, len(rows))
	for i, row := range rows {
		out[i] = row.toCore()
	}
	return out, nil
}

func (s *Store) SetAccountIsAdmin(ctx context.Context, username string, isAdmin bool) error {
	const q = `UPDATE account SET is_admin = $1 WHERE username = $2`
	res, err := s.db.ExecContext(ctx, q, isAdmin, username)
	if err != nil {
		return core.Implementation(err)
	}
	return requireRowsAffected(res, core.UnknownAccount(username))
}

func (s *Store) DeleteAccount(ctx context.Context, username string) error {
	const q = `DELETE FROM account WHERE username = $1`
	res, err := s.db.ExecContext(ctx, q, username)
	if err != nil {
		return core.Implementation(err)
	}
	return requireRowsAffected(res, core.UnknownAccount(username))
}
