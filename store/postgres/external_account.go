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

type externalAccountRow struct {
	Username   string `db:"username"`
	PublicKey  string `db:"public_key"`
	PrivateKey string `db:"private_key"`
	CreatedAt  any    `db:"created_at"`
}

func (r externalAccountRow) toCore() *core.ExternalAccount {
	return &core.ExternalAccount{Username: r.Username, PublicKey: r.PublicKey, PrivateKey: r.PrivateKey}
}

func (s *Store) CreateExternalAccount(ctx context.Context, a *core.ExternalAccount) (*core.ExternalAccount, error) {
	const q = `INSERT INTO external_account (username, public_key, private_key) VALUES ($1, $2, $3)`
	if _, err := s.db.ExecContext(ctx, q, a.Username, a.PublicKey, a.PrivateKey); err != nil {
		return nil, classifyWrite(err, "external account")
	}
	out := *a
	return &out, nil
}

func (s *Store) GetExternalAccount(ctx context.Context, username string) (*core.ExternalAccount, error) {
	var row externalAccountRow
	const q = `SELECT * FROM external_account WHERE username = $1`
	if err := s.db.GetContext(ctx, &row, q, username); err != nil {
		if isNoRows(err) {
			return nil, core.UnknownExternalAccount(username)
		}
		return nil, core.Implementation(err)
	}
	return row.toCore(), nil
}

func (s *Store) ListExternalAccounts(ctx context.Context) ([]*core.ExternalAccount, error) {
	var rows []externalAccountRow
	const q = `SELECT * FROM external_account ORDER BY username`
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, core.Implementation(err)
	}
	out := make([]*core.ExternalAccount, len(rows))
	for i, row := range rows {
		out[i] = row.toCore()
	}
	return out, nil
}

func (s *Store) DeleteExternalAccount(ctx context.Context, username string) error {
	const q = `DELETE FROM external_account WHERE username = $1`
	res, err := s.db.ExecContext(ctx, q, username)
	if err != nil {
		return core.Implementation(err)
	}
	return requireRowsAffected(res, core.UnknownExternalAccount(username))
}

func (s *Store) AddExternalAccountRight(ctx context.Context, username string, repositoryID uint64) error {
	const q = `
		INSERT INTO external_account_right (username, repository_id)
		VALUES ($1, $2)
		ON CONFLICT (username, repository_id) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, q, username, repositoryID); err != nil {
		return classifyWrite(err, "external account right")
	}
	return nil
}

func (s *Store) RemoveExternalAccountRight(ctx context.Context, username string, repositoryID uint64) error {
	const q = `DELETE FROM external_account_right WHERE username = $1 AND repository_id = $2`
	if _, err := s.db.ExecContext(ctx, q, username, repositoryID); err != nil {
		return core.Implementation(err)
	}
	return nil
}

func (s *Store) ListExternalAccountRights(ctx context.Context, username string) ([]*core.ExternalAccountRight, error) {
	var repositoryIDs []uint64
	const q = `SELECT repository_id FROM external_account_right WHERE username = $1 ORDER BY repository_id`
	if err := s.db.SelectContext(ctx, &repositoryIDs, q, username); err != nil {
		return nil, core.Implementation(err)
	}
	out := make([]*core.ExternalAccountRight, len(repositoryIDs))
	for i, id := range repositoryIDs {
		out[i] = &core.ExternalAccountRight{Username: username, RepositoryID: id}
	}
	return out, nil
}

func (s *Store) HasExternalAccountRight(ctx context.Context, username string, repositoryID uint64) (bool, error) {
	var exists bool
	const q = `SELECT EXISTS(SELECT 1 FROM external_account_right WHERE username = $1 AND repository_id = $2)`
	if err := s.db.GetContext(ctx, &exists, q, username, repositoryID); err != nil {
		return false, core.Implementation(err)
	}
	return exists, nil
}
