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
	"fmt"

	"github.com/prbot/prbot/core"
)

type repositoryRow struct {
	ID                          uint64 `db:"id"`
	Owner                       string `db:"owner"`
	Name                        string `db:"name"`
	ManualInteraction           bool   `db:"manual_interaction"`
	PRTitleValidationRegex      string `db:"pr_title_validation_regex"`
	DefaultStrategy             string `db:"default_strategy"`
	DefaultNeededReviewersCount uint64 `db:"default_needed_reviewers_count"`
	DefaultAutomerge            bool   `db:"default_automerge"`
	DefaultEnableQA             bool   `db:"default_enable_qa"`
	DefaultEnableChecks         bool   `db:"default_enable_checks"`
	CreatedAt                   any    `db:"created_at"`
	UpdatedAt                   any    `db:"updated_at"`
}

func (r repositoryRow) toCore() *core.Repository {
	return &core.Repository{
		ID:                          r.ID,
		Owner:                       r.Owner,
		Name:                        r.Name,
		ManualInteraction:           r.ManualInteraction,
		PRTitleValidationRegex:      r.PRTitleValidationRegex,
		DefaultStrategy:             core.MergeStrategy(r.DefaultStrategy),
		DefaultNeededReviewersCount: r.DefaultNeededReviewersCount,
		DefaultAutomerge:            r.DefaultAutomerge,
		DefaultEnableQA:             r.DefaultEnableQA,
		DefaultEnableChecks:         r.DefaultEnableChecks,
	}
}

func (s *Store) invalidateRepo(owner, name string) {
	s.repoCache.Remove(fmt.Sprintf("%s/%s", owner, name))
}

func (s *Store) CreateRepository(ctx context.Context, r *core.Repository) (*core.Repository, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO repository (
			owner, name, manual_interaction, pr_title_validation_regex,
			default_strategy, default_needed_reviewers_count,
			default_automerge, default_enable_qa, default_enable_checks
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	var id uint64
	var createdAt, updatedAt any
	row := s.db.QueryRowxContext(ctx, q, r.Owner, r.Name, r.ManualInteraction, r.PRTitleValidationRegex,
		string(r.DefaultStrategy), r.DefaultNeededReviewersCount, r.DefaultAutomerge, r.DefaultEnableQA, r.DefaultEnableChecks)
	if err := row.Scan(&id, &createdAt, &updatedAt); err != nil {
		return nil, classifyWrite(err, "repository")
	}
	out := *r
	out.ID = id
	return &out, nil
}

func (s *Store) GetRepository(ctx context.Context, owner, name string) (*core.Repository, error) {
	key := fmt.Sprintf("%s/%s", owner, name)
	if v, ok := s.repoCache.Get(key); ok {
		return v.(*core.Repository), nil
	}
	var row repositoryRow
	const q = `SELECT * FROM repository WHERE owner = $1 AND name = $2`
	if err := s.db.GetContext(ctx, &row, q, owner, name); err != nil {
		if isNoRows(err) {
			return nil, core.UnknownRepository(owner, name)
		}
		return nil, core.Implementation(err)
	}
	out := row.toCore()
	s.repoCache.Add(key, out)
	return out, nil
}

func (s *Store) GetRepositoryByID(ctx context.Context, id uint64) (*core.Repository, error) {
	var row repositoryRow
	const q = `SELECT * FROM repository WHERE id = $1`
	if err := s.db.GetContext(ctx, &row, q, id); err != nil {
		if isNoRows(err) {
			return nil, core.UnknownRepository("", fmt.Sprintf("#%d", id))
		}
		return nil, core.Implementation(err)
	}
	return row.toCore(), nil
}

func (s *Store) ListRepositories(ctx context.Context) ([]*core.Repository, error) {
	var rows []repositoryRow
	const q = `SELECT * FROM repository ORDER BY owner, name`
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, core.Implementation(err)
	}
	out := make([]*core.Repository, len(rows))
	for i, row := range rows {
		out[i] = row.toCore()
	}
	return out, nil
}

func (s *Store) UpdateRepository(ctx context.Context, r *core.Repository) error {
	if err := r.Validate(); err != nil {
		return err
	}
	const q = `
		UPDATE repository SET
			owner = $1, name = $2, manual_interaction = $3, pr_title_validation_regex = $4,
			default_strategy = $5, default_needed_reviewers_count = $6,
			default_automerge = $7, default_enable_qa = $8, default_enable_checks = $9,
			updated_at = now()
		WHERE id = $10`
	res, err := s.db.ExecContext(ctx, q, r.Owner, r.Name, r.ManualInteraction, r.PRTitleValidationRegex,
		string(r.DefaultStrategy), r.DefaultNeededReviewersCount, r.DefaultAutomerge, r.DefaultEnableQA, r.DefaultEnableChecks, r.ID)
	if err != nil {
		return classifyWrite(err, "repository")
	}
	s.invalidateRepo(r.Owner, r.Name)
	return requireRowsAffected(res, core.UnknownRepository(r.Owner, r.Name))
}

func (s *Store) DeleteRepository(ctx context.Context, id uint64) error {
	repo, err := s.GetRepositoryByID(ctx, id)
	if err != nil {
		return err
	}
	const q = `DELETE FROM repository WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return core.Implementation(err)
	}
	s.invalidateRepo(repo.Owner, repo.Name)
	return requireRowsAffected(res, core.UnknownRepository(repo.Owner, repo.Name))
}

func (s *Store) setRepositoryField(ctx context.Context, id uint64, column string, value any) error {
	q := fmt.Sprintf(`UPDATE repository SET %s = $1, updated_at = now() WHERE id = $2`, column)
	res, err := s.db.ExecContext(ctx, q, value, id)
	if err != nil {
		return classifyWrite(err, "repository")
	}
	if repo, gerr := s.GetRepositoryByID(ctx, id); gerr == nil {
		s.invalidateRepo(repo.Owner, repo.Name)
	}
	return requireRowsAffected(res, core.UnknownRepository("", fmt.Sprintf("#%d", id)))
}

func (s *Store) SetRepositoryManualInteraction(ctx context.Context, id uint64, v bool) error {
	return s.setRepositoryField(ctx, id, "manual_interaction", v)
}

func (s *Store) SetRepositoryPRTitleRegex(ctx context.Context, id uint64, regex string) error {
	return s.setRepositoryField(ctx, id, "pr_title_validation_regex", regex)
}

func (s *Store) SetRepositoryDefaultStrategy(ctx context.Context, id uint64, strategy core.MergeStrategy) error {
	return s.setRepositoryField(ctx, id, "default_strategy", string(strategy))
}

func (s *Store) SetRepositoryDefaultNeededReviewers(ctx context.Context, id uint64, n uint64) error {
	return s.setRepositoryField(ctx, id, "default_needed_reviewers_count", n)
}

func (s *Store) SetRepositoryDefaultAutomerge(ctx context.Context, id uint64, v bool) error {
	return s.setRepositoryField(ctx, id, "default_automerge", v)
}

func (s *Store) SetRepositoryDefaultEnableQA(ctx context.Context, id uint64, v bool) error {
	return s.setRepositoryField(ctx, id, "default_enable_qa", v)
}

func (s *Store) SetRepositoryDefaultEnableChecks(ctx context.Context, id uint64, v bool) error {
	return s.setRepositoryField(ctx, id, "default_enable_checks", v)
}

func (s *Store) GetOrCreateRepository(ctx context.Context, owner, name string) (*core.Repository, error) {
	if r, err := s.GetRepository(ctx, owner, name); err == nil {
		return r, nil
	}
	return s.CreateRepository(ctx, &core.Repository{
		Owner:           owner,
		Name:            name,
		DefaultStrategy: core.StrategyMerge,
	})
}
