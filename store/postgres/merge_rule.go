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

type mergeRuleRow struct {
	ID           uint64 `db:"id"`
	RepositoryID uint64 `db:"repository_id"`
	BaseBranch   string `db:"base_branch"`
	HeadBranch   string `db:"head_branch"`
	Strategy     string `db:"strategy"`
	CreatedAt    any    `db:"created_at"`
}

func (r mergeRuleRow) toCore() *core.MergeRule {
	return &core.MergeRule{
		ID:           r.ID,
		RepositoryID: r.RepositoryID,
		BaseBranch:   core.RuleBranch{Name: r.BaseBranch},
		HeadBranch:   core.RuleBranch{Name: r.HeadBranch},
		Strategy:     core.MergeStrategy(r.Strategy),
	}
}

func (s *Store) CreateMergeRule(ctx context.Context, r *core.MergeRule) (*core.MergeRule, error) {
	const q = `
		INSERT INTO merge_rule (repository_id, base_branch, head_branch, strategy)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	var id uint64
	row := s.db.QueryRowxContext(ctx, q, r.RepositoryID, r.BaseBranch.Name, r.HeadBranch.Name, string(r.Strategy))
	if err := row.Scan(&id); err != nil {
		return nil, classifyWrite(err, "merge rule")
	}
	out := *r
	out.ID = id
	return &out, nil
}

func (s *Store) GetMergeRule(ctx context.Context, repositoryID uint64, base, head core.RuleBranch) (*core.MergeRule, error) {
	var row mergeRuleRow
	const q = `SELECT * FROM merge_rule WHERE repository_id = $1 AND base_branch = $2 AND head_branch = $3`
	if err := s.db.GetContext(ctx, &row, q, repositoryID, base.Name, head.Name); err != nil {
		if isNoRows(err) {
			return nil, core.UnknownMergeRule(base, head)
		}
		return nil, core.Implementation(err)
	}
	return row.toCore(), nil
}

func (s *Store) ListMergeRulesInRepository(ctx context.Context, repositoryID uint64) ([]*core.MergeRule, error) {
	var rows []mergeRuleRow
	const q = `SELECT * FROM merge_rule WHERE repository_id = $1 ORDER BY id`
	if err := s.db.SelectContext(ctx, &rows, q, repositoryID); err != nil {
		return nil, core.Implementation(err)
	}
	out := make([]*core.MergeRule, len(rows))
	for i, row := range rows {
		out[i] = row.toCore()
	}
	return out, nil
}

func (s *Store) UpdateMergeRule(ctx context.Context, r *core.MergeRule) error {
	const q = `UPDATE merge_rule SET strategy = $1 WHERE id = $2`
	res, err := s.db.ExecContext(ctx, q, string(r.Strategy), r.ID)
	if err != nil {
		return classifyWrite(err, "merge rule")
	}
	return requireRowsAffected(res, core.UnknownMergeRule(r.BaseBranch, r.HeadBranch))
}

func (s *Store) DeleteMergeRule(ctx context.Context, id uint64) error {
	const q = `DELETE FROM merge_rule WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return core.Implementation(err)
	}
	return requireRowsAffected(res, core.UnknownMergeRule(core.Wildcard, core.Wildcard))
}
