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

type pullRequestRow struct {
	ID                   uint64  `db:"id"`
	RepositoryID         uint64  `db:"repository_id"`
	Number               uint64  `db:"number"`
	QaStatus             string  `db:"qa_status"`
	NeededReviewersCount uint64  `db:"needed_reviewers_count"`
	StatusCommentID      uint64  `db:"status_comment_id"`
	ChecksEnabled        bool    `db:"checks_enabled"`
	Automerge            bool    `db:"automerge"`
	Locked               bool    `db:"locked"`
	StrategyOverride     *string `db:"strategy_override"`
	CreatedAt            any     `db:"created_at"`
	UpdatedAt            any     `db:"updated_at"`
}

func (r pullRequestRow) toCore() *core.PullRequest {
	pr := &core.PullRequest{
		ID:                   r.ID,
		RepositoryID:         r.RepositoryID,
		Number:               r.Number,
		QaStatus:             core.QaStatus(r.QaStatus),
		NeededReviewersCount: r.NeededReviewersCount,
		StatusCommentID:      r.StatusCommentID,
		ChecksEnabled:        r.ChecksEnabled,
		Automerge:            r.Automerge,
		Locked:               r.Locked,
	}
	if r.StrategyOverride != nil {
		s := core.MergeStrategy(*r.StrategyOverride)
		pr.StrategyOverride = &s
	}
	return pr
}

func strategyOverrideParam(s *core.MergeStrategy) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

func (s *Store) CreatePullRequest(ctx context.Context, pr *core.PullRequest) (*core.PullRequest, error) {
	const q = `
		INSERT INTO pull_request (
			repository_id, number, qa_status, needed_reviewers_count,
			status_comment_id, checks_enabled, automerge, locked, strategy_override
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	var id uint64
	row := s.db.QueryRowxContext(ctx, q, pr.RepositoryID, pr.Number, string(pr.QaStatus), pr.NeededReviewersCount,
		pr.StatusCommentID, pr.ChecksEnabled, pr.Automerge, pr.Locked, strategyOverrideParam(pr.StrategyOverride))
	if err := row.Scan(&id); err != nil {
		return nil, classifyWrite(err, "pull request")
	}
	out := *pr
	out.ID = id
	return &out, nil
}

func (s *Store) GetPullRequest(ctx context.Context, repositoryID, number uint64) (*core.PullRequest, error) {
	var row pullRequestRow
	const q = `SELECT * FROM pull_request WHERE repository_id = $1 AND number = $2`
	if err := s.db.GetContext(ctx, &row, q, repositoryID, number); err != nil {
		if isNoRows(err) {
			return nil, pullRequestNotFound(ctx, s, repositoryID, number)
		}
		return nil, core.Implementation(err)
	}
	return row.toCore(), nil
}

func pullRequestNotFound(ctx context.Context, s *Store, repositoryID, number uint64) error {
	repo, err := s.GetRepositoryByID(ctx, repositoryID)
	if err != nil {
		return core.UnknownPullRequest("", "", number)
	}
	return core.UnknownPullRequest(repo.Owner, repo.Name, number)
}

func (s *Store) GetPullRequestByID(ctx context.Context, id uint64) (*core.PullRequest, error) {
	var row pullRequestRow
	const q = `SELECT * FROM pull_request WHERE id = $1`
	if err := s.db.GetContext(ctx, &row, q, id); err != nil {
		if isNoRows(err) {
			return nil, core.UnknownPullRequest("", "", id)
		}
		return nil, core.Implementation(err)
	}
	return row.toCore(), nil
}

func (s *Store) ListPullRequestsInRepository(ctx context.Context, repositoryID uint64) ([]*core.PullRequest, error) {
	var rows []pullRequestRow
	const q = `SELECT * FROM pull_request WHERE repository_id = $1 ORDER BY number`
	if err := s.db.SelectContext(ctx, &rows, q, repositoryID); err != nil {
		return nil, core.Implementation(err)
	}
	out := make([]*core.PullRequest, len(rows))
	for i, row := range rows {
		out[i] = row.toCore()
	}
	return out, nil
}

func (s *Store) ListAllPullRequests(ctx context.Context) ([]*core.PullRequest, error) {
	var rows []pullRequestRow
	const q = `SELECT * FROM pull_request ORDER BY repository_id, number`
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, core.Implementation(err)
	}
	out := make([]*core.PullRequest, len(rows))
	for i, row := range rows {
		out[i] = row.toCore()
	}
	return out, nil
}

func (s *Store) UpdatePullRequest(ctx context.Context, pr *core.PullRequest) error {
	const q = `
		UPDATE pull_request SET
			qa_status = $1, needed_reviewers_count = $2, status_comment_id = $3,
			checks_enabled = $4, automerge = $5, locked = $6, strategy_override = $7,
			updated_at = now()
		WHERE id = $8`
	res, err := s.db.ExecContext(ctx, q, string(pr.QaStatus), pr.NeededReviewersCount, pr.StatusCommentID,
		pr.ChecksEnabled, pr.Automerge, pr.Locked, strategyOverrideParam(pr.StrategyOverride), pr.ID)
	if err != nil {
		return classifyWrite(err, "pull request")
	}
	return requireRowsAffected(res, core.UnknownPullRequest("", "", pr.ID))
}

func (s *Store) DeletePullRequest(ctx context.Context, id uint64) error {
	const q = `DELETE FROM pull_request WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return core.Implementation(err)
	}
	return requireRowsAffected(res, core.UnknownPullRequest("", "", id))
}

func (s *Store) setPullRequestField(ctx context.Context, id uint64, column string, value any) error {
	q := fmt.Sprintf(`UPDATE pull_request SET %s = $1, updated_at = now() WHERE id = $2`, column)
	res, err := s.db.ExecContext(ctx, q, value, id)
	if err != nil {
		return classifyWrite(err, "pull request")
	}
	return requireRowsAffected(res, core.UnknownPullRequest("", "", id))
}

func (s *Store) SetPullRequestQaStatus(ctx context.Context, id uint64, status core.QaStatus) error {
	return s.setPullRequestField(ctx, id, "qa_status", string(status))
}

func (s *Store) SetPullRequestNeededReviewersCount(ctx context.Context, id uint64, n uint64) error {
	return s.setPullRequestField(ctx, id, "needed_reviewers_count", n)
}

func (s *Store) SetPullRequestStatusCommentID(ctx context.Context, id uint64, commentID uint64) error {
	return s.setPullRequestField(ctx, id, "status_comment_id", commentID)
}

func (s *Store) SetPullRequestChecksEnabled(ctx context.Context, id uint64, v bool) error {
	return s.setPullRequestField(ctx, id, "checks_enabled", v)
}

func (s *Store) SetPullRequestAutomerge(ctx context.Context, id uint64, v bool) error {
	return s.setPullRequestField(ctx, id, "automerge", v)
}

func (s *Store) SetPullRequestLocked(ctx context.Context, id uint64, v bool) error {
	return s.setPullRequestField(ctx, id, "locked", v)
}

func (s *Store) SetPullRequestStrategyOverride(ctx context.Context, id uint64, strategy *core.MergeStrategy) error {
	return s.setPullRequestField(ctx, id, "strategy_override", strategyOverrideParam(strategy))
}

func (s *Store) GetOrCreatePullRequest(ctx context.Context, repo *core.Repository, number uint64) (*core.PullRequest, error) {
	if pr, err := s.GetPullRequest(ctx, repo.ID, number); err == nil {
		return pr, nil
	}
	return s.CreatePullRequest(ctx, core.NewPullRequest(repo, number))
}
