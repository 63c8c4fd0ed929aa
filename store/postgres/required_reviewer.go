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

func (s *Store) AddRequiredReviewer(ctx context.Context, pullRequestID uint64, username string) error {
	const q = `
		INSERT INTO required_reviewer (pull_request_id, username)
		VALUES ($1, $2)
		ON CONFLICT (pull_request_id, username) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, q, pullRequestID, username); err != nil {
		return classifyWrite(err, "required reviewer")
	}
	return nil
}

func (s *Store) RemoveRequiredReviewer(ctx context.Context, pullRequestID uint64, username string) error {
	const q = `DELETE FROM required_reviewer WHERE pull_request_id = $1 AND username = $2`
	if _, err := s.db.ExecContext(ctx, q, pullRequestID, username); err != nil {
		return core.Implementation(err)
	}
	return nil
}

func (s *Store) ListRequiredReviewers(ctx context.Context, pullRequestID uint64) ([]*core.RequiredReviewer, error) {
	var usernames []string
	const q = `SELECT username FROM required_reviewer WHERE pull_request_id = $1 ORDER BY username`
	if err := s.db.SelectContext(ctx, &usernames, q, pullRequestID); err != nil {
		return nil, core.Implementation(err)
	}
	out := make([]*core.RequiredReviewer, len(usernames))
	for i, u := range usernames {
		out[i] = &core.RequiredReviewer{PullRequestID: pullRequestID, Username: u}
	}
	return out, nil
}

func (s *Store) ResetRequiredReviewers(ctx context.Context, pullRequestID uint64) error {
	const q = `DELETE FROM required_reviewer WHERE pull_request_id = $1`
	if _, err := s.db.ExecContext(ctx, q, pullRequestID); err != nil {
		return core.Implementation(err)
	}
	return nil
}
