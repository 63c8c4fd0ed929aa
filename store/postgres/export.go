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
	"github.com/prbot/prbot/store/remap"
)

func (s *Store) ExportAll(ctx context.Context) (*core.Export, error) {
	export := &core.Export{}

	repos, err := s.ListRepositories(ctx)
	if err != nil {
		return nil, err
	}
	export.Repositories = repos

	prs, err := s.ListAllPullRequests(ctx)
	if err != nil {
		return nil, err
	}
	export.PullRequests = prs

	for _, repo := range repos {
		rules, err := s.ListMergeRulesInRepository(ctx, repo.ID)
		if err != nil {
			return nil, err
		}
		export.MergeRules = append(export.MergeRules, rules...)
	}

	for _, pr := range prs {
		reviewers, err := s.ListRequiredReviewers(ctx, pr.ID)
		if err != nil {
			return nil, err
		}
		export.RequiredReviewers = append(export.RequiredReviewers, reviewers...)
	}

	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	export.Accounts = accounts

	externalAccounts, err := s.ListExternalAccounts(ctx)
	if err != nil {
		return nil, err
	}
	export.ExternalAccounts = externalAccounts

	for _, a := range externalAccounts {
		rights, err := s.ListExternalAccountRights(ctx, a.Username)
		if err != nil {
			return nil, err
		}
		export.ExternalAccountRights = append(export.ExternalAccountRights, rights...)
	}

	return export, nil
}

// ImportAll replaces the database's contents with export, allocating fresh
// ids for every row and relinking foreign keys through remap.IDMap so the
// importing database never collides with ids the exporting one issued.
func (s *Store) ImportAll(ctx context.Context, export *core.Export) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.Implementation(err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{
		"external_account_right", "required_reviewer", "merge_rule",
		"pull_request", "repository", "external_account", "account", "webhook_event",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return core.Implementation(err)
		}
	}

	repoIDs := remap.New()
	for _, r := range export.Repositories {
		var id uint64
		const q = `
			INSERT INTO repository (
				owner, name, manual_interaction, pr_title_validation_regex,
				default_strategy, default_needed_reviewers_count,
				default_automerge, default_enable_qa, default_enable_checks
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`
		row := tx.QueryRowxContext(ctx, q, r.Owner, r.Name, r.ManualInteraction, r.PRTitleValidationRegex,
			string(r.DefaultStrategy), r.DefaultNeededReviewersCount, r.DefaultAutomerge, r.DefaultEnableQA, r.DefaultEnableChecks)
		if err := row.Scan(&id); err != nil {
			return classifyWrite(err, "repository")
		}
		repoIDs.Put(r.ID, id)
	}

	prIDs := remap.New()
	for _, pr := range export.PullRequests {
		var id uint64
		const q = `
			INSERT INTO pull_request (
				repository_id, number, qa_status, needed_reviewers_count,
				status_comment_id, checks_enabled, automerge, locked, strategy_override
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`
		row := tx.QueryRowxContext(ctx, q, repoIDs.MustGet(pr.RepositoryID), pr.Number, string(pr.QaStatus),
			pr.NeededReviewersCount, pr.StatusCommentID, pr.ChecksEnabled, pr.Automerge, pr.Locked,
			strategyOverrideParam(pr.StrategyOverride))
		if err := row.Scan(&id); err != nil {
			return classifyWrite(err, "pull request")
		}
		prIDs.Put(pr.ID, id)
	}

	for _, r := range export.MergeRules {
		const q = `INSERT INTO merge_rule (repository_id, base_branch, head_branch, strategy) VALUES ($1, $2, $3, $4)`
		if _, err := tx.ExecContext(ctx, q, repoIDs.MustGet(r.RepositoryID), r.BaseBranch.Name, r.HeadBranch.Name, string(r.Strategy)); err != nil {
			return classifyWrite(err, "merge rule")
		}
	}

	for _, rr := range export.RequiredReviewers {
		const q = `INSERT INTO required_reviewer (pull_request_id, username) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, q, prIDs.MustGet(rr.PullRequestID), rr.Username); err != nil {
			return classifyWrite(err, "required reviewer")
		}
	}

	for _, a := range export.Accounts {
		const q = `INSERT INTO account (username, is_admin) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, q, a.Username, a.IsAdmin); err != nil {
			return classifyWrite(err, "account")
		}
	}

	for _, a := range export.ExternalAccounts {
		const q = `INSERT INTO external_account (username, public_key, private_key) VALUES ($1, $2, $3)`
		if _, err := tx.ExecContext(ctx, q, a.Username, a.PublicKey, a.PrivateKey); err != nil {
			return classifyWrite(err, "external account")
		}
	}

	for _, right := range export.ExternalAccountRights {
		const q = `INSERT INTO external_account_right (username, repository_id) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, q, right.Username, repoIDs.MustGet(right.RepositoryID)); err != nil {
			return classifyWrite(err, "external account right")
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Implementation(err)
	}
	s.repoCache.Purge()
	return nil
}
