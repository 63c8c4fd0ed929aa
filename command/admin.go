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

package command

import (
	"context"
	"strings"

	"github.com/prbot/prbot/core"
)

// dispatchAdmin handles the admin-prefixed verbs. The caller has already
// checked Account.is_admin; admin-disable additionally requires the
// repository's manual_interaction flag.
func (d *Dispatcher) dispatchAdmin(ctx context.Context, c Context, cand Candidate) (Result, error) {
	repo := c.Repository
	pr := c.PullRequest
	verb := strings.TrimPrefix(cand.Verb, "admin-")

	switch verb {
	case "help":
		return handled(cand.Verb, false, postComment(AdminHelpText)), nil

	case "enable":
		if err := d.Store.SetRepositoryManualInteraction(ctx, repo.ID, true); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, false), nil

	case "disable":
		if !repo.ManualInteraction {
			// Per the Open Questions resolution in DESIGN.md, every refusal
			// — including this one — uses the same thumbs-down reaction.
			return deny(cand.Verb, "Manual interaction mode is not enabled for this repository."), nil
		}
		if err := d.Store.SetRepositoryManualInteraction(ctx, repo.ID, false); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, false), nil

	case "set-default-needed-reviewers":
		if len(cand.Args) != 1 {
			return deny(cand.Verb, "Expected exactly one integer argument."), nil
		}
		n, err := parseUint(cand.Args[0])
		if err != nil {
			return deny(cand.Verb, err.Error()), nil
		}
		if err := d.Store.SetRepositoryDefaultNeededReviewers(ctx, repo.ID, n); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, false), nil

	case "set-default-merge-strategy":
		if len(cand.Args) != 1 || !core.MergeStrategy(cand.Args[0]).Valid() {
			return deny(cand.Verb, "Expected one of: merge, squash, rebase."), nil
		}
		if err := d.Store.SetRepositoryDefaultStrategy(ctx, repo.ID, core.MergeStrategy(cand.Args[0])); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, false), nil

	case "set-default-pr-title-regex":
		regex := strings.Join(cand.Args, " ")
		if err := d.Store.SetRepositoryPRTitleRegex(ctx, repo.ID, regex); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, false), nil

	case "set-default-automerge+":
		if err := d.Store.SetRepositoryDefaultAutomerge(ctx, repo.ID, true); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, false), nil
	case "set-default-automerge-":
		if err := d.Store.SetRepositoryDefaultAutomerge(ctx, repo.ID, false); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, false), nil

	case "set-default-qa-status+":
		if err := d.Store.SetRepositoryDefaultEnableQA(ctx, repo.ID, true); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, false), nil
	case "set-default-qa-status-":
		if err := d.Store.SetRepositoryDefaultEnableQA(ctx, repo.ID, false); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, false), nil

	case "set-default-checks-status+":
		if err := d.Store.SetRepositoryDefaultEnableChecks(ctx, repo.ID, true); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, false), nil
	case "set-default-checks-status-":
		if err := d.Store.SetRepositoryDefaultEnableChecks(ctx, repo.ID, false); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, false), nil

	case "set-needed-reviewers":
		if len(cand.Args) != 1 {
			return deny(cand.Verb, "Expected exactly one integer argument."), nil
		}
		n, err := parseUint(cand.Args[0])
		if err != nil {
			return deny(cand.Verb, err.Error()), nil
		}
		if err := d.Store.SetPullRequestNeededReviewersCount(ctx, pr.ID, n); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, true), nil

	case "reset-reviewers":
		if err := d.Store.ResetRequiredReviewers(ctx, pr.ID); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, true), nil

	case "reset-summary":
		if err := d.Store.SetPullRequestStatusCommentID(ctx, pr.ID, 0); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, true), nil

	case "sync":
		// admin-sync on a never-seen (owner/name, number) must create both
		// rows idempotently; here they already exist by construction of
		// Context, so sync only forces a fresh Status Engine pass.
		return handled(cand.Verb, true), nil

	default:
		return ignore(cand.Verb), nil
	}
}
