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
	"fmt"
	"strconv"
	"strings"

	"github.com/prbot/prbot/core"
	"github.com/prbot/prbot/metrics"
	"github.com/prbot/prbot/status"
)

// Dispatcher parses and executes every command candidate in a comment
// against the Store and Forge, accumulating effects per spec §4.5.1 and
// §4.5.3.
type Dispatcher struct {
	Store       core.Store
	Forge       core.Forge
	BotUsername string
}

// Context carries the identity of the comment and pull request a batch of
// commands is being evaluated against.
type Context struct {
	Repository  *core.Repository
	PullRequest *core.PullRequest
	Actor       string // comment author's forge login
}

// Run parses every command candidate out of body and executes it in order,
// returning one Result per candidate plus whether any of them requested a
// Status Engine run.
func (d *Dispatcher) Run(ctx context.Context, cmdCtx Context, body string) ([]Result, bool, error) {
	candidates := ParseCandidates(body, d.BotUsername)
	results := make([]Result, 0, len(candidates))
	updateStatus := false

	for _, c := range candidates {
		account, _ := d.Store.GetAccount(ctx, cmdCtx.Actor)
		isAdmin := account != nil && account.IsAdmin

		res, err := d.dispatchOne(ctx, cmdCtx, c, isAdmin)
		if err != nil {
			return nil, false, err
		}
		results = append(results, res)
		if res.ShouldUpdateStatus {
			updateStatus = true
		}
	}
	return results, updateStatus, nil
}

func (d *Dispatcher) dispatchOne(ctx context.Context, c Context, cand Candidate, isAdmin bool) (Result, error) {
	metrics.CommandsTotal.WithLabelValues(cand.Verb).Inc()
	if strings.HasPrefix(cand.Verb, "admin-") {
		if !isAdmin {
			return deny(cand.Verb, "This command is reserved to administrators."), nil
		}
		return d.dispatchAdmin(ctx, c, cand)
	}
	return d.dispatchNonAdmin(ctx, c, cand)
}

func (d *Dispatcher) dispatchNonAdmin(ctx context.Context, c Context, cand Candidate) (Result, error) {
	pr := c.PullRequest
	repo := c.Repository

	switch cand.Verb {
	case "noqa+":
		if err := d.Store.SetPullRequestQaStatus(ctx, pr.ID, core.QaSkipped); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, true), nil
	case "noqa-":
		if err := d.Store.SetPullRequestQaStatus(ctx, pr.ID, core.QaWaiting); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, true), nil
	case "qa+":
		if err := d.Store.SetPullRequestQaStatus(ctx, pr.ID, core.QaPass); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, true), nil
	case "qa-":
		if err := d.Store.SetPullRequestQaStatus(ctx, pr.ID, core.QaFail); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, true), nil
	case "qa?":
		if err := d.Store.SetPullRequestQaStatus(ctx, pr.ID, core.QaWaiting); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, true), nil

	case "nochecks+":
		if err := d.Store.SetPullRequestChecksEnabled(ctx, pr.ID, false); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, true), nil
	case "nochecks-":
		if err := d.Store.SetPullRequestChecksEnabled(ctx, pr.ID, true); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, true), nil

	case "automerge+":
		if err := d.Store.SetPullRequestAutomerge(ctx, pr.ID, true); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, true), nil
	case "automerge-":
		if err := d.Store.SetPullRequestAutomerge(ctx, pr.ID, false); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, true), nil

	case "lock+":
		if err := d.Store.SetPullRequestLocked(ctx, pr.ID, true); err != nil {
			return Result{}, err
		}
		reason := strings.Join(cand.Args, " ")
		actions := []Action{}
		if reason != "" {
			actions = append(actions, postComment(fmt.Sprintf("Locked: %s", reason)))
		}
		return handled(cand.Verb, true, actions...), nil
	case "lock-":
		if err := d.Store.SetPullRequestLocked(ctx, pr.ID, false); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, true), nil

	case "req+":
		return d.handleReqAdd(ctx, c, cand)
	case "req-":
		return d.handleReqRemove(ctx, c, cand)

	case "strategy+":
		if len(cand.Args) != 1 || !core.MergeStrategy(cand.Args[0]).Valid() {
			return deny(cand.Verb, "Expected one of: merge, squash, rebase."), nil
		}
		strategy := core.MergeStrategy(cand.Args[0])
		if err := d.Store.SetPullRequestStrategyOverride(ctx, pr.ID, &strategy); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, true), nil
	case "strategy-":
		if err := d.Store.SetPullRequestStrategyOverride(ctx, pr.ID, nil); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, true), nil

	case "merge":
		return d.handleMerge(ctx, c, cand)

	case "labels+":
		if len(cand.Args) == 0 {
			return deny(cand.Verb, "Expected one or more label names."), nil
		}
		if err := d.Forge.IssueLabelsAdd(ctx, repo.Owner, repo.Name, pr.Number, cand.Args); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, false), nil
	case "labels-":
		if len(cand.Args) == 0 {
			return deny(cand.Verb, "Expected one or more label names."), nil
		}
		if err := d.Forge.IssueLabelsRemove(ctx, repo.Owner, repo.Name, pr.Number, cand.Args); err != nil {
			return Result{}, err
		}
		return handled(cand.Verb, false), nil

	case "ping":
		return handled(cand.Verb, false, postComment("pong")), nil

	case "gif":
		// The media-search collaborator is out of core per spec §1; report
		// the command as handled with no forge-visible action.
		return handled(cand.Verb, false), nil

	case "is-admin":
		account, _ := d.Store.GetAccount(ctx, c.Actor)
		if account != nil && account.IsAdmin {
			return handled(cand.Verb, false, addReaction(core.ReactionThumbsUp)), nil
		}
		return handled(cand.Verb, false, addReaction(core.ReactionThumbsDown)), nil

	case "help":
		return handled(cand.Verb, false, postComment(NonAdminHelpText)), nil

	default:
		return ignore(cand.Verb), nil
	}
}

func (d *Dispatcher) handleReqAdd(ctx context.Context, c Context, cand Candidate) (Result, error) {
	if len(cand.Args) == 0 {
		return deny(cand.Verb, "Expected one or more @user mentions."), nil
	}
	var added, skipped []string
	for _, raw := range cand.Args {
		user := strings.TrimPrefix(raw, "@")
		perm, err := d.Forge.UserPermissionsGet(ctx, c.Repository.Owner, c.Repository.Name, user)
		if err != nil {
			return Result{}, err
		}
		if !perm.AtLeastWrite() {
			skipped = append(skipped, user)
			continue
		}
		if err := d.Store.AddRequiredReviewer(ctx, c.PullRequest.ID, user); err != nil {
			return Result{}, err
		}
		added = append(added, user)
	}
	reply := fmt.Sprintf("Added as required reviewer: %s. Skipped (insufficient permission): %s.",
		joinOrNone(added), joinOrNone(skipped))
	return handled(cand.Verb, len(added) > 0, postComment(reply)), nil
}

func (d *Dispatcher) handleReqRemove(ctx context.Context, c Context, cand Candidate) (Result, error) {
	if len(cand.Args) == 0 {
		return deny(cand.Verb, "Expected one or more @user mentions."), nil
	}
	for _, raw := range cand.Args {
		user := strings.TrimPrefix(raw, "@")
		if err := d.Store.RemoveRequiredReviewer(ctx, c.PullRequest.ID, user); err != nil {
			return Result{}, err
		}
	}
	return handled(cand.Verb, true), nil
}

// handleMerge only issues pulls_merge when the derived step is exactly
// AwaitingMerge, per the §4.5.2 verb table; otherwise it posts a public
// refusal and a thumbs-down reaction.
func (d *Dispatcher) handleMerge(ctx context.Context, c Context, cand Candidate) (Result, error) {
	step, strategy, err := d.currentStepAndStrategy(ctx, c)
	if err != nil {
		return Result{}, err
	}
	if step != core.StepAwaitingMerge {
		return deny(cand.Verb, "Pull request is not ready to merge."), nil
	}
	if len(cand.Args) == 1 {
		if !core.MergeStrategy(cand.Args[0]).Valid() {
			return deny(cand.Verb, "Expected one of: merge, squash, rebase."), nil
		}
		strategy = core.MergeStrategy(cand.Args[0])
	}
	if err := d.Forge.PullsMerge(ctx, c.Repository.Owner, c.Repository.Name, c.PullRequest.Number, "", "merged by prbot", strategy); err != nil {
		return Result{}, err
	}
	return handled(cand.Verb, true, postComment("Pull request merged.")), nil
}

func (d *Dispatcher) currentStepAndStrategy(ctx context.Context, c Context) (core.StepLabel, core.MergeStrategy, error) {
	upstream, err := d.Forge.PullsGet(ctx, c.Repository.Owner, c.Repository.Name, c.PullRequest.Number)
	if err != nil {
		return "", "", err
	}
	reviews, err := d.Forge.PullReviewsList(ctx, c.Repository.Owner, c.Repository.Name, c.PullRequest.Number)
	if err != nil {
		return "", "", err
	}
	requiredReviewers, err := d.Store.ListRequiredReviewers(ctx, c.PullRequest.ID)
	if err != nil {
		return "", "", err
	}
	mergeRules, err := d.Store.ListMergeRulesInRepository(ctx, c.Repository.ID)
	if err != nil {
		return "", "", err
	}
	suites, err := d.Forge.CheckSuitesList(ctx, c.Repository.Owner, c.Repository.Name, upstream.HeadSHA)
	if err != nil {
		return "", "", err
	}

	s, err := status.Derive(status.Inputs{
		PullRequest:       c.PullRequest,
		Repository:        c.Repository,
		Upstream:          upstream,
		Reviews:           reviews,
		RequiredReviewers: requiredReviewers,
		MergeRules:        mergeRules,
	})
	if err != nil {
		return "", "", err
	}
	s.ChecksStatus = status.DeriveChecksStatus(c.PullRequest.ChecksEnabled, suites)
	return status.Step(s), s.MergeStrategy, nil
}

func joinOrNone(users []string) string {
	if len(users) == 0 {
		return "none"
	}
	return strings.Join(users, ", ")
}

// NonAdminHelpText is the body posted in response to `help`.
const NonAdminHelpText = "Available commands: noqa+/-, qa+/-/?, nochecks+/-, automerge+/-, lock+/-, req+/-, strategy+/-, merge, labels+/-, ping, is-admin, help."

// AdminHelpText is the body posted in response to `admin-help`.
const AdminHelpText = "Available admin commands: help, enable, disable, set-default-needed-reviewers <n>, set-default-merge-strategy <s>, set-default-pr-title-regex <rx?>, set-default-automerge+/-, set-default-qa-status+/-, set-default-checks-status+/-, set-needed-reviewers <n>, reset-reviewers, reset-summary, sync."

func parseUint(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, core.InputError("expected a non-negative integer, got %q", s)
	}
	return n, nil
}
