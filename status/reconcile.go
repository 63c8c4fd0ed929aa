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

package status

import (
	"context"
	"fmt"
	"time"

	"github.com/prbot/prbot/core"
	"github.com/prbot/prbot/metrics"
)

// CommitStatusContext is the fixed context string posted alongside every
// commit-status update, per spec §4.6.4.
const CommitStatusContext = "prbot/validation"

// maxDescriptionRunes mirrors the forge client's own truncation so callers
// that only need the rendered string (e.g. tests) see the same value the
// wire call would send.
const maxDescriptionRunes = 139

// RenderCommitStatusDescription truncates desc to the forge's limit.
func RenderCommitStatusDescription(desc string) string {
	runes := []rune(desc)
	if len(runes) <= maxDescriptionRunes {
		return desc
	}
	return string(runes[:maxDescriptionRunes])
}

// Engine drives the commit-status and summary-comment reconciliation
// against a Forge, Store and Lock, per spec §4.6.4–4.6.5.
type Engine struct {
	Forge core.Forge
	Store core.Store
	Lock  core.Lock

	// LockTimeout bounds how long the first-write summary path waits for
	// the per-PR lock before giving up, per spec §5 (10s).
	LockTimeout time.Duration
}

// Run derives status for one pull request and reconciles both the
// commit-status line and the summary comment against the forge.
func (e *Engine) Run(ctx context.Context, repo *core.Repository, pr *core.PullRequest, upstream *core.GhPullRequest, reviews []*core.Review, requiredReviewers []*core.RequiredReviewer, mergeRules []*core.MergeRule, checkSuites []*core.CheckSuite, checksURL string) (result *PullRequestStatus, step core.StepLabel, err error) {
	start := time.Now()
	defer func() {
		metrics.StatusEngineDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.StatusEngineRunsTotal.WithLabelValues("error").Inc()
		} else {
			metrics.StatusEngineRunsTotal.WithLabelValues(string(step)).Inc()
		}
	}()

	s, err := Derive(Inputs{
		PullRequest:       pr,
		Repository:        repo,
		Upstream:          upstream,
		Reviews:           reviews,
		RequiredReviewers: requiredReviewers,
		MergeRules:        mergeRules,
		ChecksURL:         checksURL,
	})
	if err != nil {
		return nil, "", err
	}
	s.ChecksStatus = DeriveChecksStatus(pr.ChecksEnabled, checkSuites)

	step = Step(s)

	if err := e.reconcileLabels(ctx, repo, pr, step); err != nil {
		return nil, "", err
	}
	if err := e.reconcileCommitStatus(ctx, repo, upstream, step); err != nil {
		return nil, "", err
	}
	if err := e.reconcileSummary(ctx, repo, pr, s, mergeRules, requiredReviewers); err != nil {
		return nil, "", err
	}

	return s, step, nil
}

// RunForPullRequest gathers every input Run needs straight from the Forge
// and Store, for callers that only have a repository and pull request in
// hand — the webhook handler's post-event reconciliation and the external
// API's on-demand sync endpoint both drive the engine this way.
func (e *Engine) RunForPullRequest(ctx context.Context, repo *core.Repository, pr *core.PullRequest) error {
	upstream, err := e.Forge.PullsGet(ctx, repo.Owner, repo.Name, pr.Number)
	if err != nil {
		return err
	}
	reviews, err := e.Forge.PullReviewsList(ctx, repo.Owner, repo.Name, pr.Number)
	if err != nil {
		return err
	}
	requiredReviewers, err := e.Store.ListRequiredReviewers(ctx, pr.ID)
	if err != nil {
		return err
	}
	mergeRules, err := e.Store.ListMergeRulesInRepository(ctx, repo.ID)
	if err != nil {
		return err
	}
	checkSuites, err := e.Forge.CheckSuitesList(ctx, repo.Owner, repo.Name, upstream.HeadSHA)
	if err != nil {
		return err
	}
	checksURL := fmt.Sprintf("https://github.com/%s/%s/pull/%d/checks", repo.Owner, repo.Name, pr.Number)

	_, _, err = e.Run(ctx, repo, pr, upstream, reviews, requiredReviewers, mergeRules, checkSuites, checksURL)
	return err
}

// reconcileLabels replaces any previous step/* label with the one matching
// the freshly computed step, per spec §4.6.2.
func (e *Engine) reconcileLabels(ctx context.Context, repo *core.Repository, pr *core.PullRequest, step core.StepLabel) error {
	existing, err := e.Forge.IssueLabelsList(ctx, repo.Owner, repo.Name, pr.Number)
	if err != nil {
		return err
	}
	next := make([]string, 0, len(existing)+1)
	for _, l := range existing {
		if !isStepLabel(l) {
			next = append(next, l)
		}
	}
	next = append(next, StepSlug(step))
	return e.Forge.IssueLabelsReplaceAll(ctx, repo.Owner, repo.Name, pr.Number, next)
}

func isStepLabel(label string) bool {
	return len(label) > 5 && label[:5] == "step/"
}

// reconcileCommitStatus posts the commit-status line for upstream's head
// SHA, per spec §4.6.4.
func (e *Engine) reconcileCommitStatus(ctx context.Context, repo *core.Repository, upstream *core.GhPullRequest, step core.StepLabel) error {
	state := core.CommitStateFor(step)
	return e.Forge.CommitStatusesUpdate(ctx, repo.Owner, repo.Name, upstream.HeadSHA, state, CommitStatusContext, string(step))
}

// reconcileSummary implements the first-write-locked / unlocked-update
// split described in spec §4.6.5.
func (e *Engine) reconcileSummary(ctx context.Context, repo *core.Repository, pr *core.PullRequest, s *PullRequestStatus, mergeRules []*core.MergeRule, requiredReviewers []*core.RequiredReviewer) error {
	body := RenderSummary(s, mergeRules, requiredReviewers)

	if pr.HasSummaryComment() {
		return e.Forge.CommentsUpdate(ctx, repo.Owner, repo.Name, pr.StatusCommentID, body)
	}

	lockName := core.SummaryLockName(repo.Owner, repo.Name, pr.Number)
	handle, ok, err := e.Lock.WaitLock(ctx, lockName, e.LockTimeout)
	if err != nil {
		return err
	}
	if !ok {
		// AlreadyLocked: another worker owns this pass, skip silently.
		return nil
	}
	defer handle.Release(ctx)

	// Re-check after acquiring: another worker may have posted and
	// persisted the id while we were waiting.
	fresh, err := e.Store.GetPullRequestByID(ctx, pr.ID)
	if err != nil {
		return err
	}
	if fresh.HasSummaryComment() {
		return nil
	}

	commentID, err := e.Forge.CommentsPost(ctx, repo.Owner, repo.Name, pr.Number, body)
	if err != nil {
		return err
	}
	return e.Store.SetPullRequestStatusCommentID(ctx, pr.ID, commentID)
}
