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

// Package status computes a pull request's derived status and reconciles
// the forge-visible summary comment and commit-status line.
package status

import (
	"fmt"
	"regexp"

	"github.com/gosimple/slug"

	"github.com/prbot/prbot/core"
)

// PullRequestStatus is the full derived view of a pull request, computed
// fresh on every Status Engine pass from its inputs.
type PullRequestStatus struct {
	ApprovedReviewers         []string
	ChangesRequiredReviewers  []string
	MissingRequiredReviewers  []string
	NeededReviewersCount      uint64
	QaStatus                  core.QaStatus
	ChecksStatus              core.ChecksStatus
	Automerge                 bool
	Locked                    bool
	Wip                       bool
	Merged                    bool
	Mergeable                 bool
	ValidPRTitle              bool
	MergeStrategy             core.MergeStrategy
	PullRequestTitleRegex     string
	ChecksURL                 string
}

// Inputs bundles everything Derive needs, so callers don't have to thread
// five separate arguments through every call site.
type Inputs struct {
	PullRequest       *core.PullRequest
	Repository        *core.Repository
	Upstream          *core.GhPullRequest
	Reviews           []*core.Review
	RequiredReviewers []*core.RequiredReviewer
	MergeRules        []*core.MergeRule
	ChecksURL         string
}

// Derive computes a PullRequestStatus from in, per spec §4.6.1.
func Derive(in Inputs) (*PullRequestStatus, error) {
	approved := map[string]bool{}
	changesRequested := map[string]bool{}
	var approvedList, changesList []string
	for _, r := range in.Reviews {
		switch r.State {
		case core.ReviewApproved:
			if !approved[r.User] {
				approved[r.User] = true
				approvedList = append(approvedList, r.User)
			}
		case core.ReviewChangesRequested:
			if !changesRequested[r.User] {
				changesRequested[r.User] = true
				changesList = append(changesList, r.User)
			}
		}
	}

	var missing []string
	for _, rr := range in.RequiredReviewers {
		if !approved[rr.Username] {
			missing = append(missing, rr.Username)
		}
	}

	validTitle := true
	if in.Repository.PRTitleValidationRegex != "" {
		re, err := regexp.Compile(in.Repository.PRTitleValidationRegex)
		if err != nil {
			return nil, core.InputError("invalid title validation regex: %v", err)
		}
		validTitle = re.MatchString(in.Upstream.Title)
	}

	mergeable := true
	if in.Upstream.Mergeable != nil {
		mergeable = *in.Upstream.Mergeable
	}

	checks := deriveChecksStatus(in.PullRequest.ChecksEnabled, nil)

	strategy, err := ResolveMergeStrategy(in.PullRequest, in.Repository, in.MergeRules, in.Upstream.BaseRef, in.Upstream.HeadRef)
	if err != nil {
		return nil, err
	}

	return &PullRequestStatus{
		ApprovedReviewers:        approvedList,
		ChangesRequiredReviewers: changesList,
		MissingRequiredReviewers: missing,
		NeededReviewersCount:     in.PullRequest.NeededReviewersCount,
		QaStatus:                 in.PullRequest.QaStatus,
		ChecksStatus:             checks,
		Automerge:                in.PullRequest.Automerge,
		Locked:                   in.PullRequest.Locked,
		Wip:                      in.Upstream.Draft,
		Merged:                   in.Upstream.Merged,
		Mergeable:                mergeable,
		ValidPRTitle:             validTitle,
		MergeStrategy:            strategy,
		PullRequestTitleRegex:    in.Repository.PRTitleValidationRegex,
		ChecksURL:                in.ChecksURL,
	}, nil
}

// DeriveChecksStatus folds a check-suite list into the three-state
// ChecksStatus, forcing Skipped when checks are disabled for the PR.
func DeriveChecksStatus(checksEnabled bool, suites []*core.CheckSuite) core.ChecksStatus {
	return deriveChecksStatus(checksEnabled, suites)
}

func deriveChecksStatus(checksEnabled bool, suites []*core.CheckSuite) core.ChecksStatus {
	if !checksEnabled {
		return core.ChecksSkipped
	}
	if len(suites) == 0 {
		return core.ChecksWaiting
	}
	anyFail := false
	allDone := true
	for _, s := range suites {
		switch s.Conclusion {
		case core.ConclusionSuccess, core.ConclusionNeutral:
			// counts as passed
		case core.ConclusionFailure, core.ConclusionCancelled, core.ConclusionTimedOut:
			anyFail = true
		default:
			allDone = false
		}
	}
	switch {
	case anyFail:
		return core.ChecksFail
	case !allDone:
		return core.ChecksWaiting
	default:
		return core.ChecksPass
	}
}

// ResolveMergeStrategy implements spec §4.6.3.
func ResolveMergeStrategy(pr *core.PullRequest, repo *core.Repository, rules []*core.MergeRule, baseRef, headRef string) (core.MergeStrategy, error) {
	if pr.StrategyOverride != nil {
		return *pr.StrategyOverride, nil
	}

	var best *core.MergeRule
	for _, r := range rules {
		if !r.BaseBranch.Matches(baseRef) || !r.HeadBranch.Matches(headRef) {
			continue
		}
		if best == nil || r.Specificity() > best.Specificity() {
			best = r
		}
	}
	if best != nil {
		return best.Strategy, nil
	}
	return repo.DefaultStrategy, nil
}

// Step implements the top-down state machine of spec §4.6.2. First match
// wins; the order of these checks is the specification.
func Step(s *PullRequestStatus) core.StepLabel {
	switch {
	case s.Locked:
		return core.StepLocked
	case s.Wip:
		return core.StepWip
	case !s.ValidPRTitle:
		return core.StepAwaitingChanges
	case s.ChecksStatus == core.ChecksFail:
		return core.StepAwaitingChanges
	case s.ChecksStatus == core.ChecksWaiting:
		return core.StepAwaitingChecks
	case len(s.MissingRequiredReviewers) > 0:
		return core.StepAwaitingRequiredReview
	case len(s.ChangesRequiredReviewers) > 0:
		return core.StepAwaitingChanges
	case uint64(len(s.ApprovedReviewers)) < s.NeededReviewersCount:
		return core.StepAwaitingReview
	case s.QaStatus == core.QaFail:
		return core.StepAwaitingChanges
	case s.QaStatus == core.QaWaiting:
		return core.StepAwaitingQA
	default:
		return core.StepAwaitingMerge
	}
}

// StepSlug renders a StepLabel as the forge label slug, e.g. "step/wip".
// Delimiting capital letters with hyphens before slugifying turns
// "AwaitingChecks" into "step/awaiting-checks".
func StepSlug(step core.StepLabel) string {
	spaced := make([]rune, 0, len(step)+4)
	for i, r := range string(step) {
		if i > 0 && r >= 'A' && r <= 'Z' {
			spaced = append(spaced, ' ')
		}
		spaced = append(spaced, r)
	}
	return fmt.Sprintf("step/%s", slug.Make(string(spaced)))
}
