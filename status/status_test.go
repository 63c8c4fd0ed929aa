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
	"testing"

	"github.com/prbot/prbot/core"
)

func TestStep_Precedence(t *testing.T) {
	base := func() *PullRequestStatus {
		return &PullRequestStatus{
			ChecksStatus:         core.ChecksPass,
			NeededReviewersCount: 0,
			QaStatus:             core.QaSkipped,
			ValidPRTitle:         true,
		}
	}

	tests := []struct {
		name   string
		mutate func(*PullRequestStatus)
		want   core.StepLabel
	}{
		{"locked wins over everything", func(s *PullRequestStatus) {
			s.Locked = true
			s.Wip = true
			s.ValidPRTitle = false
		}, core.StepLocked},
		{"wip beats title validation", func(s *PullRequestStatus) {
			s.Wip = true
			s.ValidPRTitle = false
		}, core.StepWip},
		{"invalid title", func(s *PullRequestStatus) {
			s.ValidPRTitle = false
		}, core.StepAwaitingChanges},
		{"checks failed", func(s *PullRequestStatus) {
			s.ChecksStatus = core.ChecksFail
		}, core.StepAwaitingChanges},
		{"checks waiting", func(s *PullRequestStatus) {
			s.ChecksStatus = core.ChecksWaiting
		}, core.StepAwaitingChecks},
		{"missing required reviewer", func(s *PullRequestStatus) {
			s.MissingRequiredReviewers = []string{"alice"}
		}, core.StepAwaitingRequiredReview},
		{"changes requested", func(s *PullRequestStatus) {
			s.ChangesRequiredReviewers = []string{"bob"}
		}, core.StepAwaitingChanges},
		{"needs more approvals", func(s *PullRequestStatus) {
			s.NeededReviewersCount = 1
		}, core.StepAwaitingReview},
		{"qa failed", func(s *PullRequestStatus) {
			s.QaStatus = core.QaFail
		}, core.StepAwaitingChanges},
		{"qa waiting", func(s *PullRequestStatus) {
			s.QaStatus = core.QaWaiting
		}, core.StepAwaitingQA},
		{"ready to merge", func(s *PullRequestStatus) {}, core.StepAwaitingMerge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(s)
			if got := Step(s); got != tt.want {
				t.Errorf("Step() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeriveChecksStatus(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		suites  []*core.CheckSuite
		want    core.ChecksStatus
	}{
		{"disabled forces skipped", false, []*core.CheckSuite{{Conclusion: core.ConclusionFailure}}, core.ChecksSkipped},
		{"no suites yet", true, nil, core.ChecksWaiting},
		{"all success", true, []*core.CheckSuite{{Conclusion: core.ConclusionSuccess}, {Conclusion: core.ConclusionNeutral}}, core.ChecksPass},
		{"one failure", true, []*core.CheckSuite{{Conclusion: core.ConclusionSuccess}, {Conclusion: core.ConclusionFailure}}, core.ChecksFail},
		{"one still pending", true, []*core.CheckSuite{{Conclusion: core.ConclusionSuccess}, {Conclusion: core.ConclusionPending}}, core.ChecksWaiting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveChecksStatus(tt.enabled, tt.suites); got != tt.want {
				t.Errorf("DeriveChecksStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveMergeStrategy(t *testing.T) {
	repo := &core.Repository{DefaultStrategy: core.StrategyMerge}
	pr := &core.PullRequest{}

	rules := []*core.MergeRule{
		{BaseBranch: core.Named("main"), HeadBranch: core.Named("feature-x"), Strategy: core.StrategySquash},
		{BaseBranch: core.Wildcard, HeadBranch: core.Wildcard, Strategy: core.StrategyRebase},
	}

	got, err := ResolveMergeStrategy(pr, repo, rules, "main", "feature-x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != core.StrategySquash {
		t.Errorf("ResolveMergeStrategy() = %v, want squash (most specific rule)", got)
	}

	got, err = ResolveMergeStrategy(pr, repo, rules, "main", "other-branch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != core.StrategyRebase {
		t.Errorf("ResolveMergeStrategy() = %v, want rebase (wildcard rule)", got)
	}

	override := core.StrategyRebase
	pr.StrategyOverride = &override
	got, err = ResolveMergeStrategy(pr, repo, rules, "main", "feature-x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != core.StrategyRebase {
		t.Errorf("ResolveMergeStrategy() with override = %v, want rebase", got)
	}

	pr.StrategyOverride = nil
	got, err = ResolveMergeStrategy(pr, repo, nil, "main", "unmatched")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != core.StrategyMerge {
		t.Errorf("ResolveMergeStrategy() with no rules = %v, want repository default", got)
	}
}

// TestResolveMergeStrategy_TiesBreakByCreationOrder covers spec §4.6.3: two
// rules with equal specificity for the same base/head pair must resolve to
// whichever was created first, since the stores list rules in creation
// order (store/postgres orders by id, store/memory by insertion).
func TestResolveMergeStrategy_TiesBreakByCreationOrder(t *testing.T) {
	repo := &core.Repository{DefaultStrategy: core.StrategyMerge}
	pr := &core.PullRequest{}

	ruleA := &core.MergeRule{BaseBranch: core.Named("main"), HeadBranch: core.Wildcard, Strategy: core.StrategySquash}
	ruleB := &core.MergeRule{BaseBranch: core.Wildcard, HeadBranch: core.Named("feature-x"), Strategy: core.StrategyRebase}

	if ruleA.Specificity() != ruleB.Specificity() {
		t.Fatalf("test setup: ruleA and ruleB must share a specificity, got %d and %d", ruleA.Specificity(), ruleB.Specificity())
	}

	got, err := ResolveMergeStrategy(pr, repo, []*core.MergeRule{ruleA, ruleB}, "main", "feature-x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != core.StrategySquash {
		t.Errorf("ResolveMergeStrategy() = %v, want squash (ruleA created first)", got)
	}

	got, err = ResolveMergeStrategy(pr, repo, []*core.MergeRule{ruleB, ruleA}, "main", "feature-x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != core.StrategyRebase {
		t.Errorf("ResolveMergeStrategy() = %v, want rebase (ruleB created first)", got)
	}
}

func TestEmbedAndExtractFromBody_RoundTrips(t *testing.T) {
	body := "Initial description.\n\nSome more text."
	summary := "## Status\n\n- Step: **AwaitingMerge**"

	embedded := EmbedInBody(body, summary)
	extracted, ok := ExtractFromBody(embedded)
	if !ok {
		t.Fatal("expected markers to be found after embedding")
	}
	if extracted != summary {
		t.Errorf("round trip mismatch:\ngot:  %q\nwant: %q", extracted, summary)
	}

	updated := "## Status\n\n- Step: **Locked**"
	reembedded := EmbedInBody(embedded, updated)
	extracted, ok = ExtractFromBody(reembedded)
	if !ok {
		t.Fatal("expected markers to still be found after re-embedding")
	}
	if extracted != updated {
		t.Errorf("second round trip mismatch:\ngot:  %q\nwant: %q", extracted, updated)
	}
}

func TestRenderCommitStatusDescription_Truncates(t *testing.T) {
	long := make([]rune, 200)
	for i := range long {
		long[i] = 'x'
	}
	got := RenderCommitStatusDescription(string(long))
	if len([]rune(got)) != maxDescriptionRunes {
		t.Errorf("expected truncation to %d runes, got %d", maxDescriptionRunes, len([]rune(got)))
	}
}
