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
	"testing"
	"time"

	"github.com/prbot/prbot/core"
	"github.com/prbot/prbot/store/memory"
)

// fakeForge is a minimal in-process core.Forge used only by this package's
// tests, modelled on the corpus's map-backed forge fakes.
type fakeForge struct {
	permissions  map[string]core.Permission
	mergeCalls   int
	labelsAdded  []string
	pull         *core.GhPullRequest
	reviews      []*core.Review
	checkSuites  []*core.CheckSuite
}

func (f *fakeForge) PullsGet(ctx context.Context, owner, name string, number uint64) (*core.GhPullRequest, error) {
	return f.pull, nil
}
func (f *fakeForge) PullsMerge(ctx context.Context, owner, name string, number uint64, title, message string, strategy core.MergeStrategy) error {
	f.mergeCalls++
	return nil
}
func (f *fakeForge) PullsUpdateBody(ctx context.Context, owner, name string, number uint64, body string) error {
	return nil
}
func (f *fakeForge) PullReviewsList(ctx context.Context, owner, name string, number uint64) ([]*core.Review, error) {
	return f.reviews, nil
}
func (f *fakeForge) PullReviewerRequestsAdd(ctx context.Context, owner, name string, number uint64, users []string) error {
	return nil
}
func (f *fakeForge) PullReviewerRequestsRemove(ctx context.Context, owner, name string, number uint64, users []string) error {
	return nil
}
func (f *fakeForge) CheckSuitesList(ctx context.Context, owner, name, sha string) ([]*core.CheckSuite, error) {
	return f.checkSuites, nil
}
func (f *fakeForge) IssueLabelsList(ctx context.Context, owner, name string, number uint64) ([]string, error) {
	return nil, nil
}
func (f *fakeForge) IssueLabelsAdd(ctx context.Context, owner, name string, number uint64, labels []string) error {
	f.labelsAdded = append(f.labelsAdded, labels...)
	return nil
}
func (f *fakeForge) IssueLabelsRemove(ctx context.Context, owner, name string, number uint64, labels []string) error {
	return nil
}
func (f *fakeForge) IssueLabelsReplaceAll(ctx context.Context, owner, name string, number uint64, labels []string) error {
	return nil
}
func (f *fakeForge) CommentsPost(ctx context.Context, owner, name string, number uint64, body string) (uint64, error) {
	return 1, nil
}
func (f *fakeForge) CommentsUpdate(ctx context.Context, owner, name string, commentID uint64, body string) error {
	return nil
}
func (f *fakeForge) CommentsDelete(ctx context.Context, owner, name string, commentID uint64) error {
	return nil
}
func (f *fakeForge) CommitStatusesUpdate(ctx context.Context, owner, name, sha string, state core.CommitState, context_, description string) error {
	return nil
}
func (f *fakeForge) UserPermissionsGet(ctx context.Context, owner, name, user string) (core.Permission, error) {
	return f.permissions[user], nil
}
func (f *fakeForge) InstallationsCreateToken(ctx context.Context, installationID int64) (string, time.Time, error) {
	return "", time.Time{}, nil
}
func (f *fakeForge) AddReaction(ctx context.Context, owner, name string, commentID uint64, reaction core.ReactionKind) error {
	return nil
}

var _ core.Forge = (*fakeForge)(nil)

func newFixture(t *testing.T) (*Dispatcher, Context, *fakeForge) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	repo, err := store.CreateRepository(ctx, &core.Repository{Owner: "owner", Name: "name", DefaultStrategy: core.StrategyMerge})
	if err != nil {
		t.Fatalf("CreateRepository: %v", err)
	}
	pr, err := store.CreatePullRequest(ctx, core.NewPullRequest(repo, 1))
	if err != nil {
		t.Fatalf("CreatePullRequest: %v", err)
	}

	forge := &fakeForge{
		permissions: map[string]core.Permission{},
		pull:        &core.GhPullRequest{Number: 1, HeadSHA: "abc", HeadRef: "feature", BaseRef: "main"},
	}
	d := &Dispatcher{Store: store, Forge: forge, BotUsername: "@bot"}
	return d, Context{Repository: repo, PullRequest: pr, Actor: "someone"}, forge
}

func TestDispatcher_CommandNotPrefixed_NoEffect(t *testing.T) {
	d, cctx, _ := newFixture(t)
	results, update, err := d.Run(context.Background(), cctx, "just a regular comment, no bot mention here")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 0 || update {
		t.Fatalf("expected no commands triggered, got %d results, update=%v", len(results), update)
	}
}

func TestDispatcher_ReqAdd_SplitsByPermission(t *testing.T) {
	d, cctx, forge := newFixture(t)
	forge.permissions["alice"] = core.PermissionWrite
	forge.permissions["bob"] = core.PermissionRead

	results, update, err := d.Run(context.Background(), cctx, "@bot req+ @alice @bob")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !update {
		t.Fatal("expected status update requested since alice was added")
	}
	if len(results) != 1 || results[0].HandlingStatus != Handled {
		t.Fatalf("expected one handled result, got %+v", results)
	}

	reviewers, err := d.Store.ListRequiredReviewers(context.Background(), cctx.PullRequest.ID)
	if err != nil {
		t.Fatalf("ListRequiredReviewers: %v", err)
	}
	if len(reviewers) != 1 || reviewers[0].Username != "alice" {
		t.Fatalf("expected only alice to be added, got %+v", reviewers)
	}
}

func TestDispatcher_MergeRefused_WhenNotReady(t *testing.T) {
	d, cctx, forge := newFixture(t)
	// Needs 1 approval, none given: step is AwaitingReview, not AwaitingMerge.
	if err := d.Store.SetPullRequestNeededReviewersCount(context.Background(), cctx.PullRequest.ID, 1); err != nil {
		t.Fatalf("SetPullRequestNeededReviewersCount: %v", err)
	}
	cctx.PullRequest.NeededReviewersCount = 1

	results, _, err := d.Run(context.Background(), cctx, "@bot merge")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if forge.mergeCalls != 0 {
		t.Fatalf("expected no pulls_merge call, got %d", forge.mergeCalls)
	}
	if len(results) != 1 || results[0].HandlingStatus != Denied {
		t.Fatalf("expected denied result, got %+v", results)
	}
	foundRefusal := false
	for _, a := range results[0].Actions {
		if a.Kind == ActionPostComment && a.Body == "Pull request is not ready to merge." {
			foundRefusal = true
		}
	}
	if !foundRefusal {
		t.Fatalf("expected refusal comment, got actions %+v", results[0].Actions)
	}
}

func TestDispatcher_AdminVerb_DeniedForNonAdmin(t *testing.T) {
	d, cctx, _ := newFixture(t)
	results, _, err := d.Run(context.Background(), cctx, "@bot admin-enable")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 || results[0].HandlingStatus != Denied {
		t.Fatalf("expected denied result for non-admin, got %+v", results)
	}
}
