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

package commands

import (
	"context"
	"testing"

	"github.com/prbot/prbot/core"
	"github.com/prbot/prbot/store/memory"
)

func TestBranchArg(t *testing.T) {
	if b := branchArg("*"); !b.IsWildcard() {
		t.Errorf("branchArg(%q) = %v, want wildcard", "*", b)
	}
	if b := branchArg("main"); b.IsWildcard() || !b.Matches("main") {
		t.Errorf("branchArg(%q) = %v, want named 'main'", "main", b)
	}
}

// TestPurgeDeletesEveryTrackedPullRequest exercises the same store calls
// newRepositoriesPurgeCommand issues, since that RunE closure opens a real
// database connection and can't be invoked directly in a unit test.
func TestPurgeDeletesEveryTrackedPullRequest(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repo, err := store.CreateRepository(ctx, &core.Repository{Owner: "o", Name: "r", DefaultStrategy: core.StrategyMerge})
	if err != nil {
		t.Fatalf("CreateRepository: %v", err)
	}
	for _, n := range []uint64{1, 2, 3} {
		if _, err := store.CreatePullRequest(ctx, &core.PullRequest{RepositoryID: repo.ID, Number: n}); err != nil {
			t.Fatalf("CreatePullRequest(%d): %v", n, err)
		}
	}

	prs, err := store.ListPullRequestsInRepository(ctx, repo.ID)
	if err != nil {
		t.Fatalf("ListPullRequestsInRepository: %v", err)
	}
	if len(prs) != 3 {
		t.Fatalf("seeded %d pull requests, want 3", len(prs))
	}
	for _, pr := range prs {
		if err := store.DeletePullRequest(ctx, pr.ID); err != nil {
			t.Fatalf("DeletePullRequest(%d): %v", pr.ID, err)
		}
	}

	remaining, err := store.ListPullRequestsInRepository(ctx, repo.ID)
	if err != nil {
		t.Fatalf("ListPullRequestsInRepository after purge: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("purge left %d pull requests, want 0", len(remaining))
	}
}
