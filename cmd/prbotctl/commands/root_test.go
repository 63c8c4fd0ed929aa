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

func TestParseRepositoryPath(t *testing.T) {
	cases := []struct {
		in        string
		owner, ok string
	}{
		{"octocat/hello-world", "octocat", "hello-world"},
		{"a/b/c", "a", "b/c"},
	}
	for _, c := range cases {
		owner, name, err := parseRepositoryPath(c.in)
		if err != nil {
			t.Fatalf("parseRepositoryPath(%q): %v", c.in, err)
		}
		if owner != c.owner || name != c.ok {
			t.Errorf("parseRepositoryPath(%q) = %q, %q; want %q, %q", c.in, owner, name, c.owner, c.ok)
		}
	}
}

func TestParseRepositoryPath_Invalid(t *testing.T) {
	for _, in := range []string{"no-slash", "/name", "owner/"} {
		if _, _, err := parseRepositoryPath(in); err == nil {
			t.Errorf("parseRepositoryPath(%q): expected error", in)
		}
	}
}

func TestGetRepository(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	if _, err := store.CreateRepository(ctx, &core.Repository{Owner: "octocat", Name: "hello-world", DefaultStrategy: core.StrategyMerge}); err != nil {
		t.Fatalf("CreateRepository: %v", err)
	}

	repo, err := getRepository(ctx, store, "octocat/hello-world")
	if err != nil {
		t.Fatalf("getRepository: %v", err)
	}
	if repo.Owner != "octocat" || repo.Name != "hello-world" {
		t.Errorf("getRepository returned %+v", repo)
	}

	if _, err := getRepository(ctx, store, "octocat/unknown"); !core.IsNotFound(err) {
		t.Errorf("getRepository(unknown): expected IsNotFound, got %v", err)
	}
}
