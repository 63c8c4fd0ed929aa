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

package forge

import (
	"context"
	"net/http"
	"testing"

	"github.com/h2non/gock"

	"github.com/prbot/prbot/core"
)

// newTestClient builds a Client whose underlying transport is intercepted by
// gock, restoring the original constructor on test cleanup.
func newTestClient(t *testing.T) *Client {
	t.Helper()
	original := newHTTPClient
	t.Cleanup(func() { newHTTPClient = original })

	newHTTPClient = func(cfg Config) *http.Client {
		httpClient := &http.Client{}
		gock.InterceptClient(httpClient)
		t.Cleanup(func() {
			gock.RestoreClient(httpClient)
			gock.Off()
		})
		return httpClient
	}

	client, err := New(Config{StaticToken: "test-token", UserAgent: "prbot-test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestPullsGet_Success(t *testing.T) {
	client := newTestClient(t)

	gock.New("https://api.github.com").
		Get("/repos/octocat/hello-world/pulls/42").
		Reply(200).
		JSON(map[string]interface{}{
			"number": 42,
			"title":  "Add feature",
			"draft":  false,
			"head":   map[string]string{"sha": "abc123", "ref": "feature"},
			"base":   map[string]string{"ref": "main"},
		})

	pr, err := client.PullsGet(context.Background(), "octocat", "hello-world", 42)
	if err != nil {
		t.Fatalf("PullsGet: %v", err)
	}
	if pr.Number != 42 || pr.Title != "Add feature" || pr.HeadRef != "feature" || pr.BaseRef != "main" {
		t.Errorf("PullsGet returned %+v", pr)
	}
}

func TestPullsGet_NotFoundIsClassified(t *testing.T) {
	client := newTestClient(t)

	gock.New("https://api.github.com").
		Get("/repos/octocat/hello-world/pulls/404").
		Reply(404).
		JSON(map[string]string{"message": "Not Found"})

	_, err := client.PullsGet(context.Background(), "octocat", "hello-world", 404)
	if err == nil {
		t.Fatal("expected error")
	}
	ferr, ok := err.(*core.ForgeError)
	if !ok {
		t.Fatalf("error is %T, want *core.ForgeError", err)
	}
	if ferr.Kind != core.ForgeNotFound {
		t.Errorf("ForgeError.Kind = %v, want ForgeNotFound", ferr.Kind)
	}
}

func TestCommitStatusesUpdate_TruncatesLongDescription(t *testing.T) {
	client := newTestClient(t)

	longDescription := ""
	for i := 0; i < 200; i++ {
		longDescription += "x"
	}

	gock.New("https://api.github.com").
		Post("/repos/octocat/hello-world/statuses/deadbeef").
		MatchType("json").
		Reply(201).
		JSON(map[string]string{"state": "success"})

	err := client.CommitStatusesUpdate(context.Background(), "octocat", "hello-world", "deadbeef", core.CommitSuccess, "prbot/validation", longDescription)
	if err != nil {
		t.Fatalf("CommitStatusesUpdate: %v", err)
	}
	if !gock.IsDone() {
		t.Error("expected gock mock to be consumed")
	}
	if got := len([]rune(truncateDescription(longDescription))); got != maxDescriptionRunes {
		t.Errorf("truncated description has %d runes, want %d", got, maxDescriptionRunes)
	}
}

func TestUserPermissionsGet_MapsPermissionLevels(t *testing.T) {
	client := newTestClient(t)

	gock.New("https://api.github.com").
		Get("/repos/octocat/hello-world/collaborators/alice/permission").
		Reply(200).
		JSON(map[string]string{"permission": "write"})

	perm, err := client.UserPermissionsGet(context.Background(), "octocat", "hello-world", "alice")
	if err != nil {
		t.Fatalf("UserPermissionsGet: %v", err)
	}
	if perm != core.PermissionWrite {
		t.Errorf("UserPermissionsGet = %v, want PermissionWrite", perm)
	}
}
