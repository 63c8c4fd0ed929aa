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

package webhook

// ghRepository is the minimal repository shape carried by every event.
type ghRepository struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// ghPullRequestRef is the minimal pull-request shape carried by
// pull_request, pull_request_review and issue_comment events.
type ghPullRequestRef struct {
	Number int `json:"number"`
}

type pingPayload struct {
	Zen        string        `json:"zen"`
	Repository *ghRepository `json:"repository"`
}

type pullRequestPayload struct {
	Action      string       `json:"action"`
	Number      int          `json:"number"`
	PullRequest struct {
		User struct {
			Login string `json:"login"`
		} `json:"user"`
	} `json:"pull_request"`
	Repository ghRepository `json:"repository"`
}

type issueCommentPayload struct {
	Action string `json:"action"`
	Issue  struct {
		Number      int  `json:"number"`
		PullRequest *struct{} `json:"pull_request"`
	} `json:"issue"`
	Comment struct {
		ID   uint64 `json:"id"`
		Body string `json:"body"`
		User struct {
			Login string `json:"login"`
		} `json:"user"`
	} `json:"comment"`
	Repository ghRepository `json:"repository"`
}

type pullRequestReviewPayload struct {
	Action      string            `json:"action"`
	PullRequest ghPullRequestRef  `json:"pull_request"`
	Repository  ghRepository      `json:"repository"`
}

type checkSuitePayload struct {
	Action     string `json:"action"`
	CheckSuite struct {
		Conclusion    string `json:"conclusion"`
		HeadSHA       string `json:"head_sha"`
		PullRequests  []ghPullRequestRef `json:"pull_requests"`
	} `json:"check_suite"`
	Repository ghRepository `json:"repository"`
}
