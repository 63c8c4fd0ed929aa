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

package core

import (
	"context"
	"time"
)

// ForgeErrorKind distinguishes forge failure modes per spec §4.1.
type ForgeErrorKind int

const (
	ForgeTransport ForgeErrorKind = iota
	ForgeNotFound
	ForgeForbidden
	ForgeRateLimited
	ForgeMalformed
)

// ForgeError is returned by every Forge operation that fails.
type ForgeError struct {
	Kind ForgeErrorKind
	Err  error
}

func (e *ForgeError) Error() string { return "forge: " + e.Err.Error() }
func (e *ForgeError) Unwrap() error { return e.Err }

// GhPullRequest is the upstream mirror of a pull request as returned by
// pulls_get: the fields the status engine needs and nothing else.
type GhPullRequest struct {
	Number    uint64
	Title     string
	Body      string
	HeadSHA   string
	HeadRef   string
	BaseRef   string
	Draft     bool
	Merged    bool
	Mergeable *bool
}

// ReviewState is the canonical review-state enum, collapsing the forge's
// wire spellings (APPROVED, CHANGES_REQUESTED, ...) into one type.
type ReviewState string

const (
	ReviewApproved         ReviewState = "approved"
	ReviewChangesRequested ReviewState = "changes_requested"
	ReviewCommented        ReviewState = "commented"
	ReviewDismissed        ReviewState = "dismissed"
	ReviewPending          ReviewState = "pending"
)

// Review is one pull request review as returned by pull_reviews_list.
type Review struct {
	User        string
	State       ReviewState
	SubmittedAt time.Time
}

// CheckSuiteConclusion is the canonical check-suite conclusion enum.
type CheckSuiteConclusion string

const (
	ConclusionSuccess   CheckSuiteConclusion = "success"
	ConclusionNeutral   CheckSuiteConclusion = "neutral"
	ConclusionFailure   CheckSuiteConclusion = "failure"
	ConclusionCancelled CheckSuiteConclusion = "cancelled"
	ConclusionTimedOut  CheckSuiteConclusion = "timed_out"
	ConclusionPending   CheckSuiteConclusion = ""
)

// CheckSuite is one check suite as returned by check_suites_list.
type CheckSuite struct {
	Status     string
	Conclusion CheckSuiteConclusion
}

// Permission is the forge permission level a user holds on a repository.
type Permission string

const (
	PermissionNone  Permission = "none"
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
	PermissionAdmin Permission = "admin"
)

// AtLeastWrite reports whether p grants write access or stronger.
func (p Permission) AtLeastWrite() bool {
	return p == PermissionWrite || p == PermissionAdmin
}

// CommentTarget identifies where a comment is posted: either the issue
// (pull request) thread itself, or a specific existing comment to update.
type CommentTarget struct {
	IssueNumber uint64
	CommentID   uint64 // zero when posting a new comment
}

// Forge is the typed capability wrapping the forge's REST API, per spec §4.1.
type Forge interface {
	PullsGet(ctx context.Context, owner, name string, number uint64) (*GhPullRequest, error)
	PullsMerge(ctx context.Context, owner, name string, number uint64, title, message string, strategy MergeStrategy) error
	PullsUpdateBody(ctx context.Context, owner, name string, number uint64, body string) error

	PullReviewsList(ctx context.Context, owner, name string, number uint64) ([]*Review, error)
	PullReviewerRequestsAdd(ctx context.Context, owner, name string, number uint64, users []string) error
	PullReviewerRequestsRemove(ctx context.Context, owner, name string, number uint64, users []string) error

	CheckSuitesList(ctx context.Context, owner, name, sha string) ([]*CheckSuite, error)

	IssueLabelsList(ctx context.Context, owner, name string, number uint64) ([]string, error)
	IssueLabelsAdd(ctx context.Context, owner, name string, number uint64, labels []string) error
	IssueLabelsRemove(ctx context.Context, owner, name string, number uint64, labels []string) error
	IssueLabelsReplaceAll(ctx context.Context, owner, name string, number uint64, labels []string) error

	CommentsPost(ctx context.Context, owner, name string, number uint64, body string) (uint64, error)
	CommentsUpdate(ctx context.Context, owner, name string, commentID uint64, body string) error
	CommentsDelete(ctx context.Context, owner, name string, commentID uint64) error

	CommitStatusesUpdate(ctx context.Context, owner, name, sha string, state CommitState, context, description string) error

	UserPermissionsGet(ctx context.Context, owner, name, user string) (Permission, error)

	InstallationsCreateToken(ctx context.Context, installationID int64) (string, time.Time, error)

	// AddReaction is a small convenience layered on the primitives above,
	// used when applying the command interpreter's reaction effects.
	AddReaction(ctx context.Context, owner, name string, commentID uint64, reaction ReactionKind) error
}

// ReactionKind is the closed set of emoji reactions prbot posts.
type ReactionKind string

const (
	ReactionThumbsUp   ReactionKind = "+1"
	ReactionThumbsDown ReactionKind = "-1"
)
