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

import "context"

// Store is the persistence capability prbot depends on. Every method is its
// own transaction. Implementations live in store/postgres (production) and
// store/memory (tests); the rest of the codebase only ever sees this
// interface.
type Store interface {
	RepositoryStore
	PullRequestStore
	MergeRuleStore
	RequiredReviewerStore
	AccountStore
	ExternalAccountStore
	WebhookHistoryStore

	// HealthCheck verifies the store can serve requests.
	HealthCheck(ctx context.Context) error

	// ExportAll serialises every entity into an Export envelope.
	ExportAll(ctx context.Context) (*Export, error)
	// ImportAll replaces the store's contents from an Export envelope,
	// remapping ids as it allocates fresh ones.
	ImportAll(ctx context.Context, export *Export) error
}

// RepositoryStore is the CRUD + field-setter contract for Repository.
type RepositoryStore interface {
	CreateRepository(ctx context.Context, r *Repository) (*Repository, error)
	GetRepository(ctx context.Context, owner, name string) (*Repository, error)
	GetRepositoryByID(ctx context.Context, id uint64) (*Repository, error)
	ListRepositories(ctx context.Context) ([]*Repository, error)
	UpdateRepository(ctx context.Context, r *Repository) error
	DeleteRepository(ctx context.Context, id uint64) error

	SetRepositoryManualInteraction(ctx context.Context, id uint64, v bool) error
	SetRepositoryPRTitleRegex(ctx context.Context, id uint64, regex string) error
	SetRepositoryDefaultStrategy(ctx context.Context, id uint64, strategy MergeStrategy) error
	SetRepositoryDefaultNeededReviewers(ctx context.Context, id uint64, n uint64) error
	SetRepositoryDefaultAutomerge(ctx context.Context, id uint64, v bool) error
	SetRepositoryDefaultEnableQA(ctx context.Context, id uint64, v bool) error
	SetRepositoryDefaultEnableChecks(ctx context.Context, id uint64, v bool) error

	// GetOrCreateRepository implements the lazy-creation lifecycle rule:
	// repositories come into existence the first time an event names them.
	GetOrCreateRepository(ctx context.Context, owner, name string) (*Repository, error)
}

// PullRequestStore is the CRUD + field-setter contract for PullRequest.
type PullRequestStore interface {
	CreatePullRequest(ctx context.Context, pr *PullRequest) (*PullRequest, error)
	GetPullRequest(ctx context.Context, repositoryID, number uint64) (*PullRequest, error)
	GetPullRequestByID(ctx context.Context, id uint64) (*PullRequest, error)
	ListPullRequestsInRepository(ctx context.Context, repositoryID uint64) ([]*PullRequest, error)
	ListAllPullRequests(ctx context.Context) ([]*PullRequest, error)
	UpdatePullRequest(ctx context.Context, pr *PullRequest) error
	DeletePullRequest(ctx context.Context, id uint64) error

	SetPullRequestQaStatus(ctx context.Context, id uint64, status QaStatus) error
	SetPullRequestNeededReviewersCount(ctx context.Context, id uint64, n uint64) error
	SetPullRequestStatusCommentID(ctx context.Context, id uint64, commentID uint64) error
	SetPullRequestChecksEnabled(ctx context.Context, id uint64, v bool) error
	SetPullRequestAutomerge(ctx context.Context, id uint64, v bool) error
	SetPullRequestLocked(ctx context.Context, id uint64, v bool) error
	SetPullRequestStrategyOverride(ctx context.Context, id uint64, strategy *MergeStrategy) error

	// GetOrCreatePullRequest implements the lazy-creation lifecycle rule for
	// pull requests, applying the parent repository's defaults.
	GetOrCreatePullRequest(ctx context.Context, repo *Repository, number uint64) (*PullRequest, error)
}

// MergeRuleStore is the CRUD contract for MergeRule.
type MergeRuleStore interface {
	CreateMergeRule(ctx context.Context, r *MergeRule) (*MergeRule, error)
	GetMergeRule(ctx context.Context, repositoryID uint64, base, head RuleBranch) (*MergeRule, error)
	ListMergeRulesInRepository(ctx context.Context, repositoryID uint64) ([]*MergeRule, error)
	UpdateMergeRule(ctx context.Context, r *MergeRule) error
	DeleteMergeRule(ctx context.Context, id uint64) error
}

// RequiredReviewerStore is the CRUD contract for RequiredReviewer.
type RequiredReviewerStore interface {
	AddRequiredReviewer(ctx context.Context, pullRequestID uint64, username string) error
	RemoveRequiredReviewer(ctx context.Context, pullRequestID uint64, username string) error
	ListRequiredReviewers(ctx context.Context, pullRequestID uint64) ([]*RequiredReviewer, error)
	ResetRequiredReviewers(ctx context.Context, pullRequestID uint64) error
}

// AccountStore is the CRUD contract for Account.
type AccountStore interface {
	CreateAccount(ctx context.Context, a *Account) (*Account, error)
	GetAccount(ctx context.Context, username string) (*Account, error)
	ListAccounts(ctx context.Context) ([]*Account, error)
	ListAdminAccounts(ctx context.Context) ([]*Account, error)
	SetAccountIsAdmin(ctx context.Context, username string, isAdmin bool) error
	DeleteAccount(ctx context.Context, username string) error
}

// ExternalAccountStore is the CRUD contract for ExternalAccount and its rights.
type ExternalAccountStore interface {
	CreateExternalAccount(ctx context.Context, a *ExternalAccount) (*ExternalAccount, error)
	GetExternalAccount(ctx context.Context, username string) (*ExternalAccount, error)
	ListExternalAccounts(ctx context.Context) ([]*ExternalAccount, error)
	DeleteExternalAccount(ctx context.Context, username string) error

	AddExternalAccountRight(ctx context.Context, username string, repositoryID uint64) error
	RemoveExternalAccountRight(ctx context.Context, username string, repositoryID uint64) error
	ListExternalAccountRights(ctx context.Context, username string) ([]*ExternalAccountRight, error)
	HasExternalAccountRight(ctx context.Context, username string, repositoryID uint64) (bool, error)
}

// WebhookHistoryStore records accepted webhook deliveries for operator
// debugging, per SPEC_FULL.md's supplemented HistoryWebhookModel.
type WebhookHistoryStore interface {
	RecordWebhookEvent(ctx context.Context, e *WebhookEvent) error
	ListWebhookHistory(ctx context.Context, repositoryID uint64, limit int) ([]*WebhookEvent, error)
}
