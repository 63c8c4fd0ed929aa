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

// Package memory implements core.Store as an in-process, mutex-guarded fake
// for use in tests, modelled on the map-backed forge fakes the wider corpus
// uses in place of a real server.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/prbot/prbot/core"
)

// Store is an in-memory core.Store. All methods are safe for concurrent use.
type Store struct {
	mu sync.Mutex

	nextID uint64

	repositories      map[uint64]*core.Repository
	pullRequests      map[uint64]*core.PullRequest
	mergeRules        map[uint64]*core.MergeRule
	requiredReviewers map[uint64][]*core.RequiredReviewer // keyed by pull request id
	accounts          map[string]*core.Account
	externalAccounts  map[string]*core.ExternalAccount
	externalRights    map[string]map[uint64]bool // username -> repository id -> granted
	webhookEvents     map[uint64][]*core.WebhookEvent
}

// MaxWebhookHistory bounds the per-repository webhook event ring, per
// SPEC_FULL.md's supplemented history feature.
const MaxWebhookHistory = 100

// New builds an empty Store.
func New() *Store {
	return &Store{
		repositories:      make(map[uint64]*core.Repository),
		pullRequests:      make(map[uint64]*core.PullRequest),
		mergeRules:        make(map[uint64]*core.MergeRule),
		requiredReviewers: make(map[uint64][]*core.RequiredReviewer),
		accounts:          make(map[string]*core.Account),
		externalAccounts:  make(map[string]*core.ExternalAccount),
		externalRights:    make(map[string]map[uint64]bool),
		webhookEvents:      make(map[uint64][]*core.WebhookEvent),
	}
}

func (s *Store) allocID() uint64 {
	s.nextID++
	return s.nextID
}

// --- RepositoryStore ---

func (s *Store) CreateRepository(ctx context.Context, r *core.Repository) (*core.Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.repositories {
		if existing.Owner == r.Owner && existing.Name == r.Name {
			return nil, core.ConflictError("repository", nil)
		}
	}
	clone := *r
	clone.ID = s.allocID()
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	s.repositories[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (s *Store) GetRepository(ctx context.Context, owner, name string) (*core.Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.repositories {
		if r.Owner == owner && r.Name == name {
			out := *r
			return &out, nil
		}
	}
	return nil, core.UnknownRepository(owner, name)
}

func (s *Store) GetRepositoryByID(ctx context.Context, id uint64) (*core.Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.repositories[id]
	if !ok {
		return nil, core.UnknownRepository("", "")
	}
	out := *r
	return &out, nil
}

func (s *Store) ListRepositories(ctx context.Context) ([]*core.Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*core.Repository, 0, len(s.repositories))
	for _, r := range s.repositories {
		clone := *r
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateRepository(ctx context.Context, r *core.Repository) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.repositories[r.ID]; !ok {
		return core.UnknownRepository(r.Owner, r.Name)
	}
	clone := *r
	clone.UpdatedAt = time.Now()
	s.repositories[r.ID] = &clone
	return nil
}

func (s *Store) DeleteRepository(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.repositories[id]; !ok {
		return core.UnknownRepository("", "")
	}
	delete(s.repositories, id)
	return nil
}

func (s *Store) setRepository(id uint64, mutate func(*core.Repository)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.repositories[id]
	if !ok {
		return core.UnknownRepository("", "")
	}
	mutate(r)
	r.UpdatedAt = time.Now()
	return nil
}

func (s *Store) SetRepositoryManualInteraction(ctx context.Context, id uint64, v bool) error {
	return s.setRepository(id, func(r *core.Repository) { r.ManualInteraction = v })
}

func (s *Store) SetRepositoryPRTitleRegex(ctx context.Context, id uint64, regex string) error {
	return s.setRepository(id, func(r *core.Repository) { r.PRTitleValidationRegex = regex })
}

func (s *Store) SetRepositoryDefaultStrategy(ctx context.Context, id uint64, strategy core.MergeStrategy) error {
	return s.setRepository(id, func(r *core.Repository) { r.DefaultStrategy = strategy })
}

func (s *Store) SetRepositoryDefaultNeededReviewers(ctx context.Context, id uint64, n uint64) error {
	return s.setRepository(id, func(r *core.Repository) { r.DefaultNeededReviewersCount = n })
}

func (s *Store) SetRepositoryDefaultAutomerge(ctx context.Context, id uint64, v bool) error {
	return s.setRepository(id, func(r *core.Repository) { r.DefaultAutomerge = v })
}

func (s *Store) SetRepositoryDefaultEnableQA(ctx context.Context, id uint64, v bool) error {
	return s.setRepository(id, func(r *core.Repository) { r.DefaultEnableQA = v })
}

func (s *Store) SetRepositoryDefaultEnableChecks(ctx context.Context, id uint64, v bool) error {
	return s.setRepository(id, func(r *core.Repository) { r.DefaultEnableChecks = v })
}

func (s *Store) GetOrCreateRepository(ctx context.Context, owner, name string) (*core.Repository, error) {
	if r, err := s.GetRepository(ctx, owner, name); err == nil {
		return r, nil
	}
	return s.CreateRepository(ctx, &core.Repository{
		Owner:           owner,
		Name:            name,
		DefaultStrategy: core.StrategyMerge,
	})
}

// --- PullRequestStore ---

func (s *Store) CreatePullRequest(ctx context.Context, pr *core.PullRequest) (*core.PullRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.pullRequests {
		if existing.RepositoryID == pr.RepositoryID && existing.Number == pr.Number {
			return nil, core.ConflictError("pull request", nil)
		}
	}
	clone := *pr
	clone.ID = s.allocID()
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	s.pullRequests[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (s *Store) GetPullRequest(ctx context.Context, repositoryID, number uint64) (*core.PullRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, pr := range s.pullRequests {
		if pr.RepositoryID == repositoryID && pr.Number == number {
			out := *pr
			return &out, nil
		}
	}
	return nil, core.UnknownPullRequest("", "", number)
}

func (s *Store) GetPullRequestByID(ctx context.Context, id uint64) (*core.PullRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pr, ok := s.pullRequests[id]
	if !ok {
		return nil, core.UnknownPullRequest("", "", 0)
	}
	out := *pr
	return &out, nil
}

func (s *Store) ListPullRequestsInRepository(ctx context.Context, repositoryID uint64) ([]*core.PullRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*core.PullRequest
	for _, pr := range s.pullRequests {
		if pr.RepositoryID == repositoryID {
			clone := *pr
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *Store) ListAllPullRequests(ctx context.Context) ([]*core.PullRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*core.PullRequest, 0, len(s.pullRequests))
	for _, pr := range s.pullRequests {
		clone := *pr
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdatePullRequest(ctx context.Context, pr *core.PullRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pullRequests[pr.ID]; !ok {
		return core.UnknownPullRequest("", "", pr.Number)
	}
	clone := *pr
	clone.UpdatedAt = time.Now()
	s.pullRequests[pr.ID] = &clone
	return nil
}

func (s *Store) DeletePullRequest(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pullRequests[id]; !ok {
		return core.UnknownPullRequest("", "", 0)
	}
	delete(s.pullRequests, id)
	delete(s.requiredReviewers, id)
	return nil
}

func (s *Store) setPullRequest(id uint64, mutate func(*core.PullRequest)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pr, ok := s.pullRequests[id]
	if !ok {
		return core.UnknownPullRequest("", "", 0)
	}
	mutate(pr)
	pr.UpdatedAt = time.Now()
	return nil
}

func (s *Store) SetPullRequestQaStatus(ctx context.Context, id uint64, status core.QaStatus) error {
	return s.setPullRequest(id, func(pr *core.PullRequest) { pr.QaStatus = status })
}

func (s *Store) SetPullRequestNeededReviewersCount(ctx context.Context, id uint64, n uint64) error {
	return s.setPullRequest(id, func(pr *core.PullRequest) { pr.NeededReviewersCount = n })
}

func (s *Store) SetPullRequestStatusCommentID(ctx context.Context, id uint64, commentID uint64) error {
	return s.setPullRequest(id, func(pr *core.PullRequest) { pr.StatusCommentID = commentID })
}

func (s *Store) SetPullRequestChecksEnabled(ctx context.Context, id uint64, v bool) error {
	return s.setPullRequest(id, func(pr *core.PullRequest) { pr.ChecksEnabled = v })
}

func (s *Store) SetPullRequestAutomerge(ctx context.Context, id uint64, v bool) error {
	return s.setPullRequest(id, func(pr *core.PullRequest) { pr.Automerge = v })
}

func (s *Store) SetPullRequestLocked(ctx context.Context, id uint64, v bool) error {
	return s.setPullRequest(id, func(pr *core.PullRequest) { pr.Locked = v })
}

func (s *Store) SetPullRequestStrategyOverride(ctx context.Context, id uint64, strategy *core.MergeStrategy) error {
	return s.setPullRequest(id, func(pr *core.PullRequest) { pr.StrategyOverride = strategy })
}

func (s *Store) GetOrCreatePullRequest(ctx context.Context, repo *core.Repository, number uint64) (*core.PullRequest, error) {
	if pr, err := s.GetPullRequest(ctx, repo.ID, number); err == nil {
		return pr, nil
	}
	return s.CreatePullRequest(ctx, core.NewPullRequest(repo, number))
}

// --- MergeRuleStore ---

func (s *Store) CreateMergeRule(ctx context.Context, r *core.MergeRule) (*core.MergeRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.mergeRules {
		if existing.RepositoryID == r.RepositoryID && existing.BaseBranch == r.BaseBranch && existing.HeadBranch == r.HeadBranch {
			return nil, core.ConflictError("merge rule", nil)
		}
	}
	clone := *r
	clone.ID = s.allocID()
	clone.CreatedAt = time.Now()
	s.mergeRules[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (s *Store) GetMergeRule(ctx context.Context, repositoryID uint64, base, head core.RuleBranch) (*core.MergeRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.mergeRules {
		if r.RepositoryID == repositoryID && r.BaseBranch == base && r.HeadBranch == head {
			out := *r
			return &out, nil
		}
	}
	return nil, core.UnknownMergeRule(base, head)
}

func (s *Store) ListMergeRulesInRepository(ctx context.Context, repositoryID uint64) ([]*core.MergeRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*core.MergeRule
	for _, r := range s.mergeRules {
		if r.RepositoryID == repositoryID {
			clone := *r
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateMergeRule(ctx context.Context, r *core.MergeRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mergeRules[r.ID]; !ok {
		return core.UnknownMergeRule(r.BaseBranch, r.HeadBranch)
	}
	clone := *r
	s.mergeRules[r.ID] = &clone
	return nil
}

func (s *Store) DeleteMergeRule(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mergeRules[id]; !ok {
		return core.UnknownMergeRule(core.Wildcard, core.Wildcard)
	}
	delete(s.mergeRules, id)
	return nil
}

// --- RequiredReviewerStore ---

func (s *Store) AddRequiredReviewer(ctx context.Context, pullRequestID uint64, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rr := range s.requiredReviewers[pullRequestID] {
		if rr.Username == username {
			return nil
		}
	}
	s.requiredReviewers[pullRequestID] = append(s.requiredReviewers[pullRequestID], &core.RequiredReviewer{
		PullRequestID: pullRequestID,
		Username:      username,
	})
	return nil
}

func (s *Store) RemoveRequiredReviewer(ctx context.Context, pullRequestID uint64, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.requiredReviewers[pullRequestID]
	for i, rr := range list {
		if rr.Username == username {
			s.requiredReviewers[pullRequestID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) ListRequiredReviewers(ctx context.Context, pullRequestID uint64) ([]*core.RequiredReviewer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*core.RequiredReviewer, len(s.requiredReviewers[pullRequestID]))
	copy(out, s.requiredReviewers[pullRequestID])
	return out, nil
}

func (s *Store) ResetRequiredReviewers(ctx context.Context, pullRequestID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.requiredReviewers, pullRequestID)
	return nil
}

// --- AccountStore ---

func (s *Store) CreateAccount(ctx context.Context, a *core.Account) (*core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.Username]; ok {
		return nil, core.ConflictError("account", nil)
	}
	clone := *a
	clone.CreatedAt = time.Now()
	s.accounts[a.Username] = &clone
	out := clone
	return &out, nil
}

func (s *Store) GetAccount(ctx context.Context, username string) (*core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[username]
	if !ok {
		return nil, core.UnknownAccount(username)
	}
	out := *a
	return &out, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]*core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*core.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		clone := *a
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *Store) ListAdminAccounts(ctx context.Context) ([]*core.Account, error) {
	all, _ := s.ListAccounts(ctx)
	var out []*core.Account
	for _, a := range all {
		if a.IsAdmin {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) SetAccountIsAdmin(ctx context.Context, username string, isAdmin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[username]
	if !ok {
		return core.UnknownAccount(username)
	}
	a.IsAdmin = isAdmin
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[username]; !ok {
		return core.UnknownAccount(username)
	}
	delete(s.accounts, username)
	return nil
}

// --- ExternalAccountStore ---

func (s *Store) CreateExternalAccount(ctx context.Context, a *core.ExternalAccount) (*core.ExternalAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.externalAccounts[a.Username]; ok {
		return nil, core.ConflictError("external account", nil)
	}
	clone := *a
	clone.CreatedAt = time.Now()
	s.externalAccounts[a.Username] = &clone
	out := clone
	return &out, nil
}

func (s *Store) GetExternalAccount(ctx context.Context, username string) (*core.ExternalAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.externalAccounts[username]
	if !ok {
		return nil, core.UnknownExternalAccount(username)
	}
	out := *a
	return &out, nil
}

func (s *Store) ListExternalAccounts(ctx context.Context) ([]*core.ExternalAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*core.ExternalAccount, 0, len(s.externalAccounts))
	for _, a := range s.externalAccounts {
		clone := *a
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *Store) DeleteExternalAccount(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.externalAccounts[username]; !ok {
		return core.UnknownExternalAccount(username)
	}
	delete(s.externalAccounts, username)
	delete(s.externalRights, username)
	return nil
}

func (s *Store) AddExternalAccountRight(ctx context.Context, username string, repositoryID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.externalRights[username] == nil {
		s.externalRights[username] = make(map[uint64]bool)
	}
	s.externalRights[username][repositoryID] = true
	return nil
}

func (s *Store) RemoveExternalAccountRight(ctx context.Context, username string, repositoryID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.externalRights[username], repositoryID)
	return nil
}

func (s *Store) ListExternalAccountRights(ctx context.Context, username string) ([]*core.ExternalAccountRight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*core.ExternalAccountRight
	for repoID := range s.externalRights[username] {
		out = append(out, &core.ExternalAccountRight{Username: username, RepositoryID: repoID})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RepositoryID < out[j].RepositoryID })
	return out, nil
}

func (s *Store) HasExternalAccountRight(ctx context.Context, username string, repositoryID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.externalRights[username][repositoryID], nil
}

// --- WebhookHistoryStore ---

func (s *Store) RecordWebhookEvent(ctx context.Context, e *core.WebhookEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.webhookEvents[e.RepositoryID], e)
	if len(list) > MaxWebhookHistory {
		list = list[len(list)-MaxWebhookHistory:]
	}
	s.webhookEvents[e.RepositoryID] = list
	return nil
}

func (s *Store) ListWebhookHistory(ctx context.Context, repositoryID uint64, limit int) ([]*core.WebhookEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.webhookEvents[repositoryID]
	if limit > 0 && limit < len(list) {
		list = list[len(list)-limit:]
	}
	out := make([]*core.WebhookEvent, len(list))
	copy(out, list)
	return out, nil
}

// --- Store-level operations ---

func (s *Store) HealthCheck(ctx context.Context) error { return nil }

func (s *Store) ExportAll(ctx context.Context) (*core.Export, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	export := &core.Export{}
	for _, r := range s.repositories {
		clone := *r
		export.Repositories = append(export.Repositories, &clone)
	}
	for _, pr := range s.pullRequests {
		clone := *pr
		export.PullRequests = append(export.PullRequests, &clone)
	}
	for _, r := range s.mergeRules {
		clone := *r
		export.MergeRules = append(export.MergeRules, &clone)
	}
	for _, list := range s.requiredReviewers {
		for _, rr := range list {
			clone := *rr
			export.RequiredReviewers = append(export.RequiredReviewers, &clone)
		}
	}
	for _, a := range s.accounts {
		clone := *a
		export.Accounts = append(export.Accounts, &clone)
	}
	for _, a := range s.externalAccounts {
		clone := *a
		export.ExternalAccounts = append(export.ExternalAccounts, &clone)
	}
	for username, repos := range s.externalRights {
		for repoID := range repos {
			export.ExternalAccountRights = append(export.ExternalAccountRights, &core.ExternalAccountRight{
				Username: username, RepositoryID: repoID,
			})
		}
	}
	return export, nil
}

// ImportAll replaces the store's contents, allocating fresh ids and
// relinking foreign keys through local old-to-new id maps.
func (s *Store) ImportAll(ctx context.Context, export *core.Export) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.repositories = make(map[uint64]*core.Repository)
	s.pullRequests = make(map[uint64]*core.PullRequest)
	s.mergeRules = make(map[uint64]*core.MergeRule)
	s.requiredReviewers = make(map[uint64][]*core.RequiredReviewer)
	s.accounts = make(map[string]*core.Account)
	s.externalAccounts = make(map[string]*core.ExternalAccount)
	s.externalRights = make(map[string]map[uint64]bool)
	s.nextID = 0

	repoIDs := make(map[uint64]uint64)
	for _, r := range export.Repositories {
		clone := *r
		oldID := clone.ID
		clone.ID = s.allocID()
		repoIDs[oldID] = clone.ID
		s.repositories[clone.ID] = &clone
	}
	prIDs := make(map[uint64]uint64)
	for _, pr := range export.PullRequests {
		clone := *pr
		oldID := clone.ID
		clone.ID = s.allocID()
		clone.RepositoryID = repoIDs[clone.RepositoryID]
		prIDs[oldID] = clone.ID
		s.pullRequests[clone.ID] = &clone
	}
	for _, r := range export.MergeRules {
		clone := *r
		clone.ID = s.allocID()
		clone.RepositoryID = repoIDs[clone.RepositoryID]
		s.mergeRules[clone.ID] = &clone
	}
	for _, rr := range export.RequiredReviewers {
		newPRID := prIDs[rr.PullRequestID]
		s.requiredReviewers[newPRID] = append(s.requiredReviewers[newPRID], &core.RequiredReviewer{
			PullRequestID: newPRID, Username: rr.Username,
		})
	}
	for _, a := range export.Accounts {
		clone := *a
		s.accounts[clone.Username] = &clone
	}
	for _, a := range export.ExternalAccounts {
		clone := *a
		s.externalAccounts[clone.Username] = &clone
	}
	for _, right := range export.ExternalAccountRights {
		newRepoID := repoIDs[right.RepositoryID]
		if s.externalRights[right.Username] == nil {
			s.externalRights[right.Username] = make(map[uint64]bool)
		}
		s.externalRights[right.Username][newRepoID] = true
	}
	return nil
}

var _ core.Store = (*Store)(nil)
