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

import "time"

// WebhookEvent is one accepted webhook delivery, kept for operator
// debugging in a bounded per-repository ring (SPEC_FULL.md §9).
type WebhookEvent struct {
	ID           string // ksuid, k-sortable
	RepositoryID uint64
	EventName    string
	Action       string
	ReceivedAt   time.Time
}

// Export is the JSON envelope used by the Store's bulk export/import
// operations and by the prbotctl export/import commands.
type Export struct {
	Repositories          []*Repository           `json:"repositories"`
	PullRequests          []*PullRequest          `json:"pull_requests"`
	MergeRules            []*MergeRule            `json:"merge_rules"`
	RequiredReviewers     []*RequiredReviewer      `json:"required_reviewers"`
	Accounts              []*Account              `json:"accounts"`
	ExternalAccounts      []*ExternalAccount      `json:"external_accounts"`
	ExternalAccountRights []*ExternalAccountRight `json:"external_account_rights"`
}
