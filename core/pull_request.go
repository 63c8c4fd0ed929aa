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

// QaStatus is the manual QA flag tracked per pull request.
type QaStatus string

const (
	QaWaiting QaStatus = "waiting"
	QaSkipped QaStatus = "skipped"
	QaPass    QaStatus = "pass"
	QaFail    QaStatus = "fail"
)

// PullRequest is the projection of a forge pull request prbot operates on.
type PullRequest struct {
	ID                   uint64
	RepositoryID         uint64
	Number               uint64
	QaStatus             QaStatus
	NeededReviewersCount uint64
	StatusCommentID      uint64
	ChecksEnabled        bool
	Automerge            bool
	Locked               bool
	StrategyOverride     *MergeStrategy
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// HasSummaryComment reports whether a summary comment has already been
// posted for this pull request. A StatusCommentID of zero means "none yet".
func (p *PullRequest) HasSummaryComment() bool {
	return p.StatusCommentID != 0
}

// NewPullRequest builds the default row for a pull request freshly observed
// in a repository, applying the repository's defaults as specified by the
// data model's lifecycle rules.
func NewPullRequest(repo *Repository, number uint64) *PullRequest {
	qa := QaSkipped
	if repo.DefaultEnableQA {
		qa = QaWaiting
	}
	return &PullRequest{
		RepositoryID:         repo.ID,
		Number:               number,
		QaStatus:             qa,
		NeededReviewersCount: repo.DefaultNeededReviewersCount,
		ChecksEnabled:        repo.DefaultEnableChecks,
		Automerge:            repo.DefaultAutomerge,
	}
}
