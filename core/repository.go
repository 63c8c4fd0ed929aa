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
	"regexp"
	"time"
)

// MergeStrategy is the strategy the forge uses to land a pull request.
type MergeStrategy string

const (
	StrategyMerge  MergeStrategy = "merge"
	StrategySquash MergeStrategy = "squash"
	StrategyRebase MergeStrategy = "rebase"
)

// Valid reports whether s is one of the three known strategies.
func (s MergeStrategy) Valid() bool {
	switch s {
	case StrategyMerge, StrategySquash, StrategyRebase:
		return true
	default:
		return false
	}
}

// Repository is the projection of a forge repository prbot operates on.
type Repository struct {
	ID                          uint64
	Owner                       string
	Name                        string
	ManualInteraction           bool
	PRTitleValidationRegex      string
	DefaultStrategy             MergeStrategy
	DefaultNeededReviewersCount uint64
	DefaultAutomerge            bool
	DefaultEnableQA             bool
	DefaultEnableChecks         bool
	CreatedAt                   time.Time
	UpdatedAt                   time.Time
}

// Validate checks the invariants spelled out in the data model: owner and
// name are non-empty, the strategy is one of the three known values, and
// the title regex, if set, compiles.
func (r *Repository) Validate() error {
	if r.Owner == "" {
		return InputError("repository owner must not be empty")
	}
	if r.Name == "" {
		return InputError("repository name must not be empty")
	}
	if !r.DefaultStrategy.Valid() {
		return InputError("invalid default merge strategy %q", r.DefaultStrategy)
	}
	if r.PRTitleValidationRegex != "" {
		if _, err := regexp.Compile(r.PRTitleValidationRegex); err != nil {
			return InputError("invalid title validation regex: %v", err)
		}
	}
	return nil
}

// Slug returns the "owner/name" identity used in logs, lock names, and the
// commit-status/summary rendering.
func (r *Repository) Slug() string {
	return r.Owner + "/" + r.Name
}
