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

// RuleBranch is a tagged variant matching either any branch (Wildcard) or
// one named branch.
type RuleBranch struct {
	Name string // empty when Wildcard
}

// Wildcard is the RuleBranch matching any branch name.
var Wildcard = RuleBranch{}

// Named returns a RuleBranch matching exactly the given branch name.
func Named(name string) RuleBranch {
	return RuleBranch{Name: name}
}

// IsWildcard reports whether b is the wildcard variant.
func (b RuleBranch) IsWildcard() bool { return b.Name == "" }

// Matches reports whether b matches the given upstream branch name.
func (b RuleBranch) Matches(branch string) bool {
	if b.IsWildcard() {
		return true
	}
	return b.Name == branch
}

// Specificity is used to rank rules: two named branches outrank one named
// branch, which outranks two wildcards.
func (b RuleBranch) Specificity() int {
	if b.IsWildcard() {
		return 0
	}
	return 1
}

func (b RuleBranch) String() string {
	if b.IsWildcard() {
		return "*"
	}
	return b.Name
}

// MergeRule is a (base, head, strategy) triple scoped to a repository.
type MergeRule struct {
	ID           uint64
	RepositoryID uint64
	BaseBranch   RuleBranch
	HeadBranch   RuleBranch
	Strategy     MergeStrategy
	CreatedAt    time.Time
}

// IsDefaultRule reports whether r is the repository's default rule: both
// branches wildcard. The default rule's strategy lives on the Repository
// and the rule itself must not be deleted directly.
func (r *MergeRule) IsDefaultRule() bool {
	return r.BaseBranch.IsWildcard() && r.HeadBranch.IsWildcard()
}

// Specificity ranks r against other candidate rules matching the same
// branches: both Named outranks one Named, which outranks both Wildcard.
func (r *MergeRule) Specificity() int {
	return r.BaseBranch.Specificity() + r.HeadBranch.Specificity()
}
