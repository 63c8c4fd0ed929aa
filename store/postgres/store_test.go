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

package postgres

import (
	"database/sql"
	"testing"

	"github.com/lib/pq"

	"github.com/prbot/prbot/core"
)

func TestClassifyWrite_MapsPostgresErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind core.ErrorKind
	}{
		{"unique violation", &pq.Error{Code: "23505"}, core.KindConflict},
		{"foreign key violation", &pq.Error{Code: "23503"}, core.KindInput},
		{"other failure", sql.ErrConnDone, core.KindStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyWrite(tt.err, "repository")
			kind, ok := core.KindOf(err)
			if !ok {
				t.Fatalf("classifyWrite(%v) did not return a typed error", tt.err)
			}
			if kind != tt.wantKind {
				t.Errorf("got kind %v, want %v", kind, tt.wantKind)
			}
		})
	}
}

func TestClassifyWrite_Nil(t *testing.T) {
	if err := classifyWrite(nil, "repository"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestMergeRuleRow_ToCore_PreservesWildcards(t *testing.T) {
	row := mergeRuleRow{RepositoryID: 1, BaseBranch: "", HeadBranch: "release", Strategy: "squash"}
	rule := row.toCore()
	if !rule.BaseBranch.IsWildcard() {
		t.Error("expected empty base branch to round-trip as wildcard")
	}
	if rule.HeadBranch.IsWildcard() {
		t.Error("expected named head branch to not be wildcard")
	}
}
