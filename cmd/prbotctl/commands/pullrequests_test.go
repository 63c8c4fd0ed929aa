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

package commands

import "testing"

func TestParsePRNumber(t *testing.T) {
	n, err := parsePRNumber("42")
	if err != nil {
		t.Fatalf("parsePRNumber(42): %v", err)
	}
	if n != 42 {
		t.Errorf("parsePRNumber(42) = %d", n)
	}

	if _, err := parsePRNumber("not-a-number"); err == nil {
		t.Error("parsePRNumber(not-a-number): expected error")
	}
	if _, err := parsePRNumber("-1"); err == nil {
		t.Error("parsePRNumber(-1): expected error")
	}
}
