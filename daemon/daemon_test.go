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

package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prbot/prbot/core"
	"github.com/prbot/prbot/store/memory"
)

type fakeLock struct{ err error }

func (f fakeLock) WaitLock(ctx context.Context, name string, timeout time.Duration) (core.LockHandle, bool, error) {
	return nil, false, nil
}

func (f fakeLock) HealthCheck(ctx context.Context) error { return f.err }

func TestHealthHandler_BothHealthy(t *testing.T) {
	h := healthHandler(memory.New(), fakeLock{})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body["store"] || !body["lock"] {
		t.Errorf("body = %v, want store=true lock=true", body)
	}
}

func TestHealthHandler_LockUnhealthy(t *testing.T) {
	h := healthHandler(memory.New(), fakeLock{err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body["store"] || body["lock"] {
		t.Errorf("body = %v, want store=true lock=false", body)
	}
}
