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

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMiddleware_RecordsRouteAndStatus(t *testing.T) {
	httpRequestsTotal.Reset()

	r := chi.NewRouter()
	r.Use(HTTPMiddleware)
	r.Get("/repositories/{owner}/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodGet, "/repositories/acme/widgets", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/repositories/{owner}/{name}", "GET", "201"))
	if got != 1 {
		t.Errorf("got %v requests recorded for the matched route, want 1", got)
	}
}

func TestHTTPMiddleware_DefaultsStatusToOK(t *testing.T) {
	httpRequestsTotal.Reset()

	r := chi.NewRouter()
	r.Use(HTTPMiddleware)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/health", "GET", "200"))
	if got != 1 {
		t.Errorf("got %v, want handler that never calls WriteHeader to record as 200", got)
	}
}

func TestRoutePattern_FallsBackToLiteralPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	if got := routePattern(req); got != "/metrics" {
		t.Errorf("routePattern() = %q, want literal path for an unmatched route", got)
	}
}
