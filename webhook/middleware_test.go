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

package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testSecret = "super-secret" //nolint:gosec // test fixture, not a real credential

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func passThroughHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body in handler: %v", err)
		}
		if string(body) != `{"action":"opened"}` {
			t.Errorf("handler saw body %q", body)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestVerifySignature_AcceptsValidSignature(t *testing.T) {
	body := []byte(`{"action":"opened"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(string(body)))
	req.Header.Set(SignatureHeader, signBody(testSecret, body))

	rec := httptest.NewRecorder()
	VerifySignature(testSecret)(passThroughHandler(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestVerifySignature_RejectsTamperedBody(t *testing.T) {
	signed := []byte(`{"action":"opened"}`)
	tampered := []byte(`{"action":"closed"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(string(tampered)))
	req.Header.Set(SignatureHeader, signBody(testSecret, signed))

	called := false
	rec := httptest.NewRecorder()
	handler := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })
	VerifySignature(testSecret)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if called {
		t.Error("next handler was called despite invalid signature")
	}
}

func TestVerifySignature_RejectsMissingHeader(t *testing.T) {
	body := []byte(`{"action":"opened"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(string(body)))

	rec := httptest.NewRecorder()
	VerifySignature(testSecret)(passThroughHandler(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestVerifySignature_EmptySecretDisablesVerification(t *testing.T) {
	body := []byte(`{"action":"opened"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(string(body)))

	rec := httptest.NewRecorder()
	VerifySignature("")(passThroughHandler(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
