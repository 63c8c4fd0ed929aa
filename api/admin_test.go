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

package api

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/dgrijalva/jwt-go/v4"

	"github.com/prbot/prbot/config"
	"github.com/prbot/prbot/core"
	"github.com/prbot/prbot/store/memory"
)

func signedJWT(t *testing.T, key *rsa.PrivateKey, issuer string) string {
	t.Helper()
	claims := jwt.MapClaims{"iss": issuer}
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return signed
}

func TestAdminHandler_ListRepositories_RequiresValidToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	st := memory.New()
	ctx := context.Background()
	repo, err := st.CreateRepository(ctx, &core.Repository{Owner: "acme", Name: "widgets", DefaultStrategy: core.StrategyMerge})
	if err != nil {
		t.Fatalf("CreateRepository: %v", err)
	}

	h := &AdminHandler{Store: st}
	router := h.Router(&key.PublicKey, config.Config{})

	req := httptest.NewRequest("GET", "/repositories", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != 400 {
		t.Fatalf("expected 400 with no bearer token, got %d", rec.Code)
	}

	req = httptest.NewRequest("GET", "/repositories", nil)
	req.Header.Set("Authorization", "Bearer "+signedJWT(t, key, "admin"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("expected 200 with valid token, got %d: %s", rec.Code, rec.Body.String())
	}

	var views []repositoryView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(views) != 1 || views[0].ID != repo.ID {
		t.Fatalf("unexpected views: %+v", views)
	}
}

func TestAdminHandler_Disabled_WhenNoAdminKey(t *testing.T) {
	h := &AdminHandler{Store: memory.New()}
	router := h.Router(nil, config.Config{})

	req := httptest.NewRequest("GET", "/accounts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != 404 {
		t.Fatalf("expected 404 when admin endpoints disabled, got %d", rec.Code)
	}
}

func TestAdminHandler_ListExternalAccounts_IncludesRights(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	st := memory.New()
	ctx := context.Background()
	repo, err := st.CreateRepository(ctx, &core.Repository{Owner: "acme", Name: "widgets", DefaultStrategy: core.StrategyMerge})
	if err != nil {
		t.Fatalf("CreateRepository: %v", err)
	}
	if _, err := st.CreateExternalAccount(ctx, &core.ExternalAccount{Username: "ci-bot", PublicKey: "pub"}); err != nil {
		t.Fatalf("CreateExternalAccount: %v", err)
	}
	if err := st.AddExternalAccountRight(ctx, "ci-bot", repo.ID); err != nil {
		t.Fatalf("AddExternalAccountRight: %v", err)
	}

	h := &AdminHandler{Store: st}
	router := h.Router(&key.PublicKey, config.Config{})

	req := httptest.NewRequest("GET", "/external-accounts", nil)
	req.Header.Set("Authorization", "Bearer "+signedJWT(t, key, "admin"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var views []externalAccountView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(views) != 1 || len(views[0].Rights) != 1 {
		t.Fatalf("unexpected views: %+v", views)
	}
}
