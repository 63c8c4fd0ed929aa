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

import (
	"context"
	"testing"

	"github.com/prbot/prbot/cryptoutil"
	"github.com/prbot/prbot/store/memory"
)

func TestSetAccountAdmin_CreatesUnknownAccount(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	if err := setAccountAdmin(ctx, store, "octocat", true); err != nil {
		t.Fatalf("setAccountAdmin: %v", err)
	}
	account, err := store.GetAccount(ctx, "octocat")
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if !account.IsAdmin {
		t.Errorf("account.IsAdmin = false, want true")
	}

	if err := setAccountAdmin(ctx, store, "octocat", false); err != nil {
		t.Fatalf("setAccountAdmin (revoke): %v", err)
	}
	account, err = store.GetAccount(ctx, "octocat")
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if account.IsAdmin {
		t.Errorf("account.IsAdmin = true after revoke, want false")
	}
}

func TestParseRSAPrivateKeyPEM_RoundTripsGeneratedKey(t *testing.T) {
	privatePEM, publicPEM, err := cryptoutil.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	if privatePEM == "" || publicPEM == "" {
		t.Fatalf("GenerateKeyPair returned empty PEM")
	}

	priv, err := parseRSAPrivateKeyPEM(privatePEM)
	if err != nil {
		t.Fatalf("parseRSAPrivateKeyPEM: %v", err)
	}

	token, err := cryptoutil.CreateRS256(priv, cryptoutil.Claims{"iss": "octocat"})
	if err != nil {
		t.Fatalf("CreateRS256: %v", err)
	}
	claims, err := cryptoutil.VerifyRS256(token, &priv.PublicKey)
	if err != nil {
		t.Fatalf("VerifyRS256: %v", err)
	}
	if iss, ok := claims.Issuer(); !ok || iss != "octocat" {
		t.Errorf("claims.Issuer() = %q, %v; want \"octocat\", true", iss, ok)
	}
}

func TestParseRSAPrivateKeyPEM_RejectsGarbage(t *testing.T) {
	if _, err := parseRSAPrivateKeyPEM("not a pem block"); err == nil {
		t.Error("parseRSAPrivateKeyPEM(garbage): expected error")
	}
}
