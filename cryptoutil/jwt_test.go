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

package cryptoutil

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
)

func mustGenerateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	return key
}

func TestCreateAndVerifyRS256(t *testing.T) {
	key := mustGenerateKey(t)

	token, err := CreateRS256(key, Claims{"iss": "ci-bot"})
	if err != nil {
		t.Fatalf("CreateRS256: %v", err)
	}

	claims, err := VerifyRS256(token, &key.PublicKey)
	if err != nil {
		t.Fatalf("VerifyRS256: %v", err)
	}
	if iss, ok := claims.Issuer(); !ok || iss != "ci-bot" {
		t.Errorf("claims.Issuer() = %q, %v; want \"ci-bot\", true", iss, ok)
	}
}

func TestVerifyRS256_WrongKeyFails(t *testing.T) {
	token, err := CreateRS256(mustGenerateKey(t), Claims{"iss": "ci-bot"})
	if err != nil {
		t.Fatalf("CreateRS256: %v", err)
	}

	other := mustGenerateKey(t)
	if _, err := VerifyRS256(token, &other.PublicKey); err == nil {
		t.Fatal("expected verification against the wrong public key to fail")
	}
}

func TestDecodeUnverified_ReadsIssuerWithoutAKey(t *testing.T) {
	token, err := CreateRS256(mustGenerateKey(t), Claims{"iss": "ci-bot"})
	if err != nil {
		t.Fatalf("CreateRS256: %v", err)
	}

	claims, err := DecodeUnverified(token)
	if err != nil {
		t.Fatalf("DecodeUnverified: %v", err)
	}
	if iss, ok := claims.Issuer(); !ok || iss != "ci-bot" {
		t.Errorf("claims.Issuer() = %q, %v; want \"ci-bot\", true", iss, ok)
	}
}

func TestDecodeUnverified_RejectsMalformedToken(t *testing.T) {
	if _, err := DecodeUnverified("not.a.jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestGenerateKeyPair_ProducesUsableKeys(t *testing.T) {
	privatePEM, publicPEM, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	if privatePEM == "" || publicPEM == "" {
		t.Fatal("GenerateKeyPair returned an empty PEM block")
	}
	if privatePEM == publicPEM {
		t.Fatal("private and public PEM blocks must differ")
	}
}
