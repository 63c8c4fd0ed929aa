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
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

const testSecret = "super-secret" //nolint:gosec // test fixture, not a real credential

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature_Valid(t *testing.T) {
	body := []byte(`{"action":"opened"}`)
	ok, err := VerifySignature(sign(testSecret, body), body, testSecret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected valid signature to verify")
	}
}

func TestVerifySignature_BitFlipped(t *testing.T) {
	body := []byte(`{"action":"opened"}`)
	tampered := []byte(`{"action":"Opened"}`)
	ok, err := VerifySignature(sign(testSecret, body), tampered, testSecret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected tampered body to fail verification")
	}
}

func TestVerifySignature_BadPrefix(t *testing.T) {
	body := []byte(`{"action":"opened"}`)
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	badHeader := "sha1=" + hex.EncodeToString(mac.Sum(nil))

	ok, err := VerifySignature(badHeader, body, testSecret)
	if err == nil {
		t.Fatal("expected error for wrong prefix")
	}
	if ok {
		t.Fatal("expected ok=false alongside the error")
	}
}

func TestVerifySignature_BadHex(t *testing.T) {
	body := []byte(`{}`)
	_, err := VerifySignature("sha256=not-hex!!", body, testSecret)
	if err == nil {
		t.Fatal("expected error for invalid hex payload")
	}
}
