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

// Package cryptoutil implements the two primitives the forge-facing surface
// needs: webhook HMAC signature verification and RSA JWT sign/verify.
package cryptoutil

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/prbot/prbot/core"
)

const signaturePrefix = "sha256="

// VerifySignature checks the X-Hub-Signature-256 header value against the
// HMAC-SHA256 of body under secret. The "sha256=" prefix is stripped before
// hex-decoding. A malformed prefix or hex payload is a typed InputError, not
// a silent false, so callers can distinguish "wrong signature" from
// "garbled header".
func VerifySignature(sigHeader string, body []byte, secret string) (bool, error) {
	if !strings.HasPrefix(sigHeader, signaturePrefix) {
		return false, core.InputError("signature header missing %q prefix", signaturePrefix)
	}
	sigHex := sigHeader[len(signaturePrefix):]
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return false, core.InputError("signature is not valid hex: %v", err)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	return hmac.Equal(sig, expected), nil
}
