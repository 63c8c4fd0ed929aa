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
	"crypto/x509"
	"encoding/pem"
	"fmt"

	jwt "github.com/dgrijalva/jwt-go/v4"

	"github.com/prbot/prbot/core"
)

// Claims is the minimal claim set prbot signs and verifies: app JWTs carry
// iat/exp/iss, external-account JWTs carry only iss.
type Claims map[string]interface{}

// rsaKeyBits is the key size generated for new external accounts, matching
// the size app private keys are expected to be provisioned at.
const rsaKeyBits = 2048

// GenerateKeyPair creates a fresh RSA key pair, PEM-encoded: the private key
// in PKCS#1 form, the same encoding config.ParseRSAPrivateKey accepts, and
// the public key in PKIX form.
func GenerateKeyPair() (privatePEM, publicPEM string, err error) {
	key, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return "", "", fmt.Errorf("generate rsa key: %w", err)
	}
	privBlock := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", "", fmt.Errorf("marshal public key: %w", err)
	}
	pubBlock := &pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes}
	return string(pem.EncodeToMemory(privBlock)), string(pem.EncodeToMemory(pubBlock)), nil
}

// CreateRS256 signs claims with priv using RS256 and returns the compact
// token string.
func CreateRS256(priv *rsa.PrivateKey, claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims(claims))
	signed, err := token.SignedString(priv)
	if err != nil {
		return "", core.AuthError("failed to sign jwt: %v", err)
	}
	return signed, nil
}

// VerifyRS256 verifies token's signature against pub and returns its claims.
// Expiration is intentionally not enforced here: external-account tokens
// have no exp claim, and forged app JWTs are rejected by the forge itself,
// per spec §4.4.
func VerifyRS256(token string, pub *rsa.PublicKey) (Claims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return pub, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, core.AuthError("invalid jwt signature: %v", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, core.AuthError("unexpected jwt claims type")
	}
	return Claims(claims), nil
}

// DecodeUnverified reads token's claims without checking the signature. It
// exists only to discover the issuer before the matching key has been
// fetched from the store; callers must call VerifyRS256 before trusting
// anything else in the result.
func DecodeUnverified(token string) (Claims, error) {
	parser := jwt.Parser{}
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, core.InputError("malformed jwt: %v", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, core.InputError("unexpected jwt claims type")
	}
	return Claims(claims), nil
}

// Issuer extracts the "iss" claim as a string, if present.
func (c Claims) Issuer() (string, bool) {
	iss, ok := c["iss"].(string)
	return iss, ok
}
