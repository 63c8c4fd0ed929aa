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

// Package api implements the bearer-JWT authenticated external and
// read-only admin HTTP endpoints, per spec §4.8.
package api

import (
	"context"
	"crypto/rsa"
	"net/http"
	"strings"

	"github.com/prbot/prbot/core"
	"github.com/prbot/prbot/cryptoutil"
)

type contextKey string

const externalAccountContextKey contextKey = "prbot.external_account"

// bearerToken extracts the raw JWT from an "Authorization: Bearer <jwt>"
// header, or "" if the header is absent or malformed.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimPrefix(auth, prefix)
}

// ExternalAuth guards external API routes: it decodes the JWT without
// verification to read "iss", loads the matching ExternalAccount, then
// verifies the signature with that account's public key. Failures are 400
// with a message that never echoes the token, per spec §4.8.
func ExternalAuth(store core.ExternalAccountStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusBadRequest)
				return
			}

			claims, err := cryptoutil.DecodeUnverified(token)
			if err != nil {
				http.Error(w, "malformed token", http.StatusBadRequest)
				return
			}
			iss, ok := claims.Issuer()
			if !ok {
				http.Error(w, "token missing issuer", http.StatusBadRequest)
				return
			}

			account, err := store.GetExternalAccount(r.Context(), iss)
			if err != nil {
				http.Error(w, "Unknown account", http.StatusBadRequest)
				return
			}

			pub, err := parseRSAPublicKey(account.PublicKey)
			if err != nil {
				http.Error(w, "account has no usable public key", http.StatusBadRequest)
				return
			}
			if _, err := cryptoutil.VerifyRS256(token, pub); err != nil {
				http.Error(w, "invalid token signature", http.StatusBadRequest)
				return
			}

			ctx := context.WithValue(r.Context(), externalAccountContextKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExternalAccountFromContext returns the authenticated ExternalAccount set
// by ExternalAuth, if any.
func ExternalAccountFromContext(ctx context.Context) (*core.ExternalAccount, bool) {
	a, ok := ctx.Value(externalAccountContextKey).(*core.ExternalAccount)
	return a, ok
}

// AdminAuth guards the read-only admin JSON endpoints with the same JWT
// mechanics as ExternalAuth, but verified against a single configured
// admin public key instead of a per-account one. An empty key disables the
// admin endpoints entirely, per spec §6.
func AdminAuth(adminPublicKey *rsa.PublicKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if adminPublicKey == nil {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "admin endpoints are disabled", http.StatusNotFound)
			})
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusBadRequest)
				return
			}
			if _, err := cryptoutil.VerifyRS256(token, adminPublicKey); err != nil {
				http.Error(w, "invalid token signature", http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
