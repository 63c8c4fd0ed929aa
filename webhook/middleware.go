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

// Package webhook implements the forge-facing POST /webhook endpoint:
// signature verification, event-type routing, and dispatch into the core
// (repository/PR projection, welcome comment, command interpreter, status
// engine).
package webhook

import (
	"bytes"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/prbot/prbot/cryptoutil"
)

// SignatureHeader is the header the forge signs the body with.
const SignatureHeader = "X-Hub-Signature-256"

// EventHeader names the event type of the delivery.
const EventHeader = "X-GitHub-Event"

// VerifySignature returns a middleware enforcing X-Hub-Signature-256 against
// secret. When secret is empty, verification is disabled globally — logged
// once at startup by the caller, per spec §4.8.
func VerifySignature(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "could not read request body", http.StatusBadRequest)
				return
			}
			r.Body.Close()

			ok, err := cryptoutil.VerifySignature(r.Header.Get(SignatureHeader), body, secret)
			if err != nil {
				logrus.WithError(err).Warn("webhook signature malformed")
				http.Error(w, "invalid signature", http.StatusUnauthorized)
				return
			}
			if !ok {
				http.Error(w, "invalid signature", http.StatusUnauthorized)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
