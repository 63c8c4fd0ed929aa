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
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/prbot/prbot/core"
	"github.com/prbot/prbot/status"
)

// ExternalHandler serves the bearer-JWT protected endpoints third-party
// automation uses to poke a pull request's status engine, e.g. a CI system
// reporting out of band that it finished running checks it owns outside
// GitHub's check-run API. The exact route list is not part of the core
// contract (spec §6); this is the minimal surface SPEC_FULL.md's external
// automation use case needs.
type ExternalHandler struct {
	Store  core.Store
	Engine *status.Engine
}

// Router mounts the external endpoints, guarded by ExternalAuth.
func (h *ExternalHandler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(ExternalAuth(h.Store))
	r.Post("/repositories/{owner}/{name}/pulls/{number}/sync", h.syncPullRequest)
	return r
}

// syncPullRequest re-derives and reconciles one pull request's status,
// after checking the authenticated account holds a right on the
// repository. It exists so external systems can nudge prbot the same way
// an admin's "sync" command does, without forge-level admin access.
func (h *ExternalHandler) syncPullRequest(w http.ResponseWriter, r *http.Request) {
	account, ok := ExternalAccountFromContext(r.Context())
	if !ok {
		http.Error(w, "missing authenticated account", http.StatusInternalServerError)
		return
	}

	owner := chi.URLParam(r, "owner")
	name := chi.URLParam(r, "name")
	number, err := strconv.ParseUint(chi.URLParam(r, "number"), 10, 64)
	if err != nil {
		http.Error(w, "invalid pull request number", http.StatusBadRequest)
		return
	}

	repo, err := h.Store.GetRepository(r.Context(), owner, name)
	if err != nil {
		writeError(w, err)
		return
	}

	hasRight, err := h.Store.HasExternalAccountRight(r.Context(), account.Username, repo.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !hasRight {
		http.Error(w, "account has no right on this repository", http.StatusForbidden)
		return
	}

	pr, err := h.Store.GetPullRequest(r.Context(), repo.ID, number)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.Engine.RunForPullRequest(r.Context(), repo, pr); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
