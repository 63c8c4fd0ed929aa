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
	"crypto/rsa"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/unrolled/secure"

	"github.com/prbot/prbot/config"
	"github.com/prbot/prbot/core"
)

// AdminHandler serves the read-only administrative JSON endpoints
// described in spec §6: repositories joined with their pull requests and
// merge rules, accounts, and external accounts with their rights.
type AdminHandler struct {
	Store core.Store
}

// Router mounts the admin endpoints, guarded by AdminAuth, under r. sec
// carries the process-wide HTTP hardening options; a zero value disables
// nothing (unrolled/secure treats a zero Options as "no policy").
func (h *AdminHandler) Router(adminPublicKey *rsa.PublicKey, sec config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(secureHeaders(sec).Handler)
	r.Use(AdminAuth(adminPublicKey))
	r.Get("/repositories", h.listRepositories)
	r.Get("/accounts", h.listAccounts)
	r.Get("/external-accounts", h.listExternalAccounts)
	return r
}

func secureHeaders(cfg config.Config) *secure.Secure {
	return secure.New(secure.Options{
		AllowedHosts:         cfg.Secure.AllowedHosts,
		SSLRedirect:          cfg.Secure.SSLRedirect,
		STSSeconds:           cfg.Secure.STSSeconds,
		STSIncludeSubdomains: cfg.Secure.STSIncludeSubdomains,
		FrameDeny:            cfg.Secure.FrameDeny,
		ContentTypeNosniff:   cfg.Secure.ContentTypeNosniff,
		BrowserXssFilter:     cfg.Secure.BrowserXSSFilter,
	})
}

type repositoryView struct {
	*core.Repository
	PullRequests []*core.PullRequest `json:"pull_requests"`
	MergeRules   []*core.MergeRule   `json:"merge_rules"`
}

func (h *AdminHandler) listRepositories(w http.ResponseWriter, r *http.Request) {
	repos, err := h.Store.ListRepositories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]repositoryView, 0, len(repos))
	for _, repo := range repos {
		prs, err := h.Store.ListPullRequestsInRepository(r.Context(), repo.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		rules, err := h.Store.ListMergeRulesInRepository(r.Context(), repo.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		views = append(views, repositoryView{Repository: repo, PullRequests: prs, MergeRules: rules})
	}
	writeJSON(w, views)
}

func (h *AdminHandler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Store.ListAccounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, accounts)
}

type externalAccountView struct {
	Username string                        `json:"username"`
	Rights   []*core.ExternalAccountRight `json:"rights"`
}

func (h *AdminHandler) listExternalAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Store.ListExternalAccounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]externalAccountView, 0, len(accounts))
	for _, a := range accounts {
		rights, err := h.Store.ListExternalAccountRights(r.Context(), a.Username)
		if err != nil {
			writeError(w, err)
			return
		}
		views = append(views, externalAccountView{Username: a.Username, Rights: rights})
	}
	writeJSON(w, views)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	kind, ok := core.KindOf(err)
	status := http.StatusInternalServerError
	if ok {
		switch kind {
		case core.KindInput:
			status = http.StatusBadRequest
		case core.KindNotFound:
			status = http.StatusNotFound
		case core.KindConflict:
			status = http.StatusConflict
		case core.KindAuth:
			status = http.StatusUnauthorized
		}
	}
	http.Error(w, err.Error(), status)
}
