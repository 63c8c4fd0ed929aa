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

package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dchest/uniuri"
	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"

	"github.com/prbot/prbot/command"
	"github.com/prbot/prbot/core"
	"github.com/prbot/prbot/metrics"
	"github.com/prbot/prbot/status"
)

// Handler wires the webhook HTTP surface to the core: it loads/creates the
// repository and pull request projection, runs the command interpreter on
// comments, and drives the Status Engine.
type Handler struct {
	Store       core.Store
	Forge       core.Forge
	Dispatcher  *command.Dispatcher
	Engine      *status.Engine
	BotUsername string

	// WelcomeEnabled mirrors the welcome.enabled configuration key.
	WelcomeEnabled bool
}

// ServeHTTP implements POST /webhook: reads the event header, dispatches to
// the matching handler, and records the delivery for operator debugging.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// correlationID ties this delivery's log lines together; it never
	// leaves the process.
	correlationID := uniuri.New()
	logger := logrus.WithField("correlation_id", correlationID)

	event := r.Header.Get(EventHeader)
	if event == "" {
		http.Error(w, "missing X-GitHub-Event header", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "could not read request body", http.StatusBadRequest)
		return
	}

	text, err := h.dispatch(r.Context(), logger, event, body)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(event, "error").Inc()
		h.writeError(w, err)
		return
	}
	metrics.WebhookEventsTotal.WithLabelValues(event, "ok").Inc()

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, text)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	kind, ok := core.KindOf(err)
	if !ok {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	switch kind {
	case core.KindInput:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case core.KindAuth:
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case core.KindNotFound:
		http.Error(w, err.Error(), http.StatusNotFound)
	case core.KindConflict:
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		// ForgeError and StoreError surface as 500 so the forge retries
		// the delivery, per spec §7.
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) dispatch(ctx context.Context, logger *logrus.Entry, event string, body []byte) (string, error) {
	switch event {
	case "ping":
		return h.handlePing(ctx, body)
	case "pull_request":
		return h.handlePullRequest(ctx, logger, body)
	case "issue_comment":
		return h.handleIssueComment(ctx, logger, body)
	case "pull_request_review":
		return h.handlePullRequestReview(ctx, body)
	case "check_suite":
		return h.handleCheckSuite(ctx, body)
	case "check_run":
		logger.WithField("event", event).Debug("acknowledged, no state action")
		return "Check run.", nil
	case "push":
		logger.WithField("event", event).Debug("acknowledged, no state action")
		return "Push.", nil
	default:
		return "", core.InputError("unknown event type %q", event)
	}
}

func (h *Handler) recordHistory(ctx context.Context, repositoryID uint64, event, action string) {
	_ = h.Store.RecordWebhookEvent(ctx, &core.WebhookEvent{
		ID:           ksuid.New().String(),
		RepositoryID: repositoryID,
		EventName:    event,
		Action:       action,
	})
}

func (h *Handler) handlePing(ctx context.Context, body []byte) (string, error) {
	var p pingPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return "", core.InputError("malformed ping payload: %v", err)
	}
	if p.Repository != nil {
		repo, err := h.Store.GetOrCreateRepository(ctx, p.Repository.Owner.Login, p.Repository.Name)
		if err != nil {
			return "", err
		}
		h.recordHistory(ctx, repo.ID, "ping", "")
	}
	return "Pong.", nil
}

var stateAffectingPRActions = map[string]bool{
	"opened": true, "closed": true, "reopened": true,
	"converted_to_draft": true, "ready_for_review": true,
	"edited": true, "synchronize": true,
	"labeled": true, "unlabeled": true,
	"locked": true, "unlocked": true,
	"assigned": true, "unassigned": true,
	"review_requested": true, "review_request_removed": true,
}

func (h *Handler) handlePullRequest(ctx context.Context, logger *logrus.Entry, body []byte) (string, error) {
	var p pullRequestPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return "", core.InputError("malformed pull_request payload: %v", err)
	}
	if !stateAffectingPRActions[p.Action] {
		return "Pull request.", nil
	}

	repo, err := h.Store.GetOrCreateRepository(ctx, p.Repository.Owner.Login, p.Repository.Name)
	if err != nil {
		return "", err
	}
	pr, err := h.Store.GetOrCreatePullRequest(ctx, repo, uint64(p.Number))
	if err != nil {
		return "", err
	}
	h.recordHistory(ctx, repo.ID, "pull_request", p.Action)

	if p.Action == "opened" && h.WelcomeEnabled {
		welcome := fmt.Sprintf(":tada: Welcome, _%s_! A maintainer will review your pull request shortly.", p.PullRequest.User.Login)
		if _, err := h.Forge.CommentsPost(ctx, repo.Owner, repo.Name, pr.Number, welcome); err != nil {
			logger.WithError(err).Warn("failed to post welcome comment")
		}
	}

	if err := h.runStatusEngine(ctx, repo, pr); err != nil {
		return "", err
	}
	return "Pull request.", nil
}

func (h *Handler) handleIssueComment(ctx context.Context, logger *logrus.Entry, body []byte) (string, error) {
	var p issueCommentPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return "", core.InputError("malformed issue_comment payload: %v", err)
	}
	if p.Action != "created" || p.Issue.PullRequest == nil {
		return "Comment.", nil
	}

	repo, err := h.Store.GetOrCreateRepository(ctx, p.Repository.Owner.Login, p.Repository.Name)
	if err != nil {
		return "", err
	}
	pr, err := h.Store.GetOrCreatePullRequest(ctx, repo, uint64(p.Issue.Number))
	if err != nil {
		return "", err
	}
	h.recordHistory(ctx, repo.ID, "issue_comment", p.Action)

	results, updateStatus, err := h.Dispatcher.Run(ctx, command.Context{
		Repository:  repo,
		PullRequest: pr,
		Actor:       p.Comment.User.Login,
	}, p.Comment.Body)
	if err != nil {
		return "", err
	}
	if err := h.applyResults(ctx, repo, pr, p.Comment.ID, results); err != nil {
		return "", err
	}
	if updateStatus {
		if err := h.runStatusEngine(ctx, repo, pr); err != nil {
			return "", err
		}
	}
	logger.WithField("commands", len(results)).Debug("dispatched comment commands")
	return "Comment.", nil
}

func (h *Handler) applyResults(ctx context.Context, repo *core.Repository, pr *core.PullRequest, triggeringCommentID uint64, results []command.Result) error {
	for _, res := range results {
		for _, action := range res.Actions {
			switch action.Kind {
			case command.ActionPostComment:
				if _, err := h.Forge.CommentsPost(ctx, repo.Owner, repo.Name, pr.Number, action.Body); err != nil {
					return err
				}
			case command.ActionAddReaction:
				if err := h.Forge.AddReaction(ctx, repo.Owner, repo.Name, triggeringCommentID, action.Reaction); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (h *Handler) handlePullRequestReview(ctx context.Context, body []byte) (string, error) {
	var p pullRequestReviewPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return "", core.InputError("malformed pull_request_review payload: %v", err)
	}
	repo, err := h.Store.GetOrCreateRepository(ctx, p.Repository.Owner.Login, p.Repository.Name)
	if err != nil {
		return "", err
	}
	pr, err := h.Store.GetOrCreatePullRequest(ctx, repo, uint64(p.PullRequest.Number))
	if err != nil {
		return "", err
	}
	h.recordHistory(ctx, repo.ID, "pull_request_review", p.Action)
	if err := h.runStatusEngine(ctx, repo, pr); err != nil {
		return "", err
	}
	return "Pull request review.", nil
}

func (h *Handler) handleCheckSuite(ctx context.Context, body []byte) (string, error) {
	var p checkSuitePayload
	if err := json.Unmarshal(body, &p); err != nil {
		return "", core.InputError("malformed check_suite payload: %v", err)
	}
	if p.Action != "completed" || len(p.CheckSuite.PullRequests) == 0 {
		return "Check suite.", nil
	}
	repo, err := h.Store.GetOrCreateRepository(ctx, p.Repository.Owner.Login, p.Repository.Name)
	if err != nil {
		return "", err
	}
	h.recordHistory(ctx, repo.ID, "check_suite", p.Action)
	for _, ref := range p.CheckSuite.PullRequests {
		pr, err := h.Store.GetOrCreatePullRequest(ctx, repo, uint64(ref.Number))
		if err != nil {
			return "", err
		}
		if err := h.runStatusEngine(ctx, repo, pr); err != nil {
			return "", err
		}
	}
	return "Check suite.", nil
}

func (h *Handler) runStatusEngine(ctx context.Context, repo *core.Repository, pr *core.PullRequest) error {
	return h.Engine.RunForPullRequest(ctx, repo, pr)
}
