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

// Package command implements the `@bot verb args` comment interpreter: it
// parses command candidates out of a comment body, looks them up in a
// closed verb table, enforces permissions, and returns effect records for
// the caller to apply.
package command

import (
	"strings"

	"github.com/prbot/prbot/core"
)

// HandlingStatus classifies how a parsed command candidate was resolved.
type HandlingStatus string

const (
	Handled HandlingStatus = "handled"
	Denied  HandlingStatus = "denied"
	Ignored HandlingStatus = "ignored"
)

// ActionKind distinguishes the two effect shapes a command can request.
type ActionKind string

const (
	ActionAddReaction ActionKind = "add_reaction"
	ActionPostComment ActionKind = "post_comment"
)

// Action is one forge-facing side effect a command requested.
type Action struct {
	Kind     ActionKind
	Reaction core.ReactionKind
	Body     string
}

func addReaction(r core.ReactionKind) Action { return Action{Kind: ActionAddReaction, Reaction: r} }
func postComment(body string) Action         { return Action{Kind: ActionPostComment, Body: body} }

// Result is the effect record a single command candidate produces, per
// spec §4.5.3. The webhook handler applies Actions in order, then runs the
// Status Engine once if any Result in the batch set ShouldUpdateStatus.
type Result struct {
	Verb               string
	HandlingStatus     HandlingStatus
	ShouldUpdateStatus bool
	Actions            []Action
}

// Candidate is one `<prefix> verb args...` line extracted from a comment.
type Candidate struct {
	Verb string
	Args []string
}

// ParseCandidates splits body into lines and extracts every command
// candidate prefixed by botUsername, in order, per spec §4.5.1. Lines
// without the prefix are ignored; the match is case-sensitive.
func ParseCandidates(body, botUsername string) []Candidate {
	prefix := botUsername
	var out []Candidate
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, prefix) {
			continue
		}
		rest := strings.TrimSpace(trimmed[len(prefix):])
		if rest == "" {
			continue
		}
		fields := strings.Fields(rest)
		out = append(out, Candidate{Verb: fields[0], Args: fields[1:]})
	}
	return out
}

// deny builds the standard "unauthorised" Result: a public refusal comment
// plus a thumbs-down reaction, per spec §4.5.2 — unauthorised commands
// never silently no-op.
func deny(verb, reason string) Result {
	return Result{
		Verb:           verb,
		HandlingStatus: Denied,
		Actions: []Action{
			addReaction(core.ReactionThumbsDown),
			postComment(reason),
		},
	}
}

func ignore(verb string) Result {
	return Result{Verb: verb, HandlingStatus: Ignored}
}

func handled(verb string, updateStatus bool, actions ...Action) Result {
	return Result{Verb: verb, HandlingStatus: Handled, ShouldUpdateStatus: updateStatus, Actions: actions}
}
