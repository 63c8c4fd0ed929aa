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

package status

import (
	"fmt"
	"strings"

	"github.com/oxtoacart/bpool"

	"github.com/prbot/prbot/core"
)

// bufPool amortises the allocation for summary rendering, which runs on
// every Status Engine pass for every open pull request.
var bufPool = bpool.NewBufferPool(64)

const (
	startMarkerFmt = "<!-- %s:start-summary -->"
	endMarkerFmt   = "<!-- %s:end-summary -->"

	// Product is the name embedded in summary markers and the commit-status
	// context.
	Product = "prbot"
)

// RenderSummary is a pure function from derived status, merge rules, and
// required reviewers to the Markdown body posted as the summary comment,
// per spec §4.6.5.
func RenderSummary(s *PullRequestStatus, mergeRules []*core.MergeRule, requiredReviewers []*core.RequiredReviewer) string {
	buf := bufPool.Get()
	defer bufPool.Put(buf)

	fmt.Fprintf(buf, "## Status\n\n")
	fmt.Fprintf(buf, "- Step: **%s**\n", Step(s))
	fmt.Fprintf(buf, "- Checks: %s\n", s.ChecksStatus)
	fmt.Fprintf(buf, "- QA: %s\n", s.QaStatus)
	fmt.Fprintf(buf, "- Locked: %t\n", s.Locked)
	fmt.Fprintf(buf, "- Automerge: %t\n", s.Automerge)
	fmt.Fprintf(buf, "- Merge strategy: %s\n", s.MergeStrategy)
	if s.ChecksURL != "" {
		fmt.Fprintf(buf, "- [View checks](%s)\n", s.ChecksURL)
	}

	fmt.Fprintf(buf, "\n## Reviewers\n\n")
	if len(s.ApprovedReviewers) > 0 {
		fmt.Fprintf(buf, "- Approved: %s\n", strings.Join(s.ApprovedReviewers, ", "))
	}
	if len(s.ChangesRequiredReviewers) > 0 {
		fmt.Fprintf(buf, "- Changes requested: %s\n", strings.Join(s.ChangesRequiredReviewers, ", "))
	}
	if len(s.MissingRequiredReviewers) > 0 {
		fmt.Fprintf(buf, "- Missing required: %s\n", strings.Join(s.MissingRequiredReviewers, ", "))
	}
	fmt.Fprintf(buf, "- Needed approvals: %d\n", s.NeededReviewersCount)
	if len(requiredReviewers) > 0 {
		names := make([]string, len(requiredReviewers))
		for i, rr := range requiredReviewers {
			names[i] = rr.Username
		}
		fmt.Fprintf(buf, "- Required reviewers: %s\n", strings.Join(names, ", "))
	}

	fmt.Fprintf(buf, "\n## Rules\n\n")
	if len(mergeRules) == 0 {
		fmt.Fprintf(buf, "- No repository-specific merge rules.\n")
	} else {
		for _, r := range mergeRules {
			fmt.Fprintf(buf, "- `%s` -> `%s`: %s\n", r.BaseBranch, r.HeadBranch, r.Strategy)
		}
	}

	if s.PullRequestTitleRegex != "" {
		fmt.Fprintf(buf, "\n## Configuration\n\n")
		fmt.Fprintf(buf, "- Title must match: `%s`\n", s.PullRequestTitleRegex)
	}

	return buf.String()
}

// startMarker and endMarker are the literal PR-body embedding markers for
// Product, per spec §4.6.5.
func startMarker() string { return fmt.Sprintf(startMarkerFmt, Product) }
func endMarker() string   { return fmt.Sprintf(endMarkerFmt, Product) }

// EmbedInBody splices summary between the start/end markers inside body. If
// the markers are present, the Markdown between them is replaced in place;
// otherwise the markers and summary are appended, preserving body's
// trailing whitespace.
func EmbedInBody(body, summary string) string {
	start := startMarker()
	end := endMarker()

	startIdx := strings.Index(body, start)
	endIdx := strings.Index(body, end)
	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		sep := ""
		if body != "" && !strings.HasSuffix(body, "\n") {
			sep = "\n"
		}
		return body + sep + "\n" + start + "\n" + summary + "\n" + end + "\n"
	}

	before := body[:startIdx+len(start)]
	after := body[endIdx:]
	return before + "\n" + summary + "\n" + after
}

// ExtractFromBody returns the Markdown currently embedded between the
// markers, and whether the markers were found.
func ExtractFromBody(body string) (string, bool) {
	start := startMarker()
	end := endMarker()

	startIdx := strings.Index(body, start)
	if startIdx == -1 {
		return "", false
	}
	contentStart := startIdx + len(start)
	endIdx := strings.Index(body[contentStart:], end)
	if endIdx == -1 {
		return "", false
	}
	return strings.TrimSpace(body[contentStart : contentStart+endIdx]), true
}
