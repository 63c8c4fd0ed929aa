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

// Package forge wraps the subset of the GitHub REST API the pull-request
// lifecycle engine needs, behind the core.Forge interface.
package forge

import (
	"context"
	"crypto/rsa"
	"net/http"
	"time"

	"github.com/google/go-github/v68/github"

	"github.com/prbot/prbot/core"
)

// Client implements core.Forge over google/go-github. One Client is built
// per process and its *http.Client (with connection pooling) is shared by
// every caller — never reconstructed per request, per SPEC_FULL.md §5.
type Client struct {
	gh        *github.Client
	userAgent string

	appID          string
	installationID int64
	tokens         *installationTokenCache
}

// Config is the subset of prbot's configuration the forge client needs.
type Config struct {
	RootURL        string
	ConnectTimeout time.Duration
	UserAgent      string

	// StaticToken, when set, is used verbatim as a PAT and app-mode fields
	// below are ignored.
	StaticToken string

	AppID          string
	InstallationID int64
	AppPrivateKey  *rsa.PrivateKey
}

// newHTTPClient builds the transport New uses; overridden in tests to splice
// in gock's mock transport, since go-github's own Client() accessor returns
// a defensive copy that gock can't intercept after the fact.
var newHTTPClient = func(cfg Config) *http.Client {
	return &http.Client{
		Timeout: cfg.ConnectTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
		},
	}
}

// New builds a Client from cfg, sharing one long-lived *http.Client with
// connection pooling across every call the process makes.
func New(cfg Config) (*Client, error) {
	httpClient := newHTTPClient(cfg)

	gh := github.NewClient(httpClient)
	if cfg.RootURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(cfg.RootURL, cfg.RootURL)
		if err != nil {
			return nil, core.ForgeErrorf(err, "invalid forge root url %q", cfg.RootURL)
		}
	}
	gh.UserAgent = cfg.UserAgent

	c := &Client{gh: gh, userAgent: cfg.UserAgent}

	if cfg.StaticToken != "" {
		c.gh = gh.WithAuthToken(cfg.StaticToken)
		return c, nil
	}

	c.appID = cfg.AppID
	c.installationID = cfg.InstallationID
	c.tokens = &installationTokenCache{
		tokens:     make(map[int64]cachedToken),
		appID:      cfg.AppID,
		privateKey: cfg.AppPrivateKey,
		minter: func(ctx context.Context, appJWT string, installationID int64) (string, time.Time, error) {
			return mintInstallationToken(ctx, gh, appJWT, installationID)
		},
	}
	return c, nil
}

// authedClient returns a github.Client bearing a valid installation token
// when operating in app mode, or the static-token client otherwise.
func (c *Client) authedClient(ctx context.Context) (*github.Client, error) {
	if c.tokens == nil {
		return c.gh, nil
	}
	token, err := c.tokens.Token(ctx, c.installationID)
	if err != nil {
		return nil, core.ForgeErrorf(err, "failed to mint installation token")
	}
	return c.gh.WithAuthToken(token), nil
}

// mintInstallationToken exchanges an app JWT for an installation token via
// installations_create_token.
func mintInstallationToken(ctx context.Context, gh *github.Client, appJWT string, installationID int64) (string, time.Time, error) {
	bearer := gh.WithAuthToken(appJWT)
	tok, _, err := bearer.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return "", time.Time{}, core.ForgeErrorf(err, "failed to mint installation token")
	}
	return tok.GetToken(), tok.GetExpiresAt().Time, nil
}

// InstallationsCreateToken exposes installation-token minting directly, per
// the operation table in spec §4.1.
func (c *Client) InstallationsCreateToken(ctx context.Context, installationID int64) (string, time.Time, error) {
	appJWT, err := c.tokens.appJWT()
	if err != nil {
		return "", time.Time{}, err
	}
	return mintInstallationToken(ctx, c.gh, appJWT, installationID)
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	if rerr, ok := err.(*github.ErrorResponse); ok {
		switch rerr.Response.StatusCode {
		case http.StatusNotFound:
			return &core.ForgeError{Kind: core.ForgeNotFound, Err: err}
		case http.StatusForbidden:
			return &core.ForgeError{Kind: core.ForgeForbidden, Err: err}
		case http.StatusTooManyRequests:
			return &core.ForgeError{Kind: core.ForgeRateLimited, Err: err}
		}
	}
	if _, ok := err.(*github.RateLimitError); ok {
		return &core.ForgeError{Kind: core.ForgeRateLimited, Err: err}
	}
	return &core.ForgeError{Kind: core.ForgeTransport, Err: err}
}

func (c *Client) PullsGet(ctx context.Context, owner, name string, number uint64) (*core.GhPullRequest, error) {
	gh, err := c.authedClient(ctx)
	if err != nil {
		return nil, err
	}
	pr, _, err := gh.PullRequests.Get(ctx, owner, name, int(number))
	if err != nil {
		return nil, classify(err)
	}
	return &core.GhPullRequest{
		Number:    uint64(pr.GetNumber()),
		Title:     pr.GetTitle(),
		Body:      pr.GetBody(),
		HeadSHA:   pr.GetHead().GetSHA(),
		HeadRef:   pr.GetHead().GetRef(),
		BaseRef:   pr.GetBase().GetRef(),
		Draft:     pr.GetDraft(),
		Merged:    pr.GetMerged(),
		Mergeable: pr.Mergeable,
	}, nil
}

func (c *Client) PullsMerge(ctx context.Context, owner, name string, number uint64, title, message string, strategy core.MergeStrategy) error {
	gh, err := c.authedClient(ctx)
	if err != nil {
		return err
	}
	opts := &github.PullRequestOptions{MergeMethod: string(strategy)}
	_, _, err = gh.PullRequests.Merge(ctx, owner, name, int(number), message, opts)
	if err != nil {
		return classify(err)
	}
	return nil
}

func (c *Client) PullsUpdateBody(ctx context.Context, owner, name string, number uint64, body string) error {
	gh, err := c.authedClient(ctx)
	if err != nil {
		return err
	}
	_, _, err = gh.PullRequests.Edit(ctx, owner, name, int(number), &github.PullRequest{Body: github.Ptr(body)})
	return classify(err)
}

func canonicalReviewState(s string) core.ReviewState {
	switch s {
	case "APPROVED":
		return core.ReviewApproved
	case "CHANGES_REQUESTED":
		return core.ReviewChangesRequested
	case "COMMENTED":
		return core.ReviewCommented
	case "DISMISSED":
		return core.ReviewDismissed
	default:
		return core.ReviewPending
	}
}

func (c *Client) PullReviewsList(ctx context.Context, owner, name string, number uint64) ([]*core.Review, error) {
	gh, err := c.authedClient(ctx)
	if err != nil {
		return nil, err
	}
	var out []*core.Review
	opts := &github.ListOptions{PerPage: 100}
	for {
		reviews, resp, err := gh.PullRequests.ListReviews(ctx, owner, name, int(number), opts)
		if err != nil {
			return nil, classify(err)
		}
		for _, r := range reviews {
			out = append(out, &core.Review{
				User:        r.GetUser().GetLogin(),
				State:       canonicalReviewState(r.GetState()),
				SubmittedAt: r.GetSubmittedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (c *Client) PullReviewerRequestsAdd(ctx context.Context, owner, name string, number uint64, users []string) error {
	gh, err := c.authedClient(ctx)
	if err != nil {
		return err
	}
	_, _, err = gh.PullRequests.RequestReviewers(ctx, owner, name, int(number), github.ReviewersRequest{Reviewers: users})
	return classify(err)
}

func (c *Client) PullReviewerRequestsRemove(ctx context.Context, owner, name string, number uint64, users []string) error {
	gh, err := c.authedClient(ctx)
	if err != nil {
		return err
	}
	_, err = gh.PullRequests.RemoveReviewers(ctx, owner, name, int(number), github.ReviewersRequest{Reviewers: users})
	return classify(err)
}

func canonicalConclusion(s string) core.CheckSuiteConclusion {
	switch s {
	case "success":
		return core.ConclusionSuccess
	case "neutral":
		return core.ConclusionNeutral
	case "failure":
		return core.ConclusionFailure
	case "cancelled":
		return core.ConclusionCancelled
	case "timed_out":
		return core.ConclusionTimedOut
	default:
		return core.ConclusionPending
	}
}

func (c *Client) CheckSuitesList(ctx context.Context, owner, name, sha string) ([]*core.CheckSuite, error) {
	gh, err := c.authedClient(ctx)
	if err != nil {
		return nil, err
	}
	var out []*core.CheckSuite
	opts := &github.ListCheckSuiteOptions{ListOptions: github.ListOptions{PerPage: 100}}
	for {
		result, resp, err := gh.Checks.ListCheckSuitesForRef(ctx, owner, name, sha, opts)
		if err != nil {
			return nil, classify(err)
		}
		for _, s := range result.CheckSuites {
			out = append(out, &core.CheckSuite{
				Status:     s.GetStatus(),
				Conclusion: canonicalConclusion(s.GetConclusion()),
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (c *Client) IssueLabelsList(ctx context.Context, owner, name string, number uint64) ([]string, error) {
	gh, err := c.authedClient(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	opts := &github.ListOptions{PerPage: 100}
	for {
		labels, resp, err := gh.Issues.ListLabelsByIssue(ctx, owner, name, int(number), opts)
		if err != nil {
			return nil, classify(err)
		}
		for _, l := range labels {
			out = append(out, l.GetName())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (c *Client) IssueLabelsAdd(ctx context.Context, owner, name string, number uint64, labels []string) error {
	gh, err := c.authedClient(ctx)
	if err != nil {
		return err
	}
	_, _, err = gh.Issues.AddLabelsToIssue(ctx, owner, name, int(number), labels)
	return classify(err)
}

func (c *Client) IssueLabelsRemove(ctx context.Context, owner, name string, number uint64, labels []string) error {
	gh, err := c.authedClient(ctx)
	if err != nil {
		return err
	}
	for _, l := range labels {
		if _, err := gh.Issues.RemoveLabelForIssue(ctx, owner, name, int(number), l); err != nil {
			return classify(err)
		}
	}
	return nil
}

func (c *Client) IssueLabelsReplaceAll(ctx context.Context, owner, name string, number uint64, labels []string) error {
	gh, err := c.authedClient(ctx)
	if err != nil {
		return err
	}
	_, _, err = gh.Issues.ReplaceLabelsForIssue(ctx, owner, name, int(number), labels)
	return classify(err)
}

func (c *Client) CommentsPost(ctx context.Context, owner, name string, number uint64, body string) (uint64, error) {
	gh, err := c.authedClient(ctx)
	if err != nil {
		return 0, err
	}
	comment, _, err := gh.Issues.CreateComment(ctx, owner, name, int(number), &github.IssueComment{Body: github.Ptr(body)})
	if err != nil {
		return 0, classify(err)
	}
	return uint64(comment.GetID()), nil
}

func (c *Client) CommentsUpdate(ctx context.Context, owner, name string, commentID uint64, body string) error {
	gh, err := c.authedClient(ctx)
	if err != nil {
		return err
	}
	_, _, err = gh.Issues.EditComment(ctx, owner, name, int64(commentID), &github.IssueComment{Body: github.Ptr(body)})
	return classify(err)
}

func (c *Client) CommentsDelete(ctx context.Context, owner, name string, commentID uint64) error {
	gh, err := c.authedClient(ctx)
	if err != nil {
		return err
	}
	_, err = gh.Issues.DeleteComment(ctx, owner, name, int64(commentID))
	return classify(err)
}

// maxDescriptionRunes is the commit-status description's hard ceiling, per
// spec §4.6.4.
const maxDescriptionRunes = 139

func truncateDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= maxDescriptionRunes {
		return s
	}
	return string(runes[:maxDescriptionRunes])
}

func (c *Client) CommitStatusesUpdate(ctx context.Context, owner, name, sha string, state core.CommitState, context_, description string) error {
	gh, err := c.authedClient(ctx)
	if err != nil {
		return err
	}
	status := &github.RepoStatus{
		State:       github.Ptr(string(state)),
		Context:     github.Ptr(context_),
		Description: github.Ptr(truncateDescription(description)),
	}
	_, _, err = gh.Repositories.CreateStatus(ctx, owner, name, sha, status)
	return classify(err)
}

func canonicalPermission(s string) core.Permission {
	switch s {
	case "admin":
		return core.PermissionAdmin
	case "write":
		return core.PermissionWrite
	case "read":
		return core.PermissionRead
	default:
		return core.PermissionNone
	}
}

func (c *Client) UserPermissionsGet(ctx context.Context, owner, name, user string) (core.Permission, error) {
	gh, err := c.authedClient(ctx)
	if err != nil {
		return core.PermissionNone, err
	}
	perm, _, err := gh.Repositories.GetPermissionLevel(ctx, owner, name, user)
	if err != nil {
		return core.PermissionNone, classify(err)
	}
	return canonicalPermission(perm.GetPermission()), nil
}

func (c *Client) AddReaction(ctx context.Context, owner, name string, commentID uint64, reaction core.ReactionKind) error {
	gh, err := c.authedClient(ctx)
	if err != nil {
		return err
	}
	_, _, err = gh.Reactions.CreateIssueCommentReaction(ctx, owner, name, int64(commentID), string(reaction))
	return classify(err)
}
