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

package commands

import (
	"fmt"
	"strconv"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/prbot/prbot/core"
	"github.com/prbot/prbot/daemon"
	"github.com/prbot/prbot/status"
)

func newPullRequestsCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull-requests",
		Short: "Manage pull requests",
	}
	cmd.AddCommand(
		newPullRequestsListCommand(opts),
		newPullRequestsShowCommand(opts),
		newPullRequestsSyncCommand(opts),
		newPullRequestsSetMergeStrategyCommand(opts),
	)
	return cmd
}

func parsePRNumber(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("expected a pull request number, got %q", s)
	}
	return n, nil
}

func newPullRequestsListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list OWNER/NAME",
		Short: "List pull requests tracked for a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			repo, err := getRepository(ctx, store, args[0])
			if err != nil {
				return err
			}
			prs, err := store.ListPullRequestsInRepository(ctx, repo.ID)
			if err != nil {
				return err
			}
			if len(prs) == 0 {
				fmt.Printf("No PR found from repository %q.\n", args[0])
				return nil
			}
			for _, pr := range prs {
				fmt.Printf("- #%d: qa=%s needed_reviewers=%d\n", pr.Number, pr.QaStatus, pr.NeededReviewersCount)
			}
			return nil
		},
	}
}

func newPullRequestsShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show OWNER/NAME NUMBER",
		Short: "Show a pull request's tracked state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			number, err := parsePRNumber(args[1])
			if err != nil {
				return err
			}
			repo, err := getRepository(ctx, store, args[0])
			if err != nil {
				return err
			}
			pr, err := store.GetPullRequest(ctx, repo.ID, number)
			if err != nil {
				return err
			}
			fmt.Printf("Accessing pull request #%d on repository %s\n", number, args[0])
			pretty.Println(pr)
			return nil
		},
	}
}

// newPullRequestsSyncCommand re-derives and reconciles status against the
// forge, the CLI equivalent of the external API's sync endpoint and the
// webhook handler's post-event reconciliation.
func newPullRequestsSyncCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync OWNER/NAME NUMBER",
		Short: "Re-derive and reconcile a pull request's status from the forge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			number, err := parsePRNumber(args[1])
			if err != nil {
				return err
			}
			repo, err := getRepository(ctx, store, args[0])
			if err != nil {
				return err
			}
			pr, err := store.GetOrCreatePullRequest(ctx, repo, number)
			if err != nil {
				return err
			}

			forgeClient, err := daemon.BuildForgeClient(cfg)
			if err != nil {
				return err
			}
			engine := &status.Engine{Forge: forgeClient, Store: store}
			if err := engine.RunForPullRequest(ctx, repo, pr); err != nil {
				return err
			}
			fmt.Printf("Pull request #%d from %s updated from GitHub.\n", number, args[0])
			return nil
		},
	}
}

func newPullRequestsSetMergeStrategyCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-merge-strategy OWNER/NAME NUMBER merge|squash|rebase|-",
		Short: "Override or clear (\"-\") a pull request's merge strategy",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			number, err := parsePRNumber(args[1])
			if err != nil {
				return err
			}
			repo, err := getRepository(ctx, store, args[0])
			if err != nil {
				return err
			}
			pr, err := store.GetPullRequest(ctx, repo.ID, number)
			if err != nil {
				return err
			}

			if args[2] == "-" {
				if err := store.SetPullRequestStrategyOverride(ctx, pr.ID, nil); err != nil {
					return err
				}
				fmt.Printf("Merge strategy override cleared for pull request #%d.\n", number)
				return nil
			}
			strategy := core.MergeStrategy(args[2])
			if !strategy.Valid() {
				return fmt.Errorf("expected one of merge, squash, rebase, got %q", args[2])
			}
			if err := store.SetPullRequestStrategyOverride(ctx, pr.ID, &strategy); err != nil {
				return err
			}
			fmt.Printf("Merge strategy override set to %q for pull request #%d.\n", strategy, number)
			return nil
		},
	}
}
