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
)

func newRepositoriesCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repositories",
		Short: "Manage repositories",
	}
	cmd.AddCommand(
		newRepositoriesListCommand(opts),
		newRepositoriesShowCommand(opts),
		newRepositoriesAddCommand(opts),
		newRepositoriesSetTitleRegexCommand(opts),
		newRepositoriesSetReviewersCountCommand(opts),
		newRepositoriesSetAutomergeCommand(opts),
		newRepositoriesSetQaStatusCommand(opts),
		newRepositoriesSetChecksStatusCommand(opts),
		newRepositoriesSetMergeRuleCommand(opts),
		newRepositoriesRemoveMergeRuleCommand(opts),
		newRepositoriesListMergeRulesCommand(opts),
		newRepositoriesPurgeCommand(opts),
	)
	return cmd
}

func newRepositoriesListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			repos, err := store.ListRepositories(ctx)
			if err != nil {
				return err
			}
			if len(repos) == 0 {
				fmt.Println("No repository known.")
				return nil
			}
			for _, r := range repos {
				fmt.Printf("- %s/%s\n", r.Owner, r.Name)
			}
			return nil
		},
	}
}

func newRepositoriesShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show OWNER/NAME",
		Short: "Show a repository's settings",
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
			fmt.Printf("Accessing repository %s\n", args[0])
			pretty.Println(repo)
			return nil
		},
	}
}

func newRepositoriesAddCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add OWNER/NAME",
		Short: "Register a repository with default settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			owner, name, err := parseRepositoryPath(args[0])
			if err != nil {
				return err
			}
			if _, err := store.CreateRepository(ctx, &core.Repository{
				Owner:           owner,
				Name:            name,
				DefaultStrategy: core.StrategyMerge,
			}); err != nil {
				return err
			}
			fmt.Printf("Repository %s created.\n", args[0])
			return nil
		},
	}
}

func newRepositoriesSetTitleRegexCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-title-regex OWNER/NAME REGEX",
		Short: "Set the pull request title validation regex",
		Args:  cobra.ExactArgs(2),
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
			if err := store.SetRepositoryPRTitleRegex(ctx, repo.ID, args[1]); err != nil {
				return err
			}
			fmt.Printf("Title validation regex updated for repository %s.\n", args[0])
			return nil
		},
	}
}

func newRepositoriesSetReviewersCountCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-reviewers-count OWNER/NAME N",
		Short: "Set the default needed-reviewers count",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			n, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("expected a non-negative integer, got %q", args[1])
			}
			repo, err := getRepository(ctx, store, args[0])
			if err != nil {
				return err
			}
			if err := store.SetRepositoryDefaultNeededReviewers(ctx, repo.ID, n); err != nil {
				return err
			}
			fmt.Printf("Default reviewers count updated to %d for repository %s.\n", n, args[0])
			return nil
		},
	}
}

func newRepositoriesSetAutomergeCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-automerge OWNER/NAME true|false",
		Short: "Set the default automerge flag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			v, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("expected true or false, got %q", args[1])
			}
			repo, err := getRepository(ctx, store, args[0])
			if err != nil {
				return err
			}
			if err := store.SetRepositoryDefaultAutomerge(ctx, repo.ID, v); err != nil {
				return err
			}
			fmt.Printf("Default automerge set to %t for repository %s.\n", v, args[0])
			return nil
		},
	}
}

func newRepositoriesSetQaStatusCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-qa-status OWNER/NAME true|false",
		Short: "Set whether new pull requests default to QA enabled",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			v, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("expected true or false, got %q", args[1])
			}
			repo, err := getRepository(ctx, store, args[0])
			if err != nil {
				return err
			}
			if err := store.SetRepositoryDefaultEnableQA(ctx, repo.ID, v); err != nil {
				return err
			}
			fmt.Printf("Default QA status set to %t for repository %s.\n", v, args[0])
			return nil
		},
	}
}

func newRepositoriesSetChecksStatusCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-checks-status OWNER/NAME true|false",
		Short: "Set whether new pull requests default to checks enabled",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			v, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("expected true or false, got %q", args[1])
			}
			repo, err := getRepository(ctx, store, args[0])
			if err != nil {
				return err
			}
			if err := store.SetRepositoryDefaultEnableChecks(ctx, repo.ID, v); err != nil {
				return err
			}
			fmt.Printf("Default checks status set to %t for repository %s.\n", v, args[0])
			return nil
		},
	}
}

// branchArg maps the "*" shorthand onto core.Wildcard, matching the CLI
// convention that "*" means "any branch".
func branchArg(s string) core.RuleBranch {
	if s == "*" {
		return core.Wildcard
	}
	return core.Named(s)
}

func newRepositoriesSetMergeRuleCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-merge-rule OWNER/NAME BASE HEAD STRATEGY",
		Short: "Create or update a merge rule; BASE/HEAD may be \"*\" for wildcard",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			strategy := core.MergeStrategy(args[3])
			if !strategy.Valid() {
				return fmt.Errorf("expected one of merge, squash, rebase, got %q", args[3])
			}
			repo, err := getRepository(ctx, store, args[0])
			if err != nil {
				return err
			}
			base, head := branchArg(args[1]), branchArg(args[2])

			if base.IsWildcard() && head.IsWildcard() {
				if err := store.SetRepositoryDefaultStrategy(ctx, repo.ID, strategy); err != nil {
					return err
				}
				fmt.Printf("Default strategy updated to %q for repository %s.\n", strategy, args[0])
				return nil
			}

			existing, err := store.GetMergeRule(ctx, repo.ID, base, head)
			if err != nil && !core.IsNotFound(err) {
				return err
			}
			if existing != nil {
				existing.Strategy = strategy
				if err := store.UpdateMergeRule(ctx, existing); err != nil {
					return err
				}
			} else if _, err := store.CreateMergeRule(ctx, &core.MergeRule{
				RepositoryID: repo.ID,
				BaseBranch:   base,
				HeadBranch:   head,
				Strategy:     strategy,
			}); err != nil {
				return err
			}
			fmt.Printf("Merge rule created/updated with %q for repository %s and branches %q (base) <- %q (head)\n", strategy, args[0], args[1], args[2])
			return nil
		},
	}
}

func newRepositoriesRemoveMergeRuleCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-merge-rule OWNER/NAME BASE HEAD",
		Short: "Delete a merge rule",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			base, head := branchArg(args[1]), branchArg(args[2])
			if base.IsWildcard() && head.IsWildcard() {
				return fmt.Errorf("cannot remove the default strategy, use set-merge-rule instead")
			}
			repo, err := getRepository(ctx, store, args[0])
			if err != nil {
				return err
			}
			rule, err := store.GetMergeRule(ctx, repo.ID, base, head)
			if err != nil {
				return err
			}
			if err := store.DeleteMergeRule(ctx, rule.ID); err != nil {
				return err
			}
			fmt.Printf("Merge rule for repository %s and branches %q (base) <- %q (head) deleted.\n", args[0], args[1], args[2])
			return nil
		},
	}
}

func newRepositoriesListMergeRulesCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list-merge-rules OWNER/NAME",
		Short: "List a repository's merge rules",
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
			rules, err := store.ListMergeRulesInRepository(ctx, repo.ID)
			if err != nil {
				return err
			}
			fmt.Printf("Merge rules for repository %s:\n", args[0])
			fmt.Printf("- Default: %q\n", repo.DefaultStrategy)
			for _, rule := range rules {
				fmt.Printf("- %q (base) <- %q (head): %q\n", rule.BaseBranch, rule.HeadBranch, rule.Strategy)
			}
			return nil
		},
	}
}

// newRepositoriesPurgeCommand drops every pull request projection tracked
// for a repository. The store keeps no open/closed flag of its own — that
// state lives upstream and is re-derived on the next webhook delivery — so
// unlike the original's "closed only" purge, this clears the whole
// projection; any still-open pull request is recreated lazily the next time
// an event names it.
func newRepositoriesPurgeCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "purge OWNER/NAME",
		Short: "Delete every tracked pull request projection for a repository",
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
			for _, pr := range prs {
				if err := store.DeletePullRequest(ctx, pr.ID); err != nil {
					return err
				}
			}
			fmt.Printf("%d pull requests removed.\n", len(prs))
			return nil
		},
	}
}
