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

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

const debugHistoryDefaultLimit = 20

// newDebugCommand groups operator-facing introspection verbs that have no
// equivalent entity to manage, just stored history to read back.
func newDebugCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Inspect prbot's own operational state",
	}
	cmd.AddCommand(newDebugHistoryCommand(opts))
	return cmd
}

func newDebugHistoryCommand(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history OWNER/NAME",
		Short: "Show recently accepted webhook deliveries for a repository",
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
			events, err := store.ListWebhookHistory(ctx, repo.ID, limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Printf("No webhook history for repository %s.\n", args[0])
				return nil
			}
			for _, e := range events {
				fmt.Printf("%-24s %-20s %s (%s)\n", e.EventName, e.Action, e.ID, humanize.Time(e.ReceivedAt))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", debugHistoryDefaultLimit, "maximum number of events to show")
	return cmd
}
