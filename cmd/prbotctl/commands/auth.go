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
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prbot/prbot/core"
	"github.com/prbot/prbot/cryptoutil"
)

// parseRSAPrivateKeyPEM parses the PKCS#1-encoded key cryptoutil.GenerateKeyPair
// produces, as stored on ExternalAccount.PrivateKey.
func parseRSAPrivateKeyPEM(pemKey string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemKey))
	if block == nil {
		return nil, fmt.Errorf("invalid PEM block")
	}
	return x509.ParsePKCS1PrivateKey(block.Bytes)
}

func newAuthCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage external accounts and their per-repository rights",
	}
	cmd.AddCommand(
		newAuthCreateExternalAccountCommand(opts),
		newAuthListExternalAccountsCommand(opts),
		newAuthRemoveExternalAccountCommand(opts),
		newAuthCreateExternalTokenCommand(opts),
		newAuthAddAccountRightCommand(opts),
		newAuthRemoveAccountRightCommand(opts),
		newAuthRemoveAccountRightsCommand(opts),
		newAuthListAccountRightsCommand(opts),
		newAuthAddAdminRightsCommand(opts),
		newAuthRemoveAdminRightsCommand(opts),
		newAuthListAdminAccountsCommand(opts),
	)
	return cmd
}

func newAuthCreateExternalAccountCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create-external-account USERNAME",
		Short: "Create an external account with a fresh RSA key pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			privatePEM, publicPEM, err := cryptoutil.GenerateKeyPair()
			if err != nil {
				return err
			}
			if _, err := store.CreateExternalAccount(ctx, &core.ExternalAccount{
				Username:   args[0],
				PublicKey:  publicPEM,
				PrivateKey: privatePEM,
			}); err != nil {
				return err
			}
			fmt.Printf("External account '%s' created.\n", args[0])
			return nil
		},
	}
}

func newAuthListExternalAccountsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list-external-accounts",
		Short: "List every external account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			accounts, err := store.ListExternalAccounts(ctx)
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				fmt.Println("No external account found.")
				return nil
			}
			for _, a := range accounts {
				fmt.Println(a.Username)
			}
			return nil
		},
	}
}

func newAuthRemoveExternalAccountCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-external-account USERNAME",
		Short: "Remove an external account and its rights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			if err := store.DeleteExternalAccount(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("External account '%s' removed.\n", args[0])
			return nil
		},
	}
}

func newAuthCreateExternalTokenCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create-external-token USERNAME",
		Short: "Mint a JWT for an external account, signed with its stored private key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			account, err := store.GetExternalAccount(ctx, args[0])
			if err != nil {
				return err
			}
			priv, err := parseRSAPrivateKeyPEM(account.PrivateKey)
			if err != nil {
				return fmt.Errorf("parse stored private key for %q: %w", args[0], err)
			}
			token, err := cryptoutil.CreateRS256(priv, cryptoutil.Claims{"iss": account.Username})
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}

func newAuthAddAccountRightCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add-account-right USERNAME OWNER/NAME",
		Short: "Grant an external account rights on a repository",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			repo, err := getRepository(ctx, store, args[1])
			if err != nil {
				return err
			}
			if err := store.AddExternalAccountRight(ctx, args[0], repo.ID); err != nil {
				return err
			}
			fmt.Printf("Right added to repository %s for account '%s'.\n", args[1], args[0])
			return nil
		},
	}
}

func newAuthRemoveAccountRightCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-account-right USERNAME OWNER/NAME",
		Short: "Revoke an external account's rights on a repository",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			repo, err := getRepository(ctx, store, args[1])
			if err != nil {
				return err
			}
			if err := store.RemoveExternalAccountRight(ctx, args[0], repo.ID); err != nil {
				return err
			}
			fmt.Printf("Right removed from repository %s for account '%s'.\n", args[1], args[0])
			return nil
		},
	}
}

func newAuthRemoveAccountRightsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-account-rights USERNAME",
		Short: "Revoke every right held by an external account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			rights, err := store.ListExternalAccountRights(ctx, args[0])
			if err != nil {
				return err
			}
			for _, r := range rights {
				if err := store.RemoveExternalAccountRight(ctx, args[0], r.RepositoryID); err != nil {
					return err
				}
			}
			fmt.Printf("All rights removed for account '%s'.\n", args[0])
			return nil
		},
	}
}

func newAuthListAccountRightsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list-account-rights USERNAME",
		Short: "List repositories an external account has rights on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			rights, err := store.ListExternalAccountRights(ctx, args[0])
			if err != nil {
				return err
			}
			if len(rights) == 0 {
				fmt.Printf("No right found for account '%s'.\n", args[0])
				return nil
			}
			for _, r := range rights {
				fmt.Printf("- repository #%d\n", r.RepositoryID)
			}
			return nil
		},
	}
}

func newAuthAddAdminRightsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add-admin-rights USERNAME",
		Short: "Grant an account admin rights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			if err := setAccountAdmin(ctx, store, args[0], true); err != nil {
				return err
			}
			fmt.Printf("Admin rights added to account '%s'.\n", args[0])
			return nil
		},
	}
}

func newAuthRemoveAdminRightsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-admin-rights USERNAME",
		Short: "Revoke an account's admin rights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			if err := setAccountAdmin(ctx, store, args[0], false); err != nil {
				return err
			}
			fmt.Printf("Admin rights removed from account '%s'.\n", args[0])
			return nil
		},
	}
}

func newAuthListAdminAccountsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list-admin-accounts",
		Short: "List accounts with admin rights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			accounts, err := store.ListAdminAccounts(ctx)
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				fmt.Println("No admin account found.")
				return nil
			}
			for _, a := range accounts {
				fmt.Println(a.Username)
			}
			return nil
		},
	}
}

// setAccountAdmin gets-or-creates the account, since granting admin rights
// to a username prbot has not yet seen (e.g. before their first command)
// is a normal bootstrap step, mirrored from the command package's own
// lazy-account-creation rule.
func setAccountAdmin(ctx context.Context, store core.Store, username string, admin bool) error {
	account, err := store.GetAccount(ctx, username)
	if core.IsNotFound(err) {
		account, err = store.CreateAccount(ctx, &core.Account{Username: username})
	}
	if err != nil {
		return err
	}
	return store.SetAccountIsAdmin(ctx, account.Username, admin)
}
