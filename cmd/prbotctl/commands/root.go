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

// Package commands implements the prbotctl cobra command tree.
package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/prbot/prbot/config"
	"github.com/prbot/prbot/core"
	"github.com/prbot/prbot/store/postgres"
)

// globalOptions carries flags shared by every subcommand.
type globalOptions struct {
	envFile string
}

// cliOverlay is the optional ".prbotctl.yml" operators may drop next to
// where they run the tool, to avoid retyping --env-file on every
// invocation. It is intentionally tiny: the .env file remains the single
// source of truth for everything the daemon itself reads.
type cliOverlay struct {
	EnvFile string `yaml:"env_file"`
}

const cliOverlayFile = ".prbotctl.yml"

// loadCLIOverlay reads cliOverlayFile from the working directory, if
// present, returning a zero value when it doesn't exist.
func loadCLIOverlay() (cliOverlay, error) {
	path, err := filepath.Abs(cliOverlayFile)
	if err != nil {
		return cliOverlay{}, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cliOverlay{}, nil
	}
	if err != nil {
		return cliOverlay{}, fmt.Errorf("read %s: %w", cliOverlayFile, err)
	}
	var overlay cliOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return cliOverlay{}, fmt.Errorf("parse %s: %w", cliOverlayFile, err)
	}
	return overlay, nil
}

// New builds the prbotctl command tree: server, export, import,
// repositories, pull-requests, auth, debug — spec §6's CLI verb list.
func New() *cobra.Command {
	opts := &globalOptions{envFile: ".env"}
	if overlay, err := loadCLIOverlay(); err == nil && overlay.EnvFile != "" {
		opts.envFile = overlay.EnvFile
	}
	root := &cobra.Command{
		Use:           "prbotctl",
		Short:         "Administer a prbot deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", opts.envFile, "path to the .env configuration file")

	root.AddCommand(newServerCommand(opts))
	root.AddCommand(newExportCommand(opts))
	root.AddCommand(newImportCommand(opts))
	root.AddCommand(newRepositoriesCommand(opts))
	root.AddCommand(newPullRequestsCommand(opts))
	root.AddCommand(newAuthCommand(opts))
	root.AddCommand(newDebugCommand(opts))
	return root
}

// loadConfig reads the configuration file every subcommand needs, even the
// ones that never open the database (e.g. "server" validates before
// starting, others need the DSN to dial Postgres directly).
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// openStore connects directly to the Store the server uses, bypassing HTTP
// entirely — prbotctl is a collaborator, not a client of the admin API.
func (o *globalOptions) openStore(ctx context.Context) (core.Store, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := postgres.Open(cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := store.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("database not reachable: %w", err)
	}
	return store, nil
}

// parseRepositoryPath splits the "owner/name" shorthand every repository-
// scoped command accepts as its first argument.
func parseRepositoryPath(path string) (owner, name string, err error) {
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("expected repository path in OWNER/NAME form, got %q", path)
	}
	return parts[0], parts[1], nil
}

// getRepository resolves the "owner/name" shorthand against the store.
func getRepository(ctx context.Context, store core.Store, path string) (*core.Repository, error) {
	owner, name, err := parseRepositoryPath(path)
	if err != nil {
		return nil, err
	}
	return store.GetRepository(ctx, owner, name)
}
