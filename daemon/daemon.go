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

// Package daemon assembles and runs the prbot webhook/admin/external HTTP
// server. It is a standalone package rather than living in cmd/prbotd so
// that both the prbotd binary and prbotctl's "server" verb can start it.
package daemon

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/prbot/prbot/api"
	"github.com/prbot/prbot/command"
	"github.com/prbot/prbot/config"
	"github.com/prbot/prbot/core"
	"github.com/prbot/prbot/forge"
	"github.com/prbot/prbot/lock"
	"github.com/prbot/prbot/metrics"
	"github.com/prbot/prbot/status"
	"github.com/prbot/prbot/store/postgres"
	"github.com/prbot/prbot/webhook"
)

// Run opens the store, wires the HTTP surface and serves until ctx is
// cancelled, returning any error that prevented a clean shutdown.
func Run(ctx context.Context, cfg *config.Config) error {
	store, err := postgres.Open(cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	redisLock := lock.New(cfg.Redis.Address)

	forgeClient, err := BuildForgeClient(cfg)
	if err != nil {
		return fmt.Errorf("build forge client: %w", err)
	}

	metrics.MustRegister()

	dispatcher := &command.Dispatcher{Store: store, Forge: forgeClient, BotUsername: cfg.Bot.Username}
	engine := &status.Engine{Forge: forgeClient, Store: store, Lock: redisLock, LockTimeout: 10 * time.Second}
	webhookHandler := &webhook.Handler{
		Store:          store,
		Forge:          forgeClient,
		Dispatcher:     dispatcher,
		Engine:         engine,
		BotUsername:    cfg.Bot.Username,
		WelcomeEnabled: cfg.Welcome.Enabled,
	}

	var adminKey *rsa.PublicKey
	if cfg.Server.AdminPrivateKey != "" {
		priv, err := config.ParseRSAPrivateKey(cfg.Server.AdminPrivateKey)
		if err != nil {
			return fmt.Errorf("parse admin private key: %w", err)
		}
		adminKey = &priv.PublicKey
	}
	adminHandler := &api.AdminHandler{Store: store}
	externalHandler := &api.ExternalHandler{Store: store, Engine: engine}

	if cfg.Webhook.Secret == "" {
		logrus.Warn("webhook.secret is empty: webhook signature verification is disabled")
	}

	r := chi.NewRouter()
	r.Use(metrics.HTTPMiddleware)
	r.Handle("/webhook", webhook.VerifySignature(cfg.Webhook.Secret)(webhookHandler))
	r.Mount("/admin", adminHandler.Router(adminKey, *cfg))
	r.Mount("/external", externalHandler.Router())
	r.Handle("/metrics", metrics.Handler())
	r.Get("/health", healthHandler(store, redisLock))

	heartbeat := cron.New()
	if err := heartbeat.AddFunc("@every 1m", func() {
		if err := store.HealthCheck(ctx); err != nil {
			logrus.WithError(err).Warn("heartbeat: database unhealthy")
		}
	}); err != nil {
		return fmt.Errorf("schedule heartbeat: %w", err)
	}
	heartbeat.Start()
	defer heartbeat.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.BindIP, cfg.Server.BindPort),
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithField("addr", srv.Addr).Info("prbotd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// BuildForgeClient builds a forge client from configuration, shared by the
// daemon's own startup and by prbotctl commands that need to talk to GitHub
// directly (e.g. "pull-requests sync").
func BuildForgeClient(cfg *config.Config) (*forge.Client, error) {
	fc := forge.Config{
		RootURL:        cfg.API.GitHub.RootURL,
		ConnectTimeout: cfg.API.GitHub.ConnectTimeout,
		UserAgent:      "prbot/" + cfg.Bot.Username,
		StaticToken:    cfg.API.GitHub.Token,
		InstallationID: cfg.API.GitHub.AppInstallationID,
	}
	if cfg.API.GitHub.Token == "" {
		priv, err := config.ParseRSAPrivateKey(cfg.API.GitHub.AppPrivateKey)
		if err != nil {
			return nil, err
		}
		fc.AppID = fmt.Sprintf("%d", cfg.API.GitHub.AppID)
		fc.AppPrivateKey = priv
	}
	return forge.New(fc)
}

// healthHandler reports GET /health as {"store": bool, "lock": bool},
// 200 when both are healthy, 500 otherwise.
func healthHandler(store core.Store, l core.Lock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeOK := store.HealthCheck(r.Context()) == nil
		lockOK := l.HealthCheck(r.Context()) == nil

		status := http.StatusOK
		if !storeOK || !lockOK {
			status = http.StatusInternalServerError
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]bool{"store": storeOK, "lock": lockOK})
	}
}
