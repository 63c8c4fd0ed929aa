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

// Command prbotd runs the prbot webhook and admin HTTP server.
package main

import (
	"context"

	"github.com/drone/signal"
	"github.com/sirupsen/logrus"

	"github.com/prbot/prbot/config"
	"github.com/prbot/prbot/daemon"
)

func main() {
	ctx := signal.WithContextFunc(context.Background(), func() {
		logrus.Info("received termination signal, shutting down")
	})

	cfg, err := config.Load(".env")
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	if err := daemon.Run(ctx, cfg); err != nil {
		logrus.WithError(err).Fatal("prbotd exited with error")
	}
}
