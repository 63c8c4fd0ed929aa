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

// Package config loads and validates prbot's process configuration, per
// spec §6's configuration key table.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the full set of recognised configuration options. Field tags
// follow envconfig's convention: PRBOT_SERVER_BIND_IP, etc.
type Config struct {
	Server struct {
		BindIP          string `envconfig:"BIND_IP" required:"true"`
		BindPort        int    `envconfig:"BIND_PORT" required:"true"`
		AdminPrivateKey string `envconfig:"ADMIN_PRIVATE_KEY"`
	}

	// Secure configures the HTTP security headers applied to the admin
	// API, mirroring the options unrolled/secure exposes.
	Secure struct {
		AllowedHosts         []string `envconfig:"ALLOWED_HOSTS"`
		SSLRedirect          bool     `envconfig:"SSL_REDIRECT"`
		STSSeconds           int64    `envconfig:"STS_SECONDS" default:"31536000"`
		STSIncludeSubdomains bool     `envconfig:"STS_INCLUDE_SUBDOMAINS" default:"true"`
		FrameDeny            bool     `envconfig:"FRAME_DENY" default:"true"`
		ContentTypeNosniff   bool     `envconfig:"CONTENT_TYPE_NOSNIFF" default:"true"`
		BrowserXSSFilter     bool     `envconfig:"BROWSER_XSS_FILTER" default:"true"`
	}

	Bot struct {
		Username string `envconfig:"USERNAME" required:"true"`
	}

	Database struct {
		URL      string `envconfig:"URL" required:"true"`
		PoolSize int    `envconfig:"POOL_SIZE" default:"10"`
	}

	Redis struct {
		Address string `envconfig:"ADDRESS" required:"true"`
	}

	API struct {
		GitHub struct {
			RootURL             string        `envconfig:"ROOT_URL"`
			ConnectTimeout      time.Duration `envconfig:"CONNECT_TIMEOUT" default:"10s"`
			Token               string        `envconfig:"TOKEN"`
			AppID               uint64        `envconfig:"APP_ID"`
			AppInstallationID   int64         `envconfig:"APP_INSTALLATION_ID"`
			AppPrivateKey       string        `envconfig:"APP_PRIVATE_KEY"`
		} `envconfig:"GITHUB"`
	} `envconfig:"API"`

	Webhook struct {
		Secret string `envconfig:"SECRET"`
	}

	Welcome struct {
		Enabled bool `envconfig:"ENABLED" default:"true"`
	}
}

// Load reads a .env file if present (missing is not an error) and then
// populates Config from the process environment, prefixed PRBOT_.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile) // missing .env is expected in production
	}
	var cfg Config
	if err := envconfig.Process("prbot", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
