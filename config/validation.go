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

package config

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"

	"github.com/hashicorp/go-multierror"

	jwt "github.com/dgrijalva/jwt-go/v4"
)

// Validate checks the startup invariants listed in spec §6: required keys
// non-empty, app_private_key parses as an RSA PEM, and either a static
// token or the full app-mode triple is present. Every violation is
// collected so operators see the whole list at once, not one at a time.
func (c *Config) Validate() error {
	var errs *multierror.Error

	if c.Server.BindIP == "" {
		errs = multierror.Append(errs, errMissing("server.bind_ip"))
	}
	if c.Server.BindPort == 0 {
		errs = multierror.Append(errs, errMissing("server.bind_port"))
	}
	if c.Bot.Username == "" {
		errs = multierror.Append(errs, errMissing("bot.username"))
	}
	if c.Database.URL == "" {
		errs = multierror.Append(errs, errMissing("database.url"))
	}
	if c.Redis.Address == "" {
		errs = multierror.Append(errs, errMissing("redis.address"))
	}

	if err := c.validateAPICredentials(); err != nil {
		errs = multierror.Append(errs, err)
	}

	return errs.ErrorOrNil()
}

// validateAPICredentials mirrors github-scbot's validate_api_credentials:
// a static token is sufficient on its own; otherwise the full app-mode
// triple (id, installation id, RSA private key) is required.
func (c *Config) validateAPICredentials() error {
	gh := c.API.GitHub
	if gh.Token != "" {
		return nil
	}
	if gh.AppPrivateKey == "" {
		return errMissing("api.github.token (or api.github.app_private_key)")
	}
	if _, err := ParseRSAPrivateKey(gh.AppPrivateKey); err != nil {
		return errInvalid("api.github.app_private_key", err)
	}
	if gh.AppID == 0 {
		return errMissing("api.github.app_id")
	}
	if gh.AppInstallationID == 0 {
		return errMissing("api.github.app_installation_id")
	}
	return nil
}

// ParseRSAPrivateKey parses a PEM-encoded RSA private key, accepting both
// PKCS#1 and PKCS#8 encodings.
func ParseRSAPrivateKey(pemKey string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemKey))
	if block == nil {
		return nil, errPEMDecode
	}
	if key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(pemKey)); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errNotRSA
	}
	return rsaKey, nil
}
