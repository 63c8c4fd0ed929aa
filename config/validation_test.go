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
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"
)

func samplePEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	der := x509.MarshalPKCS1PrivateKey(key)
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: der}
	return string(pem.EncodeToMemory(block))
}

func TestValidateAPICredentials(t *testing.T) {
	pem := samplePEM(t)

	tests := []struct {
		name    string
		token   string
		appID   uint64
		instID  int64
		privKey string
		wantErr bool
	}{
		{"token alone is sufficient", "tok", 0, 0, "", false},
		{"token alone even with garbage key", "tok", 0, 0, "garbage", false},
		{"no token, no key", "", 0, 0, "", true},
		{"no token, garbage key", "", 0, 0, "garbage", true},
		{"no token, valid key, missing app id", "", 0, 0, pem, true},
		{"no token, valid key, missing installation id", "", 1234, 0, pem, true},
		{"no token, full app triple", "", 1234, 1, pem, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.API.GitHub.Token = tt.token
			c.API.GitHub.AppID = tt.appID
			c.API.GitHub.AppInstallationID = tt.instID
			c.API.GitHub.AppPrivateKey = tt.privKey

			err := c.validateAPICredentials()
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAPICredentials() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllMissingKeys(t *testing.T) {
	var c Config
	err := c.Validate()
	if err == nil {
		t.Fatal("expected validation error on empty config")
	}
	for _, key := range []string{"server.bind_ip", "server.bind_port", "bot.username", "database.url", "redis.address", "api.github.token"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("validation error does not mention %q: %v", key, err)
		}
	}
}
