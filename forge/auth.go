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

package forge

import (
	"context"
	"crypto/rsa"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/prbot/prbot/cryptoutil"
)

// tokenWindow is the lifetime GitHub grants an installation token.
const tokenWindow = 3600 * time.Second

// renewThreshold is the fraction of tokenWindow elapsed before a token is
// considered due for renewal, per spec §4.1.
const renewThreshold = 0.5

// installationTokenCache is process-wide mutable state: one cached token per
// installation, protected by an RWMutex. Writers hold the write lock across
// mint-and-store; readers hold the read lock only while looking up the
// cached token, not for the call that then uses it.
type installationTokenCache struct {
	mu     sync.RWMutex
	tokens map[int64]cachedToken

	// group deduplicates concurrent renewals of the same installation so
	// that only one mint is ever in flight at a time.
	group singleflight.Group

	appID      string
	privateKey *rsa.PrivateKey
	minter     func(ctx context.Context, appJWT string, installationID int64) (token string, expiresAt time.Time, err error)
}

type cachedToken struct {
	token    string
	issuedAt time.Time
}

func (c *cachedToken) stale(now time.Time) bool {
	if c.token == "" {
		return true
	}
	elapsed := now.Sub(c.issuedAt)
	return elapsed >= time.Duration(float64(tokenWindow)*renewThreshold)
}

// Token returns a valid installation token, minting or renewing it as
// necessary. Renewal is serialised: concurrent callers for the same
// installation share one in-flight mint via singleflight.
func (c *installationTokenCache) Token(ctx context.Context, installationID int64) (string, error) {
	c.mu.RLock()
	cur, ok := c.tokens[installationID]
	c.mu.RUnlock()
	if ok && !cur.stale(time.Now()) {
		return cur.token, nil
	}

	key := fmt.Sprintf("install-%d", installationID)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Hold the write lock across mint-and-store, re-checking first:
		// another renewal may have just completed while we were waiting to
		// enter the singleflight group.
		c.mu.Lock()
		defer c.mu.Unlock()
		cur, ok := c.tokens[installationID]
		if ok && !cur.stale(time.Now()) {
			return cur.token, nil
		}

		appJWT, err := c.appJWT()
		if err != nil {
			return "", err
		}
		token, _, err := c.minter(ctx, appJWT, installationID)
		if err != nil {
			return "", err
		}

		c.tokens[installationID] = cachedToken{token: token, issuedAt: time.Now()}
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// appJWT signs a fresh RS256 app JWT with claims {iat, exp: iat+60, iss: appID}.
func (c *installationTokenCache) appJWT() (string, error) {
	now := time.Now()
	claims := cryptoutil.Claims{
		"iat": now.Unix(),
		"exp": now.Add(60 * time.Second).Unix(),
		"iss": c.appID,
	}
	return cryptoutil.CreateRS256(c.privateKey, claims)
}
