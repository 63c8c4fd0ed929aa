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

// Package lock implements core.Lock as a Redis-backed distributed mutex
// using redsync, serialising the status engine's first-write summary path.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redsync/redsync/v4"
	goredis "github.com/go-redsync/redsync/v4/redis/goredis/v8"

	"github.com/prbot/prbot/core"
)

// RedisLock implements core.Lock over a single Redis instance.
type RedisLock struct {
	client  *redis.Client
	redsync *redsync.Redsync
}

// New builds a RedisLock connected to the given Redis address (host:port).
func New(addr string) *RedisLock {
	client := redis.NewClient(&redis.Options{Addr: addr})
	pool := goredis.NewPool(client)
	return &RedisLock{
		client:  client,
		redsync: redsync.New(pool),
	}
}

type handle struct {
	mutex *redsync.Mutex
}

func (h *handle) Release(ctx context.Context) error {
	ok, err := h.mutex.UnlockContext(ctx)
	if err != nil {
		return core.Implementation(err)
	}
	if !ok {
		return core.Implementation(errors.New("lock was not held at release time"))
	}
	return nil
}

// WaitLock attempts to acquire name within timeout. Per spec §4.3, failing
// to acquire within the deadline is reported as ok=false with a nil error —
// AlreadyLocked is a normal outcome, not a failure.
func (l *RedisLock) WaitLock(ctx context.Context, name string, timeout time.Duration) (core.LockHandle, bool, error) {
	mutex := l.redsync.NewMutex(name, redsync.WithExpiry(timeout), redsync.WithTries(1))

	deadline := time.Now().Add(timeout)
	for {
		err := mutex.LockContext(ctx)
		if err == nil {
			return &handle{mutex: mutex}, true, nil
		}
		if time.Now().After(deadline) {
			return nil, false, nil
		}
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// HealthCheck pings the underlying Redis connection.
func (l *RedisLock) HealthCheck(ctx context.Context) error {
	if err := l.client.Ping(ctx).Err(); err != nil {
		return core.Implementation(err)
	}
	return nil
}
