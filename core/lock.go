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

package core

import (
	"context"
	"strconv"
	"time"
)

// LockHandle is the scoped resource returned by a successful WaitLock. The
// lock is released on every exit path: call Release exactly once, typically
// via defer.
type LockHandle interface {
	Release(ctx context.Context) error
}

// Lock is a named distributed mutex, used to serialise the first-write path
// of the summary comment reconciliation (spec §4.3).
type Lock interface {
	// WaitLock attempts to acquire name within timeout. handle is nil and
	// ok is false when the timeout elapses without acquiring the lock;
	// AlreadyLocked is not an error, it is this normal outcome.
	WaitLock(ctx context.Context, name string, timeout time.Duration) (handle LockHandle, ok bool, err error)

	// HealthCheck is a no-op probe used by GET /health.
	HealthCheck(ctx context.Context) error
}

// SummaryLockName returns the lock name serialising summary-comment writes
// for one pull request, per spec §4.6.5.
func SummaryLockName(owner, name string, number uint64) string {
	return "summary-" + owner + "-" + name + "-" + strconv.FormatUint(number, 10)
}
