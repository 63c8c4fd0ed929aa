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
	"errors"
	"fmt"
)

// ErrorKind is the closed set of error categories the core can surface.
// The HTTP and CLI boundaries map each kind to a status code or exit code;
// nothing lower in the stack retries on any of these.
type ErrorKind int

const (
	// KindInput covers malformed webhook bodies, unknown events, bad CLI args.
	KindInput ErrorKind = iota
	// KindAuth covers bad signatures, invalid or unknown bearers, unauthorised commands.
	KindAuth
	// KindNotFound covers missing entities in the store.
	KindNotFound
	// KindForge covers forge transport/5xx/rate-limit failures.
	KindForge
	// KindStore covers unexpected database failures.
	KindStore
	// KindConflict covers uniqueness violations on create.
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindForge:
		return "forge"
	case KindStore:
		return "store"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is the typed error carried across every component boundary.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, &core.Error{Kind: k}) match any *Error of kind k.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapErr(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// UnknownRepository returns a typed NotFound error for a missing repository.
func UnknownRepository(owner, name string) error {
	return newErr(KindNotFound, "unknown repository %s/%s", owner, name)
}

// UnknownPullRequest returns a typed NotFound error for a missing pull request.
func UnknownPullRequest(owner, name string, number uint64) error {
	return newErr(KindNotFound, "unknown pull request %s/%s#%d", owner, name, number)
}

// UnknownAccount returns a typed NotFound error for a missing account.
func UnknownAccount(username string) error {
	return newErr(KindNotFound, "unknown account %s", username)
}

// UnknownExternalAccount returns a typed NotFound error for a missing external account.
func UnknownExternalAccount(username string) error {
	return newErr(KindNotFound, "unknown external account %s", username)
}

// UnknownMergeRule returns a typed NotFound error for a missing merge rule.
func UnknownMergeRule(base, head RuleBranch) error {
	return newErr(KindNotFound, "unknown merge rule %s -> %s", base, head)
}

// Implementation wraps an unexpected storage-layer failure.
func Implementation(err error) error {
	return wrapErr(KindStore, err, "store implementation error")
}

// ConflictError wraps a uniqueness violation on create.
func ConflictError(entity string, err error) error {
	return wrapErr(KindConflict, err, "%s already exists", entity)
}

// InputError wraps a malformed-input failure.
func InputError(format string, args ...any) error {
	return newErr(KindInput, format, args...)
}

// AuthError wraps an authentication/authorisation failure.
func AuthError(format string, args ...any) error {
	return newErr(KindAuth, format, args...)
}

// ForgeErrorf wraps a forge-transport failure.
func ForgeErrorf(err error, format string, args ...any) error {
	return wrapErr(KindForge, err, format, args...)
}

// KindOf extracts the ErrorKind carried by err, if any, along with ok=true.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsNotFound reports whether err is a typed KindNotFound error, for callers
// that want to distinguish "missing" from other failures without a type
// switch on the exact entity.
func IsNotFound(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindNotFound
}
