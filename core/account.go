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

import "time"

// Account is a human forge user known to prbot, used to authorise
// admin-prefixed commands.
type Account struct {
	Username  string
	IsAdmin   bool
	CreatedAt time.Time
}

// RequiredReviewer is a user whose explicit approval is required on a pull
// request regardless of NeededReviewersCount.
type RequiredReviewer struct {
	PullRequestID uint64
	Username      string
}

// ExternalAccount is a non-human principal authenticating to prbot's own
// HTTP API with an RSA-signed JWT.
type ExternalAccount struct {
	Username   string
	PublicKey  string
	PrivateKey string
	CreatedAt  time.Time
}

// ExternalAccountRight grants an ExternalAccount the ability to act on one
// repository.
type ExternalAccountRight struct {
	Username     string
	RepositoryID uint64
}
