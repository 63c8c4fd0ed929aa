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

package postgres

// Schema is the full DDL an operator's own migration runner applies before
// a process first connects; no prbot command executes it. It is kept as
// a single idempotent statement set rather than a versioned migration
// chain: prbot has no released schema history to preserve compatibility
// with yet.
const Schema = `
CREATE TABLE IF NOT EXISTS repository (
	id                              SERIAL PRIMARY KEY,
	owner                           TEXT NOT NULL,
	name                            TEXT NOT NULL,
	manual_interaction              BOOLEAN NOT NULL DEFAULT FALSE,
	pr_title_validation_regex       TEXT NOT NULL DEFAULT '',
	default_strategy                TEXT NOT NULL DEFAULT 'merge',
	default_needed_reviewers_count  INTEGER NOT NULL DEFAULT 0,
	default_automerge               BOOLEAN NOT NULL DEFAULT FALSE,
	default_enable_qa               BOOLEAN NOT NULL DEFAULT FALSE,
	default_enable_checks           BOOLEAN NOT NULL DEFAULT TRUE,
	created_at                      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at                      TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (owner, name)
);

CREATE TABLE IF NOT EXISTS pull_request (
	id                      SERIAL PRIMARY KEY,
	repository_id           INTEGER NOT NULL REFERENCES repository (id) ON DELETE CASCADE,
	number                  INTEGER NOT NULL,
	qa_status                TEXT NOT NULL DEFAULT 'skipped',
	needed_reviewers_count  INTEGER NOT NULL DEFAULT 0,
	status_comment_id       BIGINT NOT NULL DEFAULT 0,
	checks_enabled          BOOLEAN NOT NULL DEFAULT TRUE,
	automerge               BOOLEAN NOT NULL DEFAULT FALSE,
	locked                  BOOLEAN NOT NULL DEFAULT FALSE,
	strategy_override       TEXT,
	created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (repository_id, number)
);

CREATE TABLE IF NOT EXISTS merge_rule (
	id              SERIAL PRIMARY KEY,
	repository_id   INTEGER NOT NULL REFERENCES repository (id) ON DELETE CASCADE,
	base_branch     TEXT NOT NULL DEFAULT '',
	head_branch     TEXT NOT NULL DEFAULT '',
	strategy        TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (repository_id, base_branch, head_branch)
);

CREATE TABLE IF NOT EXISTS required_reviewer (
	pull_request_id  INTEGER NOT NULL REFERENCES pull_request (id) ON DELETE CASCADE,
	username          TEXT NOT NULL,
	PRIMARY KEY (pull_request_id, username)
);

CREATE TABLE IF NOT EXISTS account (
	username    TEXT PRIMARY KEY,
	is_admin    BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS external_account (
	username     TEXT PRIMARY KEY,
	public_key   TEXT NOT NULL,
	private_key  TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS external_account_right (
	username        TEXT NOT NULL REFERENCES external_account (username) ON DELETE CASCADE,
	repository_id   INTEGER NOT NULL REFERENCES repository (id) ON DELETE CASCADE,
	PRIMARY KEY (username, repository_id)
);

CREATE TABLE IF NOT EXISTS webhook_event (
	id              TEXT PRIMARY KEY,
	repository_id   INTEGER NOT NULL REFERENCES repository (id) ON DELETE CASCADE,
	event_name      TEXT NOT NULL,
	action          TEXT NOT NULL DEFAULT '',
	received_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS webhook_event_repository_id_idx ON webhook_event (repository_id, received_at DESC);
`
