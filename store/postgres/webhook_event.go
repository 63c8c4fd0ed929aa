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

import (
	"context"

	"github.com/segmentio/ksuid"

	"github.com/prbot/prbot/core"
)

type webhookEventRow struct {
	ID           string `db:"id"`
	RepositoryID uint64 `db:"repository_id"`
	EventName    string `db:"event_name"`
	Action       string `db:"action"`
	ReceivedAt   any    `db:"received_at"`
}

func (r webhookEventRow) toCore() *core.WebhookEvent {
	return &core.WebhookEvent{
		ID:           r.ID,
		RepositoryID: r.RepositoryID,
		EventName:    r.EventName,
		Action:       r.Action,
	}
}

// RecordWebhookEvent persists e, minting a fresh k-sortable id when the
// caller left one unset.
func (s *Store) RecordWebhookEvent(ctx context.Context, e *core.WebhookEvent) error {
	id := e.ID
	if id == "" {
		id = ksuid.New().String()
	}
	const q = `INSERT INTO webhook_event (id, repository_id, event_name, action) VALUES ($1, $2, $3, $4)`
	if _, err := s.db.ExecContext(ctx, q, id, e.RepositoryID, e.EventName, e.Action); err != nil {
		return classifyWrite(err, "webhook event")
	}
	e.ID = id
	return nil
}

// ListWebhookHistory returns the most recent limit events for repositoryID,
// newest first. This store does not trim old rows: the webhook_event table
// keeps every recorded event.
func (s *Store) ListWebhookHistory(ctx context.Context, repositoryID uint64, limit int) ([]*core.WebhookEvent, error) {
	var rows []webhookEventRow
	const q = `SELECT * FROM webhook_event WHERE repository_id = $1 ORDER BY received_at DESC LIMIT $2`
	if err := s.db.SelectContext(ctx, &rows, q, repositoryID, limit); err != nil {
		return nil, core.Implementation(err)
	}
	out := make([]*core.WebhookEvent, len(rows))
	for i, row := range rows {
		out[i] = row.toCore()
	}
	return out, nil
}
