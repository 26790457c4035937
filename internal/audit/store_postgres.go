// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scholaris/admin-gateway/internal/rbac"
)

// # PostgreSQL Sink

// PostgresStore implements [Sink] on the gateway's audit schema.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates the PostgreSQL audit sink.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Emit inserts one event into audit.event.
func (store *PostgresStore) Emit(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit.event (id, event_type, user_id, tenant_id, role, ip, path, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := store.pool.Exec(ctx, query,
		event.ID,
		string(event.Type),
		nullable(event.UserID),
		nullable(event.TenantID),
		nullable(string(event.Role)),
		event.IP,
		event.Path,
		event.Detail,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit_store_emit_failed: %w", err)
	}

	return nil
}

/*
ListRecent returns the newest events, most recent first.

Description: Backs the super-admin audit view. The limit is clamped to a sane
page size so a bad query parameter cannot scan the whole table.

Parameters:
  - context: context.Context
  - limit: int (clamped to 1..200)

Returns:
  - []Event: Ordered newest first
  - error: Database execution failure
*/
func (store *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, event_type, COALESCE(user_id, ''), COALESCE(tenant_id, ''), COALESCE(role, ''), ip, path, detail, created_at
		FROM audit.event
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := store.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("audit_store_list_recent_failed: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0, limit)
	for rows.Next() {
		var event Event
		var eventType, role string
		if err := rows.Scan(
			&event.ID,
			&eventType,
			&event.UserID,
			&event.TenantID,
			&role,
			&event.IP,
			&event.Path,
			&event.Detail,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("audit_store_scan_failed: %w", err)
		}
		event.Type = EventType(eventType)
		event.Role = rbac.Role(role)
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit_store_rows_failed: %w", err)
	}

	return events, nil
}

// nullable maps empty strings to NULL so anonymous events do not store
// empty-string principals.
func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
