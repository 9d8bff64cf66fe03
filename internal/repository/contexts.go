package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xiaot623/gogo/governor/internal/domain"
)

// CreateContext stores a new context fragment.
func (s *SQLiteStore) CreateContext(ctx context.Context, fragment *domain.ContextFragment) error {
	payload, err := json.Marshal(fragment.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	metadata, err := json.Marshal(fragment.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contexts (context_id, session_id, user_id, type, payload, metadata, relevance, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fragment.ContextID, fragment.SessionID, fragment.UserID, fragment.Type, string(payload),
		nullStringBytes(metadata), fragment.Relevance, toUnix(fragment.CreatedAt), toUnix(fragment.ExpiresAt))
	return err
}

// ListContexts returns the session's live fragments, highest relevance first,
// newest first among equal relevance. An empty typeFilter matches every type.
func (s *SQLiteStore) ListContexts(ctx context.Context, sessionID string, typeFilter domain.ContextType, now time.Time) ([]domain.ContextFragment, error) {
	query := `SELECT context_id, session_id, user_id, type, payload, metadata, relevance, created_at, expires_at
		FROM contexts WHERE session_id = ? AND expires_at > ?`
	args := []interface{}{sessionID, toUnix(now)}

	if typeFilter != "" {
		query += ` AND type = ?`
		args = append(args, typeFilter)
	}
	query += ` ORDER BY relevance DESC, created_at DESC, context_id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fragments []domain.ContextFragment
	for rows.Next() {
		var f domain.ContextFragment
		var payload string
		var metadata sql.NullString
		var createdAt, expiresAt int64
		if err := rows.Scan(&f.ContextID, &f.SessionID, &f.UserID, &f.Type, &payload, &metadata,
			&f.Relevance, &createdAt, &expiresAt); err != nil {
			return nil, err
		}
		f.Payload, err = domain.DecodePayload(f.Type, json.RawMessage(payload))
		if err != nil {
			return nil, fmt.Errorf("context %s: %w", f.ContextID, err)
		}
		if metadata.Valid {
			if err := json.Unmarshal([]byte(metadata.String), &f.Metadata); err != nil {
				return nil, fmt.Errorf("context %s metadata: %w", f.ContextID, err)
			}
		}
		f.CreatedAt = fromUnix(createdAt)
		f.ExpiresAt = fromUnix(expiresAt)
		fragments = append(fragments, f)
	}
	return fragments, rows.Err()
}

// ListExpiredContexts returns up to limit context ids whose expiry is at or before now.
func (s *SQLiteStore) ListExpiredContexts(ctx context.Context, now time.Time, limit int) ([]string, error) {
	return s.listIDs(ctx,
		`SELECT context_id FROM contexts WHERE expires_at <= ? ORDER BY expires_at ASC LIMIT ?`,
		toUnix(now), limit)
}

// DeleteContextIfExpired removes the fragment only if it is still expired at now.
func (s *SQLiteStore) DeleteContextIfExpired(ctx context.Context, contextID string, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM contexts WHERE context_id = ? AND expires_at <= ?`,
		contextID, toUnix(now))
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}
