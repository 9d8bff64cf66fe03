package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/xiaot623/gogo/governor/internal/domain"
)

// CreateSession creates a new session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	ids := session.ContextIDs
	if ids == nil {
		ids = []string{}
	}
	contextIDs, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_id, kind, created_at, last_activity, expires_at, context_ids) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.SessionID, session.UserID, session.Kind, toUnix(session.CreatedAt), toUnix(session.LastActivity),
		toUnix(session.ExpiresAt), string(contextIDs))
	return err
}

// GetSession retrieves a session by ID regardless of expiry.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session domain.Session
	var createdAt, lastActivity, expiresAt int64
	var contextIDs string
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, user_id, kind, created_at, last_activity, expires_at, context_ids FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&session.SessionID, &session.UserID, &session.Kind, &createdAt, &lastActivity, &expiresAt, &contextIDs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	session.CreatedAt = fromUnix(createdAt)
	session.LastActivity = fromUnix(lastActivity)
	session.ExpiresAt = fromUnix(expiresAt)
	if err := json.Unmarshal([]byte(contextIDs), &session.ContextIDs); err != nil {
		return nil, err
	}
	return &session, nil
}

// TouchSession refreshes activity and expiry of a live session owned by userID.
// It reports false when the session is missing, expired, or owned by someone else.
func (s *SQLiteStore) TouchSession(ctx context.Context, sessionID, userID string, now, expiresAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET last_activity = ?, expires_at = ? WHERE session_id = ? AND user_id = ? AND expires_at > ?`,
		toUnix(now), toUnix(expiresAt), sessionID, userID, toUnix(now))
	if err != nil {
		return false, err
	}
	return rowsAffected(res)
}

// AppendSessionContext adds contextID to the session's ordered context list.
func (s *SQLiteStore) AppendSessionContext(ctx context.Context, sessionID, contextID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET context_ids = json_insert(context_ids, '$[#]', ?) WHERE session_id = ?`,
		contextID, sessionID)
	return err
}

// ListExpiredSessions returns up to limit session ids whose expiry is at or before now.
func (s *SQLiteStore) ListExpiredSessions(ctx context.Context, now time.Time, limit int) ([]string, error) {
	return s.listIDs(ctx,
		`SELECT session_id FROM sessions WHERE expires_at <= ? ORDER BY expires_at ASC LIMIT ?`,
		toUnix(now), limit)
}

// DeleteSessionIfExpired removes the session and its messages only if it is
// still expired at now. A session refreshed since it was listed survives.
func (s *SQLiteStore) DeleteSessionIfExpired(ctx context.Context, sessionID string, now time.Time) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM sessions WHERE session_id = ? AND expires_at <= ?`,
		sessionID, toUnix(now))
	if err != nil {
		return false, err
	}
	deleted, err := rowsAffected(res)
	if err != nil || !deleted {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// GetSessionStats counts the user's live sessions with their messages and live contexts.
func (s *SQLiteStore) GetSessionStats(ctx context.Context, userID string, now time.Time) (*domain.SessionStats, error) {
	stats := &domain.SessionStats{UserID: userID}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM sessions WHERE user_id = ? AND expires_at > ?),
			(SELECT COUNT(*) FROM messages m JOIN sessions ss ON ss.session_id = m.session_id
				WHERE ss.user_id = ? AND ss.expires_at > ?),
			(SELECT COUNT(*) FROM contexts WHERE user_id = ? AND expires_at > ?)
	`, userID, toUnix(now), userID, toUnix(now), userID, toUnix(now)).Scan(
		&stats.ActiveSessions, &stats.TotalMessages, &stats.ActiveContexts)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *SQLiteStore) listIDs(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
