package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/xiaot623/gogo/governor/internal/domain"
)

// CreateMessage appends a message to its session.
func (s *SQLiteStore) CreateMessage(ctx context.Context, message *domain.Message) error {
	var refs []byte
	if len(message.ContextRefs) > 0 {
		refs, _ = json.Marshal(message.ContextRefs)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (message_id, session_id, role, content, created_at, context_refs) VALUES (?, ?, ?, ?, ?, ?)`,
		message.MessageID, message.SessionID, message.Role, message.Content, toUnix(message.CreatedAt), nullStringBytes(refs))
	return err
}

// GetRecentMessages returns the last limit messages of a session in chronological order.
func (s *SQLiteStore) GetRecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id, session_id, role, content, created_at, context_refs
		FROM messages
		WHERE session_id = ?
		ORDER BY created_at DESC, seq DESC
		LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		var createdAt int64
		var refs sql.NullString
		if err := rows.Scan(&msg.MessageID, &msg.SessionID, &msg.Role, &msg.Content, &createdAt, &refs); err != nil {
			return nil, err
		}
		msg.CreatedAt = fromUnix(createdAt)
		if refs.Valid {
			if err := json.Unmarshal([]byte(refs.String), &msg.ContextRefs); err != nil {
				return nil, err
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
