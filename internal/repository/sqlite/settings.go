package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

func (r *SQLiteRepo) GetSettings(ctx context.Context, userID string) (json.RawMessage, error) {
	var doc string
	err := r.conn.QueryRow(ctx, `SELECT document FROM user_settings WHERE user_id = ?`, userID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return json.RawMessage(doc), nil
}

func (r *SQLiteRepo) PutSettings(ctx context.Context, userID string, doc json.RawMessage) error {
	_, err := r.conn.Exec(ctx, `INSERT INTO user_settings (user_id, document, updated) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET document = excluded.document, updated = excluded.updated`, userID, string(doc), now())
	if err != nil {
		return fmt.Errorf("put settings: %w", err)
	}
	return nil
}
