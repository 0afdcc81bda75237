package sqlite

import (
	"context"
	"time"
)

// Revoke records a token id until its expiry; expired rows are pruned on write.
func (r *SQLiteRepo) Revoke(ctx context.Context, jti string, expires time.Time) error {
	if _, err := r.conn.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires < ?`, now()); err != nil {
		r.logger.Warn("prune revoked tokens", "err", err)
	}
	_, err := r.conn.Exec(ctx, `INSERT OR REPLACE INTO revoked_tokens (jti, expires) VALUES (?, ?)`, jti, expires.UTC().UnixMilli())
	return err
}

func (r *SQLiteRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var n int
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM revoked_tokens WHERE jti = ? AND expires >= ?`, jti, now()).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
