package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sagniknandigit/internship-management/pkg/models"
)

const updateColumns = `id, title, content, posted_by_user_id, posted_by_name, posted_by_role, target_role, target_user_id,
	image_file, attachment_file, cta_label, cta_link, created`

func scanUpdate(s interface{ Scan(...any) error }) (*models.Update, error) {
	var u models.Update
	var role, target string
	if err := s.Scan(&u.ID, &u.Title, &u.Content, &u.PostedByUserID, &u.PostedByName, &role, &target, &u.TargetUserID,
		&u.ImageFile, &u.AttachmentFile, &u.CTALabel, &u.CTALink, &u.Created); err != nil {
		return nil, err
	}
	u.PostedByRole = models.Role(role)
	u.TargetRole = models.TargetRole(target)
	u.ReadBy = []string{}
	return &u, nil
}

func (r *SQLiteRepo) CreateUpdate(ctx context.Context, u *models.Update) error {
	if u == nil {
		return fmt.Errorf("update is nil")
	}
	ts := now()
	_, err := r.conn.Exec(ctx, `INSERT INTO updates (`+updateColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Title, u.Content, u.PostedByUserID, u.PostedByName, string(u.PostedByRole), string(u.TargetRole), u.TargetUserID,
		u.ImageFile, u.AttachmentFile, u.CTALabel, u.CTALink, ts)
	if err != nil {
		return fmt.Errorf("insert update: %w", err)
	}
	u.Created = ts
	if u.ReadBy == nil {
		u.ReadBy = []string{}
	}
	return nil
}

func (r *SQLiteRepo) GetUpdate(ctx context.Context, id string) (*models.Update, error) {
	u, err := scanUpdate(r.conn.QueryRow(ctx, `SELECT `+updateColumns+` FROM updates WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	reads, err := r.readers(ctx, `WHERE update_id = ?`, id)
	if err != nil {
		return nil, err
	}
	u.ReadBy = append(u.ReadBy, reads[id]...)
	return u, nil
}

func (r *SQLiteRepo) ListUpdates(ctx context.Context) ([]models.Update, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+updateColumns+` FROM updates ORDER BY created DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list updates: %w", err)
	}
	var out []models.Update
	for rows.Next() {
		u, err := scanUpdate(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	reads, err := r.readers(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].ReadBy = append(out[i].ReadBy, reads[out[i].ID]...)
	}
	return out, nil
}

// readers maps update id to the users that read it, in read order.
func (r *SQLiteRepo) readers(ctx context.Context, where string, args ...any) (map[string][]string, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT update_id, user_id FROM update_reads `+where+` ORDER BY created, user_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list update reads: %w", err)
	}
	defer rows.Close()

	out := map[string][]string{}
	for rows.Next() {
		var updateID, userID string
		if err := rows.Scan(&updateID, &userID); err != nil {
			return nil, err
		}
		out[updateID] = append(out[updateID], userID)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) MarkRead(ctx context.Context, updateID, userID string) (bool, error) {
	res, err := r.conn.Exec(ctx, `INSERT OR IGNORE INTO update_reads (update_id, user_id, created) VALUES (?, ?, ?)`, updateID, userID, now())
	if err != nil {
		return false, fmt.Errorf("mark read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
