package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sagniknandigit/internship-management/pkg/models"
)

const userColumns = `id, name, email, role, password_hash, created, updated`

func scanUser(s interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	var role string
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &role, &u.PasswordHash, &u.Created, &u.Updated); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}
	ts := now()
	_, err := r.conn.Exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, string(u.Role), u.PasswordHash, ts, ts)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	u.Created, u.Updated = ts, ts
	return nil
}

func (r *SQLiteRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *SQLiteRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// ListUsers returns users ordered by name; nameFilter matches case-insensitively.
func (r *SQLiteRepo) ListUsers(ctx context.Context, nameFilter string) ([]models.User, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+userColumns+` FROM users WHERE ? = '' OR name LIKE '%' || ? || '%' ORDER BY name, id`, nameFilter, nameFilter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateUserRole(ctx context.Context, id string, role models.Role) error {
	_, err := r.conn.Exec(ctx, `UPDATE users SET role = ?, updated = ? WHERE id = ?`, string(role), now(), id)
	return err
}

func (r *SQLiteRepo) DeleteUser(ctx context.Context, id string) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}
