package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sagniknandigit/internship-management/pkg/models"
)

const internshipColumns = `id, title, location, stipend, duration, apply_by, description, skills, posted_by, created`

func scanInternship(s interface{ Scan(...any) error }) (*models.Internship, error) {
	var in models.Internship
	var skills string
	if err := s.Scan(&in.ID, &in.Title, &in.Location, &in.Stipend, &in.Duration, &in.ApplyBy, &in.Description, &skills, &in.PostedBy, &in.Created); err != nil {
		return nil, err
	}
	list, err := decodeList(skills)
	if err != nil {
		return nil, err
	}
	in.Skills = list
	return &in, nil
}

func (r *SQLiteRepo) CreateInternship(ctx context.Context, in *models.Internship) error {
	if in == nil {
		return fmt.Errorf("internship is nil")
	}
	skills, err := encodeList(in.Skills)
	if err != nil {
		return err
	}
	ts := now()
	return r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO internships (`+internshipColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			in.ID, in.Title, in.Location, in.Stipend, in.Duration, in.ApplyBy, in.Description, skills, in.PostedBy, ts); err != nil {
			return fmt.Errorf("insert internship: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO internship_stats (internship_id, title, active, closed, application_count, applicants, updated) VALUES (?, ?, 1, 0, 0, '[]', ?)`,
			in.ID, in.Title, ts); err != nil {
			return fmt.Errorf("insert internship stat: %w", err)
		}
		in.Created = ts
		return nil
	})
}

func (r *SQLiteRepo) GetInternship(ctx context.Context, id string) (*models.Internship, error) {
	in, err := scanInternship(r.conn.QueryRow(ctx, `SELECT `+internshipColumns+` FROM internships WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return in, err
}

func (r *SQLiteRepo) ListInternships(ctx context.Context) ([]models.Internship, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+internshipColumns+` FROM internships ORDER BY created DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list internships: %w", err)
	}
	defer rows.Close()

	var out []models.Internship
	for rows.Next() {
		in, err := scanInternship(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *in)
	}
	return out, rows.Err()
}

const statColumns = `internship_id, title, active, closed, application_count, applicants, updated`

func scanStat(s interface{ Scan(...any) error }) (*models.InternshipStat, error) {
	var st models.InternshipStat
	var active, closed int
	var applicants string
	if err := s.Scan(&st.InternshipID, &st.Title, &active, &closed, &st.ApplicationCount, &applicants, &st.Updated); err != nil {
		return nil, err
	}
	st.Active, st.Closed = active == 1, closed == 1
	list, err := decodeList(applicants)
	if err != nil {
		return nil, err
	}
	st.Applicants = list
	return &st, nil
}

func (r *SQLiteRepo) GetStat(ctx context.Context, internshipID string) (*models.InternshipStat, error) {
	st, err := scanStat(r.conn.QueryRow(ctx, `SELECT `+statColumns+` FROM internship_stats WHERE internship_id = ?`, internshipID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return st, err
}

func (r *SQLiteRepo) ListStats(ctx context.Context) ([]models.InternshipStat, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+statColumns+` FROM internship_stats ORDER BY internship_id`)
	if err != nil {
		return nil, fmt.Errorf("list stats: %w", err)
	}
	defer rows.Close()

	var out []models.InternshipStat
	for rows.Next() {
		st, err := scanStat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, rows.Err()
}

// EndInternship closes the listing unconditionally. Calling it again leaves
// the row unchanged apart from the updated timestamp.
func (r *SQLiteRepo) EndInternship(ctx context.Context, internshipID, title string) (*models.InternshipStat, error) {
	_, err := r.conn.Exec(ctx, `INSERT INTO internship_stats (internship_id, title, active, closed, application_count, applicants, updated)
		VALUES (?, ?, 0, 1, 0, '[]', ?)
		ON CONFLICT(internship_id) DO UPDATE SET active = 0, closed = 1, updated = excluded.updated`,
		internshipID, title, now())
	if err != nil {
		return nil, fmt.Errorf("end internship: %w", err)
	}
	return r.GetStat(ctx, internshipID)
}
