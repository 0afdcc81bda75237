package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sagniknandigit/internship-management/pkg/apperr"
	"github.com/sagniknandigit/internship-management/pkg/models"
	"github.com/sagniknandigit/internship-management/pkg/repository"
)

const applicationColumns = `id, intern_id, internship_id, status, first_name, middle_name, last_name, email, address, city, state,
	university, current_year, passing_year, github, linkedin, why_internship, expectations, skills,
	resume_file, cover_letter_file, mentor_id, applied_on, screening, created, updated`

func scanApplication(s interface{ Scan(...any) error }) (*models.Application, error) {
	var a models.Application
	var status, skills string
	var screening sql.NullString
	err := s.Scan(&a.ID, &a.InternID, &a.InternshipID, &status, &a.FirstName, &a.MiddleName, &a.LastName, &a.Email,
		&a.Address, &a.City, &a.State, &a.University, &a.CurrentYear, &a.PassingYear, &a.GitHub, &a.LinkedIn,
		&a.WhyInternship, &a.Expectations, &skills, &a.ResumeFile, &a.CoverLetterFile, &a.MentorID, &a.AppliedOn,
		&screening, &a.Created, &a.Updated)
	if err != nil {
		return nil, err
	}
	a.Status = models.ApplicationStatus(status)
	if a.Skills, err = decodeList(skills); err != nil {
		return nil, err
	}
	if screening.Valid && screening.String != "" {
		var sc models.Screening
		if err := json.Unmarshal([]byte(screening.String), &sc); err != nil {
			return nil, fmt.Errorf("decode screening: %w", err)
		}
		a.Screening = &sc
	}
	return &a, nil
}

// SubmitApplication inserts the application and bumps the internship stat in
// the same transaction. A closed internship rejects the submit.
func (r *SQLiteRepo) SubmitApplication(ctx context.Context, a *models.Application, title string) (*models.InternshipStat, error) {
	if a == nil {
		return nil, fmt.Errorf("application is nil")
	}
	skills, err := encodeList(a.Skills)
	if err != nil {
		return nil, err
	}
	ts := now()
	var stat *models.InternshipStat
	err = r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		current, err := scanStat(tx.QueryRowContext(ctx, `SELECT `+statColumns+` FROM internship_stats WHERE internship_id = ?`, a.InternshipID))
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("load stat: %w", err)
		}
		if current != nil && current.Closed {
			return apperr.Conflict("internship %s is closed", a.InternshipID)
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO applications (`+applicationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)`,
			a.ID, a.InternID, a.InternshipID, string(a.Status), a.FirstName, a.MiddleName, a.LastName, a.Email,
			a.Address, a.City, a.State, a.University, a.CurrentYear, a.PassingYear, a.GitHub, a.LinkedIn,
			a.WhyInternship, a.Expectations, skills, a.ResumeFile, a.CoverLetterFile, a.MentorID, a.AppliedOn, ts, ts); err != nil {
			return fmt.Errorf("insert application: %w", err)
		}

		if current == nil {
			current = &models.InternshipStat{InternshipID: a.InternshipID, Title: title, Active: true}
		}
		current.ApplicationCount++
		current.Applicants = append(current.Applicants, a.FullName())
		current.Updated = ts
		applicants, err := encodeList(current.Applicants)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO internship_stats (`+statColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(internship_id) DO UPDATE SET application_count = excluded.application_count, applicants = excluded.applicants, updated = excluded.updated`,
			current.InternshipID, current.Title, boolToInt(current.Active), boolToInt(current.Closed), current.ApplicationCount, applicants, ts); err != nil {
			return fmt.Errorf("upsert stat: %w", err)
		}
		stat = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.Created, a.Updated = ts, ts
	return stat, nil
}

func (r *SQLiteRepo) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	a, err := scanApplication(r.conn.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *SQLiteRepo) ListApplications(ctx context.Context, f repository.ApplicationFilter) ([]models.Application, error) {
	var where []string
	var args []any
	if f.InternID != "" {
		where = append(where, "intern_id = ?")
		args = append(args, f.InternID)
	}
	if f.InternshipID != "" {
		where = append(where, "internship_id = ?")
		args = append(args, f.InternshipID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	q := `SELECT ` + applicationColumns + ` FROM applications`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created DESC, rowid DESC`

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []models.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateApplicationStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	_, err := r.conn.Exec(ctx, `UPDATE applications SET status = ?, updated = ? WHERE id = ?`, string(status), now(), id)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) AssignMentor(ctx context.Context, applicationID, mentorID, internID string) error {
	ts := now()
	return r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE applications SET mentor_id = ?, updated = ? WHERE id = ?`, mentorID, ts, applicationID); err != nil {
			return fmt.Errorf("set application mentor: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO mentor_assignments (mentor_id, intern_id, application_id, created) VALUES (?, ?, ?, ?)
			ON CONFLICT(mentor_id, intern_id) DO UPDATE SET application_id = excluded.application_id`,
			mentorID, internID, applicationID, ts); err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepo) SaveScreening(ctx context.Context, id string, s *models.Screening) error {
	if s == nil {
		return fmt.Errorf("screening is nil")
	}
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode screening: %w", err)
	}
	_, err = r.conn.Exec(ctx, `UPDATE applications SET screening = ?, updated = ? WHERE id = ?`, string(b), now(), id)
	return err
}
