package sqlite

import (
	"context"
	"fmt"

	"github.com/sagniknandigit/internship-management/pkg/models"
)

func (r *SQLiteRepo) listAssignments(ctx context.Context, where string, args ...any) ([]models.MentorAssignment, error) {
	q := `SELECT mentor_id, intern_id, application_id, created FROM mentor_assignments`
	if where != "" {
		q += ` WHERE ` + where
	}
	q += ` ORDER BY created, mentor_id, intern_id`
	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []models.MentorAssignment
	for rows.Next() {
		var a models.MentorAssignment
		if err := rows.Scan(&a.MentorID, &a.InternID, &a.ApplicationID, &a.Created); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) ListAssignments(ctx context.Context) ([]models.MentorAssignment, error) {
	return r.listAssignments(ctx, "")
}

func (r *SQLiteRepo) ListAssignmentsForMentor(ctx context.Context, mentorID string) ([]models.MentorAssignment, error) {
	return r.listAssignments(ctx, "mentor_id = ?", mentorID)
}

func (r *SQLiteRepo) ListAssignmentsForIntern(ctx context.Context, internID string) ([]models.MentorAssignment, error) {
	return r.listAssignments(ctx, "intern_id = ?", internID)
}

func (r *SQLiteRepo) IsAssigned(ctx context.Context, mentorID, internID string) (bool, error) {
	var n int
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM mentor_assignments WHERE mentor_id = ? AND intern_id = ?`, mentorID, internID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
