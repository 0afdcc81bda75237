package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sagniknandigit/internship-management/pkg/models"
	"github.com/sagniknandigit/internship-management/pkg/repository"
)

const meetingColumns = `id, title, intern_id, mentor_id, internship_id, application_id, date, time, duration_minutes, link, status, scheduled_by, created`

func scanMeeting(s interface{ Scan(...any) error }) (*models.Meeting, error) {
	var m models.Meeting
	var status string
	if err := s.Scan(&m.ID, &m.Title, &m.InternID, &m.MentorID, &m.InternshipID, &m.ApplicationID, &m.Date, &m.Time,
		&m.DurationMinutes, &m.Link, &status, &m.ScheduledBy, &m.Created); err != nil {
		return nil, err
	}
	m.Status = models.MeetingStatus(status)
	return &m, nil
}

func (r *SQLiteRepo) CreateMeeting(ctx context.Context, m *models.Meeting) error {
	if m == nil {
		return fmt.Errorf("meeting is nil")
	}
	ts := now()
	_, err := r.conn.Exec(ctx, `INSERT INTO meetings (`+meetingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Title, m.InternID, m.MentorID, m.InternshipID, m.ApplicationID, m.Date, m.Time, m.DurationMinutes,
		m.Link, string(m.Status), m.ScheduledBy, ts)
	if err != nil {
		return fmt.Errorf("insert meeting: %w", err)
	}
	m.Created = ts
	return nil
}

func (r *SQLiteRepo) GetMeeting(ctx context.Context, id string) (*models.Meeting, error) {
	m, err := scanMeeting(r.conn.QueryRow(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// ListMeetings returns meetings in chronological order.
func (r *SQLiteRepo) ListMeetings(ctx context.Context, f repository.MeetingFilter) ([]models.Meeting, error) {
	var where []string
	var args []any
	if f.MentorID != "" {
		where = append(where, "mentor_id = ?")
		args = append(args, f.MentorID)
	}
	if f.InternID != "" {
		where = append(where, "intern_id = ?")
		args = append(args, f.InternID)
	}
	q := `SELECT ` + meetingColumns + ` FROM meetings`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY date, time, id`

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	defer rows.Close()

	var out []models.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateMeetingStatus(ctx context.Context, id string, status models.MeetingStatus) error {
	_, err := r.conn.Exec(ctx, `UPDATE meetings SET status = ? WHERE id = ?`, string(status), id)
	return err
}
