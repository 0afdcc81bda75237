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

func (r *SQLiteRepo) CreateMessage(ctx context.Context, m *models.Message) error {
	if m == nil {
		return fmt.Errorf("message is nil")
	}
	ts := now()
	_, err := r.conn.Exec(ctx, `INSERT INTO messages (id, intern_id, sender_id, sender_role, text, created) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.InternID, m.SenderID, string(m.SenderRole), m.Text, ts)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	m.Created = ts
	return nil
}

// ListMessages returns one intern's conversation oldest first.
func (r *SQLiteRepo) ListMessages(ctx context.Context, internID string) ([]models.Message, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, intern_id, sender_id, sender_role, text, created FROM messages WHERE intern_id = ? ORDER BY created, rowid`, internID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var m models.Message
		var role string
		if err := rows.Scan(&m.ID, &m.InternID, &m.SenderID, &role, &m.Text, &m.Created); err != nil {
			return nil, err
		}
		m.SenderRole = models.Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}

const taskColumns = `id, intern_id, mentor_id, title, description, due_date, status, submission, feedback, created, updated`

func scanTask(s interface{ Scan(...any) error }) (*models.Task, error) {
	var t models.Task
	var status string
	if err := s.Scan(&t.ID, &t.InternID, &t.MentorID, &t.Title, &t.Description, &t.DueDate, &status, &t.Submission, &t.Feedback, &t.Created, &t.Updated); err != nil {
		return nil, err
	}
	t.Status = models.TaskStatus(status)
	return &t, nil
}

func (r *SQLiteRepo) CreateTask(ctx context.Context, t *models.Task) error {
	if t == nil {
		return fmt.Errorf("task is nil")
	}
	ts := now()
	_, err := r.conn.Exec(ctx, `INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.InternID, t.MentorID, t.Title, t.Description, t.DueDate, string(t.Status), t.Submission, t.Feedback, ts, ts)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	t.Created, t.Updated = ts, ts
	return nil
}

func (r *SQLiteRepo) GetTask(ctx context.Context, id string) (*models.Task, error) {
	t, err := scanTask(r.conn.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (r *SQLiteRepo) ListTasks(ctx context.Context, f repository.TaskFilter) ([]models.Task, error) {
	where, args := ownerClause(f.InternID, f.MentorID)
	rows, err := r.conn.QueryRows(ctx, `SELECT `+taskColumns+` FROM tasks`+where+` ORDER BY created DESC, rowid DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateTask(ctx context.Context, t *models.Task) error {
	if t == nil {
		return fmt.Errorf("task is nil")
	}
	ts := now()
	_, err := r.conn.Exec(ctx, `UPDATE tasks SET title = ?, description = ?, due_date = ?, status = ?, submission = ?, feedback = ?, updated = ? WHERE id = ?`,
		t.Title, t.Description, t.DueDate, string(t.Status), t.Submission, t.Feedback, ts, t.ID)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	t.Updated = ts
	return nil
}

func (r *SQLiteRepo) CreateDocument(ctx context.Context, d *models.Document) error {
	if d == nil {
		return fmt.Errorf("document is nil")
	}
	ts := now()
	_, err := r.conn.Exec(ctx, `INSERT INTO documents (id, intern_id, mentor_id, title, file_name, created) VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.InternID, d.MentorID, d.Title, d.FileName, ts)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	d.Created = ts
	return nil
}

func (r *SQLiteRepo) ListDocuments(ctx context.Context, f repository.DocumentFilter) ([]models.Document, error) {
	where, args := ownerClause(f.InternID, f.MentorID)
	rows, err := r.conn.QueryRows(ctx, `SELECT id, intern_id, mentor_id, title, file_name, created FROM documents`+where+` ORDER BY created DESC, rowid DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.InternID, &d.MentorID, &d.Title, &d.FileName, &d.Created); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func ownerClause(internID, mentorID string) (string, []any) {
	var where []string
	var args []any
	if internID != "" {
		where = append(where, "intern_id = ?")
		args = append(args, internID)
	}
	if mentorID != "" {
		where = append(where, "mentor_id = ?")
		args = append(args, mentorID)
	}
	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}
