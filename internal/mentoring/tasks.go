package mentoring

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sagniknandigit/internship-management/internal/events"
	"github.com/sagniknandigit/internship-management/pkg/apperr"
	"github.com/sagniknandigit/internship-management/pkg/models"
	"github.com/sagniknandigit/internship-management/pkg/repository"
)

type TaskInput struct {
	InternID    string `json:"intern_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	DueDate     string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// AssignTask gives an assigned intern a new task.
func (s *Service) AssignTask(ctx context.Context, mentor models.User, in TaskInput) (*models.Task, error) {
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}
	if err := s.requireAssigned(ctx, mentor.ID, in.InternID); err != nil {
		return nil, err
	}
	t := &models.Task{
		ID:          uuid.NewString(),
		InternID:    in.InternID,
		MentorID:    mentor.ID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Status:      models.TaskAssigned,
	}
	if err := s.tasks.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.publishTask(t, "assigned")
	return t, nil
}

// Tasks lists the tasks an intern received or a mentor handed out.
func (s *Service) Tasks(ctx context.Context, actor models.User) ([]models.Task, error) {
	var f repository.TaskFilter
	switch actor.Role {
	case models.RoleIntern:
		f.InternID = actor.ID
	case models.RoleMentor:
		f.MentorID = actor.ID
	default:
		return nil, apperr.Forbidden("role %s has no tasks", actor.Role)
	}
	out, err := s.tasks.ListTasks(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if out == nil {
		out = []models.Task{}
	}
	return out, nil
}

func (s *Service) task(ctx context.Context, id string) (*models.Task, error) {
	t, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if t == nil {
		return nil, apperr.NotFound("task", id)
	}
	return t, nil
}

// SubmitTask hands work in for review.
func (s *Service) SubmitTask(ctx context.Context, intern models.User, id, submission string) (*models.Task, error) {
	if submission == "" {
		return nil, apperr.Invalid("submission", "is required")
	}
	t, err := s.task(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.InternID != intern.ID {
		return nil, apperr.Forbidden("task belongs to another intern")
	}
	if t.Status != models.TaskAssigned && t.Status != models.TaskNeedsRevision {
		return nil, apperr.Conflict("task is %s", t.Status)
	}
	t.Status = models.TaskPendingReview
	t.Submission = submission
	if err := s.tasks.UpdateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("submit task: %w", err)
	}
	s.publishTask(t, "submitted")
	return t, nil
}

// ReviewTask approves a submission or sends it back with feedback.
func (s *Service) ReviewTask(ctx context.Context, mentor models.User, id string, status models.TaskStatus, feedback string) (*models.Task, error) {
	if status != models.TaskApproved && status != models.TaskNeedsRevision {
		return nil, apperr.Invalid("status", "must be Approved or Needs Revision")
	}
	if status == models.TaskNeedsRevision && feedback == "" {
		return nil, apperr.Invalid("feedback", "is required when asking for a revision")
	}
	t, err := s.task(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.MentorID != mentor.ID {
		return nil, apperr.Forbidden("task belongs to another mentor")
	}
	if t.Status != models.TaskPendingReview {
		return nil, apperr.Conflict("task is %s, not pending review", t.Status)
	}
	t.Status = status
	t.Feedback = feedback
	if err := s.tasks.UpdateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("review task: %w", err)
	}
	s.publishTask(t, "reviewed")
	return t, nil
}

func (s *Service) publishTask(t *models.Task, action string) {
	s.events.Publish(events.Event{Topic: events.TopicMentoring, Action: "task_" + action, ID: t.ID, UserIDs: []string{t.InternID, t.MentorID}})
}
