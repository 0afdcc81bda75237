// Package mentoring covers everything between a mentor and the interns
// assigned to them: conversations, tasks and shared documents.
package mentoring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sagniknandigit/internship-management/internal/events"
	"github.com/sagniknandigit/internship-management/pkg/apperr"
	"github.com/sagniknandigit/internship-management/pkg/models"
	"github.com/sagniknandigit/internship-management/pkg/repository"
)

type Service struct {
	assignments repository.AssignmentRepo
	users       repository.UserRepo
	messages    repository.MessageRepo
	tasks       repository.TaskRepo
	documents   repository.DocumentRepo
	events      events.Publisher
	logger      *slog.Logger
}

func NewService(repo *repository.Repository, pub events.Publisher, logger *slog.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		assignments: repo.Assignment,
		users:       repo.User,
		messages:    repo.Message,
		tasks:       repo.Task,
		documents:   repo.Document,
		events:      pub,
		logger:      logger,
	}
}

// Contact is the other side of a mentor assignment.
type Contact struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	ApplicationID string `json:"application_id"`
	Since         int64  `json:"since"`
}

func (s *Service) contact(ctx context.Context, userID string, a models.MentorAssignment) Contact {
	c := Contact{UserID: userID, ApplicationID: a.ApplicationID, Since: a.Created}
	u, err := s.users.GetUserByID(ctx, userID)
	if err == nil && u != nil {
		c.Name, c.Email = u.Name, u.Email
	} else {
		c.Name = fmt.Sprintf("Unknown user (%s)", userID)
	}
	return c
}

// Interns lists the interns assigned to mentorID.
func (s *Service) Interns(ctx context.Context, mentorID string) ([]Contact, error) {
	as, err := s.assignments.ListAssignmentsForMentor(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	out := make([]Contact, 0, len(as))
	for _, a := range as {
		out = append(out, s.contact(ctx, a.InternID, a))
	}
	return out, nil
}

// Mentors lists the mentors assigned to internID.
func (s *Service) Mentors(ctx context.Context, internID string) ([]Contact, error) {
	as, err := s.assignments.ListAssignmentsForIntern(ctx, internID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	out := make([]Contact, 0, len(as))
	for _, a := range as {
		out = append(out, s.contact(ctx, a.MentorID, a))
	}
	return out, nil
}

// requireAssigned fails unless mentorID mentors internID.
func (s *Service) requireAssigned(ctx context.Context, mentorID, internID string) error {
	ok, err := s.assignments.IsAssigned(ctx, mentorID, internID)
	if err != nil {
		return fmt.Errorf("check assignment: %w", err)
	}
	if !ok {
		return apperr.Forbidden("intern %s is not assigned to you", internID)
	}
	return nil
}

// canAccessIntern allows the intern themself and their assigned mentors.
func (s *Service) canAccessIntern(ctx context.Context, actor models.User, internID string) error {
	switch actor.Role {
	case models.RoleIntern:
		if actor.ID != internID {
			return apperr.Forbidden("conversation belongs to another intern")
		}
		return nil
	case models.RoleMentor:
		return s.requireAssigned(ctx, actor.ID, internID)
	default:
		return apperr.Forbidden("role %s has no conversations", actor.Role)
	}
}

// audience is the intern plus every mentor assigned to them.
func (s *Service) audience(ctx context.Context, internID string) []string {
	ids := []string{internID}
	as, err := s.assignments.ListAssignmentsForIntern(ctx, internID)
	if err != nil {
		s.logger.Warn("list assignments for event", "intern_id", internID, "err", err)
		return ids
	}
	for _, a := range as {
		ids = append(ids, a.MentorID)
	}
	return ids
}
