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

type DocumentInput struct {
	InternID string `json:"intern_id" validate:"required"`
	Title    string `json:"title" validate:"required"`
	FileName string `json:"file_name" validate:"required"`
}

// ShareDocument records a file reference for an assigned intern. Only the
// name is kept.
func (s *Service) ShareDocument(ctx context.Context, mentor models.User, in DocumentInput) (*models.Document, error) {
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}
	if err := s.requireAssigned(ctx, mentor.ID, in.InternID); err != nil {
		return nil, err
	}
	d := &models.Document{ID: uuid.NewString(), InternID: in.InternID, MentorID: mentor.ID, Title: in.Title, FileName: in.FileName}
	if err := s.documents.CreateDocument(ctx, d); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	s.events.Publish(events.Event{Topic: events.TopicMentoring, Action: "document", ID: d.ID, UserIDs: []string{d.InternID, d.MentorID}})
	return d, nil
}

// Documents lists what an intern received or a mentor shared.
func (s *Service) Documents(ctx context.Context, actor models.User) ([]models.Document, error) {
	var f repository.DocumentFilter
	switch actor.Role {
	case models.RoleIntern:
		f.InternID = actor.ID
	case models.RoleMentor:
		f.MentorID = actor.ID
	default:
		return nil, apperr.Forbidden("role %s has no documents", actor.Role)
	}
	out, err := s.documents.ListDocuments(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if out == nil {
		out = []models.Document{}
	}
	return out, nil
}
