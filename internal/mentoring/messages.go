package mentoring

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sagniknandigit/internship-management/internal/events"
	"github.com/sagniknandigit/internship-management/pkg/apperr"
	"github.com/sagniknandigit/internship-management/pkg/models"
)

// Messages returns the conversation of internID, oldest first.
func (s *Service) Messages(ctx context.Context, actor models.User, internID string) ([]models.Message, error) {
	if err := s.canAccessIntern(ctx, actor, internID); err != nil {
		return nil, err
	}
	out, err := s.messages.ListMessages(ctx, internID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if out == nil {
		out = []models.Message{}
	}
	return out, nil
}

func (s *Service) Send(ctx context.Context, actor models.User, internID, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Invalid("text", "is required")
	}
	if err := s.canAccessIntern(ctx, actor, internID); err != nil {
		return nil, err
	}
	m := &models.Message{ID: uuid.NewString(), InternID: internID, SenderID: actor.ID, SenderRole: actor.Role, Text: text}
	if err := s.messages.CreateMessage(ctx, m); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	s.events.Publish(events.Event{Topic: events.TopicMentoring, Action: "message", ID: internID, UserIDs: s.audience(ctx, internID)})
	return m, nil
}

// Conversation is one intern's thread as seen by their mentor.
type Conversation struct {
	Intern   Contact          `json:"intern"`
	Messages []models.Message `json:"messages"`
}

// Conversations returns a thread per intern assigned to mentor.
func (s *Service) Conversations(ctx context.Context, mentor models.User) ([]Conversation, error) {
	interns, err := s.Interns(ctx, mentor.ID)
	if err != nil {
		return nil, err
	}
	out := make([]Conversation, 0, len(interns))
	for _, in := range interns {
		msgs, err := s.messages.ListMessages(ctx, in.UserID)
		if err != nil {
			return nil, fmt.Errorf("list messages: %w", err)
		}
		if msgs == nil {
			msgs = []models.Message{}
		}
		out = append(out, Conversation{Intern: in, Messages: msgs})
	}
	return out, nil
}
