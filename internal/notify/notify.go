// Package notify posts announcements and tracks who has read them.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/sagniknandigit/internship-management/internal/events"
	"github.com/sagniknandigit/internship-management/internal/metrics"
	"github.com/sagniknandigit/internship-management/pkg/apperr"
	"github.com/sagniknandigit/internship-management/pkg/models"
	"github.com/sagniknandigit/internship-management/pkg/repository"
)

type Service struct {
	updates repository.UpdateRepo
	users   repository.UserRepo
	events  events.Publisher
	logger  *slog.Logger
}

func NewService(updates repository.UpdateRepo, users repository.UserRepo, pub events.Publisher, logger *slog.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{updates: updates, users: users, events: pub, logger: logger}
}

type PostInput struct {
	Title          string            `json:"title" validate:"required"`
	Content        string            `json:"content" validate:"required"`
	TargetRole     models.TargetRole `json:"target_role" validate:"required,oneof=All Intern Mentor Admin Specific"`
	TargetUserID   string            `json:"target_user_id"`
	ImageFile      string            `json:"image_file"`
	AttachmentFile string            `json:"attachment_file"`
	CTALabel       string            `json:"cta_label"`
	CTALink        string            `json:"cta_link" validate:"omitempty,url"`
}

// Post publishes an update from actor.
func (s *Service) Post(ctx context.Context, actor models.User, in PostInput) (*models.Update, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}
	if in.TargetRole == models.TargetSpecific {
		if in.TargetUserID == "" {
			return nil, apperr.Invalid("target_user_id", "is required when target_role is Specific")
		}
		target, err := s.users.GetUserByID(ctx, in.TargetUserID)
		if err != nil {
			return nil, fmt.Errorf("get target user: %w", err)
		}
		if target == nil {
			return nil, apperr.Invalid("target_user_id", "unknown user")
		}
	} else {
		in.TargetUserID = ""
	}
	if in.CTALabel != "" && in.CTALink == "" {
		return nil, apperr.Invalid("cta_link", "is required when cta_label is set")
	}

	up := &models.Update{
		ID:             uuid.NewString(),
		Title:          in.Title,
		Content:        in.Content,
		PostedByUserID: actor.ID,
		PostedByName:   actor.Name,
		PostedByRole:   actor.Role,
		TargetRole:     in.TargetRole,
		TargetUserID:   in.TargetUserID,
		ImageFile:      in.ImageFile,
		AttachmentFile: in.AttachmentFile,
		CTALabel:       in.CTALabel,
		CTALink:        in.CTALink,
	}
	if err := s.updates.CreateUpdate(ctx, up); err != nil {
		return nil, fmt.Errorf("create update: %w", err)
	}
	metrics.UpdatesPosted.Inc()
	s.logger.Info("update posted", "update_id", up.ID, "target_role", up.TargetRole, "by", actor.ID)
	s.events.Publish(audience(*up))
	return up, nil
}

func audience(up models.Update) events.Event {
	e := events.Event{Topic: events.TopicUpdates, Action: "posted", ID: up.ID}
	switch up.TargetRole {
	case models.TargetAll:
	case models.TargetSpecific:
		e.UserIDs = []string{up.TargetUserID}
	default:
		e.Roles = []models.Role{models.Role(up.TargetRole)}
	}
	return e
}

// Item is an update as seen by one viewer. Only admins see who else read it.
type Item struct {
	models.Update
	Read bool `json:"read"`
}

// List returns the updates visible to viewer, newest first. It never marks
// anything read.
func (s *Service) List(ctx context.Context, viewer models.User) ([]Item, error) {
	all, err := s.updates.ListUpdates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list updates: %w", err)
	}
	out := []Item{}
	for _, up := range all {
		if !up.VisibleTo(viewer) {
			continue
		}
		it := Item{Update: up, Read: up.IsReadBy(viewer.ID)}
		if viewer.Role != models.RoleAdmin {
			it.ReadBy = nil
		}
		out = append(out, it)
	}
	return out, nil
}

func (s *Service) UnreadCount(ctx context.Context, viewer models.User) (int, error) {
	items, err := s.List(ctx, viewer)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, it := range items {
		if !it.Read {
			n++
		}
	}
	return n, nil
}

// MarkRead adds viewer to the update's read set. Updates not addressed to
// viewer are reported as not found.
func (s *Service) MarkRead(ctx context.Context, viewer models.User, id string) error {
	up, err := s.updates.GetUpdate(ctx, id)
	if err != nil {
		return fmt.Errorf("get update: %w", err)
	}
	if up == nil || !up.VisibleTo(viewer) {
		return apperr.NotFound("update", id)
	}
	added, err := s.updates.MarkRead(ctx, id, viewer.ID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if added {
		s.events.Publish(events.Event{Topic: events.TopicUpdates, Action: "read", ID: id, UserIDs: []string{viewer.ID}})
	}
	return nil
}

// MarkAllRead marks every visible unread update and returns how many changed.
func (s *Service) MarkAllRead(ctx context.Context, viewer models.User) (int, error) {
	items, err := s.List(ctx, viewer)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, it := range items {
		if it.Read {
			continue
		}
		added, err := s.updates.MarkRead(ctx, it.ID, viewer.ID)
		if err != nil {
			return n, fmt.Errorf("mark read: %w", err)
		}
		if added {
			n++
		}
	}
	if n > 0 {
		s.events.Publish(events.Event{Topic: events.TopicUpdates, Action: "read", UserIDs: []string{viewer.ID}})
	}
	return n, nil
}
