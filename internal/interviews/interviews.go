// Package interviews schedules interview meetings between interns and mentors.
package interviews

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sagniknandigit/internship-management/internal/events"
	"github.com/sagniknandigit/internship-management/internal/jobs"
	"github.com/sagniknandigit/internship-management/internal/metrics"
	"github.com/sagniknandigit/internship-management/pkg/apperr"
	"github.com/sagniknandigit/internship-management/pkg/mail"
	"github.com/sagniknandigit/internship-management/pkg/models"
	"github.com/sagniknandigit/internship-management/pkg/repository"
)

type Service struct {
	meetings    repository.MeetingRepo
	apps        repository.ApplicationRepo
	internships repository.InternshipRepo
	users       repository.UserRepo
	jobs        jobs.Enqueuer
	events      events.Publisher
	logger      *slog.Logger
}

func NewService(repo *repository.Repository, enq jobs.Enqueuer, pub events.Publisher, logger *slog.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		meetings:    repo.Meeting,
		apps:        repo.Application,
		internships: repo.Internship,
		users:       repo.User,
		jobs:        enq,
		events:      pub,
		logger:      logger,
	}
}

type ScheduleInput struct {
	InternID        string `json:"intern_id" validate:"required"`
	MentorID        string `json:"mentor_id" validate:"required"`
	ApplicationID   string `json:"application_id" validate:"required"`
	Title           string `json:"title"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	Time            string `json:"time" validate:"required,datetime=15:04"`
	DurationMinutes int    `json:"duration_minutes" validate:"gt=0"`
	Link            string `json:"link" validate:"omitempty,url"`
}

// View is a meeting with its derived end time.
type View struct {
	models.Meeting
	EndTime string `json:"end_time"`
}

func view(m models.Meeting) View {
	return View{Meeting: m, EndTime: m.EndTime()}
}

// Schedule books an interview. Overlapping slots are not checked.
func (s *Service) Schedule(ctx context.Context, actor models.User, in ScheduleInput) (*View, error) {
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}
	app, err := s.apps.GetApplication(ctx, in.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	if app == nil {
		return nil, apperr.NotFound("application", in.ApplicationID)
	}
	if app.InternID != in.InternID {
		return nil, apperr.Invalid("application_id", "does not belong to the intern")
	}
	if app.Status == models.StatusRejected {
		return nil, apperr.Conflict("application %s was rejected", app.ID)
	}
	mentor, err := s.users.GetUserByID(ctx, in.MentorID)
	if err != nil {
		return nil, fmt.Errorf("get mentor: %w", err)
	}
	if mentor == nil || mentor.Role != models.RoleMentor {
		return nil, apperr.Invalid("mentor_id", "must reference a user with the Mentor role")
	}

	title := in.Title
	if title == "" {
		title = "Interview"
		if it, err := s.internships.GetInternship(ctx, app.InternshipID); err == nil && it != nil {
			title = "Interview: " + it.Title
		}
	}
	m := &models.Meeting{
		ID:              uuid.NewString(),
		Title:           title,
		InternID:        in.InternID,
		MentorID:        in.MentorID,
		InternshipID:    app.InternshipID,
		ApplicationID:   app.ID,
		Date:            in.Date,
		Time:            in.Time,
		DurationMinutes: in.DurationMinutes,
		Link:            in.Link,
		Status:          models.MeetingScheduled,
		ScheduledBy:     actor.ID,
	}
	if err := s.meetings.CreateMeeting(ctx, m); err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}
	metrics.InterviewsScheduled.Inc()
	s.logger.Info("interview scheduled", "meeting_id", m.ID, "intern_id", m.InternID, "mentor_id", m.MentorID)

	v := view(*m)
	body := fmt.Sprintf("%s\n\nDate: %s\nTime: %s - %s\nLink: %s\n", m.Title, m.Date, m.Time, v.EndTime, m.Link)
	recipients := []string{mentor.Email}
	if app.Email != "" {
		recipients = append(recipients, app.Email)
	}
	if err := jobs.EnqueueEmail(ctx, s.jobs, mail.Message{To: recipients, Subject: "Interview scheduled", TextBody: body}); err != nil {
		s.logger.Warn("enqueue interview email", "err", err)
	}
	s.events.Publish(events.Event{Topic: events.TopicInterviews, Action: "scheduled", ID: m.ID,
		Roles: []models.Role{models.RoleAdmin}, UserIDs: []string{m.InternID, m.MentorID}})
	return &v, nil
}

// List returns the meetings actor may see: all for admins, their own for
// mentors and interns.
func (s *Service) List(ctx context.Context, actor models.User) ([]View, error) {
	var f repository.MeetingFilter
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleMentor:
		f.MentorID = actor.ID
	case models.RoleIntern:
		f.InternID = actor.ID
	default:
		return nil, apperr.Forbidden("role %s cannot list interviews", actor.Role)
	}
	ms, err := s.meetings.ListMeetings(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	out := make([]View, 0, len(ms))
	for _, m := range ms {
		out = append(out, view(m))
	}
	return out, nil
}

// SetStatus completes or cancels a scheduled meeting. Mentors may only
// touch their own meetings.
func (s *Service) SetStatus(ctx context.Context, actor models.User, id string, status models.MeetingStatus) (*View, error) {
	if status != models.MeetingCompleted && status != models.MeetingCancelled {
		return nil, apperr.Invalid("status", "must be Completed or Cancelled")
	}
	m, err := s.meetings.GetMeeting(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get meeting: %w", err)
	}
	if m == nil {
		return nil, apperr.NotFound("meeting", id)
	}
	if actor.Role == models.RoleMentor && m.MentorID != actor.ID {
		return nil, apperr.Forbidden("meeting belongs to another mentor")
	}
	if m.Status == status {
		v := view(*m)
		return &v, nil
	}
	if m.Status != models.MeetingScheduled {
		return nil, apperr.Conflict("meeting is already %s", m.Status)
	}
	if err := s.meetings.UpdateMeetingStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update meeting: %w", err)
	}
	m.Status = status
	s.logger.Info("interview status changed", "meeting_id", id, "status", status)
	s.events.Publish(events.Event{Topic: events.TopicInterviews, Action: "status", ID: id,
		Roles: []models.Role{models.RoleAdmin}, UserIDs: []string{m.InternID, m.MentorID}})
	v := view(*m)
	return &v, nil
}
