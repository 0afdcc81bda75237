// Package applications runs submission, review and mentor assignment.
package applications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sagniknandigit/internship-management/internal/events"
	"github.com/sagniknandigit/internship-management/internal/jobs"
	"github.com/sagniknandigit/internship-management/internal/metrics"
	"github.com/sagniknandigit/internship-management/internal/screening"
	"github.com/sagniknandigit/internship-management/pkg/apperr"
	"github.com/sagniknandigit/internship-management/pkg/mail"
	"github.com/sagniknandigit/internship-management/pkg/models"
	"github.com/sagniknandigit/internship-management/pkg/repository"
)

type Service struct {
	apps        repository.ApplicationRepo
	internships repository.InternshipRepo
	users       repository.UserRepo
	workflow    *Workflow
	jobs        jobs.Enqueuer
	events      events.Publisher
	logger      *slog.Logger
	now         func() time.Time
}

// NewService wires the service. enq may be nil when background jobs are off.
func NewService(repo *repository.Repository, wf *Workflow, enq jobs.Enqueuer, pub events.Publisher, logger *slog.Logger) *Service {
	if wf == nil {
		wf, _ = NewWorkflow(PolicyOpen)
	}
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		apps:        repo.Application,
		internships: repo.Internship,
		users:       repo.User,
		workflow:    wf,
		jobs:        enq,
		events:      pub,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *Service) Workflow() *Workflow { return s.workflow }

// Submit records an application from actor for internshipID and bumps the
// listing's stat in the same transaction. Resubmitting creates another record.
func (s *Service) Submit(ctx context.Context, actor models.User, internshipID string, in models.Applicant) (*models.Application, error) {
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}
	it, err := s.internships.GetInternship(ctx, internshipID)
	if err != nil {
		return nil, fmt.Errorf("get internship: %w", err)
	}
	if it == nil {
		return nil, apperr.NotFound("internship", internshipID)
	}

	app := &models.Application{
		ID:           uuid.NewString(),
		InternID:     actor.ID,
		InternshipID: internshipID,
		Status:       models.StatusSubmitted,
		Applicant:    in,
		AppliedOn:    s.now().UTC().Format(models.DateLayout),
	}
	if _, err := s.apps.SubmitApplication(ctx, app, it.Title); err != nil {
		return nil, fmt.Errorf("submit application: %w", err)
	}
	metrics.ApplicationsSubmitted.Inc()
	s.logger.Info("application submitted", "application_id", app.ID, "internship_id", internshipID, "intern_id", actor.ID)

	s.enqueue(ctx, jobs.TypeScreenApplication, screening.Payload{ApplicationID: app.ID}, 100)
	s.email(ctx, mail.Message{
		To:       []string{in.Email},
		Subject:  "Application received: " + it.Title,
		TextBody: fmt.Sprintf("Hi %s,\n\nWe received your application for %s. Its status is %s.\n", in.FirstName, it.Title, app.Status),
	})
	s.events.Publish(events.Event{Topic: events.TopicApplications, Action: "submitted", ID: app.ID,
		Roles: []models.Role{models.RoleAdmin}, UserIDs: []string{actor.ID}})
	s.events.Publish(events.Event{Topic: events.TopicInternships, Action: "stats", ID: internshipID, Roles: []models.Role{models.RoleAdmin}})
	return app, nil
}

func (s *Service) load(ctx context.Context, id string) (*models.Application, error) {
	app, err := s.apps.GetApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	if app == nil {
		return nil, apperr.NotFound("application", id)
	}
	return app, nil
}

// SetStatus moves an application to status. Setting the current status is a
// no-op and writes nothing; changed reports whether a write happened.
func (s *Service) SetStatus(ctx context.Context, id string, status models.ApplicationStatus) (app *models.Application, changed bool, err error) {
	if !status.Valid() {
		return nil, false, apperr.Invalid("status", fmt.Sprintf("unknown status %q", status))
	}
	app, err = s.load(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if app.Status == status {
		return app, false, nil
	}
	if !s.workflow.Allowed(app.Status, status) {
		return nil, false, apperr.Conflict("cannot move application from %s to %s under the %s policy", app.Status, status, s.workflow.Policy())
	}
	if err := s.apps.UpdateApplicationStatus(ctx, id, status); err != nil {
		return nil, false, fmt.Errorf("update status: %w", err)
	}
	from := app.Status
	app.Status = status
	metrics.ApplicationStatusChanges.WithLabelValues(string(status)).Inc()
	s.logger.Info("application status changed", "application_id", id, "from", from, "to", status)

	s.email(ctx, mail.Message{
		To:       []string{app.Email},
		Subject:  "Application status: " + string(status),
		TextBody: fmt.Sprintf("Hi %s,\n\nYour application status changed from %s to %s.\n", app.FirstName, from, status),
	})
	s.events.Publish(events.Event{Topic: events.TopicApplications, Action: "status", ID: id,
		Roles: []models.Role{models.RoleAdmin}, UserIDs: []string{app.InternID}})
	return app, true, nil
}

// AssignMentor links a hired applicant with a mentor. It never runs on its
// own; an admin calls it after hiring.
func (s *Service) AssignMentor(ctx context.Context, id, mentorID string) (*models.Application, error) {
	if mentorID == "" {
		return nil, apperr.Invalid("mentor_id", "is required")
	}
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != models.StatusHired {
		return nil, apperr.Conflict("application is %s; only hired applicants get a mentor", app.Status)
	}
	mentor, err := s.users.GetUserByID(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("get mentor: %w", err)
	}
	if mentor == nil || mentor.Role != models.RoleMentor {
		return nil, apperr.Invalid("mentor_id", "must reference a user with the Mentor role")
	}
	if err := s.apps.AssignMentor(ctx, id, mentorID, app.InternID); err != nil {
		return nil, fmt.Errorf("assign mentor: %w", err)
	}
	app.MentorID = mentorID
	s.logger.Info("mentor assigned", "application_id", id, "mentor_id", mentorID, "intern_id", app.InternID)

	s.email(ctx, mail.Message{
		To:       []string{mentor.Email},
		Subject:  "New intern assigned",
		TextBody: fmt.Sprintf("Hi %s,\n\n%s has been assigned to you.\n", mentor.Name, app.FullName()),
	})
	s.events.Publish(events.Event{Topic: events.TopicMentoring, Action: "assigned", ID: id,
		Roles: []models.Role{models.RoleAdmin}, UserIDs: []string{mentorID, app.InternID}})
	return app, nil
}

// Get returns an application to an admin or to the intern who submitted it.
func (s *Service) Get(ctx context.Context, actor models.User, id string) (*models.Application, error) {
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && app.InternID != actor.ID {
		return nil, apperr.Forbidden("application belongs to another user")
	}
	return app, nil
}

func (s *Service) List(ctx context.Context, f repository.ApplicationFilter) ([]models.Application, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.Invalid("status", fmt.Sprintf("unknown status %q", f.Status))
	}
	out, err := s.apps.ListApplications(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	if out == nil {
		out = []models.Application{}
	}
	return out, nil
}

// EligibleForInterview lists the intern's applications that are not Rejected.
func (s *Service) EligibleForInterview(ctx context.Context, internID string) ([]models.Application, error) {
	all, err := s.List(ctx, repository.ApplicationFilter{InternID: internID})
	if err != nil {
		return nil, err
	}
	out := []models.Application{}
	for _, a := range all {
		if a.Status != models.StatusRejected {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Service) enqueue(ctx context.Context, typ string, payload any, priority int) {
	if s.jobs == nil {
		return
	}
	if _, err := s.jobs.Enqueue(ctx, typ, payload, priority, 3); err != nil {
		s.logger.Warn("enqueue job", "type", typ, "err", err)
	}
}

func (s *Service) email(ctx context.Context, m mail.Message) {
	if err := jobs.EnqueueEmail(ctx, s.jobs, m); err != nil {
		s.logger.Warn("enqueue email", "subject", m.Subject, "err", err)
	}
}
