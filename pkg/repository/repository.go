package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sagniknandigit/internship-management/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
// Lookups by id return (nil, nil) when the row does not exist.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, nameFilter string) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id string, role models.Role) error
	DeleteUser(ctx context.Context, id string) error
}

type InternshipRepo interface {
	// CreateInternship stores the listing together with an active stat row.
	CreateInternship(ctx context.Context, in *models.Internship) error
	GetInternship(ctx context.Context, id string) (*models.Internship, error)
	ListInternships(ctx context.Context) ([]models.Internship, error)
	GetStat(ctx context.Context, internshipID string) (*models.InternshipStat, error)
	ListStats(ctx context.Context) ([]models.InternshipStat, error)
	// EndInternship upserts the stat row with active=false, closed=true.
	EndInternship(ctx context.Context, internshipID, title string) (*models.InternshipStat, error)
}

type ApplicationFilter struct {
	InternID     string
	InternshipID string
	Status       models.ApplicationStatus
}

type ApplicationRepo interface {
	// SubmitApplication inserts the application and upserts the internship
	// stat in one transaction, returning the stat after the write.
	SubmitApplication(ctx context.Context, a *models.Application, title string) (*models.InternshipStat, error)
	GetApplication(ctx context.Context, id string) (*models.Application, error)
	ListApplications(ctx context.Context, f ApplicationFilter) ([]models.Application, error)
	UpdateApplicationStatus(ctx context.Context, id string, status models.ApplicationStatus) error
	// AssignMentor writes the mentor onto the application and records the
	// mentor to intern assignment in one transaction.
	AssignMentor(ctx context.Context, applicationID, mentorID, internID string) error
	SaveScreening(ctx context.Context, id string, s *models.Screening) error
}

type AssignmentRepo interface {
	ListAssignments(ctx context.Context) ([]models.MentorAssignment, error)
	ListAssignmentsForMentor(ctx context.Context, mentorID string) ([]models.MentorAssignment, error)
	ListAssignmentsForIntern(ctx context.Context, internID string) ([]models.MentorAssignment, error)
	IsAssigned(ctx context.Context, mentorID, internID string) (bool, error)
}

type MeetingFilter struct {
	MentorID string
	InternID string
}

type MeetingRepo interface {
	CreateMeeting(ctx context.Context, m *models.Meeting) error
	GetMeeting(ctx context.Context, id string) (*models.Meeting, error)
	ListMeetings(ctx context.Context, f MeetingFilter) ([]models.Meeting, error)
	UpdateMeetingStatus(ctx context.Context, id string, status models.MeetingStatus) error
}

type UpdateRepo interface {
	CreateUpdate(ctx context.Context, u *models.Update) error
	GetUpdate(ctx context.Context, id string) (*models.Update, error)
	// ListUpdates returns every update newest first with ReadBy populated.
	ListUpdates(ctx context.Context) ([]models.Update, error)
	// MarkRead adds userID to the read set; it reports whether the set grew.
	MarkRead(ctx context.Context, updateID, userID string) (bool, error)
}

type MessageRepo interface {
	CreateMessage(ctx context.Context, m *models.Message) error
	ListMessages(ctx context.Context, internID string) ([]models.Message, error)
}

type TaskFilter struct {
	InternID string
	MentorID string
}

type TaskRepo interface {
	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, f TaskFilter) ([]models.Task, error)
	UpdateTask(ctx context.Context, t *models.Task) error
}

type DocumentFilter struct {
	InternID string
	MentorID string
}

type DocumentRepo interface {
	CreateDocument(ctx context.Context, d *models.Document) error
	ListDocuments(ctx context.Context, f DocumentFilter) ([]models.Document, error)
}

type SettingsRepo interface {
	// GetSettings returns nil when the user has never saved settings.
	GetSettings(ctx context.Context, userID string) (json.RawMessage, error)
	PutSettings(ctx context.Context, userID string, doc json.RawMessage) error
}

// TokenDenylist records revoked token ids until they expire.
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, expires time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Repository aggregates all domain repositories for convenience
type Repository struct {
	User        UserRepo
	Internship  InternshipRepo
	Application ApplicationRepo
	Assignment  AssignmentRepo
	Meeting     MeetingRepo
	Update      UpdateRepo
	Message     MessageRepo
	Task        TaskRepo
	Document    DocumentRepo
	Settings    SettingsRepo
}
