// Package reports aggregates platform data into the admin report.
package reports

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/sagniknandigit/internship-management/pkg/models"
	"github.com/sagniknandigit/internship-management/pkg/repository"
)

// Input is every collection the report reads.
type Input struct {
	Users        []models.User
	Internships  []models.Internship
	Stats        []models.InternshipStat
	Applications []models.Application
	Meetings     []models.Meeting
	Assignments  []models.MentorAssignment
}

type Summary struct {
	TotalUsers        int `json:"total_users"`
	TotalInterns      int `json:"total_interns"`
	TotalMentors      int `json:"total_mentors"`
	TotalAdmins       int `json:"total_admins"`
	TotalSuspended    int `json:"total_suspended"`
	TotalInternships  int `json:"total_internships"`
	ActiveInternships int `json:"active_internships"`
	TotalApplications int `json:"total_applications"`
	TotalInterviews   int `json:"total_interviews"`
}

type InternshipPerformance struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	TotalApplications int     `json:"total_applications"`
	Shortlisted       int     `json:"shortlisted"`
	Hired             int     `json:"hired"`
	Rejected          int     `json:"rejected"`
	Status            string  `json:"status"`
	ConversionRate    float64 `json:"conversion_rate"`
}

type MentorWorkload struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	AssignedInternCount int      `json:"assigned_intern_count"`
	AssignedInternNames []string `json:"assigned_intern_names"`
	InterviewsConducted int      `json:"interviews_conducted"`
}

type Report struct {
	GeneratedAt          time.Time                        `json:"generated_at"`
	Summary              Summary                          `json:"summary"`
	ApplicationsByStatus map[models.ApplicationStatus]int `json:"applications_by_status"`
	Internships          []InternshipPerformance          `json:"internships"`
	Mentors              []MentorWorkload                 `json:"mentors"`
}

// ConversionRate is hired/total as a percentage rounded to two decimals,
// and 0 when there are no applications.
func ConversionRate(hired, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(hired)/float64(total)*100*100) / 100
}

// Build computes the report. It reads nothing but in.
func Build(in Input, now time.Time) Report {
	byRole := lo.CountValuesBy(in.Users, func(u models.User) models.Role { return u.Role })
	byStatus := lo.CountValuesBy(in.Applications, func(a models.Application) models.ApplicationStatus { return a.Status })
	for _, s := range models.ApplicationStatuses {
		if _, ok := byStatus[s]; !ok {
			byStatus[s] = 0
		}
	}

	r := Report{
		GeneratedAt: now.UTC(),
		Summary: Summary{
			TotalUsers:        len(in.Users),
			TotalInterns:      byRole[models.RoleIntern],
			TotalMentors:      byRole[models.RoleMentor],
			TotalAdmins:       byRole[models.RoleAdmin],
			TotalSuspended:    byRole[models.RoleSuspend],
			TotalInternships:  len(in.Internships),
			ActiveInternships: lo.CountBy(in.Stats, func(s models.InternshipStat) bool { return s.Active }),
			TotalApplications: len(in.Applications),
			TotalInterviews:   len(in.Meetings),
		},
		ApplicationsByStatus: byStatus,
	}

	statByID := lo.KeyBy(in.Stats, func(s models.InternshipStat) string { return s.InternshipID })
	appsByInternship := lo.GroupBy(in.Applications, func(a models.Application) string { return a.InternshipID })
	r.Internships = lo.Map(in.Internships, func(it models.Internship, _ int) InternshipPerformance {
		apps := appsByInternship[it.ID]
		counts := lo.CountValuesBy(apps, func(a models.Application) models.ApplicationStatus { return a.Status })
		status := "Closed"
		if st, ok := statByID[it.ID]; ok && st.Active {
			status = "Active"
		}
		return InternshipPerformance{
			ID:                it.ID,
			Title:             it.Title,
			TotalApplications: len(apps),
			Shortlisted:       counts[models.StatusShortlisted],
			Hired:             counts[models.StatusHired],
			Rejected:          counts[models.StatusRejected],
			Status:            status,
			ConversionRate:    ConversionRate(counts[models.StatusHired], len(apps)),
		}
	})

	userByID := lo.KeyBy(in.Users, func(u models.User) string { return u.ID })
	assigned := lo.GroupBy(in.Assignments, func(a models.MentorAssignment) string { return a.MentorID })
	interviews := lo.CountValuesBy(in.Meetings, func(m models.Meeting) string { return m.MentorID })
	mentors := lo.Filter(in.Users, func(u models.User, _ int) bool { return u.Role == models.RoleMentor })
	r.Mentors = lo.Map(mentors, func(m models.User, _ int) MentorWorkload {
		names := lo.Map(assigned[m.ID], func(a models.MentorAssignment, _ int) string {
			if u, ok := userByID[a.InternID]; ok {
				return u.Name
			}
			return fmt.Sprintf("Unknown Intern (%s)", a.InternID)
		})
		return MentorWorkload{
			ID:                  m.ID,
			Name:                m.Name,
			AssignedInternCount: len(names),
			AssignedInternNames: names,
			InterviewsConducted: interviews[m.ID],
		}
	})
	return r
}

type Service struct {
	repo *repository.Repository
	now  func() time.Time
}

func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Load reads every collection the report needs.
func (s *Service) Load(ctx context.Context) (Input, error) {
	var in Input
	var err error
	if in.Users, err = s.repo.User.ListUsers(ctx, ""); err != nil {
		return in, fmt.Errorf("list users: %w", err)
	}
	if in.Internships, err = s.repo.Internship.ListInternships(ctx); err != nil {
		return in, fmt.Errorf("list internships: %w", err)
	}
	if in.Stats, err = s.repo.Internship.ListStats(ctx); err != nil {
		return in, fmt.Errorf("list stats: %w", err)
	}
	if in.Applications, err = s.repo.Application.ListApplications(ctx, repository.ApplicationFilter{}); err != nil {
		return in, fmt.Errorf("list applications: %w", err)
	}
	if in.Meetings, err = s.repo.Meeting.ListMeetings(ctx, repository.MeetingFilter{}); err != nil {
		return in, fmt.Errorf("list meetings: %w", err)
	}
	if in.Assignments, err = s.repo.Assignment.ListAssignments(ctx); err != nil {
		return in, fmt.Errorf("list assignments: %w", err)
	}
	return in, nil
}

func (s *Service) Report(ctx context.Context) (*Report, error) {
	in, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	r := Build(in, s.now())
	return &r, nil
}
