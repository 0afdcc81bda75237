// Package internships manages listings and their open/closed state.
package internships

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sagniknandigit/internship-management/internal/events"
	"github.com/sagniknandigit/internship-management/pkg/apperr"
	"github.com/sagniknandigit/internship-management/pkg/models"
	"github.com/sagniknandigit/internship-management/pkg/repository"
)

// DefaultPageSize matches the nine-card grid of the listing page.
const DefaultPageSize = 9

type Service struct {
	repo   repository.InternshipRepo
	apps   repository.ApplicationRepo
	users  repository.UserRepo
	events events.Publisher
	logger *slog.Logger
}

func NewService(repo repository.InternshipRepo, apps repository.ApplicationRepo, users repository.UserRepo, pub events.Publisher, logger *slog.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, apps: apps, users: users, events: pub, logger: logger}
}

type CreateInput struct {
	Title       string   `json:"title" validate:"required"`
	Location    string   `json:"location" validate:"required"`
	Stipend     string   `json:"stipend"`
	Duration    string   `json:"duration" validate:"required"`
	ApplyBy     string   `json:"apply_by" validate:"required,datetime=2006-01-02"`
	Description string   `json:"description"`
	Skills      []string `json:"skills" validate:"dive,required"`
}

func (s *Service) Create(ctx context.Context, actor models.User, in CreateInput) (*models.Internship, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}
	it := &models.Internship{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Location:    in.Location,
		Stipend:     in.Stipend,
		Duration:    in.Duration,
		ApplyBy:     in.ApplyBy,
		Description: in.Description,
		Skills:      in.Skills,
		PostedBy:    actor.ID,
	}
	if it.Skills == nil {
		it.Skills = []string{}
	}
	if err := s.repo.CreateInternship(ctx, it); err != nil {
		return nil, fmt.Errorf("create internship: %w", err)
	}
	s.logger.Info("internship created", "internship_id", it.ID, "by", actor.ID)
	s.events.Publish(events.Event{Topic: events.TopicInternships, Action: "created", ID: it.ID})
	return it, nil
}

// ListQuery filters and pages the listing. Page 0 returns everything.
type ListQuery struct {
	Title    string
	Sort     string // "apply_by", "-apply_by" or "" for newest first
	Page     int
	PageSize int
}

type Page struct {
	Items    []models.InternshipListing `json:"items"`
	Total    int                        `json:"total"`
	Page     int                        `json:"page"`
	PageSize int                        `json:"page_size"`
}

func (s *Service) List(ctx context.Context, q ListQuery) (*Page, error) {
	all, err := s.repo.ListInternships(ctx)
	if err != nil {
		return nil, fmt.Errorf("list internships: %w", err)
	}
	listings, err := s.enrich(ctx, all)
	if err != nil {
		return nil, err
	}

	if title := strings.ToLower(strings.TrimSpace(q.Title)); title != "" {
		filtered := listings[:0]
		for _, l := range listings {
			if strings.Contains(strings.ToLower(l.Title), title) {
				filtered = append(filtered, l)
			}
		}
		listings = filtered
	}

	switch q.Sort {
	case "apply_by":
		sort.SliceStable(listings, func(i, j int) bool { return listings[i].ApplyBy < listings[j].ApplyBy })
	case "-apply_by":
		sort.SliceStable(listings, func(i, j int) bool { return listings[i].ApplyBy > listings[j].ApplyBy })
	case "":
	default:
		return nil, apperr.Invalid("sort", "must be apply_by or -apply_by")
	}

	page := &Page{Total: len(listings), Page: q.Page}
	if q.Page <= 0 {
		page.Items = listings
		page.PageSize = len(listings)
		return page, nil
	}
	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	page.PageSize = size
	start := (q.Page - 1) * size
	if start >= len(listings) {
		page.Items = []models.InternshipListing{}
		return page, nil
	}
	page.Items = listings[start:min(start+size, len(listings))]
	return page, nil
}

// enrich joins stats and live application counts. A listing without a stat
// row reports neither active nor closed.
func (s *Service) enrich(ctx context.Context, in []models.Internship) ([]models.InternshipListing, error) {
	stats, err := s.repo.ListStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stats: %w", err)
	}
	byID := make(map[string]models.InternshipStat, len(stats))
	for _, st := range stats {
		byID[st.InternshipID] = st
	}
	apps, err := s.apps.ListApplications(ctx, repository.ApplicationFilter{})
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	counts := map[string]int{}
	for _, a := range apps {
		counts[a.InternshipID]++
	}
	out := make([]models.InternshipListing, 0, len(in))
	for _, it := range in {
		st := byID[it.ID]
		out = append(out, models.InternshipListing{
			Internship:     it,
			Active:         st.Active,
			Closed:         st.Closed,
			ApplicantCount: counts[it.ID],
		})
	}
	return out, nil
}

func (s *Service) get(ctx context.Context, id string) (*models.Internship, error) {
	it, err := s.repo.GetInternship(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get internship: %w", err)
	}
	if it == nil {
		return nil, apperr.NotFound("internship", id)
	}
	return it, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.InternshipListing, error) {
	it, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	listings, err := s.enrich(ctx, []models.Internship{*it})
	if err != nil {
		return nil, err
	}
	return &listings[0], nil
}

// Applicant is one user who applied, with how many times they did.
type Applicant struct {
	InternID     string `json:"intern_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Applications int    `json:"applications"`
}

// Applicants lists the distinct users who applied, most recent first.
func (s *Service) Applicants(ctx context.Context, id string) ([]Applicant, error) {
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}
	apps, err := s.apps.ListApplications(ctx, repository.ApplicationFilter{InternshipID: id})
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	out := []Applicant{}
	index := map[string]int{}
	for _, a := range apps {
		if i, ok := index[a.InternID]; ok {
			out[i].Applications++
			continue
		}
		name, email := a.FullName(), a.Email
		if s.users != nil {
			if u, err := s.users.GetUserByID(ctx, a.InternID); err == nil && u != nil {
				name, email = u.Name, u.Email
			}
		}
		index[a.InternID] = len(out)
		out = append(out, Applicant{InternID: a.InternID, Name: name, Email: email, Applications: 1})
	}
	return out, nil
}

// End closes the listing for good. Ending twice is harmless.
func (s *Service) End(ctx context.Context, id string) (*models.InternshipStat, error) {
	it, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	st, err := s.repo.EndInternship(ctx, id, it.Title)
	if err != nil {
		return nil, fmt.Errorf("end internship: %w", err)
	}
	s.logger.Info("internship ended", "internship_id", id)
	s.events.Publish(events.Event{Topic: events.TopicInternships, Action: "ended", ID: id})
	return st, nil
}
