// Package screening scores submitted applications against the skills an
// internship asks for and optionally asks an Ollama model for a summary.
package screening

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/sagniknandigit/internship-management/internal/jobs"
	"github.com/sagniknandigit/internship-management/pkg/apperr"
	"github.com/sagniknandigit/internship-management/pkg/models"
	"github.com/sagniknandigit/internship-management/pkg/ollama"
	"github.com/sagniknandigit/internship-management/pkg/repository"
)

//go:embed prompt.tmpl
var defaultPrompt string

var builtinPrompt = ollama.MustParsePrompt(defaultPrompt)

// Generator is the slice of the Ollama client the screener needs.
type Generator interface {
	Generate(ctx context.Context, model string, prompt string) (ollama.GenerateResult, error)
}

type Config struct {
	LLM      bool
	Model    string
	Template string
	Timeout  time.Duration
}

// Payload is the body of an application.screen job.
type Payload struct {
	ApplicationID string `json:"application_id"`
}

type Screener struct {
	apps        repository.ApplicationRepo
	internships repository.InternshipRepo
	gen         Generator
	prompt      *ollama.Prompt
	cfg         Config
	logger      *slog.Logger
}

// New builds a screener. gen may be nil, in which case only skill matching runs.
// A template that does not parse is replaced by the built-in one.
func New(apps repository.ApplicationRepo, internships repository.InternshipRepo, gen Generator, cfg Config, logger *slog.Logger) *Screener {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	prompt := builtinPrompt
	if cfg.Template != "" {
		p, err := ollama.ParsePrompt(cfg.Template)
		if err != nil {
			logger.Warn("screening: custom prompt rejected, using built-in", "err", err)
		} else {
			prompt = p
		}
	}
	return &Screener{apps: apps, internships: internships, gen: gen, prompt: prompt, cfg: cfg, logger: logger}
}

// SkillMatch compares skills case-insensitively. The score is the share of
// required skills the applicant lists, as a percentage with two decimals;
// a listing without required skills scores 100.
func SkillMatch(required, offered []string) (score float64, matched, missing []string) {
	have := make(map[string]bool, len(offered))
	for _, s := range offered {
		have[normalize(s)] = true
	}
	matched, missing = []string{}, []string{}
	seen := map[string]bool{}
	for _, s := range required {
		key := normalize(s)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if have[key] {
			matched = append(matched, s)
		} else {
			missing = append(missing, s)
		}
	}
	total := len(matched) + len(missing)
	if total == 0 {
		return 100, matched, missing
	}
	score = math.Round(float64(len(matched))/float64(total)*10000) / 100
	return score, matched, missing
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Screen computes and stores the screening for one application.
func (s *Screener) Screen(ctx context.Context, applicationID string) (*models.Screening, error) {
	app, err := s.apps.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	if app == nil {
		return nil, apperr.NotFound("application", applicationID)
	}
	in, err := s.internships.GetInternship(ctx, app.InternshipID)
	if err != nil {
		return nil, fmt.Errorf("load internship: %w", err)
	}
	if in == nil {
		return nil, apperr.NotFound("internship", app.InternshipID)
	}

	score, matched, missing := SkillMatch(in.Skills, app.Skills)
	result := &models.Screening{
		SkillMatch:    score,
		MatchedSkills: matched,
		MissingSkills: missing,
		Created:       time.Now().UTC().UnixMilli(),
	}

	if s.cfg.LLM && s.gen != nil {
		summary, err := s.summarize(ctx, in, app, result)
		if err != nil {
			// the skill match is still worth keeping
			s.logger.Warn("screening summary failed", "application_id", app.ID, "err", err)
		} else {
			result.Summary = summary
			result.Model = s.cfg.Model
		}
	}

	if err := s.apps.SaveScreening(ctx, app.ID, result); err != nil {
		return nil, fmt.Errorf("save screening: %w", err)
	}
	s.logger.Info("application screened", "application_id", app.ID, "skill_match", score)
	return result, nil
}

func (s *Screener) summarize(ctx context.Context, in *models.Internship, app *models.Application, sc *models.Screening) (string, error) {
	prompt, err := s.prompt.Render(promptData{
		Title:        in.Title,
		Required:     in.Skills,
		Name:         app.FullName(),
		University:   app.University,
		CurrentYear:  app.CurrentYear,
		PassingYear:  app.PassingYear,
		Offered:      app.Skills,
		Why:          app.WhyInternship,
		Expectations: app.Expectations,
		Matched:      sc.MatchedSkills,
		Missing:      sc.MissingSkills,
	})
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	res, err := s.gen.Generate(ctx, s.cfg.Model, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Text), nil
}

type promptData struct {
	Title        string
	Required     []string
	Name         string
	University   string
	CurrentYear  string
	PassingYear  string
	Offered      []string
	Why          string
	Expectations string
	Matched      []string
	Missing      []string
}

// Handle is the jobs.Handler for application.screen.
func (s *Screener) Handle(ctx context.Context, j *jobs.Job) error {
	var p Payload
	if err := json.Unmarshal(j.Payload, &p); err != nil || p.ApplicationID == "" {
		return fmt.Errorf("%w: bad screening payload", jobs.ErrPermanent)
	}
	_, err := s.Screen(ctx, p.ApplicationID)
	if errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("%w: %v", jobs.ErrPermanent, err)
	}
	return err
}
