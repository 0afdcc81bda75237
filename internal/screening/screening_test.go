package screening_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagniknandigit/internship-management/internal/db/dbtest"
	"github.com/sagniknandigit/internship-management/internal/jobs"
	"github.com/sagniknandigit/internship-management/internal/repository/sqlite"
	"github.com/sagniknandigit/internship-management/internal/screening"
	"github.com/sagniknandigit/internship-management/pkg/models"
	"github.com/sagniknandigit/internship-management/pkg/ollama"
)

type fakeGenerator struct {
	prompt string
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, model, prompt string) (ollama.GenerateResult, error) {
	f.prompt = prompt
	if f.err != nil {
		return ollama.GenerateResult{}, f.err
	}
	return ollama.GenerateResult{Text: "  Solid frontend fit.  ", Meta: map[string]any{"model": model}}, nil
}

func TestSkillMatch(t *testing.T) {
	cases := []struct {
		name     string
		required []string
		offered  []string
		score    float64
		missing  []string
	}{
		{"all", []string{"Go", "SQL"}, []string{"sql", " go "}, 100, []string{}},
		{"third", []string{"Go", "SQL", "Docker"}, []string{"Go"}, 33.33, []string{"SQL", "Docker"}},
		{"none required", nil, []string{"Go"}, 100, []string{}},
		{"duplicates", []string{"Go", "go"}, nil, 0, []string{"Go"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			score, _, missing := screening.SkillMatch(c.required, c.offered)
			assert.Equal(t, c.score, score)
			assert.Equal(t, c.missing, missing)
		})
	}
}

func seed(t *testing.T) (*sqlite.SQLiteRepo, *models.Application) {
	t.Helper()
	ctx := context.Background()
	repo := sqlite.New(dbtest.Open(t), nil)
	in := &models.Internship{ID: "in-1", Title: "Frontend", Skills: []string{"React", "CSS", "TypeScript"}}
	require.NoError(t, repo.CreateInternship(ctx, in))
	app := &models.Application{
		ID: "app-1", InternID: "u-1", InternshipID: in.ID, Status: models.StatusSubmitted,
		Applicant: models.Applicant{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
			Skills: []string{"react", "css"}, ResumeFile: "cv.pdf", CoverLetterFile: "cl.pdf"},
		AppliedOn: "2025-01-10",
	}
	_, err := repo.SubmitApplication(ctx, app, in.Title)
	require.NoError(t, err)
	return repo, app
}

func TestScreenWithoutLLM(t *testing.T) {
	repo, app := seed(t)
	s := screening.New(repo, repo, nil, screening.Config{}, nil)

	got, err := s.Screen(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, 66.67, got.SkillMatch)
	assert.Equal(t, []string{"TypeScript"}, got.MissingSkills)
	assert.Empty(t, got.Summary)

	stored, err := repo.GetApplication(context.Background(), app.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Screening)
	assert.Equal(t, 66.67, stored.Screening.SkillMatch)
}

func TestScreenWithLLM(t *testing.T) {
	repo, app := seed(t)
	gen := &fakeGenerator{}
	s := screening.New(repo, repo, gen, screening.Config{LLM: true, Model: "llama3"}, nil)

	got, err := s.Screen(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Solid frontend fit.", got.Summary)
	assert.Equal(t, "llama3", got.Model)
	assert.True(t, strings.Contains(gen.prompt, "Ada Lovelace"))
	assert.True(t, strings.Contains(gen.prompt, "Missing skills: TypeScript"))
}

func TestScreenKeepsSkillMatchWhenLLMFails(t *testing.T) {
	repo, app := seed(t)
	s := screening.New(repo, repo, &fakeGenerator{err: errors.New("circuit open")}, screening.Config{LLM: true, Model: "llama3"}, nil)

	got, err := s.Screen(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Summary)
	assert.Equal(t, 66.67, got.SkillMatch)
}

func TestHandle(t *testing.T) {
	repo, app := seed(t)
	s := screening.New(repo, repo, nil, screening.Config{}, nil)
	ctx := context.Background()

	payload, _ := json.Marshal(screening.Payload{ApplicationID: app.ID})
	require.NoError(t, s.Handle(ctx, &jobs.Job{Payload: payload}))

	missing, _ := json.Marshal(screening.Payload{ApplicationID: "nope"})
	err := s.Handle(ctx, &jobs.Job{Payload: missing})
	assert.ErrorIs(t, err, jobs.ErrPermanent)

	err = s.Handle(ctx, &jobs.Job{Payload: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, jobs.ErrPermanent)
}

func TestScreenCustomPrompt(t *testing.T) {
	repo, app := seed(t)
	gen := &fakeGenerator{}
	cfg := screening.Config{LLM: true, Model: "llama3", Template: "Gaps for {{.Title}}: {{join .Missing}}"}
	_, err := screening.New(repo, repo, gen, cfg, nil).Screen(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gaps for Frontend: TypeScript", gen.prompt)

	repo, app = seed(t)
	gen = &fakeGenerator{}
	cfg.Template = "{{"
	_, err = screening.New(repo, repo, gen, cfg, nil).Screen(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Contains(t, gen.prompt, "Required skills: React, CSS, TypeScript")
}
