package mentoring_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagniknandigit/internship-management/internal/db/dbtest"
	"github.com/sagniknandigit/internship-management/internal/mentoring"
	"github.com/sagniknandigit/internship-management/internal/repository/sqlite"
	"github.com/sagniknandigit/internship-management/pkg/apperr"
	"github.com/sagniknandigit/internship-management/pkg/models"
)

var (
	intern   = models.User{ID: "intern-1", Name: "Ada", Email: "ada@example.com", Role: models.RoleIntern}
	stranger = models.User{ID: "intern-2", Name: "Alan", Email: "alan@example.com", Role: models.RoleIntern}
	mentor   = models.User{ID: "mentor-1", Name: "Grace", Email: "grace@example.com", Role: models.RoleMentor}
	other    = models.User{ID: "mentor-2", Name: "Barbara", Email: "barbara@example.com", Role: models.RoleMentor}
)

func setup(t *testing.T) *mentoring.Service {
	t.Helper()
	ctx := context.Background()
	repo := sqlite.New(dbtest.Open(t), nil)
	for _, u := range []models.User{intern, stranger, mentor, other} {
		u := u
		require.NoError(t, repo.CreateUser(ctx, &u))
	}
	require.NoError(t, repo.AssignMentor(ctx, "app-1", mentor.ID, intern.ID))
	return mentoring.NewService(repo.Repository(), nil, nil)
}

func TestAssignmentsBothWays(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	interns, err := svc.Interns(ctx, mentor.ID)
	require.NoError(t, err)
	require.Len(t, interns, 1)
	assert.Equal(t, "Ada", interns[0].Name)
	assert.Equal(t, "app-1", interns[0].ApplicationID)

	mentors, err := svc.Mentors(ctx, intern.ID)
	require.NoError(t, err)
	require.Len(t, mentors, 1)
	assert.Equal(t, "Grace", mentors[0].Name)

	none, err := svc.Interns(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestConversationAccess(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	_, err := svc.Send(ctx, intern, intern.ID, "hello mentor")
	require.NoError(t, err)
	_, err = svc.Send(ctx, mentor, intern.ID, "hi Ada")
	require.NoError(t, err)

	msgs, err := svc.Messages(ctx, intern, intern.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleIntern, msgs[0].SenderRole)
	assert.Equal(t, "hi Ada", msgs[1].Text)

	_, err = svc.Messages(ctx, stranger, intern.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = svc.Send(ctx, other, intern.ID, "who am I")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = svc.Send(ctx, intern, intern.ID, "   ")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	convs, err := svc.Conversations(ctx, mentor)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Len(t, convs[0].Messages, 2)
}

func TestTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	_, err := svc.AssignTask(ctx, other, mentoring.TaskInput{InternID: intern.ID, Title: "Read docs"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	task, err := svc.AssignTask(ctx, mentor, mentoring.TaskInput{InternID: intern.ID, Title: "Read docs", DueDate: "2025-05-01"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskAssigned, task.Status)

	_, err = svc.ReviewTask(ctx, mentor, task.ID, models.TaskApproved, "")
	assert.ErrorIs(t, err, apperr.ErrConflict, "nothing submitted yet")

	_, err = svc.SubmitTask(ctx, stranger, task.ID, "done")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	task, err = svc.SubmitTask(ctx, intern, task.ID, "https://github.com/ada/notes")
	require.NoError(t, err)
	assert.Equal(t, models.TaskPendingReview, task.Status)

	_, err = svc.ReviewTask(ctx, mentor, task.ID, models.TaskNeedsRevision, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	task, err = svc.ReviewTask(ctx, mentor, task.ID, models.TaskNeedsRevision, "add examples")
	require.NoError(t, err)
	assert.Equal(t, "add examples", task.Feedback)

	task, err = svc.SubmitTask(ctx, intern, task.ID, "v2")
	require.NoError(t, err)
	task, err = svc.ReviewTask(ctx, mentor, task.ID, models.TaskApproved, "great")
	require.NoError(t, err)
	assert.Equal(t, models.TaskApproved, task.Status)

	_, err = svc.SubmitTask(ctx, intern, task.ID, "v3")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	mine, err := svc.Tasks(ctx, intern)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "v2", mine[0].Submission)

	handedOut, err := svc.Tasks(ctx, mentor)
	require.NoError(t, err)
	assert.Len(t, handedOut, 1)
}

func TestDocuments(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	_, err := svc.ShareDocument(ctx, mentor, mentoring.DocumentInput{InternID: intern.ID, Title: "Handbook"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.ShareDocument(ctx, other, mentoring.DocumentInput{InternID: intern.ID, Title: "Handbook", FileName: "handbook.pdf"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	d, err := svc.ShareDocument(ctx, mentor, mentoring.DocumentInput{InternID: intern.ID, Title: "Handbook", FileName: "handbook.pdf"})
	require.NoError(t, err)

	received, err := svc.Documents(ctx, intern)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, d.ID, received[0].ID)

	empty, err := svc.Documents(ctx, stranger)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
