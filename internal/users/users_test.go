package users_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagniknandigit/internship-management/internal/auth"
	"github.com/sagniknandigit/internship-management/internal/db/dbtest"
	"github.com/sagniknandigit/internship-management/internal/events"
	"github.com/sagniknandigit/internship-management/internal/repository/sqlite"
	"github.com/sagniknandigit/internship-management/internal/users"
	"github.com/sagniknandigit/internship-management/pkg/apperr"
	"github.com/sagniknandigit/internship-management/pkg/models"
	"github.com/sagniknandigit/internship-management/pkg/repository/mock"
)

type recorder struct{ got []events.Event }

func (r *recorder) Publish(e events.Event) { r.got = append(r.got, e) }

func newService(t *testing.T) (*users.Service, *mock.Mocks, *recorder) {
	t.Helper()
	m := mock.NewMocks()
	rec := &recorder{}
	return users.NewService(m.UserRepo, auth.NewTokens("test-secret", time.Hour), m.Denylist, rec, nil), m, rec
}

func TestRegisterAndSignIn(t *testing.T) {
	ctx := context.Background()
	svc, _, rec := newService(t)

	u, err := svc.Register(ctx, users.RegisterInput{Name: "Ada", Email: " Ada@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleIntern, u.Role)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	require.Len(t, rec.got, 1)
	assert.Equal(t, events.TopicUsers, rec.got[0].Topic)

	sess, err := svc.SignIn(ctx, "ADA@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, u.ID, sess.User.ID)

	_, err = svc.SignIn(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = svc.SignIn(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.Register(ctx, users.RegisterInput{Name: "x", Email: "bad", Password: "123"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Register(ctx, users.RegisterInput{Name: "x", Email: "x@example.com", Password: "secret1", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Register(ctx, users.RegisterInput{Name: "x", Email: "x@example.com", Password: "secret1", Role: models.RoleMentor})
	require.NoError(t, err)
	_, err = svc.Register(ctx, users.RegisterInput{Name: "y", Email: "x@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestSuspendBlocksLoginAndTokens(t *testing.T) {
	ctx := context.Background()
	svc, m, _ := newService(t)
	admin := models.User{ID: "admin", Role: models.RoleAdmin}

	u, err := svc.Register(ctx, users.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	sess, err := svc.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.ChangeRole(ctx, admin, u.ID, models.RoleSuspend)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuspend, m.UserRepo.Users[u.ID].Role)

	_, err = svc.SignIn(ctx, "ada@example.com", "secret1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, _, err = svc.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestSignOutRevokesToken(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	_, err := svc.Register(ctx, users.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	sess, err := svc.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	u, claims, err := svc.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)

	require.NoError(t, svc.SignOut(ctx, claims))
	_, _, err = svc.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = svc.Revalidate(ctx, claims)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = svc.Revalidate(ctx, nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, _, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestRoleOptions(t *testing.T) {
	assert.Equal(t, []models.Role{models.RoleAdmin, models.RoleSuspend}, users.RoleOptions(models.RoleAdmin))
	assert.Equal(t, []models.Role{models.RoleMentor, models.RoleAdmin, models.RoleSuspend}, users.RoleOptions(models.RoleMentor))
	assert.Equal(t, []models.Role{models.RoleIntern, models.RoleMentor, models.RoleSuspend}, users.RoleOptions(models.RoleIntern))
	assert.ElementsMatch(t, models.Roles, users.RoleOptions(models.RoleSuspend))
}

func TestChangeRoleRules(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	admin := models.User{ID: "admin", Role: models.RoleAdmin}

	intern, err := svc.Register(ctx, users.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.ChangeRole(ctx, admin, intern.ID, models.RoleAdmin)
	assert.ErrorIs(t, err, apperr.ErrValidation, "interns are promoted to mentor first")

	_, err = svc.ChangeRole(ctx, admin, intern.ID, "Boss")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.ChangeRole(ctx, admin, admin.ID, models.RoleSuspend)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.ChangeRole(ctx, admin, "missing", models.RoleMentor)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	got, err := svc.ChangeRole(ctx, admin, intern.ID, models.RoleMentor)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMentor, got.Role)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, m, _ := newService(t)
	admin := models.User{ID: "admin", Role: models.RoleAdmin}
	u, err := svc.Register(ctx, users.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, admin, admin.ID), apperr.ErrConflict)
	require.NoError(t, svc.Delete(ctx, admin, u.ID))
	assert.Empty(t, m.UserRepo.Users)
	assert.ErrorIs(t, svc.Delete(ctx, admin, u.ID), apperr.ErrNotFound)
}

func TestEnsureAdminAgainstSQLite(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.New(dbtest.Open(t), nil)
	svc := users.NewService(repo, auth.NewTokens("test-secret", time.Hour), repo, nil, nil)

	created, err := svc.EnsureAdmin(ctx, "", "root@example.com", "rootpass")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "", "other@example.com", "rootpass")
	require.NoError(t, err)
	assert.False(t, created)

	list, err := svc.List(ctx, "admin")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.RoleAdmin, list[0].Role)

	created, err = svc.EnsureAdmin(ctx, "", "", "")
	require.NoError(t, err)
	assert.False(t, created)
}
