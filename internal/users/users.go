// Package users handles accounts, sessions and role administration.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sagniknandigit/internship-management/internal/auth"
	"github.com/sagniknandigit/internship-management/internal/events"
	"github.com/sagniknandigit/internship-management/pkg/apperr"
	"github.com/sagniknandigit/internship-management/pkg/models"
	"github.com/sagniknandigit/internship-management/pkg/repository"
)

var errBadCredentials = fmt.Errorf("invalid email or password: %w", apperr.ErrUnauthorized)

type Service struct {
	repo     repository.UserRepo
	tokens   *auth.Tokens
	denylist repository.TokenDenylist
	events   events.Publisher
	logger   *slog.Logger
}

func NewService(repo repository.UserRepo, tokens *auth.Tokens, denylist repository.TokenDenylist, pub events.Publisher, logger *slog.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, tokens: tokens, denylist: denylist, events: pub, logger: logger}
}

type RegisterInput struct {
	Name     string      `json:"name" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=Intern Mentor"`
}

// Session is what a successful sign-in returns.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Register creates an Intern (default) or Mentor account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = models.RoleIntern
	}
	return s.create(ctx, in.Name, in.Email, in.Password, in.Role)
}

func (s *Service) create(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("email %s is already registered", email)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{ID: uuid.NewString(), Name: name, Email: email, Role: role, PasswordHash: hash}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user registered", "user_id", u.ID, "role", u.Role)
	s.events.Publish(events.Event{Topic: events.TopicUsers, Action: "created", ID: u.ID, Roles: []models.Role{models.RoleAdmin}})
	return u, nil
}

// SignIn checks credentials and issues a token. Suspended accounts are refused.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, errBadCredentials
	}
	if u.Role == models.RoleSuspend {
		return nil, apperr.Forbidden("account is suspended")
	}
	token, claims, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: u}, nil
}

// SignOut revokes the token id until the token would have expired anyway.
func (s *Service) SignOut(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return fmt.Errorf("missing token id: %w", apperr.ErrUnauthorized)
	}
	exp := time.Now().Add(time.Hour)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	if err := s.denylist.Revoke(ctx, claims.ID, exp); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	// open streams of this user recheck their session on it
	s.events.Publish(events.Event{Topic: events.TopicUsers, Action: "signed_out", ID: claims.UserID(), UserIDs: []string{claims.UserID()}})
	return nil
}

// Authenticate resolves a bearer token to the current user record. The role
// comes from storage, so role changes apply to tokens already issued.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, *auth.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, apperr.ErrUnauthorized)
	}
	u, err := s.Revalidate(ctx, claims)
	if err != nil {
		return nil, nil, err
	}
	return u, claims, nil
}

// Revalidate checks that an already parsed session is still good: the token
// id is not revoked and the user exists and is not suspended.
func (s *Service) Revalidate(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	if claims == nil {
		return nil, fmt.Errorf("no session: %w", apperr.ErrUnauthorized)
	}
	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check token: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("token revoked: %w", apperr.ErrUnauthorized)
	}
	u, err := s.repo.GetUserByID(ctx, claims.UserID())
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user no longer exists: %w", apperr.ErrUnauthorized)
	}
	if u.Role == models.RoleSuspend {
		return nil, apperr.Forbidden("account is suspended")
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, apperr.NotFound("user", id)
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, nameFilter string) ([]models.User, error) {
	out, err := s.repo.ListUsers(ctx, strings.TrimSpace(nameFilter))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// RoleOptions lists the roles an admin may move a user with the given role to.
func RoleOptions(current models.Role) []models.Role {
	switch current {
	case models.RoleAdmin:
		return []models.Role{models.RoleAdmin, models.RoleSuspend}
	case models.RoleMentor:
		return []models.Role{models.RoleMentor, models.RoleAdmin, models.RoleSuspend}
	case models.RoleIntern:
		return []models.Role{models.RoleIntern, models.RoleMentor, models.RoleSuspend}
	default:
		return slices.Clone(models.Roles)
	}
}

// ChangeRole moves user id to role. Admins cannot change their own role.
func (s *Service) ChangeRole(ctx context.Context, actor models.User, id string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperr.Invalid("role", "must be one of Intern, Mentor, Admin, Suspend")
	}
	if actor.ID == id {
		return nil, apperr.Conflict("cannot change your own role")
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role == role {
		return u, nil
	}
	if !slices.Contains(RoleOptions(u.Role), role) {
		return nil, apperr.Invalid("role", fmt.Sprintf("%s cannot be changed to %s", u.Role, role))
	}
	if err := s.repo.UpdateUserRole(ctx, id, role); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	s.logger.Info("user role changed", "user_id", id, "from", u.Role, "to", role, "by", actor.ID)
	u.Role = role
	s.events.Publish(events.Event{Topic: events.TopicUsers, Action: "role_changed", ID: id, Roles: []models.Role{models.RoleAdmin}, UserIDs: []string{id}})
	return u, nil
}

func (s *Service) Delete(ctx context.Context, actor models.User, id string) error {
	if actor.ID == id {
		return apperr.Conflict("cannot delete your own account")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.Info("user deleted", "user_id", id, "by", actor.ID)
	s.events.Publish(events.Event{Topic: events.TopicUsers, Action: "deleted", ID: id, Roles: []models.Role{models.RoleAdmin}, UserIDs: []string{id}})
	return nil
}

// EnsureAdmin creates an administrator when none exists. It reports whether
// a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	all, err := s.repo.ListUsers(ctx, "")
	if err != nil {
		return false, fmt.Errorf("list users: %w", err)
	}
	for _, u := range all {
		if u.Role == models.RoleAdmin {
			return false, nil
		}
	}
	if name == "" {
		name = "Administrator"
	}
	_, err = s.create(ctx, name, normalizeEmail(email), password, models.RoleAdmin)
	if errors.Is(err, apperr.ErrConflict) {
		return false, fmt.Errorf("bootstrap admin email belongs to a non-admin account: %w", err)
	}
	return err == nil, err
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
