// Package services contains server-side business logic: accounts and
// sessions, boards, lists, cards and invitations.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/cryptox"
	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/dmitrijs2005/taskboard/internal/server/cache"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskboard/internal/server/sessions"
)

// SessionManager is the part of sessions.Store the user service needs.
type SessionManager interface {
	Issue(userID string, role models.UserRole) (string, models.Session, error)
	Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error
}

var _ SessionManager = (*sessions.Store)(nil)

// LoginResult is what a successful login hands back to the caller.
type LoginResult struct {
	Token   string
	Session models.Session
	User    *models.User
}

// UserService handles registration, login/logout and profile management.
// Profile reads go through a read-through cache; the cache is invalidated
// after each write on a best-effort basis.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessions    SessionManager
	profiles    cache.Profiles
	hashParams  cryptox.Params
	log         logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, s SessionManager, profiles cache.Profiles, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		sessions:    s,
		profiles:    profiles,
		hashParams:  cryptox.DefaultParams,
		log:         log.With("module", "users"),
	}
}

// Register creates a regular account. Username and display name stay empty
// until the first profile update.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	return s.create(ctx, email, password, models.UserRoleUser)
}

func (s *UserService) create(ctx context.Context, email, password string, role models.UserRole) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	taken, err := repo.IdentityTaken(ctx, email, "", "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, common.ErrIdentityTaken
	}

	hash, err := cryptox.HashPassword(password, s.hashParams)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: hash, Role: role})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user.registered", "user_id", u.ID, "role", string(role))
	return u, nil
}

// Login checks credentials (email or username, case-insensitive) and
// starts a session. Unknown users and wrong passwords both yield
// ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Info(ctx, "auth.login.failure", "reason", "unknown_user")
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	ok, err := cryptox.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.log.Info(ctx, "auth.login.failure", "reason", "bad_password", "user_id", user.ID)
		return nil, common.ErrorUnauthorized
	}

	token, session, err := s.sessions.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "auth.login.success", "user_id", user.ID, "session_id", session.ID)
	return &LoginResult{Token: token, Session: session, User: user}, nil
}

// Logout revokes the caller's session.
func (s *UserService) Logout(ctx context.Context, session models.Session) error {
	if err := s.sessions.Revoke(ctx, session.ID, session.ExpiresAt); err != nil {
		return err
	}
	s.log.Info(ctx, "auth.logout", "user_id", session.UserID, "session_id", session.ID)
	return nil
}

// Me returns the caller's own account. A session whose user was deleted is
// treated as unauthenticated.
func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorUnauthorized
	}
	return u, err
}

// Get returns a public profile, from cache when possible.
func (s *UserService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	if p, ok, err := s.profiles.Get(ctx, userID); err != nil {
		s.log.Warn(ctx, "profile cache read failed", "user_id", userID, "error", err)
	} else if ok {
		return p, nil
	}

	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := u.Profile()
	if err := s.profiles.Set(ctx, p); err != nil {
		s.log.Warn(ctx, "profile cache write failed", "user_id", userID, "error", err)
	}
	return &p, nil
}

// List returns one page of profiles.
func (s *UserService) List(ctx context.Context, q models.ListQuery) ([]models.Profile, error) {
	users, err := s.repomanager.Users(s.db).List(ctx, q, common.PageSize)
	if err != nil {
		return nil, err
	}
	out := make([]models.Profile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Profile())
	}
	return out, nil
}

func canManage(actor models.Session, userID string) bool {
	return actor.UserID == userID || actor.Role == models.UserRoleAdmin
}

// Update changes a profile. Only the user themself or an admin may do it.
func (s *UserService) Update(ctx context.Context, actor models.Session, userID string, upd models.ProfileUpdate) error {
	if !canManage(actor, userID) {
		return common.ErrForbidden
	}
	upd.Email = strings.TrimSpace(upd.Email)
	if err := validateProfile(upd); err != nil {
		return err
	}

	repo := s.repomanager.Users(s.db)
	taken, err := repo.IdentityTaken(ctx, upd.Email, upd.UserName, userID)
	if err != nil {
		return err
	}
	if taken {
		return common.ErrIdentityTaken
	}
	if err := repo.Update(ctx, userID, upd); err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	s.log.Info(ctx, "user.updated", "user_id", userID, "actor", actor.UserID)
	return nil
}

// Delete removes an account. Only the user themself or an admin may do it.
func (s *UserService) Delete(ctx context.Context, actor models.Session, userID string) error {
	if !canManage(actor, userID) {
		return common.ErrForbidden
	}

	owned, err := s.repomanager.Boards(s.db).CountOwned(ctx, userID)
	if err != nil {
		return err
	}
	if owned > 0 {
		return common.ErrOwnsBoards
	}
	if err := s.repomanager.Users(s.db).Delete(ctx, userID); err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	s.log.Info(ctx, "user.deleted", "user_id", userID, "actor", actor.UserID)
	return nil
}

// EnsureAdmin creates the admin account unless one with that email exists.
// password is only called when the account has to be created.
func (s *UserService) EnsureAdmin(ctx context.Context, email string, password func() (string, error)) (*models.User, bool, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return nil, false, err
	}

	existing, err := s.repomanager.Users(s.db).GetByLogin(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, false, err
	}

	secret, err := password()
	if err != nil {
		return nil, false, err
	}
	if err := validatePassword(secret); err != nil {
		return nil, false, err
	}
	u, err := s.create(ctx, email, secret, models.UserRoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func (s *UserService) invalidate(ctx context.Context, userID string) {
	if err := s.profiles.Invalidate(ctx, userID); err != nil {
		s.log.Warn(ctx, "profile cache invalidation failed", "user_id", userID, "error", err)
	}
}
