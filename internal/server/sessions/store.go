// Package sessions issues, verifies and revokes session tokens.
//
// A session is never stored; only its revocation is. Verify therefore costs
// one signature check plus one point lookup in the revocation set.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/server/auth"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/google/uuid"
)

// RevocationSet records sessions that were ended before their expiry.
// Implementations drop entries once expiresAt has passed.
type RevocationSet interface {
	Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

type Store struct {
	secretKey []byte
	validity  time.Duration
	revoked   RevocationSet
	now       func() time.Time
	newID     func() (uuid.UUID, error)
}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces uuid.NewV7.
func WithIDGenerator(gen func() (uuid.UUID, error)) Option {
	return func(s *Store) { s.newID = gen }
}

func NewStore(secretKey []byte, validity time.Duration, revoked RevocationSet, opts ...Option) *Store {
	s := &Store{
		secretKey: secretKey,
		validity:  validity,
		revoked:   revoked,
		now:       time.Now,
		newID:     uuid.NewV7,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue starts a new session for userID. Expiry is absolute from now; there
// is no renewal.
func (s *Store) Issue(userID string, role models.UserRole) (string, models.Session, error) {
	id, err := s.newID()
	if err != nil {
		return "", models.Session{}, fmt.Errorf("session id: %w", err)
	}

	// JWT carries whole seconds.
	now := s.now().Truncate(time.Second)
	session := models.Session{
		ID:        id.String(),
		UserID:    userID,
		Role:      role,
		ExpiresAt: now.Add(s.validity),
	}

	token, err := auth.GenerateToken(session, now, s.secretKey)
	if err != nil {
		return "", models.Session{}, err
	}
	return token, session, nil
}

// Verify returns the session behind token. It fails with ErrInvalidSession
// for malformed, forged or expired tokens and with ErrSessionRevoked after
// Revoke. A revocation lookup failure is returned as an error as well.
func (s *Store) Verify(ctx context.Context, token string) (models.Session, error) {
	if token == "" {
		return models.Session{}, common.ErrInvalidSession
	}

	session, err := auth.ParseToken(token, s.secretKey, s.now())
	if err != nil {
		return models.Session{}, err
	}

	revoked, err := s.revoked.IsRevoked(ctx, session.ID)
	if err != nil {
		return models.Session{}, fmt.Errorf("revocation lookup: %w", err)
	}
	if revoked {
		return models.Session{}, common.ErrSessionRevoked
	}
	return session, nil
}

// Revoke ends a session before expiresAt. Repeating it is harmless and an
// already expired session needs no record.
func (s *Store) Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error {
	if sessionID == "" {
		return errors.New("empty session id")
	}
	if !expiresAt.After(s.now()) {
		return nil
	}
	return s.revoked.Revoke(ctx, sessionID, expiresAt)
}
