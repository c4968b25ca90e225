package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/dbx"
	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/dmitrijs2005/taskboard/internal/server/access"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/repomanager"
)

// InvitationService lets board owners invite users and lets invitees
// accept or decline. Invitations older than the retention window are
// treated as if they never existed.
type InvitationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	retention   time.Duration
	now         func() time.Time
	log         logging.Logger
}

func NewInvitationService(db *sql.DB, m repomanager.RepositoryManager, retention time.Duration, log logging.Logger) *InvitationService {
	return &InvitationService{
		db:          db,
		repomanager: m,
		retention:   retention,
		now:         time.Now,
		log:         log.With("module", "invitations"),
	}
}

func (s *InvitationService) cutoff() time.Time {
	return s.now().Add(-s.retention)
}

// Send invites inviteeID to boardID with role. Only the owner may invite,
// and the owner role itself cannot be offered.
func (s *InvitationService) Send(ctx context.Context, boardID, invitedBy, inviteeID string, role models.BoardRole) (*models.Invitation, error) {
	if !access.Invitable(role) {
		return nil, common.ErrInvalidRole
	}

	d, err := access.NewGuard(s.repomanager.Boards(s.db)).Check(ctx, boardID, invitedBy, models.BoardRoleOwner)
	if err != nil {
		return nil, err
	}
	if !d.Member {
		return nil, common.ErrBoardNotFound
	}
	if !d.Allowed {
		return nil, common.ErrForbidden
	}

	if _, err := s.repomanager.Users(s.db).GetByID(ctx, inviteeID); err != nil {
		return nil, err
	}
	if _, ok := access.RoleOf(d.Board, inviteeID); ok {
		return nil, common.ErrAlreadyMember
	}

	repo := s.repomanager.Invitations(s.db)
	cutoff := s.cutoff()
	if n, err := repo.SweepExpired(ctx, cutoff); err != nil {
		return nil, err
	} else if n > 0 {
		s.log.Debug(ctx, "expired invitations swept", "count", n)
	}

	exists, err := repo.Exists(ctx, inviteeID, boardID, cutoff)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.ErrDuplicateInvitation
	}

	inv, err := repo.Create(ctx, &models.Invitation{
		UserID:    inviteeID,
		Board:     models.InvitedBoard{ID: boardID, Title: d.Board.Title},
		Role:      role,
		InvitedBy: invitedBy,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "board.invite.sent",
		"invitation_id", inv.ID, "board_id", boardID, "invited_by", invitedBy, "invitee", inviteeID, "role", string(role))
	return inv, nil
}

// ListForUser returns the caller's outstanding invitations.
func (s *InvitationService) ListForUser(ctx context.Context, userID string) ([]models.Invitation, error) {
	return s.repomanager.Invitations(s.db).ListForUser(ctx, userID, s.cutoff())
}

// Resolve accepts or declines an invitation addressed to inviteeID. Joining
// the board and removing the invitation happen in one transaction; either
// both are committed or neither is.
func (s *InvitationService) Resolve(ctx context.Context, invitationID, inviteeID string, accept bool) error {
	var inv *models.Invitation
	cutoff := s.cutoff()

	load := func(ctx context.Context, tx dbx.DBTX) dbx.Outcome {
		var err error
		inv, err = s.repomanager.Invitations(tx).Get(ctx, invitationID, inviteeID, cutoff)
		switch {
		case err == nil:
			return dbx.Continue()
		case errors.Is(err, common.ErrInvitationNotFound):
			return dbx.Abort(common.ErrInvitationNotFound)
		default:
			return dbx.Fail(err)
		}
	}

	join := func(ctx context.Context, tx dbx.DBTX) dbx.Outcome {
		if !accept {
			return dbx.Continue()
		}
		err := s.repomanager.Boards(tx).AddMember(ctx, inv.Board.ID, inviteeID, inv.Role, inv.InvitedBy)
		switch {
		case err == nil:
			return dbx.Continue()
		case errors.Is(err, common.ErrBoardNotFound), errors.Is(err, common.ErrAlreadyMember):
			return dbx.Abort(err)
		default:
			return dbx.Fail(err)
		}
	}

	remove := func(ctx context.Context, tx dbx.DBTX) dbx.Outcome {
		err := s.repomanager.Invitations(tx).Delete(ctx, invitationID, inviteeID)
		switch {
		case err == nil:
			return dbx.Continue()
		case errors.Is(err, common.ErrInvitationNotFound):
			return dbx.Abort(err)
		default:
			return dbx.Fail(err)
		}
	}

	if err := dbx.RunSteps(ctx, s.db, nil, load, join, remove); err != nil {
		s.log.Warn(ctx, "invitation resolve failed", "invitation_id", invitationID, "user_id", inviteeID, "error", err)
		return err
	}

	event := "board.invite.declined"
	if accept {
		event = "board.invite.accepted"
	}
	s.log.Info(ctx, event, "invitation_id", invitationID, "board_id", inv.Board.ID, "user_id", inviteeID, "role", string(inv.Role))
	return nil
}
