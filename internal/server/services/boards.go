package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/dbx"
	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/dmitrijs2005/taskboard/internal/server/access"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/repomanager"
)

// BoardService manages boards. Every call goes through the access guard; a
// caller without the required role sees ErrBoardNotFound.
type BoardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewBoardService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *BoardService {
	return &BoardService{db: db, repomanager: m, log: log.With("module", "boards")}
}

func (s *BoardService) guard() *access.Guard {
	return access.NewGuard(s.repomanager.Boards(s.db))
}

// Create stores a new board with userID as its only member and owner.
func (s *BoardService) Create(ctx context.Context, userID, title, description string) (*models.Board, error) {
	if err := validateTitle(title, 255); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	var board *models.Board
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Boards(tx)
		b, err := repo.Create(ctx, &models.Board{Title: title, Description: description})
		if err != nil {
			return err
		}
		if err := repo.AddMember(ctx, b.ID, userID, models.BoardRoleOwner, ""); err != nil {
			return err
		}
		b.Members, err = repo.Members(ctx, b.ID)
		if err != nil {
			return err
		}
		board = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "board.created", "board_id", board.ID, "user_id", userID)
	return board, nil
}

// List returns one page of the boards userID is a member of.
func (s *BoardService) List(ctx context.Context, userID string, q models.ListQuery) ([]models.Board, error) {
	return s.repomanager.Boards(s.db).ListForMember(ctx, userID, q, common.PageSize)
}

// Get returns the board with its lists and cards, ordered by position.
func (s *BoardService) Get(ctx context.Context, userID, boardID string) (*models.BoardDetails, error) {
	d, err := s.guard().Require(ctx, boardID, userID, models.BoardRoleViewer)
	if err != nil {
		return nil, err
	}

	lists, err := s.repomanager.Lists(s.db).ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	cards, err := s.repomanager.Cards(s.db).ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return &models.BoardDetails{Board: *d.Board, Lists: lists, Cards: cards}, nil
}

// Update changes title and description. Moderators and owners only.
func (s *BoardService) Update(ctx context.Context, userID, boardID, title, description string) error {
	if err := validateTitle(title, 255); err != nil {
		return err
	}
	if err := validateDescription(description); err != nil {
		return err
	}
	if _, err := s.guard().Require(ctx, boardID, userID, models.BoardRoleModerator); err != nil {
		return err
	}
	return s.repomanager.Boards(s.db).Update(ctx, boardID, title, description)
}

// Delete removes the board with everything on it. Owner only.
func (s *BoardService) Delete(ctx context.Context, userID, boardID string) error {
	if _, err := s.guard().Require(ctx, boardID, userID, models.BoardRoleOwner); err != nil {
		return err
	}
	if err := s.repomanager.Boards(s.db).Delete(ctx, boardID); err != nil {
		return err
	}
	s.log.Info(ctx, "board.deleted", "board_id", boardID, "user_id", userID)
	return nil
}

// touch records activity on a board. Failures are logged only.
func touch(ctx context.Context, log logging.Logger, repo interface {
	Touch(ctx context.Context, boardID string) error
}, boardID string) {
	if err := repo.Touch(ctx, boardID); err != nil {
		log.Warn(ctx, "board activity update failed", "board_id", boardID, "error", err)
	}
}
