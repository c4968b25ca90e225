package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/taskboard/internal/dbx"
	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/dmitrijs2005/taskboard/internal/server/access"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/ordering"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/repomanager"
)

// ListService manages the lists of a board. All mutations need an editor
// role or better and are scoped to the authorized board.
type ListService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewListService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *ListService {
	return &ListService{db: db, repomanager: m, log: log.With("module", "lists")}
}

func (s *ListService) require(ctx context.Context, userID, boardID string) error {
	_, err := access.NewGuard(s.repomanager.Boards(s.db)).Require(ctx, boardID, userID, models.BoardRoleEditor)
	return err
}

// Create adds a list. A nil pos appends it after the last list.
func (s *ListService) Create(ctx context.Context, userID, boardID, title string, pos *float64) (*models.List, error) {
	if err := validateTitle(title, 255); err != nil {
		return nil, err
	}
	if pos != nil {
		if err := ordering.Validate(*pos); err != nil {
			return nil, err
		}
	}
	if err := s.require(ctx, userID, boardID); err != nil {
		return nil, err
	}

	var list *models.List
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Lists(tx)
		p, err := placement(ctx, repo.Scope(boardID), pos)
		if err != nil {
			return err
		}
		list, err = repo.Create(ctx, &models.List{BoardID: boardID, Title: title, Pos: p})
		return err
	})
	if err != nil {
		return nil, err
	}

	touch(ctx, s.log, s.repomanager.Boards(s.db), boardID)
	return list, nil
}

// Rename changes a list title.
func (s *ListService) Rename(ctx context.Context, userID, boardID, listID, title string) error {
	if err := validateTitle(title, 255); err != nil {
		return err
	}
	if err := s.require(ctx, userID, boardID); err != nil {
		return err
	}
	if err := s.repomanager.Lists(s.db).Rename(ctx, boardID, listID, title); err != nil {
		return err
	}
	touch(ctx, s.log, s.repomanager.Boards(s.db), boardID)
	return nil
}

// Move stores pos verbatim and renumbers the board's lists if the new
// position left no room next to a neighbour.
func (s *ListService) Move(ctx context.Context, userID, boardID, listID string, pos float64) error {
	if err := ordering.Validate(pos); err != nil {
		return err
	}
	if err := s.require(ctx, userID, boardID); err != nil {
		return err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Lists(tx)
		if err := repo.Move(ctx, boardID, listID, pos); err != nil {
			return err
		}
		rebalanced, err := ordering.Settle(ctx, repo.Scope(boardID), listID)
		if rebalanced {
			s.log.Debug(ctx, "lists rebalanced", "board_id", boardID)
		}
		return err
	})
	if err != nil {
		return err
	}

	touch(ctx, s.log, s.repomanager.Boards(s.db), boardID)
	return nil
}

// Delete removes a list and its cards.
func (s *ListService) Delete(ctx context.Context, userID, boardID, listID string) error {
	if err := s.require(ctx, userID, boardID); err != nil {
		return err
	}
	if err := s.repomanager.Lists(s.db).Delete(ctx, boardID, listID); err != nil {
		return err
	}
	touch(ctx, s.log, s.repomanager.Boards(s.db), boardID)
	return nil
}

func placement(ctx context.Context, scope ordering.Scope, pos *float64) (float64, error) {
	if pos != nil {
		return *pos, nil
	}
	return ordering.Append(ctx, scope)
}
