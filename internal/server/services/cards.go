package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/dbx"
	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/dmitrijs2005/taskboard/internal/server/access"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/ordering"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/repomanager"
)

const cardCreatedComment = "Task created"

// CardService manages cards, their assignees and their activity log.
type CardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewCardService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *CardService {
	return &CardService{db: db, repomanager: m, log: log.With("module", "cards")}
}

func (s *CardService) require(ctx context.Context, userID, boardID string, min models.BoardRole) (access.Decision, error) {
	return access.NewGuard(s.repomanager.Boards(s.db)).Require(ctx, boardID, userID, min)
}

// Create adds a card to a list of the board. A nil pos appends it.
func (s *CardService) Create(ctx context.Context, userID, boardID, listID, title, description string, pos *float64) (*models.Card, error) {
	if err := validateTitle(title, 255); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}
	if pos != nil {
		if err := ordering.Validate(*pos); err != nil {
			return nil, err
		}
	}
	if _, err := s.require(ctx, userID, boardID, models.BoardRoleEditor); err != nil {
		return nil, err
	}

	var card *models.Card
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Lists(tx).Get(ctx, boardID, listID); err != nil {
			return err
		}

		repo := s.repomanager.Cards(tx)
		p, err := placement(ctx, repo.Scope(listID), pos)
		if err != nil {
			return err
		}
		card, err = repo.Create(ctx, &models.Card{
			BoardID:     boardID,
			ListID:      listID,
			Title:       title,
			Description: description,
			Pos:         p,
		})
		if err != nil {
			return err
		}

		a := &models.Activity{CardID: card.ID, UserID: userID, Type: models.ActivityDesc, Comment: cardCreatedComment}
		if err := repo.AddActivity(ctx, a); err != nil {
			return err
		}
		card.Activities = []models.Activity{*a}
		return nil
	})
	if err != nil {
		return nil, err
	}

	touch(ctx, s.log, s.repomanager.Boards(s.db), boardID)
	return card, nil
}

// Update changes a card's title and description.
func (s *CardService) Update(ctx context.Context, userID, boardID, cardID, title, description string) error {
	if err := validateTitle(title, 255); err != nil {
		return err
	}
	if err := validateDescription(description); err != nil {
		return err
	}
	if _, err := s.require(ctx, userID, boardID, models.BoardRoleEditor); err != nil {
		return err
	}
	if err := s.repomanager.Cards(s.db).Update(ctx, boardID, cardID, title, description); err != nil {
		return err
	}
	touch(ctx, s.log, s.repomanager.Boards(s.db), boardID)
	return nil
}

// Move places a card in listID at pos, or at the end of that list when pos
// is nil. Changing lists is recorded in the card's activity log.
func (s *CardService) Move(ctx context.Context, userID, boardID, cardID, listID string, pos *float64) error {
	if pos != nil {
		if err := ordering.Validate(*pos); err != nil {
			return err
		}
	}
	if _, err := s.require(ctx, userID, boardID, models.BoardRoleEditor); err != nil {
		return err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Lists(tx).Get(ctx, boardID, listID); err != nil {
			return err
		}

		repo := s.repomanager.Cards(tx)
		card, err := repo.Get(ctx, boardID, cardID)
		if err != nil {
			return err
		}

		scope := repo.Scope(listID)
		p, err := placement(ctx, scope, pos)
		if err != nil {
			return err
		}
		if err := repo.Move(ctx, boardID, cardID, listID, p); err != nil {
			return err
		}
		if _, err := ordering.Settle(ctx, scope, cardID); err != nil {
			return err
		}

		if card.ListID != listID {
			return repo.AddActivity(ctx, &models.Activity{
				CardID:   cardID,
				UserID:   userID,
				Type:     models.ActivityMove,
				MoveFrom: card.ListID,
				MoveTo:   listID,
			})
		}
		return nil
	})
	if err != nil {
		return err
	}

	touch(ctx, s.log, s.repomanager.Boards(s.db), boardID)
	return nil
}

// Delete removes a card.
func (s *CardService) Delete(ctx context.Context, userID, boardID, cardID string) error {
	if _, err := s.require(ctx, userID, boardID, models.BoardRoleEditor); err != nil {
		return err
	}
	if err := s.repomanager.Cards(s.db).Delete(ctx, boardID, cardID); err != nil {
		return err
	}
	touch(ctx, s.log, s.repomanager.Boards(s.db), boardID)
	return nil
}

// Assign adds a board member to the card's assignees.
func (s *CardService) Assign(ctx context.Context, userID, boardID, cardID, assigneeID string) error {
	d, err := s.require(ctx, userID, boardID, models.BoardRoleEditor)
	if err != nil {
		return err
	}
	if _, ok := access.RoleOf(d.Board, assigneeID); !ok {
		return common.ErrUserNotFound
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Cards(tx)
		if _, err := repo.Get(ctx, boardID, cardID); err != nil {
			return err
		}
		if err := repo.AddAssignee(ctx, cardID, assigneeID); err != nil {
			return err
		}
		return repo.AddActivity(ctx, &models.Activity{
			CardID:   cardID,
			UserID:   userID,
			Type:     models.ActivityAssign,
			Assignee: assigneeID,
		})
	})
	if err != nil {
		return err
	}

	touch(ctx, s.log, s.repomanager.Boards(s.db), boardID)
	return nil
}

// Unassign removes assigneeID from the card.
func (s *CardService) Unassign(ctx context.Context, userID, boardID, cardID, assigneeID string) error {
	if _, err := s.require(ctx, userID, boardID, models.BoardRoleEditor); err != nil {
		return err
	}

	repo := s.repomanager.Cards(s.db)
	if _, err := repo.Get(ctx, boardID, cardID); err != nil {
		return err
	}
	if err := repo.RemoveAssignee(ctx, cardID, assigneeID); err != nil {
		return err
	}
	touch(ctx, s.log, s.repomanager.Boards(s.db), boardID)
	return nil
}

// Comment appends a comment to the card's activity log.
func (s *CardService) Comment(ctx context.Context, userID, boardID, cardID, text string) (*models.Activity, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("comment is required")
	}
	if err := validateDescription(text); err != nil {
		return nil, err
	}
	if _, err := s.require(ctx, userID, boardID, models.BoardRoleEditor); err != nil {
		return nil, err
	}

	repo := s.repomanager.Cards(s.db)
	if _, err := repo.Get(ctx, boardID, cardID); err != nil {
		return nil, err
	}
	a := &models.Activity{CardID: cardID, UserID: userID, Type: models.ActivityComment, Comment: text}
	if err := repo.AddActivity(ctx, a); err != nil {
		return nil, err
	}
	touch(ctx, s.log, s.repomanager.Boards(s.db), boardID)
	return a, nil
}

// Activities returns the card's log, oldest first. Viewers may read it.
func (s *CardService) Activities(ctx context.Context, userID, boardID, cardID string) ([]models.Activity, error) {
	if _, err := s.require(ctx, userID, boardID, models.BoardRoleViewer); err != nil {
		return nil, err
	}

	repo := s.repomanager.Cards(s.db)
	if _, err := repo.Get(ctx, boardID, cardID); err != nil {
		return nil, err
	}
	return repo.Activities(ctx, cardID)
}
