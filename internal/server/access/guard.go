package access

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

// BoardReader loads a board with its members.
type BoardReader interface {
	Get(ctx context.Context, boardID string) (*models.Board, error)
}

// Decision is the outcome of a Guard check. Board is nil when the board does
// not exist.
type Decision struct {
	Board   *models.Board
	Role    models.BoardRole
	Member  bool
	Allowed bool
}

// Guard is the check every board, list and card operation goes through
// before touching data.
type Guard struct {
	boards BoardReader
}

func NewGuard(boards BoardReader) *Guard {
	return &Guard{boards: boards}
}

// Check loads the board and decides whether userID holds min on it. A
// missing board is a denied decision, not an error; only storage failures
// are returned as errors.
func (g *Guard) Check(ctx context.Context, boardID, userID string, min models.BoardRole) (Decision, error) {
	board, err := g.boards.Get(ctx, boardID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return Decision{}, nil
		}
		return Decision{}, err
	}

	role, member := RoleOf(board, userID)
	return Decision{
		Board:   board,
		Role:    role,
		Member:  member,
		Allowed: member && Satisfies(role, min),
	}, nil
}

// Require is Check with the denial turned into ErrBoardNotFound, so callers
// never reveal a board to someone who may not act on it.
func (g *Guard) Require(ctx context.Context, boardID, userID string, min models.BoardRole) (Decision, error) {
	d, err := g.Check(ctx, boardID, userID, min)
	if err != nil {
		return Decision{}, err
	}
	if !d.Allowed {
		return Decision{}, common.ErrBoardNotFound
	}
	return d, nil
}
