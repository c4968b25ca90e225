package lists

import (
	"context"

	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/ordering"
)

// Repository methods that address a single list are scoped by board id; a
// list id from another board is reported as ErrListNotFound.
type Repository interface {
	Create(ctx context.Context, list *models.List) (*models.List, error)
	Get(ctx context.Context, boardID, listID string) (*models.List, error)
	ListByBoard(ctx context.Context, boardID string) ([]models.List, error)
	Rename(ctx context.Context, boardID, listID, title string) error
	Move(ctx context.Context, boardID, listID string, pos float64) error
	Delete(ctx context.Context, boardID, listID string) error
	Scope(boardID string) ordering.Scope
}
