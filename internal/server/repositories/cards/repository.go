package cards

import (
	"context"

	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/ordering"
)

// Repository methods that address a single card are scoped by board id.
type Repository interface {
	Create(ctx context.Context, card *models.Card) (*models.Card, error)
	Get(ctx context.Context, boardID, cardID string) (*models.Card, error)
	ListByBoard(ctx context.Context, boardID string) ([]models.Card, error)
	Update(ctx context.Context, boardID, cardID, title, description string) error
	Move(ctx context.Context, boardID, cardID, listID string, pos float64) error
	Delete(ctx context.Context, boardID, cardID string) error
	AddAssignee(ctx context.Context, cardID, userID string) error
	RemoveAssignee(ctx context.Context, cardID, userID string) error
	AddActivity(ctx context.Context, a *models.Activity) error
	Activities(ctx context.Context, cardID string) ([]models.Activity, error)
	Scope(listID string) ordering.Scope
}
