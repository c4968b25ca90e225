package invitations

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

// Repository stores pending invitations. Invitations created before the
// since cut-off are treated as expired and never returned.
type Repository interface {
	Create(ctx context.Context, inv *models.Invitation) (*models.Invitation, error)
	Exists(ctx context.Context, userID, boardID string, since time.Time) (bool, error)
	ListForUser(ctx context.Context, userID string, since time.Time) ([]models.Invitation, error)
	Get(ctx context.Context, id, userID string, since time.Time) (*models.Invitation, error)
	Delete(ctx context.Context, id, userID string) error
	SweepExpired(ctx context.Context, before time.Time) (int64, error)
}
