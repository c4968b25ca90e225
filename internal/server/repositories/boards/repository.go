package boards

import (
	"context"

	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, board *models.Board) (*models.Board, error)
	Get(ctx context.Context, boardID string) (*models.Board, error)
	ListForMember(ctx context.Context, userID string, q models.ListQuery, limit int) ([]models.Board, error)
	Update(ctx context.Context, boardID, title, description string) error
	Delete(ctx context.Context, boardID string) error
	Touch(ctx context.Context, boardID string) error
	Members(ctx context.Context, boardID string) ([]models.Member, error)
	AddMember(ctx context.Context, boardID, userID string, role models.BoardRole, invitedBy string) error
	CountOwned(ctx context.Context, userID string) (int, error)
}
