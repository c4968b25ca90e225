package users

import (
	"context"

	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	IdentityTaken(ctx context.Context, email, username, excludeID string) (bool, error)
	List(ctx context.Context, q models.ListQuery, limit int) ([]models.User, error)
	Update(ctx context.Context, id string, upd models.ProfileUpdate) error
	Delete(ctx context.Context, id string) error
}
