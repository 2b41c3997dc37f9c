package users

import (
	"context"

	"github.com/dmitrijs2005/devconnector/internal/server/models"
)

// Repository is the persistence side of the credential store.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
