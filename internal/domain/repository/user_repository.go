package repository

import (
	"context"

	"github.com/bapperida/siperjadin/internal/domain/entity"
)

// UserRepository is the persistence port for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
