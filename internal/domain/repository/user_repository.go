package repository

import (
	"context"

	"tradepost/internal/domain/entity"
)

// UserRepository is the core's read-only view of the user directory.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
