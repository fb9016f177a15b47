package repository

import (
	"context"

	"tradepost/internal/domain/entity"
)

type TransactionRepository interface {
	Create(ctx context.Context, transaction *entity.Transaction) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	Update(ctx context.Context, transaction *entity.Transaction) error
	ListByUserID(ctx context.Context, userID string, role string, limit, offset int) ([]*entity.Transaction, int64, error)
}
