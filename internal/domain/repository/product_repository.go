package repository

import (
	"context"

	"tradepost/internal/domain/entity"
)

// ProductRepository is the core's read-mostly view of the product
// directory. UpdateStatus is the single write the transaction state
// machine is allowed to make.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	UpdateStatus(ctx context.Context, id string, status string) error
}
