package repository

import (
	"context"

	"tradepost/internal/domain/entity"
)

// TokenRepository stores expiring single-use tokens durably so multiple
// server instances share state.
type TokenRepository interface {
	Save(ctx context.Context, token *entity.ResetToken) error
	Get(ctx context.Context, token string) (*entity.ResetToken, error)
	Delete(ctx context.Context, token string) error
}
