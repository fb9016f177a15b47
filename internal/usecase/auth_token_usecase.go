package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
	"tradepost/pkg/errors"
	"tradepost/pkg/logger"
)

// resetTokenTTL bounds how long an issued token stays redeemable.
const resetTokenTTL = 15 * time.Minute

// AuthTokenUseCase issues and redeems durable single-use reset tokens.
// Because they live in storage rather than process memory, any instance
// can redeem a token another instance issued.
type AuthTokenUseCase struct {
	tokenRepo repository.TokenRepository
	userRepo  repository.UserRepository
}

func NewAuthTokenUseCase(tokenRepo repository.TokenRepository, userRepo repository.UserRepository) *AuthTokenUseCase {
	return &AuthTokenUseCase{
		tokenRepo: tokenRepo,
		userRepo:  userRepo,
	}
}

func (uc *AuthTokenUseCase) Issue(ctx context.Context, userID string) (*entity.ResetToken, error) {
	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	token := &entity.ResetToken{
		Token:     uuid.New().String(),
		UserID:    userID,
		ExpiresAt: now.Add(resetTokenTTL),
		CreatedAt: now,
	}

	if err := uc.tokenRepo.Save(ctx, token); err != nil {
		return nil, err
	}

	logger.Info("IssueToken: reset token issued for user %s", userID)
	return token, nil
}

// Consume redeems a token exactly once and returns its user. Expired
// tokens are removed on sight.
func (uc *AuthTokenUseCase) Consume(ctx context.Context, token string) (string, error) {
	stored, err := uc.tokenRepo.Get(ctx, token)
	if err != nil {
		return "", err
	}

	if stored.Expired(time.Now()) {
		_ = uc.tokenRepo.Delete(ctx, stored.Token)
		return "", errors.Unauthorized("Reset token has expired", nil)
	}

	if err := uc.tokenRepo.Delete(ctx, stored.Token); err != nil {
		return "", err
	}

	logger.Info("ConsumeToken: reset token redeemed for user %s", stored.UserID)
	return stored.UserID, nil
}
