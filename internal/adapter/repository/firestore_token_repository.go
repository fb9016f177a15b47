package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
	"tradepost/pkg/errors"
)

type firestoreTokenRepository struct {
	client *firestore.Client
}

func NewFirestoreTokenRepository(client *firestore.Client) repository.TokenRepository {
	return &firestoreTokenRepository{
		client: client,
	}
}

func (r *firestoreTokenRepository) Save(ctx context.Context, token *entity.ResetToken) error {
	_, err := r.client.Collection("resetTokens").Doc(token.Token).Set(ctx, token)
	if err != nil {
		return errors.Internal("Failed to save token", err)
	}

	return nil
}

func (r *firestoreTokenRepository) Get(ctx context.Context, token string) (*entity.ResetToken, error) {
	doc, err := r.client.Collection("resetTokens").Doc(token).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Token", nil)
		}
		return nil, errors.Internal("Failed to get token", err)
	}

	var resetToken entity.ResetToken
	if err := doc.DataTo(&resetToken); err != nil {
		return nil, errors.Internal("Failed to parse token data", err)
	}

	return &resetToken, nil
}

func (r *firestoreTokenRepository) Delete(ctx context.Context, token string) error {
	_, err := r.client.Collection("resetTokens").Doc(token).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete token", err)
	}

	return nil
}
