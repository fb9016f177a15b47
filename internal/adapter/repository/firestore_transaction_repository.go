package repository

import (
	"log"
	"sort"
	"time"

	"context"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
	"tradepost/pkg/errors"
)

type firestoreTransactionRepository struct {
	client *firestore.Client
}

func NewFirestoreTransactionRepository(client *firestore.Client) repository.TransactionRepository {
	return &firestoreTransactionRepository{
		client: client,
	}
}

func (r *firestoreTransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	if transaction.ID == "" {
		transaction.ID = uuid.New().String()
	}

	now := time.Now()
	transaction.CreatedAt = now
	transaction.UpdatedAt = now

	_, err := r.client.Collection("transactions").Doc(transaction.ID).Set(ctx, transaction)
	if err != nil {
		return errors.Internal("Failed to create transaction", err)
	}

	return nil
}

func (r *firestoreTransactionRepository) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	doc, err := r.client.Collection("transactions").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Transaction", nil)
		}
		return nil, errors.Internal("Failed to get transaction", err)
	}

	var transaction entity.Transaction
	if err := doc.DataTo(&transaction); err != nil {
		return nil, errors.Internal("Failed to parse transaction data", err)
	}

	return &transaction, nil
}

func (r *firestoreTransactionRepository) Update(ctx context.Context, transaction *entity.Transaction) error {
	transaction.UpdatedAt = time.Now()

	_, err := r.client.Collection("transactions").Doc(transaction.ID).Set(ctx, transaction)
	if err != nil {
		return errors.Internal("Failed to update transaction", err)
	}

	return nil
}

func (r *firestoreTransactionRepository) ListByUserID(ctx context.Context, userID string, role string, limit, offset int) ([]*entity.Transaction, int64, error) {
	// No role filter means both sides of the trade. A transaction never
	// has the same user on both sides, so the merge cannot duplicate.
	fields := []string{"buyerId", "sellerId"}
	switch role {
	case "buyer":
		fields = []string{"buyerId"}
	case "seller":
		fields = []string{"sellerId"}
	}

	var all []*entity.Transaction
	for _, field := range fields {
		query := r.client.Collection("transactions").Where(field, "==", userID).OrderBy("createdAt", firestore.Desc)

		docs, err := query.Documents(ctx).GetAll()
		if err != nil {
			log.Printf("Firestore error while fetching transactions for user %s: %v", userID, err)
			return nil, 0, errors.Internal("Failed to fetch transactions", err)
		}

		for _, doc := range docs {
			var transaction entity.Transaction
			if err := doc.DataTo(&transaction); err != nil {
				log.Printf("Error parsing transaction data for user %s: %v", userID, err)
				continue
			}
			all = append(all, &transaction)
		}
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))

	start := offset
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	return all[start:end], total, nil
}
