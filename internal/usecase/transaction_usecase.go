package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
	"tradepost/internal/infrastructure/notification"
	"tradepost/pkg/errors"
)

type TransactionUseCase struct {
	transactionRepo repository.TransactionRepository
	productRepo     repository.ProductRepository
	userRepo        repository.UserRepository
	chatUseCase     *ChatUseCase
	publisher       notification.Publisher
}

func NewTransactionUseCase(
	transactionRepo repository.TransactionRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	chatUseCase *ChatUseCase,
	publisher notification.Publisher,
) *TransactionUseCase {
	return &TransactionUseCase{
		transactionRepo: transactionRepo,
		productRepo:     productRepo,
		userRepo:        userRepo,
		chatUseCase:     chatUseCase,
		publisher:       publisher,
	}
}

type CreateTransactionInput struct {
	ProductID     string `json:"product_id" validate:"required"`
	DepositorName string `json:"depositor_name,omitempty"`
}

// CreateTransaction opens a PENDING purchase attempt. The product is not
// reserved; multiple buyers may hold PENDING transactions on the same
// product until one of them settles.
func (uc *TransactionUseCase) CreateTransaction(ctx context.Context, buyerID string, input CreateTransactionInput) (*entity.Transaction, error) {
	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	if product.SellerID == buyerID {
		return nil, errors.BadRequest("Cannot buy your own product", nil)
	}
	if product.Status == entity.ProductStatusSoldOut {
		return nil, errors.InvalidState("Product is already sold out", nil)
	}

	now := time.Now()
	transaction := &entity.Transaction{
		ID:            uuid.New().String(),
		ProductID:     product.ID,
		BuyerID:       buyerID,
		SellerID:      product.SellerID,
		DepositorName: input.DepositorName,
		Status:        entity.TransactionStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.transactionRepo.Create(ctx, transaction); err != nil {
		return nil, err
	}

	log.Printf("CreateTransaction: transaction %s created (product %s, buyer %s)", transaction.ID, product.ID, buyerID)
	uc.publisher.Publish(ctx, notification.RoutingKeyTransactionCreated, notification.Event{
		Type:          "transaction.created",
		RecipientID:   product.SellerID,
		ProductID:     product.ID,
		TransactionID: transaction.ID,
	})

	return transaction, nil
}

// GetTransaction is readable by its two parties only.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, userID, id string) (*entity.Transaction, error) {
	transaction, err := uc.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if userID != transaction.BuyerID && userID != transaction.SellerID {
		return nil, errors.Forbidden("Not a party of this transaction", nil)
	}
	return transaction, nil
}

func (uc *TransactionUseCase) ListTransactions(ctx context.Context, userID, role string, limit, offset int) ([]*entity.Transaction, int64, error) {
	return uc.transactionRepo.ListByUserID(ctx, userID, role, limit, offset)
}

// CompleteTransaction settles a PENDING transaction. Seller-only. Marks
// the product SOLD_OUT and notifies the buyer best-effort.
func (uc *TransactionUseCase) CompleteTransaction(ctx context.Context, userID, id string) (*entity.Transaction, error) {
	transaction, err := uc.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if userID != transaction.SellerID {
		return nil, errors.Forbidden("Only the seller can complete this transaction", nil)
	}
	if transaction.IsTerminal() {
		return nil, errors.InvalidState(fmt.Sprintf("Transaction is already %s", transaction.Status), nil)
	}

	now := time.Now()
	transaction.Status = entity.TransactionStatusCompleted
	transaction.TransactionDate = &now
	transaction.UpdatedAt = now

	if err := uc.transactionRepo.Update(ctx, transaction); err != nil {
		return nil, err
	}
	if err := uc.productRepo.UpdateStatus(ctx, transaction.ProductID, entity.ProductStatusSoldOut); err != nil {
		return nil, err
	}

	log.Printf("CompleteTransaction: transaction %s completed by seller %s", transaction.ID, userID)
	uc.notifySettled(ctx, transaction)

	return transaction, nil
}

// CancelTransaction aborts a PENDING transaction. Buyer-only. Reverts the
// product to SALE.
func (uc *TransactionUseCase) CancelTransaction(ctx context.Context, userID, id string) (*entity.Transaction, error) {
	transaction, err := uc.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if userID != transaction.BuyerID {
		return nil, errors.Forbidden("Only the buyer can cancel this transaction", nil)
	}
	if transaction.IsTerminal() {
		return nil, errors.InvalidState(fmt.Sprintf("Transaction is already %s", transaction.Status), nil)
	}

	transaction.Status = entity.TransactionStatusCancelled
	transaction.UpdatedAt = time.Now()

	if err := uc.transactionRepo.Update(ctx, transaction); err != nil {
		return nil, err
	}
	if err := uc.productRepo.UpdateStatus(ctx, transaction.ProductID, entity.ProductStatusSale); err != nil {
		return nil, err
	}

	log.Printf("CancelTransaction: transaction %s cancelled by buyer %s", transaction.ID, userID)
	uc.publisher.Publish(ctx, notification.RoutingKeyTransactionCancelled, notification.Event{
		Type:          "transaction.cancelled",
		RecipientID:   transaction.SellerID,
		ProductID:     transaction.ProductID,
		TransactionID: transaction.ID,
	})

	return transaction, nil
}

type UpdateDepositorInput struct {
	DepositorName string `json:"depositor_name" validate:"required"`
}

// UpdateDepositor corrects the bank-transfer depositor name. Any
// authenticated caller may invoke it; the identity of the depositor is
// not ours to verify.
func (uc *TransactionUseCase) UpdateDepositor(ctx context.Context, id string, input UpdateDepositorInput) (*entity.Transaction, error) {
	transaction, err := uc.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	transaction.DepositorName = input.DepositorName
	transaction.UpdatedAt = time.Now()

	if err := uc.transactionRepo.Update(ctx, transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

// notifySettled fans out the completion: AMQP event for push consumers
// and a SYSTEM line in the chat room when the pair has one. Both are
// best-effort.
func (uc *TransactionUseCase) notifySettled(ctx context.Context, transaction *entity.Transaction) {
	uc.publisher.Publish(ctx, notification.RoutingKeyTransactionCompleted, notification.Event{
		Type:          "transaction.completed",
		RecipientID:   transaction.BuyerID,
		ProductID:     transaction.ProductID,
		TransactionID: transaction.ID,
	})

	if uc.chatUseCase == nil {
		return
	}
	err := uc.chatUseCase.PostSystemMessage(ctx, transaction.ProductID, transaction.BuyerID,
		"The transaction for this product has been completed.")
	if err != nil && !errors.Is(err, "NOT_FOUND") {
		log.Printf("CompleteTransaction: system message failed for transaction %s: %v", transaction.ID, err)
	}
}
