package usecase

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
	"tradepost/internal/domain/service"
	"tradepost/internal/infrastructure/notification"
	"tradepost/pkg/errors"
)

type PaymentUseCase struct {
	transactionRepo repository.TransactionRepository
	productRepo     repository.ProductRepository
	gateway         service.PaymentGateway
	chatUseCase     *ChatUseCase
	publisher       notification.Publisher
	baseURL         string
}

func NewPaymentUseCase(
	transactionRepo repository.TransactionRepository,
	productRepo repository.ProductRepository,
	gateway service.PaymentGateway,
	chatUseCase *ChatUseCase,
	publisher notification.Publisher,
	baseURL string,
) *PaymentUseCase {
	return &PaymentUseCase{
		transactionRepo: transactionRepo,
		productRepo:     productRepo,
		gateway:         gateway,
		chatUseCase:     chatUseCase,
		publisher:       publisher,
		baseURL:         baseURL,
	}
}

// Ready runs phase one of the provider protocol for a PENDING
// transaction: registers the intent upstream, stores the returned tid and
// hands the redirect URLs back to the buyer.
func (uc *PaymentUseCase) Ready(ctx context.Context, buyerID, transactionID string) (*service.PaymentReadyResponse, error) {
	transaction, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if buyerID != transaction.BuyerID {
		return nil, errors.Forbidden("Only the buyer can pay for this transaction", nil)
	}
	if transaction.IsTerminal() {
		return nil, errors.InvalidState(fmt.Sprintf("Transaction is already %s", transaction.Status), nil)
	}

	product, err := uc.productRepo.GetByID(ctx, transaction.ProductID)
	if err != nil {
		return nil, err
	}

	ready, err := uc.gateway.Ready(ctx, service.PaymentReadyRequest{
		OrderID:     transaction.ID,
		UserID:      buyerID,
		ItemName:    product.Title,
		Amount:      product.Price,
		ApprovalURL: uc.callbackURL("success", transaction.ID),
		CancelURL:   uc.callbackURL("cancel", transaction.ID),
		FailURL:     uc.callbackURL("fail", transaction.ID),
	})
	if err != nil {
		return nil, err
	}

	transaction.Tid = ready.Tid
	transaction.UpdatedAt = time.Now()
	if err := uc.transactionRepo.Update(ctx, transaction); err != nil {
		return nil, err
	}

	log.Printf("PaymentReady: tid stored for transaction %s", transaction.ID)
	return ready, nil
}

// Approve runs phase two after the buyer returns from the provider with a
// pg_token. Requires a tid from a prior Ready; drives the transaction to
// COMPLETED with the sold-out side effect.
func (uc *PaymentUseCase) Approve(ctx context.Context, transactionID, pgToken string) (*entity.Transaction, error) {
	transaction, err := uc.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if transaction.Tid == "" {
		return nil, errors.InvalidState("Payment has not been prepared for this transaction", nil)
	}
	if transaction.IsTerminal() {
		return nil, errors.InvalidState(fmt.Sprintf("Transaction is already %s", transaction.Status), nil)
	}

	approved, err := uc.gateway.Approve(ctx, service.PaymentApproveRequest{
		Tid:     transaction.Tid,
		OrderID: transaction.ID,
		UserID:  transaction.BuyerID,
		PgToken: pgToken,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	transaction.Status = entity.TransactionStatusCompleted
	transaction.PaymentMethodType = approved.PaymentMethodType
	if !approved.ApprovedAt.IsZero() {
		transaction.TransactionDate = &approved.ApprovedAt
	} else {
		transaction.TransactionDate = &now
	}
	transaction.UpdatedAt = now

	if err := uc.transactionRepo.Update(ctx, transaction); err != nil {
		return nil, err
	}
	if err := uc.productRepo.UpdateStatus(ctx, transaction.ProductID, entity.ProductStatusSoldOut); err != nil {
		return nil, err
	}

	log.Printf("PaymentApprove: transaction %s paid via %s", transaction.ID, approved.PaymentMethodType)
	uc.publisher.Publish(ctx, notification.RoutingKeyPaymentApproved, notification.Event{
		Type:          "payment.approved",
		RecipientID:   transaction.SellerID,
		ProductID:     transaction.ProductID,
		TransactionID: transaction.ID,
		Payload:       map[string]interface{}{"payment_method_type": approved.PaymentMethodType},
	})

	if uc.chatUseCase != nil {
		err := uc.chatUseCase.PostSystemMessage(ctx, transaction.ProductID, transaction.BuyerID,
			"Payment for this product has been completed.")
		if err != nil && !errors.Is(err, "NOT_FOUND") {
			log.Printf("PaymentApprove: system message failed for transaction %s: %v", transaction.ID, err)
		}
	}

	return transaction, nil
}

func (uc *PaymentUseCase) callbackURL(kind, transactionID string) string {
	return fmt.Sprintf("%s/v1/payments/%s?transaction_id=%s", uc.baseURL, kind, url.QueryEscape(transactionID))
}
