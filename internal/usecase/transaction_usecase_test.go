package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradepost/internal/domain/entity"
	ws "tradepost/internal/infrastructure/websocket"
	"tradepost/pkg/errors"
)

func newTransactionFixture(t *testing.T) (*TransactionUseCase, *ChatUseCase, *fakeTransactionRepo, *fakeProductRepo, *fakePublisher) {
	t.Helper()

	chatRepo := newFakeChatRepo()
	productRepo := newFakeProductRepo(
		&entity.Product{ID: "prod-1", SellerID: "seller", Title: "Road bike", Price: 150000, Status: entity.ProductStatusSale},
	)
	userRepo := newFakeUserRepo("seller", "buyer", "other")
	transactionRepo := newFakeTransactionRepo()
	publisher := &fakePublisher{}

	chatUc := NewChatUseCase(chatRepo, userRepo, productRepo, ws.NewManager(), publisher)
	uc := NewTransactionUseCase(transactionRepo, productRepo, userRepo, chatUc, publisher)
	return uc, chatUc, transactionRepo, productRepo, publisher
}

func TestCreateTransactionStartsPending(t *testing.T) {
	uc, _, _, productRepo, publisher := newTransactionFixture(t)
	ctx := context.Background()

	transaction, err := uc.CreateTransaction(ctx, "buyer", CreateTransactionInput{ProductID: "prod-1"})
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusPending, transaction.Status)
	assert.Equal(t, "seller", transaction.SellerID)
	assert.Nil(t, transaction.TransactionDate)

	// Opening a purchase does not reserve the product.
	product, err := productRepo.GetByID(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ProductStatusSale, product.Status)

	assert.Len(t, publisher.byType("transaction.created"), 1)
}

func TestCreateTransactionRejectsOwnProduct(t *testing.T) {
	uc, _, _, _, _ := newTransactionFixture(t)

	_, err := uc.CreateTransaction(context.Background(), "seller", CreateTransactionInput{ProductID: "prod-1"})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestCreateTransactionRejectsSoldOutProduct(t *testing.T) {
	uc, _, _, productRepo, _ := newTransactionFixture(t)
	ctx := context.Background()

	require.NoError(t, productRepo.UpdateStatus(ctx, "prod-1", entity.ProductStatusSoldOut))

	_, err := uc.CreateTransaction(ctx, "buyer", CreateTransactionInput{ProductID: "prod-1"})
	assert.True(t, errors.Is(err, "INVALID_STATE"))
}

func TestCompleteTransactionSellerOnly(t *testing.T) {
	uc, chatUc, _, productRepo, publisher := newTransactionFixture(t)
	ctx := context.Background()

	// With an open chat room the settlement shows up in the timeline.
	room, err := chatUc.CreateOrGetRoom(ctx, "buyer", "prod-1")
	require.NoError(t, err)

	transaction, err := uc.CreateTransaction(ctx, "buyer", CreateTransactionInput{ProductID: "prod-1"})
	require.NoError(t, err)

	_, err = uc.CompleteTransaction(ctx, "buyer", transaction.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	completed, err := uc.CompleteTransaction(ctx, "seller", transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusCompleted, completed.Status)
	require.NotNil(t, completed.TransactionDate)

	product, err := productRepo.GetByID(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ProductStatusSoldOut, product.Status)

	assert.Len(t, publisher.byType("transaction.completed"), 1)

	messages, _, err := chatUc.GetRoomMessages(ctx, "buyer", room.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, entity.MessageTypeSystem, messages[0].Type)
}

func TestCancelTransactionBuyerOnly(t *testing.T) {
	uc, _, _, productRepo, publisher := newTransactionFixture(t)
	ctx := context.Background()

	transaction, err := uc.CreateTransaction(ctx, "buyer", CreateTransactionInput{ProductID: "prod-1"})
	require.NoError(t, err)

	_, err = uc.CancelTransaction(ctx, "seller", transaction.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	cancelled, err := uc.CancelTransaction(ctx, "buyer", transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusCancelled, cancelled.Status)

	product, err := productRepo.GetByID(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ProductStatusSale, product.Status)

	assert.Len(t, publisher.byType("transaction.cancelled"), 1)
}

func TestTerminalStatesAreClosed(t *testing.T) {
	uc, _, _, _, _ := newTransactionFixture(t)
	ctx := context.Background()

	transaction, err := uc.CreateTransaction(ctx, "buyer", CreateTransactionInput{ProductID: "prod-1"})
	require.NoError(t, err)

	_, err = uc.CompleteTransaction(ctx, "seller", transaction.ID)
	require.NoError(t, err)

	_, err = uc.CompleteTransaction(ctx, "seller", transaction.ID)
	assert.True(t, errors.Is(err, "INVALID_STATE"))

	_, err = uc.CancelTransaction(ctx, "buyer", transaction.ID)
	assert.True(t, errors.Is(err, "INVALID_STATE"))
}

func TestGetTransactionPartyOnly(t *testing.T) {
	uc, _, _, _, _ := newTransactionFixture(t)
	ctx := context.Background()

	transaction, err := uc.CreateTransaction(ctx, "buyer", CreateTransactionInput{ProductID: "prod-1"})
	require.NoError(t, err)

	_, err = uc.GetTransaction(ctx, "buyer", transaction.ID)
	assert.NoError(t, err)
	_, err = uc.GetTransaction(ctx, "seller", transaction.ID)
	assert.NoError(t, err)

	_, err = uc.GetTransaction(ctx, "other", transaction.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = uc.GetTransaction(ctx, "buyer", "missing")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestUpdateDepositor(t *testing.T) {
	uc, _, _, _, _ := newTransactionFixture(t)
	ctx := context.Background()

	transaction, err := uc.CreateTransaction(ctx, "buyer", CreateTransactionInput{ProductID: "prod-1"})
	require.NoError(t, err)

	updated, err := uc.UpdateDepositor(ctx, transaction.ID, UpdateDepositorInput{DepositorName: "Kim Cheolsu"})
	require.NoError(t, err)
	assert.Equal(t, "Kim Cheolsu", updated.DepositorName)

	fetched, err := uc.GetTransaction(ctx, "buyer", transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kim Cheolsu", fetched.DepositorName)
}

func TestListTransactionsCoversBothRoles(t *testing.T) {
	uc, _, transactionRepo, _, _ := newTransactionFixture(t)
	ctx := context.Background()

	require.NoError(t, transactionRepo.Create(ctx, &entity.Transaction{
		ID: "tx-sale", ProductID: "prod-1", SellerID: "seller", BuyerID: "buyer",
		Status: entity.TransactionStatusPending,
	}))
	require.NoError(t, transactionRepo.Create(ctx, &entity.Transaction{
		ID: "tx-purchase", ProductID: "prod-9", SellerID: "other", BuyerID: "seller",
		Status: entity.TransactionStatusPending,
	}))

	// Without a role filter the user sees trades from both sides.
	all, total, err := uc.ListTransactions(ctx, "seller", "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	asSeller, _, err := uc.ListTransactions(ctx, "seller", "seller", 10, 0)
	require.NoError(t, err)
	require.Len(t, asSeller, 1)
	assert.Equal(t, "tx-sale", asSeller[0].ID)

	asBuyer, _, err := uc.ListTransactions(ctx, "seller", "buyer", 10, 0)
	require.NoError(t, err)
	require.Len(t, asBuyer, 1)
	assert.Equal(t, "tx-purchase", asBuyer[0].ID)
}
