package handler

import (
	"tradepost/internal/usecase"
)

var (
	chatHandler        *ChatHandler
	transactionHandler *TransactionHandler
	paymentHandler     *PaymentHandler
)

func Setup(
	chatUseCase *usecase.ChatUseCase,
	transactionUseCase *usecase.TransactionUseCase,
	paymentUseCase *usecase.PaymentUseCase,
) {
	chatHandler = NewChatHandler(chatUseCase)
	transactionHandler = NewTransactionHandler(transactionUseCase)
	paymentHandler = NewPaymentHandler(paymentUseCase)
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}

func GetTransactionHandler() *TransactionHandler {
	return transactionHandler
}

func GetPaymentHandler() *PaymentHandler {
	return paymentHandler
}
