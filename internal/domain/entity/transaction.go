package entity

import "time"

// Transaction status values. PENDING is the only non-terminal state.
const (
	TransactionStatusPending   = "PENDING"
	TransactionStatusCompleted = "COMPLETED"
	TransactionStatusCancelled = "CANCELLED"
)

// Transaction is one purchase attempt on a product and its settlement
// state. Tid and PaymentMethodType stay empty until the payment provider
// has prepared respectively approved the payment.
type Transaction struct {
	ID        string `json:"id" firestore:"id"`
	ProductID string `json:"product_id" firestore:"productId"`
	BuyerID   string `json:"buyer_id" firestore:"buyerId"`
	SellerID  string `json:"seller_id" firestore:"sellerId"`

	DepositorName     string `json:"depositor_name,omitempty" firestore:"depositorName,omitempty"`
	Status            string `json:"status" firestore:"status"`
	Tid               string `json:"tid,omitempty" firestore:"tid,omitempty"`
	PaymentMethodType string `json:"payment_method_type,omitempty" firestore:"paymentMethodType,omitempty"`

	TransactionDate *time.Time `json:"transaction_date,omitempty" firestore:"transactionDate,omitempty"`
	CreatedAt       time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt       time.Time  `json:"updated_at" firestore:"updatedAt"`
}

// IsTerminal reports whether no further status transition is allowed.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusCompleted || t.Status == TransactionStatusCancelled
}
