package service

import (
	"context"
	"time"
)

// PaymentReadyRequest prepares a payment with the provider. OrderID is the
// transaction ID on our side; the provider echoes it back on callbacks.
type PaymentReadyRequest struct {
	OrderID     string
	UserID      string
	ItemName    string
	Amount      float64
	ApprovalURL string
	CancelURL   string
	FailURL     string
}

// PaymentReadyResponse carries the provider's opaque transaction token and
// the redirect targets the buyer is sent to.
type PaymentReadyResponse struct {
	Tid               string
	RedirectPCURL     string
	RedirectMobileURL string
	RedirectAppURL    string
}

type PaymentApproveRequest struct {
	Tid     string
	OrderID string
	UserID  string
	PgToken string
}

type PaymentApproveResponse struct {
	Aid               string
	Tid               string
	PaymentMethodType string
	ApprovedAt        time.Time
}

// PaymentGateway is the two-phase (ready -> approve) provider protocol.
type PaymentGateway interface {
	Ready(ctx context.Context, req PaymentReadyRequest) (*PaymentReadyResponse, error)
	Approve(ctx context.Context, req PaymentApproveRequest) (*PaymentApproveResponse, error)
}
