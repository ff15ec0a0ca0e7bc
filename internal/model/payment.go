package model

import "time"

// Payment methods accepted by the simulated gateway.
const (
	PaymentCard       = "card"
	PaymentUPI        = "upi"
	PaymentNetbanking = "netbanking"
	PaymentWallet     = "wallet"
)

// Payment outcomes.
const (
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Payment records one simulated charge. Details carries the
// method-specific responder data (card brand, VPA, bank...).
type Payment struct {
	ID            string            `json:"paymentId"`
	UserID        string            `json:"userId"`
	Plan          string            `json:"plan,omitempty"`
	Amount        int64             `json:"amount"`
	Currency      string            `json:"currency"`
	Method        string            `json:"method"`
	Status        string            `json:"status"`
	TransactionID string            `json:"transactionId,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
	CreatedAt     time.Time         `json:"timestamp"`
}

// CustomerInfo identifies the payer.
type CustomerInfo struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}
