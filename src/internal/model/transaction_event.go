package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Event interface {
	GetId() string
}

type TransactionEvent struct {
	EventID        string          `json:"event_id"`
	TransactionID  string          `json:"transaction_id"`
	TransactionRef string          `json:"transaction_ref"`
	Type           string          `json:"transaction_type"`
	Amount         decimal.Decimal `json:"amount"`
	FromUserID     string          `json:"from_user_id"`
	ToUserID       string          `json:"to_user_id,omitempty"`
	WalletID       string          `json:"wallet_id"`
	Balance        decimal.Decimal `json:"balance"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

func (e *TransactionEvent) GetId() string {
	return e.EventID
}
