package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ListTransactionsRequest struct {
	UserID string `json:"userId" validate:"required,max=100"`
	Limit  int    `json:"limit" validate:"min=0,max=100"`
}

type CreateTransactionRequest struct {
	UserID        string          `json:"-" validate:"required,max=100"`
	WalletID      string          `json:"walletId" validate:"required,max=36"`
	WalletVersion int64           `json:"walletVersion" validate:"min=0"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type" validate:"required,max=20,lowercase"`
	Description   string          `json:"description" validate:"max=255"`
	ToUserID      string          `json:"toUserId,omitempty" validate:"omitempty,max=100"`
}

type TransactionResponse struct {
	ID          string          `json:"id"`
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Direction   string          `json:"direction,omitempty"`
	Description string          `json:"description,omitempty"`
	FromUserID  string          `json:"fromUserId,omitempty"`
	ToUserID    string          `json:"toUserId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type CreateTransactionResponse struct {
	Transaction  TransactionResponse   `json:"transaction"`
	Wallet       WalletResponse        `json:"wallet"`
	Transactions []TransactionResponse `json:"transactions"`
}
