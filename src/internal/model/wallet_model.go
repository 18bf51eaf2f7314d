package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session identifies the authenticated caller of every wallet operation.
type Session struct {
	UserID   string `json:"userId" validate:"required,max=100"`
	FullName string `json:"fullName,omitempty"`
}

type WalletResponse struct {
	ID        string          `json:"id"`
	WalletID  string          `json:"walletId"`
	Balance   decimal.Decimal `json:"balance"`
	IsLocked  bool            `json:"isLocked"`
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type ReconcileResponse struct {
	WalletID         string          `json:"walletId"`
	UserID           string          `json:"userId"`
	StoredBalance    decimal.Decimal `json:"storedBalance"`
	LedgerBalance    decimal.Decimal `json:"ledgerBalance"`
	Difference       decimal.Decimal `json:"difference"`
	TransactionCount int             `json:"transactionCount"`
	Consistent       bool            `json:"consistent"`
}
