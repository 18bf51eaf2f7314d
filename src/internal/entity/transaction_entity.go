package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionTypeTopup    = "topup"
	TransactionTypePayment  = "payment"
	TransactionTypeTransfer = "transfer"

	TransactionStatusCompleted = "completed"

	DirectionIn  = "in"
	DirectionOut = "out"
)

type Transaction struct {
	ID              string          `json:"id" db:"id"`
	TransactionRef  string          `json:"transaction_ref" db:"transaction_ref"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	TransactionType string          `json:"transaction_type" db:"transaction_type"`
	Status          string          `json:"status" db:"status"`
	Description     *string         `json:"description,omitempty" db:"description"`
	FromUserID      *string         `json:"from_user_id,omitempty" db:"from_user_id"`
	ToUserID        *string         `json:"to_user_id,omitempty" db:"to_user_id"`
	FromWalletID    *string         `json:"from_wallet_id,omitempty" db:"from_wallet_id"`
	ToWalletID      *string         `json:"to_wallet_id,omitempty" db:"to_wallet_id"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

func (t Transaction) sentBy(userID string) bool {
	return t.FromUserID != nil && *t.FromUserID == userID
}

func (t Transaction) receivedBy(userID string) bool {
	return t.ToUserID != nil && *t.ToUserID == userID
}

// Direction reports how the transaction looks from userID's side; empty for unknown types.
func (t Transaction) Direction(userID string) string {
	switch t.TransactionType {
	case TransactionTypeTopup:
		return DirectionIn
	case TransactionTypePayment, TransactionTypeTransfer:
		if t.receivedBy(userID) && !t.sentBy(userID) {
			return DirectionIn
		}
		return DirectionOut
	}
	return ""
}

// BalanceEffect is the signed change this transaction made to userID's wallet.
func (t Transaction) BalanceEffect(userID string) decimal.Decimal {
	effect := decimal.Zero
	if t.sentBy(userID) {
		effect = effect.Add(SenderDelta(t.TransactionType, t.Amount))
	}
	if t.TransactionType == TransactionTypeTransfer && t.receivedBy(userID) && t.ToWalletID != nil {
		effect = effect.Add(t.Amount)
	}
	return effect
}

// SenderDelta is the change applied to the sending wallet for a transaction type.
func SenderDelta(transactionType string, amount decimal.Decimal) decimal.Decimal {
	switch transactionType {
	case TransactionTypeTopup:
		return amount
	case TransactionTypePayment, TransactionTypeTransfer:
		return amount.Neg()
	}
	return decimal.Zero
}

// Posting is one ledger append: a transaction row plus its balance side effects.
type Posting struct {
	TransactionID   string
	TransactionRef  string
	UserID          string
	WalletID        string
	SnapshotVersion int64
	Amount          decimal.Decimal
	TransactionType string
	Description     *string
	ToUserID        *string
}

type PostingResult struct {
	Transaction Transaction
	Wallet      Wallet
	Recipient   *Wallet
	// StaleSnapshot is set when the caller's wallet version differed from the stored row.
	StaleSnapshot bool
}
