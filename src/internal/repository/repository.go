package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campus-wallet/src/internal/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrDuplicateWallet     = errors.New("more than one wallet found for user")
	ErrWalletLocked        = errors.New("wallet is locked")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrVersionConflict     = errors.New("wallet was modified concurrently")
	ErrSelfTransfer        = errors.New("cannot transfer to own wallet")
)

type WalletReader interface {
	FindByUserID(ctx context.Context, userID string) (*entity.Wallet, error)
}

type TransactionReader interface {
	// ListByUser returns at most limit transactions sent or received by userID, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]entity.Transaction, error)
	ListAllByUser(ctx context.Context, userID string) ([]entity.Transaction, error)
}

type LedgerWriter interface {
	// Append inserts the transaction and applies its balance effects atomically.
	Append(ctx context.Context, posting *entity.Posting) (*entity.PostingResult, error)
}

type postingPlan struct {
	transaction      entity.Transaction
	senderBalance    decimal.Decimal
	recipientBalance decimal.Decimal
	credit           bool
}

func newTransactionRef(id string) string {
	return "TXN-" + strings.ToUpper(strings.ReplaceAll(id, "-", "")[:12])
}

func planPosting(p *entity.Posting, sender entity.Wallet, recipient *entity.Wallet) (*postingPlan, error) {
	if sender.UserID != p.UserID {
		return nil, ErrWalletNotFound
	}
	if sender.IsLocked {
		return nil, ErrWalletLocked
	}

	plan := &postingPlan{
		senderBalance: sender.Balance.Add(entity.SenderDelta(p.TransactionType, p.Amount)),
	}
	if plan.senderBalance.IsNegative() {
		return nil, ErrInsufficientBalance
	}

	if recipient != nil {
		if recipient.ID == sender.ID {
			return nil, ErrSelfTransfer
		}
		if recipient.IsLocked {
			return nil, fmt.Errorf("recipient: %w", ErrWalletLocked)
		}
		plan.credit = true
		plan.recipientBalance = recipient.Balance.Add(p.Amount)
	}

	id := p.TransactionID
	if id == "" {
		id = uuid.NewString()
	}
	ref := p.TransactionRef
	if ref == "" {
		ref = newTransactionRef(id)
	}

	fromUser, fromWallet := p.UserID, sender.ID
	plan.transaction = entity.Transaction{
		ID:              id,
		TransactionRef:  ref,
		Amount:          p.Amount,
		TransactionType: p.TransactionType,
		Status:          entity.TransactionStatusCompleted,
		Description:     p.Description,
		FromUserID:      &fromUser,
		ToUserID:        p.ToUserID,
		FromWalletID:    &fromWallet,
	}
	if plan.credit {
		toWallet := recipient.ID
		plan.transaction.ToWalletID = &toWallet
	}
	return plan, nil
}
