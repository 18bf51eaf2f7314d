package repository

import (
	"context"
	"errors"

	"campus-wallet/src/internal/entity"
	"campus-wallet/src/pkg/databases/mysql"

	"github.com/jmoiron/sqlx"
)

type LedgerRepository struct {
	DB           mysql.DBInterface
	Wallets      *WalletRepository
	Transactions *TransactionRepository
}

func NewLedgerRepository(db mysql.DBInterface, wallets *WalletRepository, transactions *TransactionRepository) *LedgerRepository {
	return &LedgerRepository{
		DB:           db,
		Wallets:      wallets,
		Transactions: transactions,
	}
}

func (r *LedgerRepository) Append(ctx context.Context, posting *entity.Posting) (*entity.PostingResult, error) {
	var result *entity.PostingResult

	err := r.DB.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		ids := []string{posting.WalletID}
		recipientID := ""
		if posting.TransactionType == entity.TransactionTypeTransfer && posting.ToUserID != nil {
			id, err := r.Wallets.findIDByUserID(ctx, tx, *posting.ToUserID)
			switch {
			case errors.Is(err, ErrWalletNotFound):
			case err != nil:
				return err
			default:
				recipientID = id
				if id != posting.WalletID {
					ids = append(ids, id)
				}
			}
		}

		locked, err := r.Wallets.lockByIDs(ctx, tx, ids...)
		if err != nil {
			return err
		}
		sender, ok := locked[posting.WalletID]
		if !ok {
			return ErrWalletNotFound
		}
		var recipient *entity.Wallet
		if recipientID != "" {
			w, ok := locked[recipientID]
			if !ok {
				return ErrWalletNotFound
			}
			recipient = &w
		}

		plan, err := planPosting(posting, sender, recipient)
		if err != nil {
			return err
		}

		stored, err := r.Transactions.insert(ctx, tx, &plan.transaction)
		if err != nil {
			return err
		}

		if err := r.Wallets.updateBalance(ctx, tx, sender.ID, plan.senderBalance, sender.Version); err != nil {
			return err
		}
		result = &entity.PostingResult{
			Transaction:   *stored,
			Wallet:        sender,
			StaleSnapshot: posting.SnapshotVersion != sender.Version,
		}
		result.Wallet.Balance = plan.senderBalance
		result.Wallet.Version = sender.Version + 1

		if plan.credit {
			if err := r.Wallets.updateBalance(ctx, tx, recipient.ID, plan.recipientBalance, recipient.Version); err != nil {
				return err
			}
			credited := *recipient
			credited.Balance = plan.recipientBalance
			credited.Version = recipient.Version + 1
			result.Recipient = &credited
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
