package repository

import (
	"context"

	"campus-wallet/src/internal/entity"
	"campus-wallet/src/pkg/databases/mysql"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const walletColumns = `id, wallet_id, user_id, balance, is_locked, version, created_at, updated_at`

type WalletRepository struct {
	DB mysql.DBInterface
}

func NewWalletRepository(db mysql.DBInterface) *WalletRepository {
	return &WalletRepository{
		DB: db,
	}
}

func (r *WalletRepository) FindByUserID(ctx context.Context, userID string) (*entity.Wallet, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var wallets []entity.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = ? LIMIT 2`
	if err := db.SelectContext(ctx, &wallets, query, userID); err != nil {
		return nil, err
	}

	switch len(wallets) {
	case 0:
		return nil, ErrWalletNotFound
	case 1:
		return &wallets[0], nil
	default:
		return nil, ErrDuplicateWallet
	}
}

func (r *WalletRepository) findIDByUserID(ctx context.Context, tx *sqlx.Tx, userID string) (string, error) {
	var ids []string
	if err := tx.SelectContext(ctx, &ids, `SELECT id FROM wallets WHERE user_id = ? LIMIT 2`, userID); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", ErrWalletNotFound
	case 1:
		return ids[0], nil
	default:
		return "", ErrDuplicateWallet
	}
}

// lockByIDs takes row locks in primary key order so concurrent transfers cannot deadlock.
func (r *WalletRepository) lockByIDs(ctx context.Context, tx *sqlx.Tx, ids ...string) (map[string]entity.Wallet, error) {
	query, args, err := sqlx.In(`SELECT `+walletColumns+` FROM wallets WHERE id IN (?) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}

	var wallets []entity.Wallet
	if err := tx.SelectContext(ctx, &wallets, tx.Rebind(query), args...); err != nil {
		return nil, err
	}

	locked := make(map[string]entity.Wallet, len(wallets))
	for _, w := range wallets {
		locked[w.ID] = w
	}
	return locked, nil
}

func (r *WalletRepository) updateBalance(ctx context.Context, tx *sqlx.Tx, id string, balance decimal.Decimal, version int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP(6) WHERE id = ? AND version = ?`,
		balance, id, version)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	return nil
}
