package repository

import (
	"context"

	"campus-wallet/src/internal/entity"
	"campus-wallet/src/pkg/databases/mysql"

	"github.com/jmoiron/sqlx"
)

const transactionColumns = `id, transaction_ref, amount, transaction_type, status, description,
	from_user_id, to_user_id, from_wallet_id, to_wallet_id, created_at`

type TransactionRepository struct {
	DB mysql.DBInterface
}

func NewTransactionRepository(db mysql.DBInterface) *TransactionRepository {
	return &TransactionRepository{
		DB: db,
	}
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]entity.Transaction, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	transactions := []entity.Transaction{}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE from_user_id = ? OR to_user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	if err := db.SelectContext(ctx, &transactions, query, userID, userID, limit); err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *TransactionRepository) ListAllByUser(ctx context.Context, userID string) ([]entity.Transaction, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	transactions := []entity.Transaction{}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE from_user_id = ? OR to_user_id = ?
		ORDER BY created_at ASC, id ASC`

	if err := db.SelectContext(ctx, &transactions, query, userID, userID); err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *TransactionRepository) insert(ctx context.Context, tx *sqlx.Tx, t *entity.Transaction) (*entity.Transaction, error) {
	query := `
		INSERT INTO transactions
			(id, transaction_ref, amount, transaction_type, status, description,
			 from_user_id, to_user_id, from_wallet_id, to_wallet_id)
		VALUES
			(:id, :transaction_ref, :amount, :transaction_type, :status, :description,
			 :from_user_id, :to_user_id, :from_wallet_id, :to_wallet_id)`

	if _, err := tx.NamedExecContext(ctx, query, t); err != nil {
		return nil, err
	}

	var stored entity.Transaction
	if err := tx.GetContext(ctx, &stored, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, t.ID); err != nil {
		return nil, err
	}
	return &stored, nil
}
