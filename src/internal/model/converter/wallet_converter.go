package converter

import (
	"campus-wallet/src/internal/entity"
	"campus-wallet/src/internal/model"

	"github.com/google/uuid"
)

func WalletToResponse(wallet *entity.Wallet) *model.WalletResponse {
	return &model.WalletResponse{
		ID:        wallet.ID,
		WalletID:  wallet.WalletID,
		Balance:   wallet.Balance,
		IsLocked:  wallet.IsLocked,
		Version:   wallet.Version,
		UpdatedAt: wallet.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func TransactionToResponse(t *entity.Transaction, viewerID string) *model.TransactionResponse {
	return &model.TransactionResponse{
		ID:          t.ID,
		Reference:   t.TransactionRef,
		Amount:      t.Amount,
		Type:        t.TransactionType,
		Status:      t.Status,
		Direction:   t.Direction(viewerID),
		Description: deref(t.Description),
		FromUserID:  deref(t.FromUserID),
		ToUserID:    deref(t.ToUserID),
		CreatedAt:   t.CreatedAt,
	}
}

func TransactionsToResponse(transactions []entity.Transaction, viewerID string) []model.TransactionResponse {
	out := make([]model.TransactionResponse, 0, len(transactions))
	for i := range transactions {
		out = append(out, *TransactionToResponse(&transactions[i], viewerID))
	}
	return out
}

func PostingToEvent(result *entity.PostingResult) *model.TransactionEvent {
	return &model.TransactionEvent{
		EventID:        uuid.NewString(),
		TransactionID:  result.Transaction.ID,
		TransactionRef: result.Transaction.TransactionRef,
		Type:           result.Transaction.TransactionType,
		Amount:         result.Transaction.Amount,
		FromUserID:     deref(result.Transaction.FromUserID),
		ToUserID:       deref(result.Transaction.ToUserID),
		WalletID:       result.Wallet.WalletID,
		Balance:        result.Wallet.Balance,
		OccurredAt:     result.Transaction.CreatedAt,
	}
}
