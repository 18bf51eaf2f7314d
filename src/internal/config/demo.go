package config

import (
	"fmt"
	"time"

	"campus-wallet/src/internal/entity"
	"campus-wallet/src/internal/repository"
	"campus-wallet/src/pkg/log"
	"campus-wallet/src/pkg/token"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// NewDemoRepository seeds an in-memory ledger with one wallet and logs a bearer token for its owner.
func NewDemoRepository(viper *viper.Viper, log log.Log) *repository.MemoryRepository {
	userID := viper.GetString("demo.user_id")
	if userID == "" {
		userID = "demo-user"
	}
	balance, err := decimal.NewFromString(viper.GetString("demo.balance"))
	if err != nil {
		balance = decimal.Zero
	}

	now := time.Now().UTC()
	walletID := uuid.NewString()
	memory := repository.NewMemoryRepository()
	memory.SeedWallet(entity.Wallet{
		ID:        walletID,
		WalletID:  "CW-DEMO-0001",
		UserID:    userID,
		Balance:   balance,
		CreatedAt: now,
		UpdatedAt: now,
	})
	// opening balance is recorded as a topup so the ledger reconciles
	if balance.IsPositive() {
		description := "opening balance"
		memory.SeedTransaction(entity.Transaction{
			ID:              uuid.NewString(),
			TransactionRef:  "TXN-OPENING",
			Amount:          balance,
			TransactionType: entity.TransactionTypeTopup,
			Status:          entity.TransactionStatusCompleted,
			Description:     &description,
			FromUserID:      &userID,
			FromWalletID:    &walletID,
			CreatedAt:       now,
		})
	}

	bearer, err := token.Generate(viper.GetString("jwt.secret"), viper.GetString("jwt.issuer"), token.Metadata{UserID: userID, FullName: "Demo Student"}, time.Hour)
	if err != nil {
		log.Error("demo", err.Error(), "NewDemoRepository", userID)
		return memory
	}
	log.Info("demo", "running on in-memory ledger", "NewDemoRepository", fmt.Sprintf("user=%s token=%s", userID, bearer))
	return memory
}
