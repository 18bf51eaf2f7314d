package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus-wallet/src/internal/entity"
	"campus-wallet/src/internal/model"
	"campus-wallet/src/internal/model/converter"
	"campus-wallet/src/internal/repository"
	httpError "campus-wallet/src/pkg/http-error"
	"campus-wallet/src/pkg/log"
	"campus-wallet/src/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultListLimit = 10
	maxListLimit     = 100
)

type TransactionCache interface {
	// Get also returns the generation to hand back to Set after a miss.
	Get(ctx context.Context, userID string, limit int) ([]entity.Transaction, int64, bool)
	Set(ctx context.Context, userID string, limit int, generation int64, transactions []entity.Transaction)
	Invalidate(ctx context.Context, userIDs ...string) error
}

type TransactionPublisher interface {
	SendTransactionCompleted(event *model.TransactionEvent) error
}

// WalletUseCase is the only component that reads wallets and appends to the transaction ledger.
type WalletUseCase struct {
	Log                   log.Log
	Validate              *validator.Validate
	WalletRepository      repository.WalletReader
	TransactionRepository repository.TransactionReader
	LedgerRepository      repository.LedgerWriter
	Cache                 TransactionCache
	Producer              TransactionPublisher
	Timeout               time.Duration
	DefaultLimit          int
}

func NewWalletUseCase(
	logger log.Log,
	validate *validator.Validate,
	walletRepository repository.WalletReader,
	transactionRepository repository.TransactionReader,
	ledgerRepository repository.LedgerWriter,
	cache TransactionCache,
	producer TransactionPublisher,
	cfg *viper.Viper,
) *WalletUseCase {
	timeout := cfg.GetDuration("app.timeout")
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := cfg.GetInt("ledger.list.limit")
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}

	return &WalletUseCase{
		Log:                   logger,
		Validate:              validate,
		WalletRepository:      walletRepository,
		TransactionRepository: transactionRepository,
		LedgerRepository:      ledgerRepository,
		Cache:                 cache,
		Producer:              producer,
		Timeout:               timeout,
		DefaultLimit:          limit,
	}
}

func (c *WalletUseCase) badRequest(scope, message, meta string) error {
	errObj := httpError.NewBadRequest()
	errObj.Message = message
	c.Log.Error("wallet-usecase", message, scope, meta)
	return errObj
}

// storeError logs the underlying failure and hides it behind a generic message.
func (c *WalletUseCase) storeError(scope, message string, err error, meta string) error {
	c.Log.Error("wallet-usecase", fmt.Sprintf("%s: %v", message, err), scope, meta)
	errObj := httpError.NewInternalServerError()
	errObj.Message = message
	return errObj
}

func (c *WalletUseCase) GetWallet(ctx context.Context, session model.Session) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(session); err != nil {
		result.Error = c.badRequest("GetWallet", fmt.Sprintf("validation error: %v", err.Error()), utils.ConvertString(session))
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	wallet, err := c.WalletRepository.FindByUserID(ctx, session.UserID)
	switch {
	case errors.Is(err, repository.ErrWalletNotFound):
		errObj := httpError.NewNotFound()
		errObj.Message = fmt.Sprintf("wallet for user %s not found", session.UserID)
		result.Error = errObj
		c.Log.Error("wallet-usecase", errObj.Message, "GetWallet", "")
		return result
	case errors.Is(err, repository.ErrDuplicateWallet):
		result.Error = c.storeError("GetWallet", "wallet data integrity violation", err, session.UserID)
		return result
	case err != nil:
		result.Error = c.storeError("GetWallet", "failed to load wallet", err, session.UserID)
		return result
	}

	c.Log.Info("wallet-usecase", "wallet found", "GetWallet", session.UserID)
	result.Data = converter.WalletToResponse(wallet)
	return result
}

func (c *WalletUseCase) listTransactions(ctx context.Context, userID string, limit int) ([]entity.Transaction, error) {
	var generation int64
	if c.Cache != nil {
		cached, gen, ok := c.Cache.Get(ctx, userID, limit)
		if ok {
			return cached, nil
		}
		generation = gen
	}

	transactions, err := c.TransactionRepository.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	if c.Cache != nil {
		c.Cache.Set(ctx, userID, limit, generation, transactions)
	}
	return transactions, nil
}

func (c *WalletUseCase) ListTransactions(ctx context.Context, request *model.ListTransactionsRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		result.Error = c.badRequest("ListTransactions", fmt.Sprintf("validation error: %v", err.Error()), utils.ConvertString(request))
		return result
	}
	limit := request.Limit
	if limit == 0 {
		limit = c.DefaultLimit
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	transactions, err := c.listTransactions(ctx, request.UserID, limit)
	if err != nil {
		result.Error = c.storeError("ListTransactions", "failed to load transactions", err, request.UserID)
		return result
	}

	result.Data = converter.TransactionsToResponse(transactions, request.UserID)
	return result
}

func (c *WalletUseCase) validateCreate(request *model.CreateTransactionRequest) error {
	if err := c.Validate.Struct(request); err != nil {
		return c.badRequest("AppendTransaction", fmt.Sprintf("validation error: %v", err.Error()), utils.ConvertString(request))
	}
	if !request.Amount.IsPositive() {
		return c.badRequest("AppendTransaction", "amount must be greater than zero", request.Amount.String())
	}
	if !request.Amount.Equal(request.Amount.Round(2)) {
		return c.badRequest("AppendTransaction", "amount supports at most 2 decimal places", request.Amount.String())
	}
	if request.Type == entity.TransactionTypeTransfer {
		if request.ToUserID == "" {
			return c.badRequest("AppendTransaction", "transfer requires a recipient", "")
		}
		if request.ToUserID == request.UserID {
			return c.badRequest("AppendTransaction", "cannot transfer to your own wallet", request.UserID)
		}
	}
	return nil
}

func (c *WalletUseCase) postingError(err error, request *model.CreateTransactionRequest) error {
	meta := utils.ConvertString(request)

	switch {
	case errors.Is(err, repository.ErrWalletNotFound):
		errObj := httpError.NewNotFound()
		errObj.Message = fmt.Sprintf("wallet %s not found", request.WalletID)
		c.Log.Error("wallet-usecase", errObj.Message, "AppendTransaction", meta)
		return errObj
	case errors.Is(err, repository.ErrSelfTransfer):
		return c.badRequest("AppendTransaction", err.Error(), meta)
	case errors.Is(err, repository.ErrWalletLocked),
		errors.Is(err, repository.ErrInsufficientBalance),
		errors.Is(err, repository.ErrVersionConflict):
		errObj := httpError.NewConflict()
		errObj.Message = err.Error()
		c.Log.Error("wallet-usecase", errObj.Message, "AppendTransaction", meta)
		return errObj
	}
	return c.storeError("AppendTransaction", "failed to create transaction", err, meta)
}

// AppendTransaction appends one ledger entry. The insert and every balance write it implies
// commit together or not at all; the refreshed history is returned alongside the new wallet.
func (c *WalletUseCase) AppendTransaction(ctx context.Context, request *model.CreateTransactionRequest) utils.Result {
	var result utils.Result

	request.Type = strings.TrimSpace(request.Type)
	if err := c.validateCreate(request); err != nil {
		result.Error = err
		return result
	}

	posting := &entity.Posting{
		UserID:          request.UserID,
		WalletID:        request.WalletID,
		SnapshotVersion: request.WalletVersion,
		Amount:          request.Amount,
		TransactionType: request.Type,
	}
	if request.Description != "" {
		desc := request.Description
		posting.Description = &desc
	}
	if request.ToUserID != "" {
		to := request.ToUserID
		posting.ToUserID = &to
	}

	appendCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	posted, err := c.LedgerRepository.Append(appendCtx, posting)
	if err != nil {
		result.Error = c.postingError(err, request)
		return result
	}

	if posted.StaleSnapshot {
		c.Log.Warn("wallet-usecase", "wallet snapshot was stale", "AppendTransaction",
			fmt.Sprintf("wallet=%s snapshot_version=%d stored_version=%d", request.WalletID, request.WalletVersion, posted.Wallet.Version-1))
	}
	c.Log.Info("wallet-usecase", "transaction completed", "AppendTransaction", posted.Transaction.TransactionRef)

	// every party that lists this row, credited or not
	affected := []string{request.UserID}
	if request.ToUserID != "" && request.ToUserID != request.UserID {
		affected = append(affected, request.ToUserID)
	}
	if c.Cache != nil {
		if err := c.Cache.Invalidate(ctx, affected...); err != nil {
			c.Log.Error("wallet-usecase", fmt.Sprintf("failed to invalidate history cache: %v", err), "AppendTransaction", strings.Join(affected, ","))
		}
	}

	if c.Producer != nil {
		event := converter.PostingToEvent(posted)
		if err := c.Producer.SendTransactionCompleted(event); err != nil {
			c.Log.Error("wallet-usecase", fmt.Sprintf("Failed publish transaction completed event : %+v", err), "AppendTransaction", event.TransactionRef)
		}
	}

	refreshCtx, cancelRefresh := context.WithTimeout(ctx, c.Timeout)
	defer cancelRefresh()

	transactions, err := c.listTransactions(refreshCtx, request.UserID, c.DefaultLimit)
	if err != nil {
		c.Log.Error("wallet-usecase", fmt.Sprintf("failed to refresh transactions: %v", err), "AppendTransaction", request.UserID)
		transactions = []entity.Transaction{}
	}

	result.Data = &model.CreateTransactionResponse{
		Transaction:  *converter.TransactionToResponse(&posted.Transaction, request.UserID),
		Wallet:       *converter.WalletToResponse(&posted.Wallet),
		Transactions: converter.TransactionsToResponse(transactions, request.UserID),
	}
	return result
}

// Reconcile replays the user's ledger against the stored balance. Wallets are assumed to open
// at zero, so any opening balance loaded outside the ledger shows up as a difference.
func (c *WalletUseCase) Reconcile(ctx context.Context, session model.Session) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(session); err != nil {
		result.Error = c.badRequest("Reconcile", fmt.Sprintf("validation error: %v", err.Error()), utils.ConvertString(session))
		return result
	}

	walletResult := c.GetWallet(ctx, session)
	if walletResult.Error != nil {
		result.Error = walletResult.Error
		return result
	}
	wallet := walletResult.Data.(*model.WalletResponse)

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	transactions, err := c.TransactionRepository.ListAllByUser(ctx, session.UserID)
	if err != nil {
		result.Error = c.storeError("Reconcile", "failed to load transactions", err, session.UserID)
		return result
	}

	ledger := decimal.Zero
	for _, t := range transactions {
		ledger = ledger.Add(t.BalanceEffect(session.UserID))
	}

	report := &model.ReconcileResponse{
		WalletID:         wallet.WalletID,
		UserID:           session.UserID,
		StoredBalance:    wallet.Balance,
		LedgerBalance:    ledger,
		Difference:       wallet.Balance.Sub(ledger),
		TransactionCount: len(transactions),
	}
	report.Consistent = report.Difference.IsZero()
	result.Data = report

	if !report.Consistent {
		errObj := httpError.NewConflict()
		errObj.Message = fmt.Sprintf("ledger inconsistency: stored balance %s differs from ledger balance %s",
			wallet.Balance.StringFixed(2), ledger.StringFixed(2))
		result.Error = errObj
		c.Log.Error("wallet-usecase", errObj.Message, "Reconcile", utils.ConvertString(report))
	}
	return result
}
