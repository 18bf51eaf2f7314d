package usecase

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"campus-wallet/src/internal/entity"
	"campus-wallet/src/internal/gateway/cache"
	"campus-wallet/src/internal/model"
	"campus-wallet/src/internal/repository"
	httpError "campus-wallet/src/pkg/http-error"
	"campus-wallet/src/pkg/log"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []*model.TransactionEvent
	err    error
}

func (f *fakePublisher) SendTransactionCompleted(event *model.TransactionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

var testLog = log.New("test", "ERROR", io.Discard)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seededRepo() *repository.MemoryRepository {
	repo := repository.NewMemoryRepository()
	repo.SeedWallet(entity.Wallet{ID: "w1", WalletID: "CW-0001", UserID: "u1", Balance: dec("2540.50"), Version: 3})
	repo.SeedWallet(entity.Wallet{ID: "w2", WalletID: "CW-0002", UserID: "u2", Balance: dec("10.00"), Version: 1})
	return repo
}

func newUseCase(repo *repository.MemoryRepository) (*WalletUseCase, *fakePublisher) {
	pub := &fakePublisher{}
	uc := NewWalletUseCase(testLog, validator.New(), repo, repo, repo, nil, pub, viper.New())
	return uc, pub
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var coder httpError.StatusCoder
	require.True(t, errors.As(err, &coder), "expected a status error, got %v", err)
	return coder.StatusCode()
}

func topup(amount string) *model.CreateTransactionRequest {
	return &model.CreateTransactionRequest{
		UserID:        "u1",
		WalletID:      "w1",
		WalletVersion: 3,
		Amount:        dec(amount),
		Type:          entity.TransactionTypeTopup,
	}
}

func TestNewWalletUseCase_Defaults(t *testing.T) {
	uc, _ := newUseCase(repository.NewMemoryRepository())
	assert.Equal(t, defaultTimeout, uc.Timeout)
	assert.Equal(t, defaultListLimit, uc.DefaultLimit)

	cfg := viper.New()
	cfg.Set("app.timeout", "3s")
	cfg.Set("ledger.list.limit", 25)
	uc = NewWalletUseCase(testLog, validator.New(), nil, nil, nil, nil, nil, cfg)
	assert.Equal(t, 3*time.Second, uc.Timeout)
	assert.Equal(t, 25, uc.DefaultLimit)
}

func TestGetWallet(t *testing.T) {
	uc, _ := newUseCase(seededRepo())

	result := uc.GetWallet(context.Background(), model.Session{UserID: "u1"})
	require.NoError(t, result.Error)
	wallet := result.Data.(*model.WalletResponse)
	assert.Equal(t, "CW-0001", wallet.WalletID)
	assert.True(t, dec("2540.50").Equal(wallet.Balance))
	assert.Equal(t, int64(3), wallet.Version)
}

func TestGetWallet_NotFound(t *testing.T) {
	uc, _ := newUseCase(seededRepo())

	result := uc.GetWallet(context.Background(), model.Session{UserID: "nobody"})
	assert.Nil(t, result.Data)
	assert.Equal(t, http.StatusNotFound, statusOf(t, result.Error))
}

func TestGetWallet_DuplicateWalletIsIntegrityError(t *testing.T) {
	repo := seededRepo()
	repo.SeedWallet(entity.Wallet{ID: "w3", WalletID: "CW-0003", UserID: "u1"})
	uc, _ := newUseCase(repo)

	result := uc.GetWallet(context.Background(), model.Session{UserID: "u1"})
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, result.Error))
	assert.Equal(t, "wallet data integrity violation", result.Error.Error())
}

func TestGetWallet_MissingSession(t *testing.T) {
	uc, _ := newUseCase(seededRepo())

	result := uc.GetWallet(context.Background(), model.Session{})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, result.Error))
}

func TestAppendTransaction_Topup(t *testing.T) {
	repo := seededRepo()
	uc, pub := newUseCase(repo)

	result := uc.AppendTransaction(context.Background(), topup("100.00"))
	require.NoError(t, result.Error)

	resp := result.Data.(*model.CreateTransactionResponse)
	assert.Equal(t, entity.TransactionStatusCompleted, resp.Transaction.Status)
	assert.Equal(t, entity.DirectionIn, resp.Transaction.Direction)
	assert.Regexp(t, `^TXN-[0-9A-F]{12}$`, resp.Transaction.Reference)
	assert.True(t, dec("2640.50").Equal(resp.Wallet.Balance), resp.Wallet.Balance.String())
	assert.Equal(t, int64(4), resp.Wallet.Version)
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, resp.Transaction.ID, resp.Transactions[0].ID)

	stored, _ := repo.Wallet("w1")
	assert.True(t, dec("2640.50").Equal(stored.Balance))

	require.Len(t, pub.events, 1)
	assert.Equal(t, resp.Transaction.ID, pub.events[0].TransactionID)
}

func TestAppendTransaction_PaymentDebitsExactAmount(t *testing.T) {
	repo := seededRepo()
	uc, _ := newUseCase(repo)

	req := topup("50.00")
	req.Type = entity.TransactionTypePayment
	req.Description = "canteen"

	result := uc.AppendTransaction(context.Background(), req)
	require.NoError(t, result.Error)

	resp := result.Data.(*model.CreateTransactionResponse)
	assert.Equal(t, entity.DirectionOut, resp.Transaction.Direction)
	assert.Equal(t, "canteen", resp.Transaction.Description)
	stored, _ := repo.Wallet("w1")
	assert.True(t, dec("2490.50").Equal(stored.Balance), stored.Balance.String())
}

func TestAppendTransaction_InsufficientBalance(t *testing.T) {
	repo := seededRepo()
	uc, pub := newUseCase(repo)

	req := topup("5000")
	req.Type = entity.TransactionTypePayment

	result := uc.AppendTransaction(context.Background(), req)
	assert.Equal(t, http.StatusConflict, statusOf(t, result.Error))
	assert.Equal(t, 0, repo.TransactionCount())
	assert.Empty(t, pub.events)
}

func TestAppendTransaction_LockedWallet(t *testing.T) {
	repo := repository.NewMemoryRepository()
	repo.SeedWallet(entity.Wallet{ID: "w1", WalletID: "CW-0001", UserID: "u1", Balance: dec("20"), IsLocked: true})
	uc, _ := newUseCase(repo)

	result := uc.AppendTransaction(context.Background(), topup("1"))
	assert.Equal(t, http.StatusConflict, statusOf(t, result.Error))
}

func TestAppendTransaction_ForeignWalletIsNotFound(t *testing.T) {
	uc, _ := newUseCase(seededRepo())

	req := topup("1")
	req.WalletID = "w2"

	result := uc.AppendTransaction(context.Background(), req)
	assert.Equal(t, http.StatusNotFound, statusOf(t, result.Error))
}

func TestAppendTransaction_BalanceWriteFailureLeavesNoTrace(t *testing.T) {
	repo := seededRepo()
	repo.FailNextBalanceWrite(errors.New("connection reset"))
	uc, pub := newUseCase(repo)

	result := uc.AppendTransaction(context.Background(), topup("100.00"))
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, result.Error))
	assert.Equal(t, "failed to create transaction", result.Error.Error())

	assert.Equal(t, 0, repo.TransactionCount())
	stored, _ := repo.Wallet("w1")
	assert.True(t, dec("2540.50").Equal(stored.Balance))
	assert.Equal(t, int64(3), stored.Version)
	assert.Empty(t, pub.events)
}

func TestAppendTransaction_InsertFailure(t *testing.T) {
	repo := seededRepo()
	repo.FailNextInsert(errors.New("duplicate key"))
	uc, _ := newUseCase(repo)

	result := uc.AppendTransaction(context.Background(), topup("1"))
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, result.Error))
	assert.Equal(t, 0, repo.TransactionCount())
}

func TestAppendTransaction_ConcurrentTopupsBothApply(t *testing.T) {
	repo := seededRepo()
	uc, _ := newUseCase(repo)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := uc.AppendTransaction(context.Background(), topup("10.25"))
			assert.NoError(t, result.Error)
		}()
	}
	wg.Wait()

	stored, _ := repo.Wallet("w1")
	assert.True(t, dec("2745.50").Equal(stored.Balance), stored.Balance.String())
	assert.Equal(t, int64(3+n), stored.Version)
	assert.Equal(t, n, repo.TransactionCount())
}

func TestAppendTransaction_StaleSnapshotStillApplies(t *testing.T) {
	repo := seededRepo()
	uc, _ := newUseCase(repo)

	req := topup("1.00")
	req.WalletVersion = 1

	result := uc.AppendTransaction(context.Background(), req)
	require.NoError(t, result.Error)
	resp := result.Data.(*model.CreateTransactionResponse)
	assert.True(t, dec("2541.50").Equal(resp.Wallet.Balance))
}

func TestAppendTransaction_TransferCreditsRecipient(t *testing.T) {
	repo := seededRepo()
	uc, pub := newUseCase(repo)

	req := topup("40.00")
	req.Type = entity.TransactionTypeTransfer
	req.ToUserID = "u2"

	result := uc.AppendTransaction(context.Background(), req)
	require.NoError(t, result.Error)

	sender, _ := repo.Wallet("w1")
	recipient, _ := repo.Wallet("w2")
	assert.True(t, dec("2500.50").Equal(sender.Balance))
	assert.True(t, dec("50.00").Equal(recipient.Balance))
	assert.Equal(t, "u2", pub.events[0].ToUserID)

	list := uc.ListTransactions(context.Background(), &model.ListTransactionsRequest{UserID: "u2"})
	require.NoError(t, list.Error)
	received := list.Data.([]model.TransactionResponse)
	require.Len(t, received, 1)
	assert.Equal(t, entity.DirectionIn, received[0].Direction)
}

func TestAppendTransaction_Validation(t *testing.T) {
	cases := map[string]func(r *model.CreateTransactionRequest){
		"zero amount":       func(r *model.CreateTransactionRequest) { r.Amount = decimal.Zero },
		"negative amount":   func(r *model.CreateTransactionRequest) { r.Amount = dec("-5") },
		"too many decimals": func(r *model.CreateTransactionRequest) { r.Amount = dec("1.005") },
		"missing type":      func(r *model.CreateTransactionRequest) { r.Type = "" },
		"missing wallet":    func(r *model.CreateTransactionRequest) { r.WalletID = "" },
		"transfer to self": func(r *model.CreateTransactionRequest) {
			r.Type = entity.TransactionTypeTransfer
			r.ToUserID = "u1"
		},
		"transfer without recipient": func(r *model.CreateTransactionRequest) { r.Type = entity.TransactionTypeTransfer },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			repo := seededRepo()
			uc, _ := newUseCase(repo)
			req := topup("10")
			mutate(req)

			result := uc.AppendTransaction(context.Background(), req)
			assert.Equal(t, http.StatusBadRequest, statusOf(t, result.Error))
			assert.Equal(t, 0, repo.TransactionCount())
		})
	}
}

func TestListTransactions_LimitOrderAndOwnership(t *testing.T) {
	repo := seededRepo()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	u1, u2 := "u1", "u2"
	for i := 0; i < 15; i++ {
		repo.SeedTransaction(entity.Transaction{
			ID: "a" + string(rune('a'+i)), Amount: dec("1"), TransactionType: entity.TransactionTypeTopup,
			Status: entity.TransactionStatusCompleted, FromUserID: &u1, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		repo.SeedTransaction(entity.Transaction{
			ID: "b" + string(rune('a'+i)), Amount: dec("1"), TransactionType: entity.TransactionTypeTopup,
			Status: entity.TransactionStatusCompleted, FromUserID: &u2, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	uc, _ := newUseCase(repo)

	result := uc.ListTransactions(context.Background(), &model.ListTransactionsRequest{UserID: "u1"})
	require.NoError(t, result.Error)
	list := result.Data.([]model.TransactionResponse)
	require.Len(t, list, defaultListLimit)
	for i, tx := range list {
		assert.Equal(t, "u1", tx.FromUserID)
		if i > 0 {
			assert.True(t, list[i-1].CreatedAt.After(tx.CreatedAt))
		}
	}

	result = uc.ListTransactions(context.Background(), &model.ListTransactionsRequest{UserID: "u1", Limit: 3})
	require.NoError(t, result.Error)
	assert.Len(t, result.Data.([]model.TransactionResponse), 3)

	result = uc.ListTransactions(context.Background(), &model.ListTransactionsRequest{UserID: "u1", Limit: 101})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, result.Error))
}

func TestListTransactions_EmptyHistory(t *testing.T) {
	uc, _ := newUseCase(seededRepo())

	result := uc.ListTransactions(context.Background(), &model.ListTransactionsRequest{UserID: "u1"})
	require.NoError(t, result.Error)
	list := result.Data.([]model.TransactionResponse)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestAppendTransaction_InvalidatesCachedHistory(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := seededRepo()
	uc, _ := newUseCase(repo)
	uc.Cache = cache.NewTransactionCache(client, time.Minute, testLog)

	ctx := context.Background()
	first := uc.ListTransactions(ctx, &model.ListTransactionsRequest{UserID: "u1"})
	require.NoError(t, first.Error)
	assert.Empty(t, first.Data)
	assert.True(t, srv.Exists("WALLET:TRANSACTIONS:{u1}"))

	require.NoError(t, uc.AppendTransaction(ctx, topup("5")).Error)

	second := uc.ListTransactions(ctx, &model.ListTransactionsRequest{UserID: "u1"})
	require.NoError(t, second.Error)
	assert.Len(t, second.Data, 1)
}

func newCachedUseCase(t *testing.T, repo *repository.MemoryRepository) *WalletUseCase {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	uc, _ := newUseCase(repo)
	uc.Cache = cache.NewTransactionCache(client, time.Minute, testLog)
	return uc
}

func TestAppendTransaction_InvalidatesCounterpartyHistory(t *testing.T) {
	cases := map[string]func(r *model.CreateTransactionRequest){
		"payment to a payee": func(r *model.CreateTransactionRequest) {
			r.Type = entity.TransactionTypePayment
			r.ToUserID = "u2"
		},
		"transfer to a user without wallet": func(r *model.CreateTransactionRequest) {
			r.Type = entity.TransactionTypeTransfer
			r.ToUserID = "u3"
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			uc := newCachedUseCase(t, seededRepo())
			ctx := context.Background()
			req := topup("5")
			mutate(req)

			before := uc.ListTransactions(ctx, &model.ListTransactionsRequest{UserID: req.ToUserID})
			require.NoError(t, before.Error)
			assert.Empty(t, before.Data)

			require.NoError(t, uc.AppendTransaction(ctx, req).Error)

			after := uc.ListTransactions(ctx, &model.ListTransactionsRequest{UserID: req.ToUserID})
			require.NoError(t, after.Error)
			list := after.Data.([]model.TransactionResponse)
			require.Len(t, list, 1)
			assert.Equal(t, req.ToUserID, list[0].ToUserID)
		})
	}
}

// appendDuringRead commits an append right after the history has been read from the store.
type appendDuringRead struct {
	repository.TransactionReader
	once   sync.Once
	append func()
}

func (r *appendDuringRead) ListByUser(ctx context.Context, userID string, limit int) ([]entity.Transaction, error) {
	transactions, err := r.TransactionReader.ListByUser(ctx, userID, limit)
	r.once.Do(r.append)
	return transactions, err
}

func TestListTransactions_PageLoadedBeforeConcurrentAppendIsNotCached(t *testing.T) {
	repo := seededRepo()
	uc := newCachedUseCase(t, repo)
	ctx := context.Background()

	uc.TransactionRepository = &appendDuringRead{
		TransactionReader: repo,
		append: func() {
			_, err := repo.Append(ctx, &entity.Posting{UserID: "u1", WalletID: "w1", Amount: dec("5"), TransactionType: entity.TransactionTypeTopup})
			require.NoError(t, err)
			require.NoError(t, uc.Cache.Invalidate(ctx, "u1"))
		},
	}

	stale := uc.ListTransactions(ctx, &model.ListTransactionsRequest{UserID: "u1"})
	require.NoError(t, stale.Error)
	assert.Empty(t, stale.Data)

	fresh := uc.ListTransactions(ctx, &model.ListTransactionsRequest{UserID: "u1"})
	require.NoError(t, fresh.Error)
	assert.Len(t, fresh.Data, 1)
}

func TestAppendTransaction_PublishFailureDoesNotFailAppend(t *testing.T) {
	repo := seededRepo()
	uc, pub := newUseCase(repo)
	pub.err = errors.New("broker down")

	result := uc.AppendTransaction(context.Background(), topup("5"))
	require.NoError(t, result.Error)
	assert.Equal(t, 1, repo.TransactionCount())
}

func TestReconcile_Consistent(t *testing.T) {
	repo := repository.NewMemoryRepository()
	repo.SeedWallet(entity.Wallet{ID: "w1", WalletID: "CW-0001", UserID: "u1"})
	repo.SeedWallet(entity.Wallet{ID: "w2", WalletID: "CW-0002", UserID: "u2"})
	uc, _ := newUseCase(repo)
	ctx := context.Background()

	req := &model.CreateTransactionRequest{UserID: "u1", WalletID: "w1", Amount: dec("100"), Type: entity.TransactionTypeTopup}
	require.NoError(t, uc.AppendTransaction(ctx, req).Error)
	req = &model.CreateTransactionRequest{UserID: "u1", WalletID: "w1", Amount: dec("30.50"), Type: entity.TransactionTypeTransfer, ToUserID: "u2"}
	require.NoError(t, uc.AppendTransaction(ctx, req).Error)

	for user, want := range map[string]string{"u1": "69.50", "u2": "30.50"} {
		result := uc.Reconcile(ctx, model.Session{UserID: user})
		require.NoError(t, result.Error, user)
		report := result.Data.(*model.ReconcileResponse)
		assert.True(t, report.Consistent, user)
		assert.True(t, dec(want).Equal(report.LedgerBalance), user)
	}
}

func TestReconcile_ReportsDrift(t *testing.T) {
	repo := repository.NewMemoryRepository()
	repo.SeedWallet(entity.Wallet{ID: "w1", WalletID: "CW-0001", UserID: "u1", Balance: dec("120")})
	u1 := "u1"
	repo.SeedTransaction(entity.Transaction{
		ID: "t1", Amount: dec("100"), TransactionType: entity.TransactionTypeTopup,
		Status: entity.TransactionStatusCompleted, FromUserID: &u1, CreatedAt: time.Now(),
	})
	uc, _ := newUseCase(repo)

	result := uc.Reconcile(context.Background(), model.Session{UserID: "u1"})
	assert.Equal(t, http.StatusConflict, statusOf(t, result.Error))
	report := result.Data.(*model.ReconcileResponse)
	assert.False(t, report.Consistent)
	assert.True(t, dec("20").Equal(report.Difference))
	assert.Equal(t, 1, report.TransactionCount)
}
