package route

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpDelivery "campus-wallet/src/internal/delivery/http"
	"campus-wallet/src/internal/delivery/http/middleware"
	"campus-wallet/src/internal/entity"
	"campus-wallet/src/internal/repository"
	"campus-wallet/src/internal/usecase"
	"campus-wallet/src/pkg/log"
	"campus-wallet/src/pkg/token"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    int             `json:"code"`
}

func newApp(t *testing.T) (*fiber.App, *repository.MemoryRepository) {
	t.Helper()
	cfg := viper.New()
	cfg.Set("jwt.secret", secret)
	cfg.Set("jwt.issuer", "campus-wallet")

	logger := log.New("test", "ERROR", io.Discard)
	repo := repository.NewMemoryRepository()
	repo.SeedWallet(entity.Wallet{ID: "w1", WalletID: "CW-0001", UserID: "u1", Balance: decimal.RequireFromString("2540.50"), Version: 3})

	uc := usecase.NewWalletUseCase(logger, validator.New(), repo, repo, repo, nil, nil, cfg)
	app := fiber.New()
	rc := RouteConfig{
		App:              app,
		WalletController: httpDelivery.NewWalletController(uc, logger),
		AuthMiddleware:   middleware.VerifyBearer(cfg),
	}
	rc.Setup()
	return app, repo
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	tok, err := token.Generate(secret, "campus-wallet", token.Metadata{UserID: userID}, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func do(t *testing.T, app *fiber.App, method, path, auth, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if auth != "" {
		req.Header.Set(fiber.HeaderAuthorization, auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env
}

func TestHealth(t *testing.T) {
	app, _ := newApp(t)
	code, _ := do(t, app, fiber.MethodGet, "/health", "", "")
	assert.Equal(t, fiber.StatusOK, code)
}

func TestWalletRoutes_RequireBearer(t *testing.T) {
	app, _ := newApp(t)

	code, env := do(t, app, fiber.MethodGet, "/wallets/v1/me", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, _ = do(t, app, fiber.MethodGet, "/wallets/v1/me", "Bearer not-a-jwt", "")
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

func TestGetWalletRoute(t *testing.T) {
	app, _ := newApp(t)

	code, env := do(t, app, fiber.MethodGet, "/wallets/v1/me", bearer(t, "u1"), "")
	require.Equal(t, fiber.StatusOK, code)
	assert.True(t, env.Success)

	var wallet map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &wallet))
	assert.Equal(t, "CW-0001", wallet["walletId"])
	assert.Equal(t, "2540.5", wallet["balance"])

	code, _ = do(t, app, fiber.MethodGet, "/wallets/v1/me", bearer(t, "u9"), "")
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestCreateAndListTransactionRoutes(t *testing.T) {
	app, repo := newApp(t)
	auth := bearer(t, "u1")

	body := `{"walletId":"w1","walletVersion":3,"amount":"100.00","type":"topup","description":"semester top-up"}`
	code, env := do(t, app, fiber.MethodPost, "/wallets/v1/transactions", auth, body)
	require.Equal(t, fiber.StatusCreated, code, env.Message)
	assert.Equal(t, 1, repo.TransactionCount())

	var created struct {
		Wallet struct {
			Balance string `json:"balance"`
			Version int64  `json:"version"`
		} `json:"wallet"`
		Transactions []map[string]any `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "2640.5", created.Wallet.Balance)
	assert.Equal(t, int64(4), created.Wallet.Version)
	assert.Len(t, created.Transactions, 1)

	code, env = do(t, app, fiber.MethodGet, "/wallets/v1/transactions?limit=5", auth, "")
	require.Equal(t, fiber.StatusOK, code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "in", list[0]["direction"])
}

func TestCreateTransactionRoute_Rejections(t *testing.T) {
	app, repo := newApp(t)
	auth := bearer(t, "u1")

	code, _ := do(t, app, fiber.MethodPost, "/wallets/v1/transactions", auth, `{"walletId":`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = do(t, app, fiber.MethodPost, "/wallets/v1/transactions", auth, `{"walletId":"w1","amount":"0","type":"topup"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = do(t, app, fiber.MethodPost, "/wallets/v1/transactions", auth, `{"walletId":"w1","amount":"9999","type":"payment"}`)
	assert.Equal(t, fiber.StatusConflict, code)

	code, _ = do(t, app, fiber.MethodGet, "/wallets/v1/transactions?limit=500", auth, "")
	assert.Equal(t, fiber.StatusBadRequest, code)

	assert.Equal(t, 0, repo.TransactionCount())
}

func TestReconcileRoute_ReportsDrift(t *testing.T) {
	app, _ := newApp(t)

	code, env := do(t, app, fiber.MethodGet, "/wallets/v1/reconcile", bearer(t, "u1"), "")
	assert.Equal(t, fiber.StatusConflict, code)
	assert.False(t, env.Success)

	var report map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, false, report["consistent"])
	assert.Equal(t, "2540.5", report["difference"])
}
