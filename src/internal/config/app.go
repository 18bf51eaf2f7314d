package config

import (
	"campus-wallet/src/internal/delivery/http"
	"campus-wallet/src/internal/delivery/http/middleware"
	"campus-wallet/src/internal/delivery/http/route"
	"campus-wallet/src/internal/gateway/cache"
	"campus-wallet/src/internal/gateway/messaging"
	"campus-wallet/src/internal/repository"
	"campus-wallet/src/internal/usecase"
	"campus-wallet/src/pkg/databases/mysql"
	kafkaPkg "campus-wallet/src/pkg/kafka"
	"campus-wallet/src/pkg/log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

type BootstrapConfig struct {
	DB       mysql.DBInterface
	App      *fiber.App
	Log      log.Log
	Validate *validator.Validate
	Config   *viper.Viper
	Producer kafkaPkg.Producer
	Redis    redis.UniversalClient
}

func Bootstrap(config *BootstrapConfig) {
	// setup repositories
	var (
		walletRepository      repository.WalletReader
		transactionRepository repository.TransactionReader
		ledgerRepository      repository.LedgerWriter
	)
	if config.DB != nil {
		wallets := repository.NewWalletRepository(config.DB)
		transactions := repository.NewTransactionRepository(config.DB)
		walletRepository = wallets
		transactionRepository = transactions
		ledgerRepository = repository.NewLedgerRepository(config.DB, wallets, transactions)
	} else {
		memory := NewDemoRepository(config.Config, config.Log)
		walletRepository = memory
		transactionRepository = memory
		ledgerRepository = memory
	}

	// setup gateways
	var transactionCache usecase.TransactionCache
	if config.Redis != nil {
		transactionCache = cache.NewTransactionCache(config.Redis, config.Config.GetDuration("cache.transactions.ttl"), config.Log)
	}
	transactionProducer := messaging.NewTransactionProducer(config.Producer, config.Config.GetString("kafka.topic.transaction"), config.Log)

	// setup use cases
	walletUseCase := usecase.NewWalletUseCase(
		config.Log,
		config.Validate,
		walletRepository,
		transactionRepository,
		ledgerRepository,
		transactionCache,
		transactionProducer,
		config.Config,
	)

	// setup controller
	walletController := http.NewWalletController(walletUseCase, config.Log)
	// setup middleware
	authMiddleware := middleware.VerifyBearer(config.Config)
	routeConfig := route.RouteConfig{
		App:              config.App,
		WalletController: walletController,
		AuthMiddleware:   authMiddleware,
	}
	routeConfig.Setup()
}
