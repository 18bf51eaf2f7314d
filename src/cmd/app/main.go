package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-wallet/src/internal/config"
	"campus-wallet/src/pkg/databases/mysql"
	"campus-wallet/src/pkg/log"
)

func main() {

	viperConfig := config.NewViper()
	viperConfig.SetDefault("log.level", "DEBUG")
	viperConfig.SetDefault("app.name", "CAMPUS_WALLET")
	viperConfig.SetDefault("app.timeout", "10s")
	viperConfig.SetDefault("web.port", 8080)
	viperConfig.SetDefault("ledger.list.limit", 10)
	viperConfig.SetDefault("cache.transactions.ttl", "5m")
	log.InitLogger(viperConfig)
	logger := log.GetLogger()

	var db mysql.DBInterface
	if !viperConfig.GetBool("app.demo") {
		db = config.NewDatabase(viperConfig, logger)
		if db == nil {
			logger.Error("main", "database is not available, set app.demo to run without MySQL", "main", "")
			os.Exit(1)
		}
	}
	config.LoadRedisConfig(viperConfig, logger)
	redisClient := config.NewRedis()
	producer := config.NewKafkaProducer(viperConfig, logger)
	validate := config.NewValidator(viperConfig)
	app := config.NewFiber(viperConfig)
	config.Bootstrap(&config.BootstrapConfig{
		DB:       db,
		App:      app,
		Log:      logger,
		Validate: validate,
		Config:   viperConfig,
		Producer: producer,
		Redis:    redisClient,
	})

	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("main", "Server campus-wallet is shutting down...", "graceful", "")

		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			logger.Error("main", fmt.Sprintf("Error during shutdown: %v", err), "graceful", "")
		}
		if producer != nil {
			if err := producer.Close(); err != nil {
				logger.Error("main", fmt.Sprintf("Error closing producer: %v", err), "graceful", "")
			}
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
		if db != nil {
			_ = db.Close()
		}
		close(done)
	}()

	webPort := viperConfig.GetInt("web.port")
	if err := app.Listen(fmt.Sprintf(":%d", webPort)); err != nil {
		logger.Error("main", fmt.Sprintf("Failed to start server: %v", err), "main", "")
		os.Exit(1)
	}

	<-done
	logger.Info("main", fmt.Sprintf("Server %s stopped", viperConfig.GetString("app.name")), "graceful", "")
}
