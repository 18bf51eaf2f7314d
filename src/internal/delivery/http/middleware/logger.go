package middleware

import (
	"fmt"
	"time"

	"campus-wallet/src/pkg/log"

	"github.com/gofiber/fiber/v2"
)

const slowRequest = time.Second

func NewLogger() fiber.Handler {
	logger := log.GetLogger()

	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()
		elapsed := time.Since(start)

		meta := fmt.Sprintf("%s %s status=%d latency=%s", ctx.Method(), ctx.Path(), ctx.Response().StatusCode(), elapsed)
		if elapsed > slowRequest {
			logger.Slow("http", "slow request", "NewLogger", meta)
			return err
		}
		logger.Info("http", "request handled", "NewLogger", meta)
		return err
	}
}
