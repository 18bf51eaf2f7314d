package route

import (
	"campus-wallet/src/internal/delivery/http"
	"campus-wallet/src/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v2"
)

type RouteConfig struct {
	App              *fiber.App
	WalletController *http.WalletController
	AuthMiddleware   fiber.Handler
}

func (c *RouteConfig) Setup() {
	c.App.Use(middleware.NewLogger())
	c.App.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.SendString("OK")
	})
	c.SetupAuthRoute()
}

func (c *RouteConfig) SetupAuthRoute() {
	wallets := c.App.Group("/wallets/v1", c.AuthMiddleware)
	wallets.Get("/me", c.WalletController.GetWallet)
	wallets.Get("/transactions", c.WalletController.ListTransactions)
	wallets.Post("/transactions", c.WalletController.CreateTransaction)
	wallets.Get("/reconcile", c.WalletController.Reconcile)
}
