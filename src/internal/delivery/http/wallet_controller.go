package http

import (
	"campus-wallet/src/internal/delivery/http/middleware"
	"campus-wallet/src/internal/model"
	"campus-wallet/src/internal/usecase"
	httpError "campus-wallet/src/pkg/http-error"
	"campus-wallet/src/pkg/log"
	"campus-wallet/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletController struct {
	Log     log.Log
	UseCase *usecase.WalletUseCase
}

func NewWalletController(useCase *usecase.WalletUseCase, logger log.Log) *WalletController {
	return &WalletController{
		Log:     logger,
		UseCase: useCase,
	}
}

func (c *WalletController) GetWallet(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)

	result := c.UseCase.GetWallet(ctx.UserContext(), *auth)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "GetWallet", fiber.StatusOK, ctx)
}

func (c *WalletController) ListTransactions(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)

	request := &model.ListTransactionsRequest{
		UserID: auth.UserID,
		Limit:  ctx.QueryInt("limit", 0),
	}
	result := c.UseCase.ListTransactions(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "ListTransactions", fiber.StatusOK, ctx)
}

func (c *WalletController) CreateTransaction(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)

	request := new(model.CreateTransactionRequest)
	if err := ctx.BodyParser(request); err != nil {
		c.Log.Error("WalletController.CreateTransaction", "Failed to parse request body", "error", err.Error())
		errObj := httpError.NewBadRequest()
		errObj.Message = "invalid request body"
		return utils.ResponseError(errObj, ctx)
	}
	request.UserID = auth.UserID

	result := c.UseCase.AppendTransaction(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}

	return utils.Response(result.Data, "Transaction completed", fiber.StatusCreated, ctx)
}

func (c *WalletController) Reconcile(ctx *fiber.Ctx) error {
	auth := middleware.GetUser(ctx)

	result := c.UseCase.Reconcile(ctx.UserContext(), *auth)
	if result.Error != nil {
		return utils.ResponseErrorWithData(result.Error, result.Data, ctx)
	}

	return utils.Response(result.Data, "Reconcile", fiber.StatusOK, ctx)
}
