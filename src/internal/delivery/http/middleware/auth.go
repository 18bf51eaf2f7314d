package middleware

import (
	"strings"

	"campus-wallet/src/internal/model"
	httpError "campus-wallet/src/pkg/http-error"
	"campus-wallet/src/pkg/log"
	"campus-wallet/src/pkg/token"
	"campus-wallet/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
)

const sessionKey = "auth"

// VerifyBearer authenticates the Authorization header and stores the caller's session in locals.
func VerifyBearer(cfg *viper.Viper) fiber.Handler {
	secret := cfg.GetString("jwt.secret")
	issuer := cfg.GetString("jwt.issuer")
	logger := log.GetLogger()

	return func(ctx *fiber.Ctx) error {
		header := ctx.Get(fiber.HeaderAuthorization)
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			errObj := httpError.NewUnauthorized()
			errObj.Message = "missing or malformed bearer token"
			return utils.ResponseError(errObj, ctx)
		}

		claim, err := token.Parse(secret, issuer, parts[1])
		if err != nil {
			logger.Error("middleware", err.Error(), "VerifyBearer", ctx.Path())
			errObj := httpError.NewUnauthorized()
			errObj.Message = "invalid or expired token"
			return utils.ResponseError(errObj, ctx)
		}

		ctx.Locals(sessionKey, &model.Session{
			UserID:   claim.Metadata.UserID,
			FullName: claim.Metadata.FullName,
		})
		return ctx.Next()
	}
}

// GetUser returns the session set by VerifyBearer, or an empty one.
func GetUser(ctx *fiber.Ctx) *model.Session {
	session, ok := ctx.Locals(sessionKey).(*model.Session)
	if !ok {
		return &model.Session{}
	}
	return session
}
