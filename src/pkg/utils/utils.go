package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	httpError "campus-wallet/src/pkg/http-error"

	"github.com/gofiber/fiber/v2"
)

type Result struct {
	Data  interface{}
	Error error
}

type BaseResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
	Code    int         `json:"code"`
}

func Response(data interface{}, message string, code int, ctx *fiber.Ctx) error {
	return ctx.Status(code).JSON(BaseResponse{
		Success: code < fiber.StatusBadRequest,
		Data:    data,
		Message: message,
		Code:    code,
	})
}

// ResponseError writes err with the status carried by an httpError value, 500 otherwise.
func ResponseError(err error, ctx *fiber.Ctx) error {
	return ResponseErrorWithData(err, nil, ctx)
}

func ResponseErrorWithData(err error, data interface{}, ctx *fiber.Ctx) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var coder httpError.StatusCoder
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &coder):
		code = coder.StatusCode()
		message = coder.Error()
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return Response(data, message, code, ctx)
}

func ConvertString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case error:
		return val.Error()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}

func ConvertInt(v interface{}) int {
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case string:
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0
		}
		return i
	}
	return 0
}
