package httpError

import "net/http"

type CommonError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e CommonError) Error() string {
	return e.Message
}

func (e CommonError) StatusCode() int {
	return e.Code
}

// StatusCoder is implemented by every error in this package.
type StatusCoder interface {
	error
	StatusCode() int
}

type BadRequest struct{ CommonError }

func NewBadRequest() *BadRequest {
	return &BadRequest{CommonError{Code: http.StatusBadRequest, Message: "Bad Request"}}
}

type Unauthorized struct{ CommonError }

func NewUnauthorized() *Unauthorized {
	return &Unauthorized{CommonError{Code: http.StatusUnauthorized, Message: "Unauthorized"}}
}

type NotFound struct{ CommonError }

func NewNotFound() *NotFound {
	return &NotFound{CommonError{Code: http.StatusNotFound, Message: "Not Found"}}
}

type Conflict struct{ CommonError }

func NewConflict() *Conflict {
	return &Conflict{CommonError{Code: http.StatusConflict, Message: "Conflict"}}
}

type InternalServerError struct{ CommonError }

func NewInternalServerError() *InternalServerError {
	return &InternalServerError{CommonError{Code: http.StatusInternalServerError, Message: "Internal Server Error"}}
}
