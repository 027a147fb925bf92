package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/inkblog/apperr"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusOK, 0, "success", data)
}

// Created returns a standard response for newly created resources.
func Created(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusCreated, 0, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// bodyCodes maps error kinds to the numeric body code.
var bodyCodes = map[apperr.Code]int{
	apperr.CodeValidation:    40000,
	apperr.CodeUnauthorized:  40100,
	apperr.CodeForbidden:     40300,
	apperr.CodeNotFound:      40400,
	apperr.CodeAlreadyExists: 40900,
	apperr.CodeConflict:      40901,
	apperr.CodeInternal:      50000,
}

// Fail renders a service error. Internal errors are logged with their cause
// and reach the client only as a generic message.
func Fail(ctx *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.ErrInternal.WithCause(err)
	}

	status := appErr.HTTPStatus()
	code := bodyCodes[appErr.Code]
	if code == 0 {
		code = status * 100
	}

	if appErr.Code == apperr.CodeInternal {
		if Logger != nil {
			Logger.Error("request failed",
				zap.String("path", ctx.Request.URL.Path),
				zap.String("method", ctx.Request.Method),
				zap.Error(err),
			)
		}
		Respond(ctx, status, code, "internal server error", nil)
		return
	}
	Respond(ctx, status, code, appErr.Message, appErr.Details)
}
