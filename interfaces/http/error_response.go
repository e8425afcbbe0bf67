package http

import (
	"errors"
	"net/http"

	"viewtube/domain/apperror"

	"github.com/gin-gonic/gin"
)

// statusFor maps application error codes onto HTTP statuses
func statusFor(err error) int {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case apperror.CodeNotFound:
		return http.StatusNotFound
	case apperror.CodeForbidden:
		return http.StatusForbidden
	case apperror.CodeInvalidArg:
		return http.StatusBadRequest
	case apperror.CodeUnreachable:
		return http.StatusBadGateway
	case apperror.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(ctx *gin.Context, message string, err error) {
	ctx.JSON(statusFor(err), gin.H{
		"error":   message,
		"code":    apperror.CodeOf(err),
		"message": err.Error(),
	})
}
