package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"video-platform/service"
)

const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeForbidden           = "FORBIDDEN"
	CodeConflict            = "CONFLICT"
	CodeVideoNotReady       = "VIDEO_NOT_READY"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeTooLarge            = "PAYLOAD_TOO_LARGE"
	CodeInternal            = "INTERNAL_SERVER_ERROR"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

var errorStatuses = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrValidation, http.StatusBadRequest, CodeValidation},
	{service.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{service.ErrForbidden, http.StatusForbidden, CodeForbidden},
	{service.ErrConflict, http.StatusConflict, CodeConflict},
	{service.ErrNotReady, http.StatusBadRequest, CodeVideoNotReady},
	{service.ErrUpstreamUnavailable, http.StatusServiceUnavailable, CodeUpstreamUnavailable},
	{service.ErrUnauthenticated, http.StatusUnauthorized, CodeUnauthorized},
}

func abortWith(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// respondError maps service errors to their HTTP status. Anything unknown is logged and
// answered with a generic 500.
func respondError(c *gin.Context, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			abortWith(c, e.status, e.code, service.Message(err))
			return
		}
	}

	zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("unhandled error")
	abortWith(c, http.StatusInternalServerError, CodeInternal, "An unexpected error occurred")
}

func badRequest(c *gin.Context, message string) {
	abortWith(c, http.StatusBadRequest, CodeValidation, message)
}
