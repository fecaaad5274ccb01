package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/geocoder89/invoicehub/internal/security"
	"github.com/geocoder89/invoicehub/internal/service"
	"github.com/gin-gonic/gin"
)

// RequestIDKey is where the request id middleware leaves the id.
const RequestIDKey = "request_id"

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Status    int         `json:"status"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(RequestIDKey)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

// RespondError writes the error envelope and aborts the chain.
func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.AbortWithStatusJSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			Status:    status,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnauthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondNotImplemented(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotImplemented, "not_implemented", message, nil)
}

// RespondServiceError maps service errors onto the HTTP taxonomy. Anything
// unrecognised is a 500 whose cause stays in the logs.
func RespondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrConflict):
		RespondError(ctx, http.StatusBadRequest, "email_taken", "User already exists with this email", nil)
	case errors.Is(err, service.ErrPasswordTooLong):
		RespondBadRequest(ctx, "Invalid request body", gin.H{"fields": []FieldError{{
			Field:   "password",
			Rule:    "max",
			Param:   strconv.Itoa(security.MaxPasswordBytes),
			Message: "must be at most " + strconv.Itoa(security.MaxPasswordBytes) + " bytes",
		}}})
	case errors.Is(err, service.ErrInvalidCredentials):
		RespondUnauthorized(ctx, "invalid_credentials", "Invalid email or password")
	case errors.Is(err, service.ErrNotFound):
		RespondNotFound(ctx, "User not found")
	default:
		RespondInternal(ctx, "Internal server error")
	}
}
