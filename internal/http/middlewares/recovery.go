package middlewares

import (
	"log/slog"
	"runtime/debug"

	"github.com/geocoder89/invoicehub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

// Recovery turns a handler panic into a logged 500 with the usual error body.
// The process keeps serving.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.ErrorContext(c.Request.Context(), "handler panic",
			"panic", recovered,
			"route", c.FullPath(),
			"request_id", c.GetString(CtxRequestID),
			"stack", string(debug.Stack()),
		)

		handlers.RespondInternal(c, "Internal server error")
	})
}
