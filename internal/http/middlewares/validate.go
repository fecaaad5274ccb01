package middlewares

import (
	"github.com/geocoder89/invoicehub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

// ValidateJSON binds the body into T and rejects the request with a 400
// before any handler runs. Handlers read the result with
// handlers.ValidatedBody[T].
func ValidateJSON[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body T

		if !handlers.BindJSON(c, &body) {
			return
		}

		handlers.SetValidated(c, body)
		c.Next()
	}
}
