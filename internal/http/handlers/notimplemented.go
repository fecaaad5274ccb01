package handlers

import "github.com/gin-gonic/gin"

// NotImplemented stands in for the invoice, customer and accounting OAuth
// routes. They are routed and authenticated but have no behaviour yet.
func NotImplemented(feature string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		RespondNotImplemented(ctx, feature+" is not implemented")
	}
}
