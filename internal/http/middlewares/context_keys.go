package middlewares

import "github.com/geocoder89/invoicehub/internal/http/handlers"

// gin context keys set by this package
const (
	CtxRequestID = handlers.RequestIDKey
)
