// Package actorctx carries the authenticated caller through gin and
// context.Context so handlers and services never depend on middleware keys.
package actorctx

import (
	"context"

	"github.com/geocoder89/invoicehub/internal/auth"
	"github.com/gin-gonic/gin"
)

type ctxKey string

const keyIdentity ctxKey = "actor.identity"

// gin keys, readable with c.GetString
const (
	GinUserID = "auth.userID"
	GinEmail  = "auth.email"
)

func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, keyIdentity, id)
}

func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(keyIdentity).(auth.Identity)

	return id, ok && id.UserID != ""
}

func UserIDFrom(ctx context.Context) (string, bool) {
	id, ok := IdentityFrom(ctx)

	return id.UserID, ok
}

// Set stores id on both the gin context and the request context.
func Set(c *gin.Context, id auth.Identity) {
	c.Set(GinUserID, id.UserID)
	c.Set(GinEmail, id.Email)
	c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
}

func FromGin(c *gin.Context) (auth.Identity, bool) {
	userID := c.GetString(GinUserID)
	if userID == "" {
		return auth.Identity{}, false
	}

	return auth.Identity{UserID: userID, Email: c.GetString(GinEmail)}, true
}
