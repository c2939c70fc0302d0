package middlewares

import (
	"context"

	"github.com/gin-gonic/gin"

	domain "chefgpt-server/internal/domain/conversation"
)

const ownerContextKey = "owner"

// IdentityResolver maps a raw credential to an owner id, never failing.
type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) domain.OwnerID
}

// Identity resolves the Authorization header on every request. Requests
// without a valid credential continue as the anonymous identity.
func Identity(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := resolver.Resolve(c.Request.Context(), c.GetHeader("Authorization"))
		c.Set(ownerContextKey, owner)
		c.Next()
	}
}

// OwnerFromContext returns the resolved caller, Anonymous when none was set.
func OwnerFromContext(c *gin.Context) domain.OwnerID {
	if val, ok := c.Get(ownerContextKey); ok {
		if owner, ok := val.(domain.OwnerID); ok {
			return owner
		}
	}
	return domain.Anonymous
}
