package middleware

import (
	"strings"

	"resellops/pkg/auth"
	"resellops/pkg/config"
	"resellops/pkg/errutil"
	"resellops/pkg/rbac"

	"github.com/gin-gonic/gin"
)

// Authenticate verifies the bearer token and attaches the principal to the
// request context. A missing or invalid token is an unauthorized error,
// distinct from the forbidden error produced by Authorize.
func Authenticate(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, errutil.Unauthorized("missing authorization header"))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abort(c, errutil.Unauthorized("invalid authorization header"))
			return
		}

		principal, err := auth.ParseToken(parts[1], cfg.Session.Secret)
		if err != nil {
			abort(c, errutil.Unauthorized("invalid token", errutil.WithErr(err)))
			return
		}

		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

// Authorize gates a route on the static permission table. Must run after
// Authenticate.
func Authorize(resource rbac.Resource, action rbac.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := auth.FromContext(c.Request.Context())
		if !ok {
			abort(c, errutil.Unauthorized("no authenticated principal"))
			return
		}

		if !rbac.Allow(principal.Role, resource, action) {
			abort(c, errutil.Forbidden("role not permitted for this operation"))
			return
		}

		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
