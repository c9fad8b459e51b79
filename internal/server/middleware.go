package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/tallybook/ledgerd/pkg/tenantctx"
)

const tenantHeader = "X-Tenant-ID"

// TenantMiddleware requires the tenant header and stashes the parsed ID in
// the request context for handlers and services.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(tenantHeader))
		if raw == "" {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			AbortWithError(c, ErrInvalidRequest)
			return
		}

		ctx := tenantctx.WithTenantID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func tenantID(c *gin.Context) (snowflake.ID, bool) {
	return tenantctx.TenantID(c.Request.Context())
}
