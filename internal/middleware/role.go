package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fleetpay/internal/domain"
	"fleetpay/internal/service"
)

// accountHeader carries the caller's account id. Callers are pre-identified
// by the chat transport in front of this API; there is no authentication here.
const accountHeader = "X-Account-ID"

// AccountIDKey is the gin context key holding the caller's account id.
const AccountIDKey = "account_id"

// AccountID returns the caller's account id set by RequireRole, or 0.
func AccountID(c *gin.Context) int64 {
	return c.GetInt64(AccountIDKey)
}

// RequireRole returns middleware that resolves the caller's account from the
// X-Account-ID header and rejects the request unless the account holds at
// least the required role.
func RequireRole(access *service.AccessService, required domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(accountHeader)
		accountID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || accountID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid " + accountHeader})
			return
		}

		if err := access.RequireRole(c.Request.Context(), accountID, required); err != nil {
			if errors.Is(err, service.ErrAccessDenied) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "access check failed"})
			return
		}

		c.Set(AccountIDKey, accountID)
		c.Next()
	}
}
