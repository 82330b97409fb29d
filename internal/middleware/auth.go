package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const ContextAccountKey = "account"

type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// RequireSession 必须携带有效的钱包会话
func RequireSession(auth SessionAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "please connect wallet first"})
			return
		}

		account, err := auth.Authenticate(c.Request.Context(), tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
			return
		}

		c.Set(ContextAccountKey, account)
		c.Next()
	}
}

// OptionalSession 有有效会话就注入 account，没有也放行，由业务层决定
func OptionalSession(auth SessionAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr, ok := bearerToken(c); ok {
			if account, err := auth.Authenticate(c.Request.Context(), tokenStr); err == nil {
				c.Set(ContextAccountKey, account)
			}
		}
		c.Next()
	}
}

// AccountFromCtx 未连接钱包时返回空串
func AccountFromCtx(c *gin.Context) string {
	return c.GetString(ContextAccountKey)
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
