package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"droneWatch/internal/auth"
	"droneWatch/models"
	"droneWatch/repository"
)

const accountContextKey = "account"

// RequireAuth resolves a Bearer token to a stored account and injects it into
// the request context. It rejects with 401 when the header is missing,
// malformed or fails verification, and with 404 when the token's account no
// longer exists. Role checks stay with individual handlers.
func RequireAuth(tokens *auth.TokenService, accounts repository.AccountRepositoryI) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			respondError(c, http.StatusUnauthorized, "Unauthenticated: no bearer token provided")
			c.Abort()
			return
		}
		p, err := tokens.Verify(tokenStr)
		if err != nil {
			if errors.Is(err, auth.ErrNoSecret) {
				respondInternal(c)
			} else {
				respondError(c, http.StatusUnauthorized, "Invalid or expired token")
			}
			c.Abort()
			return
		}
		acct, err := accounts.GetByID(c.Request.Context(), p.AccountID)
		if err != nil {
			respondInternal(c)
			c.Abort()
			return
		}
		if acct == nil {
			// Token outlived its account.
			respondError(c, http.StatusNotFound, "User not found")
			c.Abort()
			return
		}
		c.Set(accountContextKey, acct)
		c.Next()
	}
}

func accountFromContext(c *gin.Context) *models.Account {
	v, _ := c.Get(accountContextKey)
	acct, _ := v.(*models.Account)
	return acct
}

// RequestLogger logs each request at debug level with method, path, status
// and duration.
func RequestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		dur := time.Since(start)
		log.Debugw("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"remote", c.ClientIP(),
			"status", c.Writer.Status(),
			"duration_ms", float64(dur.Microseconds())/1000.0,
			"size", c.Writer.Size(),
		)
	}
}
