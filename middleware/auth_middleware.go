package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sajag-gupta/riseup/domain"
	"github.com/sajag-gupta/riseup/logger"
	"github.com/sajag-gupta/riseup/service"
)

const callerKey = "caller"

// Auth requires a valid bearer token. A missing token is 401; a token that
// fails verification or has expired is 403.
func Auth(tokens service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			logger.Denied(logger.EventInvalidToken, "Missing authorization header", requestOf(c), nil)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Access token required"})
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			event := logger.EventInvalidToken
			if errors.Is(err, service.ErrTokenExpired) {
				event = logger.EventExpiredToken
			}
			logger.Denied(event, "Rejected bearer token", requestOf(c), nil)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Invalid or expired token"})
			return
		}

		c.Set(callerKey, claims.Caller())
		c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(tokens service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearerToken(c); ok {
			if claims, err := tokens.Parse(raw); err == nil {
				c.Set(callerKey, claims.Caller())
			}
		}
		c.Next()
	}
}

// RequireRoles must run after Auth.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CallerFrom(c)
		for _, r := range roles {
			if caller.Role == r {
				c.Next()
				return
			}
		}
		logger.Denied(logger.EventAccessDenied, "Role not permitted", requestOf(c), logger.Fields(
			"role", string(caller.Role),
		))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Insufficient permissions"})
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRoles(domain.RoleAdmin)
}

// CallerFrom returns the caller set by Auth or OptionalAuth, or the
// anonymous caller.
func CallerFrom(c *gin.Context) service.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(service.Caller); ok {
			return caller
		}
	}
	return service.Caller{}
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// requestOf describes c for security entries.
func requestOf(c *gin.Context) logger.Request {
	return logger.Request{
		IP:     c.ClientIP(),
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		UserID: CallerFrom(c).UserID,
	}
}
