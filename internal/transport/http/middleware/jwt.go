package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"anonymizer-api/internal/pkg/jwtutil"
	"anonymizer-api/internal/transport/http/response"
)

const ContextEmailKey = "email"

const invalidCredentials = "Invalid authentication credentials"

// AuthJWT rejects the request with 401 unless it carries a valid
// "Authorization: Bearer <token>" header. The token subject is stored under
// ContextEmailKey.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Not authenticated")
			c.Abort()
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, invalidCredentials)
			c.Abort()
			return
		}

		claims, err := jwtutil.ParseToken(secret, strings.TrimSpace(token))
		if err != nil {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, invalidCredentials)
			c.Abort()
			return
		}

		c.Set(ContextEmailKey, claims.Subject)
		c.Next()
	}
}

// EmailFromContext returns the subject stored by AuthJWT.
func EmailFromContext(c *gin.Context) (string, bool) {
	email := c.GetString(ContextEmailKey)
	return email, email != ""
}
