package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/server/response"
)

const sessionKey = "session"

// TokenParser turns a bearer token into the session it was issued for.
type TokenParser interface {
	ParseToken(token string) (models.Session, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// parsed session on the context.
func RequireAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, "missing or invalid token", nil)
			return
		}

		session, err := parser.ParseToken(strings.TrimSpace(token))
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid or expired token", nil)
			return
		}

		c.Set(sessionKey, &session)
		c.Next()
	}
}

// SessionFrom returns the session placed by RequireAuth, or nil.
func SessionFrom(c *gin.Context) *models.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*models.Session); ok {
			return s
		}
	}
	return nil
}
