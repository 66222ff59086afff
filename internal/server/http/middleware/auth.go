// Package middleware holds the gin middleware of the HTTP API.
package middleware

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/http/respond"
	"github.com/gin-gonic/gin"
)

// SubjectKey is the gin context key holding the authenticated user id.
const SubjectKey = "user_id"

// TokenVerifier resolves a bearer token to its subject id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Auth lets a request through only with a valid "Authorization: Bearer
// <token>" header. The subject id is stored on the gin context and on the
// request context; the store is never consulted.
func Auth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		if header == "" {
			abort(c, common.ErrMissingToken)
			return
		}

		token, ok := bearerToken(header)
		if !ok {
			abort(c, common.ErrInvalidToken)
			return
		}

		subject, err := v.Verify(token)
		if err != nil {
			if errors.Is(err, common.ErrMissingSecret) {
				abort(c, common.ErrMissingSecret)
				return
			}
			abort(c, common.ErrInvalidToken)
			return
		}

		c.Set(SubjectKey, subject)
		c.Request = c.Request.WithContext(auth.WithSubject(c.Request.Context(), subject))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != common.BearerScheme {
		return "", false
	}
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

func abort(c *gin.Context, err error) {
	respond.Error(c, err)
	c.Abort()
}
