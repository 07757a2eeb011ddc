package middleware

import (
	"errors"
	"net/http"
	"strings"

	"promo-restaurant-api/apperr"
	"promo-restaurant-api/authz"
	"promo-restaurant-api/models"
	"promo-restaurant-api/security"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const principalKey = "principal"

// AuthRequired validates the access token and injects the principal into context.
// Both "Bearer <token>" and a bare token are accepted.
func AuthRequired(tokens *security.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		p, err := tokens.Verify(token, security.KindAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token inválido o expirado"})
			return
		}
		c.Set(principalKey, p)

		l := zerolog.Ctx(c.Request.Context()).With().Uint("user_id", p.UserID).Logger()
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := PrincipalFrom(c)
		if err := authz.RequireRole(p, roles...); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the authenticated caller, if AuthRequired ran.
func PrincipalFrom(c *gin.Context) (*security.Principal, bool) {
	val, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := val.(security.Principal)
	if !ok {
		return nil, false
	}
	return &p, true
}

// abortWithError answers with the error's status and message. Internal
// failures are logged and hidden behind their generic message.
func abortWithError(c *gin.Context, err error) {
	status := apperr.StatusOf(err)
	msg := "Error interno"
	var e *apperr.Error
	if errors.As(err, &e) {
		msg = e.Message
	}
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}
