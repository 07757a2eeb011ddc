package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"

	"promo-restaurant-api/authz"
	"promo-restaurant-api/models"
	"promo-restaurant-api/security"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// OwnerOrAdmin lets admins through and restaurant owners only when they own
// the resource named by the path parameter.
func OwnerOrAdmin(param, notFoundMsg string, lookup authz.OwnerLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, decided := screen(c)
		if decided {
			return
		}
		id, ok := parseID(c.Param(param))
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "id inválido"})
			return
		}
		authorize(c, p, id, notFoundMsg, lookup)
	}
}

// OwnerOrAdminByBody is OwnerOrAdmin for routes that carry the restaurant id
// in the JSON body. Handlers must read the body with ShouldBindBodyWith.
func OwnerOrAdminByBody(field, notFoundMsg string, lookup authz.OwnerLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, decided := screen(c)
		if decided {
			return
		}
		var body map[string]interface{}
		_ = c.ShouldBindBodyWith(&body, binding.JSON)
		id, ok := bodyID(body[field])
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": field + " inválido"})
			return
		}
		authorize(c, p, id, notFoundMsg, lookup)
	}
}

// screen settles the cases that need no lookup: missing principal, admins,
// and anyone who is not a restaurant owner. decided is true once the chain
// has been continued or aborted.
func screen(c *gin.Context) (p *security.Principal, decided bool) {
	p, _ = PrincipalFrom(c)
	if err := authz.RequireRole(p, models.RoleAdmin, models.RoleRestaurant); err != nil {
		abortWithError(c, err)
		return nil, true
	}
	if p.Role == models.RoleAdmin {
		c.Next()
		return p, true
	}
	return p, false
}

func authorize(c *gin.Context, p *security.Principal, id uint, notFoundMsg string, lookup authz.OwnerLookup) {
	if err := authz.Authorize(c.Request.Context(), p, id, notFoundMsg, lookup); err != nil {
		abortWithError(c, err)
		return
	}
	c.Next()
}

func parseID(raw string) (uint, bool) {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func bodyID(v interface{}) (uint, bool) {
	switch x := v.(type) {
	case float64:
		if x <= 0 || x != float64(uint(x)) {
			return 0, false
		}
		return uint(x), true
	case json.Number:
		return parseID(x.String())
	case string:
		return parseID(x)
	}
	return 0, false
}
