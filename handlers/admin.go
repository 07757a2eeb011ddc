package handlers

import (
	"net/http"

	"promo-restaurant-api/middleware"
	"promo-restaurant-api/models"
	"promo-restaurant-api/services"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	users *services.UserService
}

func NewAdminHandler(users *services.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

// GetAllUsers returns all users, optionally filtered by ?rol= (admin only)
func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	role := models.UserRole(c.Query("rol"))
	if role != "" && !role.Valid() {
		invalidField(c, "rol", "Rol inválido")
		return
	}
	users, err := h.users.List(c.Request.Context(), role)
	if err != nil {
		respondError(c, err, "Error al listar usuarios")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), "usuarios": users})
}

// DisableUser deactivates an account and signs it out everywhere (admin only)
func (h *AdminHandler) DisableUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, _ := middleware.PrincipalFrom(c)
	user, err := h.users.Disable(c.Request.Context(), *p, id)
	if err != nil {
		respondError(c, err, "Error al desactivar el usuario")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Usuario desactivado", "usuario": user})
}
