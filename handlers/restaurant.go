package handlers

import (
	"errors"
	"net/http"

	"promo-restaurant-api/apperr"
	"promo-restaurant-api/store"

	"github.com/gin-gonic/gin"
)

const msgRestaurantNotFound = "Restaurante no encontrado"

// CatalogHandler serves restaurants and promotions. Ownership checks run in
// middleware before the mutating handlers are reached.
type CatalogHandler struct {
	store *store.Store
}

func NewCatalogHandler(st *store.Store) *CatalogHandler {
	return &CatalogHandler{store: st}
}

// ── Restaurants ─────────────────────────────────────────────────────────────

// ListRestaurants returns all restaurants (public)
func (h *CatalogHandler) ListRestaurants(c *gin.Context) {
	restaurants, err := h.store.Restaurants.List(c.Request.Context(), c.Query("ciudad"), c.Query("search"))
	if err != nil {
		respondError(c, err, "Error al listar restaurantes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(restaurants), "restaurantes": restaurants})
}

// GetRestaurant returns a single restaurant
func (h *CatalogHandler) GetRestaurant(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	restaurant, err := h.store.Restaurants.FindByID(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		err = apperr.NotFound(msgRestaurantNotFound)
	}
	if err != nil {
		respondError(c, err, "Error al obtener el restaurante")
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurante": restaurant})
}

// UpdateRestaurant updates restaurant details
func (h *CatalogHandler) UpdateRestaurant(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	restaurant, err := h.store.Restaurants.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		err = apperr.NotFound(msgRestaurantNotFound)
	}
	if err != nil {
		respondError(c, err, "Error al actualizar el restaurante")
		return
	}

	var req map[string]interface{}
	if !bindJSON(c, &req) {
		return
	}
	// Only allow safe fields; ownership is not transferable here
	allowed := map[string]string{
		"nombreComercial": "name",
		"direccion":       "address",
		"telefono":        "phone",
		"ciudad":          "city",
		"descripcion":     "description",
	}
	update := map[string]interface{}{}
	for k, v := range req {
		col, ok := allowed[k]
		if !ok {
			continue
		}
		s, isString := v.(string)
		if !isString {
			invalidField(c, k, "Debe ser texto")
			return
		}
		update[col] = s
	}
	if name, set := update["name"]; set && name == "" {
		invalidField(c, "nombreComercial", "Campo obligatorio")
		return
	}
	if len(update) > 0 {
		if err := h.store.Restaurants.Update(ctx, restaurant, update); err != nil {
			respondError(c, err, "Error al actualizar el restaurante")
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurante actualizado", "restaurante": restaurant})
}

// DeleteRestaurant removes a restaurant and its promotions
func (h *CatalogHandler) DeleteRestaurant(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	err := h.store.Restaurants.Delete(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		err = apperr.NotFound(msgRestaurantNotFound)
	}
	if err != nil {
		respondError(c, err, "Error al eliminar el restaurante")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Restaurante eliminado"})
}
