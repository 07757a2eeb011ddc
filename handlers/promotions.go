package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"promo-restaurant-api/apperr"
	"promo-restaurant-api/models"
	"promo-restaurant-api/store"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const msgPromotionNotFound = "Promoción no encontrada"

type PromotionRequest struct {
	RestaurantID uint      `json:"idRestaurante" binding:"required"`
	Title        string    `json:"titulo" binding:"required,max=150"`
	Description  string    `json:"descripcion" binding:"required"`
	Price        float64   `json:"precio" binding:"min=0"`
	StartDate    time.Time `json:"fechaInicio" binding:"required"`
	EndDate      time.Time `json:"fechaFin" binding:"required,gtefield=StartDate"`
	Status       *int      `json:"estado" binding:"omitempty,oneof=0 1"`
}

// ── Promotions ──────────────────────────────────────────────────────────────

// ListPromotions returns visible promotions that have not ended (public)
func (h *CatalogHandler) ListPromotions(c *gin.Context) {
	promos, err := h.store.Promotions.ListActive(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err, "Error al listar promociones")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(promos), "promociones": promos})
}

// ListRestaurantPromotions returns every promotion of one restaurant (public)
func (h *CatalogHandler) ListRestaurantPromotions(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.store.Restaurants.FindByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = apperr.NotFound(msgRestaurantNotFound)
		}
		respondError(c, err, "Error al listar promociones")
		return
	}
	promos, err := h.store.Promotions.ListByRestaurant(ctx, id)
	if err != nil {
		respondError(c, err, "Error al listar promociones")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(promos), "promociones": promos})
}

// CreatePromotion adds a promotion to the restaurant named in the body.
// The body was already peeked at by the ownership guard, hence ShouldBindBodyWith.
func (h *CatalogHandler) CreatePromotion(c *gin.Context) {
	var req PromotionRequest
	if !handleBindError(c, c.ShouldBindBodyWith(&req, binding.JSON)) {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.store.Restaurants.FindByID(ctx, req.RestaurantID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = apperr.NotFound(msgRestaurantNotFound)
		}
		respondError(c, err, "Error al crear la promoción")
		return
	}

	promo := models.Promotion{
		RestaurantID: req.RestaurantID,
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		Price:        req.Price,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Status:       models.PromotionActive,
	}
	if req.Status != nil {
		promo.Status = models.PromotionStatus(*req.Status)
	}
	if err := h.store.Promotions.Create(ctx, &promo); err != nil {
		respondError(c, err, "Error al crear la promoción")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Promoción creada", "promocion": promo})
}

// UpdatePromotion replaces the editable fields of a promotion. The restaurant
// it belongs to cannot change.
func (h *CatalogHandler) UpdatePromotion(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	promo, err := h.store.Promotions.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		err = apperr.NotFound(msgPromotionNotFound)
	}
	if err != nil {
		respondError(c, err, "Error al actualizar la promoción")
		return
	}

	req := PromotionRequest{
		RestaurantID: promo.RestaurantID,
		Title:        promo.Title,
		Description:  promo.Description,
		Price:        promo.Price,
		StartDate:    promo.StartDate,
		EndDate:      promo.EndDate,
	}
	if !bindJSON(c, &req) {
		return
	}

	promo.Title = strings.TrimSpace(req.Title)
	promo.Description = strings.TrimSpace(req.Description)
	promo.Price = req.Price
	promo.StartDate = req.StartDate
	promo.EndDate = req.EndDate
	if req.Status != nil {
		promo.Status = models.PromotionStatus(*req.Status)
	}
	if err := h.store.Promotions.Save(ctx, promo); err != nil {
		respondError(c, err, "Error al actualizar la promoción")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Promoción actualizada", "promocion": promo})
}

// DeletePromotion removes a promotion
func (h *CatalogHandler) DeletePromotion(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	err := h.store.Promotions.Delete(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		err = apperr.NotFound(msgPromotionNotFound)
	}
	if err != nil {
		respondError(c, err, "Error al eliminar la promoción")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Promoción eliminada"})
}
