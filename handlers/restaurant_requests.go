package handlers

import (
	"net/http"
	"strings"

	"promo-restaurant-api/metrics"
	"promo-restaurant-api/middleware"
	"promo-restaurant-api/models"
	"promo-restaurant-api/services"
	"promo-restaurant-api/statemachine"

	"github.com/gin-gonic/gin"
)

type CreateRestaurantRequest struct {
	BusinessName string `json:"nombreComercial" binding:"required,max=150"`
	TaxID        string `json:"nit" binding:"omitempty,min=5,max=50"`
	Phone        string `json:"telefono" binding:"omitempty,min=5,max=20"`
	Address      string `json:"direccion" binding:"omitempty,min=5,max=255"`
	City         string `json:"ciudad" binding:"omitempty,min=2,max=100"`
	Description  string `json:"descripcion" binding:"omitempty,min=5,max=500"`
}

// ResolveRequest carries the admin's notes. comentario is an accepted alias.
type ResolveRequest struct {
	Notes   string `json:"observaciones" binding:"omitempty,min=5,max=500"`
	Comment string `json:"comentario" binding:"omitempty,min=5,max=500"`
}

func (r ResolveRequest) notes() *string {
	if n := optional(r.Notes); n != nil {
		return n
	}
	return optional(r.Comment)
}

type UpdateStatusRequest struct {
	Status string `json:"estado" binding:"required"`
	ResolveRequest
}

type RequestHandler struct {
	requests *services.RequestService
}

func NewRequestHandler(requests *services.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// Create files an ownership request for the caller
func (h *RequestHandler) Create(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)
	var req CreateRestaurantRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.BusinessName) == "" {
		invalidField(c, "nombreComercial", "Campo obligatorio")
		return
	}

	created, err := h.requests.Create(c.Request.Context(), p.UserID, services.CreateRequestInput{
		BusinessName: req.BusinessName,
		TaxID:        optional(req.TaxID),
		Phone:        optional(req.Phone),
		Address:      optional(req.Address),
		City:         optional(req.City),
		Description:  optional(req.Description),
	})
	if err != nil {
		respondError(c, err, "Error al solicitar registro como restaurante")
		return
	}
	metrics.RecordRequestTransition(string(models.RequestPending))
	c.JSON(http.StatusCreated, created)
}

// Mine returns the caller's latest request, or null
func (h *RequestHandler) Mine(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)
	req, err := h.requests.Latest(c.Request.Context(), p.UserID)
	if err != nil {
		respondError(c, err, "Error al obtener la solicitud")
		return
	}
	if req == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, req)
}

// List returns every request, optionally filtered by ?estado= (admin only)
func (h *RequestHandler) List(c *gin.Context) {
	var status models.RequestStatus
	if raw := c.Query("estado"); raw != "" {
		parsed, ok := statemachine.ParseFilter(raw)
		if !ok {
			invalidField(c, "estado", "Estado invalido")
			return
		}
		status = parsed
	}
	requests, err := h.requests.List(c.Request.Context(), status)
	if err != nil {
		respondError(c, err, "Error al listar solicitudes")
		return
	}
	c.JSON(http.StatusOK, requests)
}

// Get returns a single request (admin only)
func (h *RequestHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	req, err := h.requests.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error al obtener solicitud")
		return
	}
	c.JSON(http.StatusOK, req)
}

// Approve promotes the requester and provisions their restaurant (admin only)
func (h *RequestHandler) Approve(c *gin.Context) {
	h.resolve(c, models.RequestApproved, "Error al aprobar solicitud")
}

// Reject closes the request without side effects (admin only)
func (h *RequestHandler) Reject(c *gin.Context) {
	h.resolve(c, models.RequestRejected, "Error al rechazar solicitud")
}

func (h *RequestHandler) resolve(c *gin.Context, to models.RequestStatus, fallback string) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req ResolveRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.finish(c, id, to, req.notes(), fallback)
}

// UpdateStatus resolves a request from a single {estado, observaciones} body (admin only)
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	to, ok := statemachine.ParseResolution(req.Status)
	if !ok {
		invalidField(c, "estado", "Estado invalido")
		return
	}
	h.finish(c, id, to, req.notes(), "Error al actualizar solicitud")
}

func (h *RequestHandler) finish(c *gin.Context, id uint, to models.RequestStatus, notes *string, fallback string) {
	p, _ := middleware.PrincipalFrom(c)
	resolved, err := h.requests.Resolve(c.Request.Context(), *p, id, to, notes)
	if err != nil {
		respondError(c, err, fallback)
		return
	}
	metrics.RecordRequestTransition(string(to))
	c.JSON(http.StatusOK, resolved)
}
