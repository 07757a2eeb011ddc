package handlers

import (
	"net/http"

	"promo-restaurant-api/metrics"
	"promo-restaurant-api/middleware"
	"promo-restaurant-api/services"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Name     string `json:"nombre" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func authPayload(res *services.AuthResult) gin.H {
	return gin.H{
		"user":    res.User,
		"access":  res.Tokens.Access,
		"refresh": res.Tokens.Refresh,
	}
}

// Register creates a customer account and returns its first token pair
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	metrics.RecordAuthEvent("register", err == nil)
	if err != nil {
		respondError(c, err, "Error en el registro")
		return
	}
	c.JSON(http.StatusCreated, authPayload(res))
}

// Login authenticates a user and opens a new session
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	metrics.RecordAuthEvent("login", err == nil)
	if err != nil {
		respondError(c, err, "Error en el login")
		return
	}
	c.JSON(http.StatusOK, authPayload(res))
}

// Refresh rotates a refresh token into a new pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	metrics.RecordAuthEvent("refresh", err == nil)
	if err != nil {
		respondError(c, err, "Error al refrescar token")
		return
	}
	c.JSON(http.StatusOK, authPayload(res))
}

// Logout always succeeds, whether or not the token matched a session
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = c.ShouldBindJSON(&req)
	h.auth.Logout(c.Request.Context(), req.RefreshToken)
	metrics.RecordAuthEvent("logout", true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Sesion cerrada"})
}

// ForgotPassword answers the same way for known and unknown emails
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.auth.ForgotPassword(c.Request.Context(), req.Email)
	metrics.RecordAuthEvent("forgot_password", err == nil)
	if err != nil {
		respondError(c, err, "Error al solicitar la recuperación")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Si el correo está registrado, recibirás un enlace para restablecer tu contraseña",
	})
}

// ResetPassword consumes a reset token and sets the new password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.Password)
	metrics.RecordAuthEvent("reset_password", err == nil)
	if err != nil {
		respondError(c, err, "Error al restablecer la contraseña")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Contraseña actualizada"})
}

// GetProfile returns the authenticated user's profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)
	user, err := h.auth.Profile(c.Request.Context(), p.UserID)
	if err != nil {
		respondError(c, err, "Error al obtener el perfil")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
