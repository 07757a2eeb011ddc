package routes

import (
	"promo-restaurant-api/handlers"
	"promo-restaurant-api/metrics"
	"promo-restaurant-api/middleware"
	"promo-restaurant-api/models"
	"promo-restaurant-api/security"
	"promo-restaurant-api/services"
	"promo-restaurant-api/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/unrolled/secure"
)

// Deps is everything the router needs, built once at startup.
type Deps struct {
	Store    *store.Store
	Tokens   *security.TokenManager
	Auth     *services.AuthService
	Requests *services.RequestService
	Users    *services.UserService
	Log      zerolog.Logger

	// AuthLimiter guards credential endpoints; nil disables it.
	AuthLimiter gin.HandlerFunc
	Secure      secure.Options
	CORSOrigin  string
}

// NewRouter builds the engine with the global middleware chain and all routes.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestLogger(d.Log),
		middleware.Recovery(),
		middleware.Secure(d.Secure),
		middleware.CORS(d.CORSOrigin),
		metrics.Middleware(),
	)
	SetupRoutes(r, d)
	return r
}

func SetupRoutes(r *gin.Engine, d Deps) {
	authH := handlers.NewAuthHandler(d.Auth)
	catalog := handlers.NewCatalogHandler(d.Store)
	requests := handlers.NewRequestHandler(d.Requests)
	admin := handlers.NewAdminHandler(d.Users)

	limit := d.AuthLimiter
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}
	authRequired := middleware.AuthRequired(d.Tokens)
	adminOnly := middleware.RoleRequired(models.RoleAdmin)

	restaurantOwner := middleware.OwnerOrAdmin("id", "Restaurante no encontrado", d.Store.Restaurants.OwnerOf)
	promotionOwner := middleware.OwnerOrAdmin("id", "Promoción no encontrada", d.Store.Promotions.OwnerOf)
	bodyRestaurantOwner := middleware.OwnerOrAdminByBody("idRestaurante", "Restaurante no encontrado", d.Store.Restaurants.OwnerOf)

	r.GET("/health", handlers.Health(d.Store))
	r.GET("/metrics", metrics.Handler())

	// ── Auth ───────────────────────────────────────────────────────
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", limit, authH.Register)
		auth.POST("/login", limit, authH.Login)
		auth.POST("/refresh", authH.Refresh)
		auth.POST("/logout", authH.Logout)
		auth.POST("/forgot-password", limit, authH.ForgotPassword)
		auth.POST("/reset-password", authH.ResetPassword)
		auth.GET("/me", authRequired, authH.GetProfile)
	}

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.GET("/restaurantes", catalog.ListRestaurants)
		public.GET("/restaurantes/:id", catalog.GetRestaurant)
		public.GET("/promociones", catalog.ListPromotions)
		public.GET("/promociones/restaurante/:id", catalog.ListRestaurantPromotions)

		// State machine info (great for docs/Postman)
		public.GET("/state-machine", handlers.GetStateMachineInfo)
	}

	// ── Restaurant owner routes ────────────────────────────────────
	owner := r.Group("/api")
	owner.Use(authRequired)
	{
		owner.PUT("/restaurantes/:id", restaurantOwner, catalog.UpdateRestaurant)
		owner.DELETE("/restaurantes/:id", restaurantOwner, catalog.DeleteRestaurant)

		owner.POST("/promociones", bodyRestaurantOwner, catalog.CreatePromotion)
		owner.PUT("/promociones/:id", promotionOwner, catalog.UpdatePromotion)
		owner.DELETE("/promociones/:id", promotionOwner, catalog.DeletePromotion)
	}

	// ── Ownership requests ─────────────────────────────────────────
	solicitudes := r.Group("/api/solicitudes-restaurante")
	solicitudes.Use(authRequired)
	{
		solicitudes.POST("", requests.Create)
		solicitudes.GET("/mine", requests.Mine)

		solicitudes.GET("", adminOnly, requests.List)
		solicitudes.GET("/:id", adminOnly, requests.Get)
		solicitudes.PATCH("/:id/aprobar", adminOnly, requests.Approve)
		solicitudes.PATCH("/:id/rechazar", adminOnly, requests.Reject)
		solicitudes.PUT("/:id", adminOnly, requests.UpdateStatus)
	}

	// ── Admin routes ───────────────────────────────────────────────
	usuarios := r.Group("/api/usuarios")
	usuarios.Use(authRequired, adminOnly)
	{
		usuarios.GET("", admin.GetAllUsers)
		usuarios.PATCH("/:id/desactivar", admin.DisableUser)
	}
}
