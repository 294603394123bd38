package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"backoffice-api/internal/config"
	"backoffice-api/internal/metrics"
	"backoffice-api/internal/middleware"
	"backoffice-api/internal/store"
)

// NewRouter builds the full route tree. Shared by main and the handler
// tests, which pass the in-memory store.
func NewRouter(cfg *config.Config, st store.Store, log *zap.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Init(cfg.Metrics.Prefix)

	h := New(st, cfg.Auth.JWTSecret, log, cfg.Auth.RefreshTokenTTL)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	corsCfg.AllowCredentials = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limiter := middleware.NewRateLimiter(cfg.Auth.AuthRatePerSecond, cfg.Auth.AuthRateBurst)
	authGroup := r.Group("/auth", middleware.RateLimit(limiter))
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", middleware.Auth(cfg.Auth.JWTSecret), h.Logout)
	}

	api := r.Group("/api", middleware.Auth(cfg.Auth.JWTSecret))
	{
		api.GET("/me", h.Me)

		api.POST("/appointments", h.CreateAppointment)
		api.GET("/appointments", h.ListAppointments)
		api.GET("/appointments/:id", h.GetAppointment)
		api.PUT("/appointments/:id", h.UpdateAppointment)
		api.DELETE("/appointments/:id", h.DeleteAppointment)

		api.POST("/clients", h.CreateClient)
		api.GET("/clients", h.ListClients)
		api.GET("/clients/:id", h.GetClient)
		api.PUT("/clients/:id", h.UpdateClient)
		api.DELETE("/clients/:id", h.DeleteClient)

		api.POST("/services", h.CreateService)
		api.GET("/services", h.ListServices)
		api.GET("/services/:id", h.GetService)
		api.PUT("/services/:id", h.UpdateService)
		api.DELETE("/services/:id", h.DeleteService)

		api.POST("/invoices", h.CreateInvoice)
		api.GET("/invoices", h.ListInvoices)
		api.GET("/invoices/:id", h.GetInvoice)
		api.GET("/invoices/:id/pdf", h.InvoicePDF)
		api.PUT("/invoices/:id", h.UpdateInvoice)
		api.DELETE("/invoices/:id", h.DeleteInvoice)

		admin := api.Group("/admin")
		{
			admin.DELETE("/users/:id", h.DeleteUser)
			admin.PUT("/users/:id/role", h.UpdateUserRole)
			admin.GET("/actions", h.ListAdminActions)
		}
	}

	return r
}
