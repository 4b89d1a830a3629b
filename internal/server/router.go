// Package server assembles the gin engine: middleware chain and routes.
package server

import (
	"github.com/gin-gonic/gin"

	"aetherlink-be/internal/auth"
	"aetherlink-be/internal/controllers"
	"aetherlink-be/internal/middleware"
	"aetherlink-be/internal/ratelimit"
	"aetherlink-be/internal/service"
)

// Deps is everything the router needs. RateLimiter and Stats may be nil.
type Deps struct {
	AuthService    service.AuthService
	ProfileService service.ProfileService
	LinkService    service.LinkService
	Verifier       auth.TokenVerifier
	RateLimiter    *middleware.RateLimiter
	Origins        middleware.OriginPolicy
	Stats          *ratelimit.MemoryStats
	Storage        string
	FrontendURL    string
	InternalToken  string
}

func NewRouter(d Deps) *gin.Engine {
	authController := controllers.NewAuthController(d.AuthService, d.InternalToken)
	profileController := controllers.NewProfileController(d.ProfileService)
	linkController := controllers.NewLinkController(d.LinkService, d.ProfileService)
	qrcodeController := controllers.NewQRCodeController(d.ProfileService, d.FrontendURL)
	healthController := controllers.NewHealthController(d.Storage, d.Stats)

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORS(d.Origins))
	if d.RateLimiter != nil {
		router.Use(d.RateLimiter.LimitMiddleware())
	}

	router.GET("/health", healthController.Health)

	requireAuth := middleware.AuthMiddleware(d.Verifier)
	optionalAuth := middleware.OptionalAuth(d.Verifier)

	api := router.Group("/api/v1")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authController.Register)
			authRoutes.POST("/login", authController.Login)
			authRoutes.GET("/user", authController.GetUser)
			if d.InternalToken != "" {
				authRoutes.GET("/verify", authController.Verify)
			}
		}

		profiles := api.Group("/profiles")
		{
			profiles.GET("", profileController.GetByUserID)
			profiles.POST("", requireAuth, profileController.Create)
			profiles.GET("/check-handle", profileController.CheckHandle)
			profiles.GET("/handle/:handle", optionalAuth, profileController.GetByHandle)
			profiles.GET("/handle/:handle/qrcode", qrcodeController.GenerateQRCode)
			profiles.GET("/:id", profileController.GetByID)
			profiles.PATCH("/:id", requireAuth, profileController.Update)
			profiles.DELETE("/:id", requireAuth, profileController.Delete)
		}

		links := api.Group("/links")
		{
			links.GET("", linkController.List)
			links.POST("", requireAuth, linkController.Create)
			links.POST("/reorder", requireAuth, linkController.Reorder)
			links.GET("/:id", linkController.Get)
			links.PATCH("/:id", requireAuth, linkController.Update)
			links.DELETE("/:id", requireAuth, linkController.Delete)
			links.POST("/:id/click", linkController.Click)
		}
	}

	return router
}
