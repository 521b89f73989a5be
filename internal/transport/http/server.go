package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	appsvc "anonymizer-api/internal/app"
	"anonymizer-api/internal/bootstrap"
	"anonymizer-api/internal/transport/http/handler"
	"anonymizer-api/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.AccessLog(app.Logger), gin.Recovery())
	if corsMW, ok := newCORS(app.Config.CORS.AllowOrigins); ok {
		router.Use(corsMW)
	}

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/", healthHandler.Root)
	router.GET("/test", healthHandler.Test)
	router.GET("/healthz", healthHandler.Check)
	router.Static(app.Config.Storage.URLPrefix, app.Config.Storage.StaticDir)

	authService := appsvc.NewAuthService(app.Users, app.Config.Auth.JWTSecret, app.Config.TokenTTL())
	imageService := appsvc.NewImageService(
		app.Anonymizer,
		app.Static,
		app.Config.Anonymize.JPEGQuality,
		app.Config.MaxUploadBytes(),
		app.Logger,
	)
	authHandler := handler.NewAuthHandler(authService)
	uploadHandler := handler.NewUploadHandler(imageService)

	requireAuth := middleware.AuthJWT(app.Config.Auth.JWTSecret)

	router.POST("/register/", authHandler.Register)
	router.POST("/login/", authHandler.Login)
	router.GET("/profile/", requireAuth, authHandler.Profile)
	router.POST("/upload/", requireAuth, uploadHandler.Upload)

	return router
}

func newCORS(origins []string) (gin.HandlerFunc, bool) {
	if len(origins) == 0 {
		return nil, false
	}

	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cors.New(cfg), true
		}
	}
	cfg.AllowOrigins = origins
	return cors.New(cfg), true
}
