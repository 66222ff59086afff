// Package http wires the gin engine: middleware, the /auth endpoints, health
// probes and the Prometheus endpoint.
package http

import (
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/http/handlers"
	"github.com/dmitrijs2005/gophauth/internal/server/http/middleware"
	"github.com/dmitrijs2005/gophauth/internal/server/http/respond"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/gin-gonic/gin"
)

type Dependencies struct {
	Users    handlers.UserService
	Resets   handlers.ResetService
	Verifier middleware.TokenVerifier
	DB       handlers.Pinger
	Metrics  *metrics.Metrics
	Logger   logging.Logger
	DevMode  bool
}

func NewRouter(deps Dependencies) *gin.Engine {
	respond.UseJSONFieldNames()

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(gin.Recovery())

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Resets, deps.Metrics, deps.DevMode)

	router.GET("/healthz", handlers.Health)
	if deps.DB != nil {
		router.GET("/readyz", handlers.Ready(deps.DB))
	}
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
		authGroup.GET("/me", middleware.Auth(deps.Verifier), authHandler.Me)
	}

	return router
}
