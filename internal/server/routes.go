package server

import (
	"github.com/nulzo/openroute/internal/server/middleware"
	v1 "github.com/nulzo/openroute/internal/server/v1"
	"github.com/nulzo/openroute/internal/server/validator"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.ErrorHandler(s.logger))
	s.router.Use(middleware.Identity())

	healthHandler := v1.NewHealthHandler(s.version)
	s.router.GET("/health", healthHandler.Health)

	limiter := middleware.NewRateLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst, s.logger)

	api := s.router.Group("/v1")
	api.Use(middleware.Auth(s.config.Server.APIKeys))
	api.Use(limiter.Middleware())
	{
		chatHandler := v1.NewChatHandler(s.service, validator.New())
		api.POST("/chat/completions", chatHandler.CreateCompletion)
		api.POST("/route", chatHandler.Route)

		modelsHandler := v1.NewModelHandler(s.service)
		api.GET("/models", modelsHandler.ListModels)
		api.GET("/models/popular", modelsHandler.PopularModels)

		configHandler := v1.NewConfigHandler(s.config.Router, s.service)
		api.GET("/router", configHandler.Get)

		if s.analytics != nil {
			analyticsHandler := v1.NewAnalyticsHandler(s.analytics)
			api.GET("/analytics/usage", analyticsHandler.GetUsage)
			api.GET("/routes/recent", analyticsHandler.RecentRoutes)
			api.GET("/routes/:id", analyticsHandler.GetRoute)
		}
	}
}
