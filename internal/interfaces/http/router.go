// Package http wires the gin engine, middleware, and handlers.
package http

import (
	"github.com/gin-gonic/gin"

	"nomadly/internal/infrastructure/config"
	"nomadly/internal/interfaces/http/handlers"
	"nomadly/internal/interfaces/http/middleware"
	"nomadly/internal/shared/logger"
)

type Router struct {
	engine         *gin.Engine
	webhookHandler *handlers.WebhookHandler
	orderHandler   *handlers.OrderHandler
	domainHandler  *handlers.DomainHandler
	healthHandler  *handlers.HealthHandler
	logger         logger.Interface
}

func NewRouter(
	webhookHandler *handlers.WebhookHandler,
	orderHandler *handlers.OrderHandler,
	domainHandler *handlers.DomainHandler,
	healthHandler *handlers.HealthHandler,
	log logger.Interface,
) *Router {
	return &Router{
		engine:         gin.New(),
		webhookHandler: webhookHandler,
		orderHandler:   orderHandler,
		domainHandler:  domainHandler,
		healthHandler:  healthHandler,
		logger:         log,
	}
}

// SetupRoutes configures all HTTP routes.
func (r *Router) SetupRoutes(cfg *config.Config) {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(middleware.Recovery())

	r.engine.GET("/health", r.healthHandler.HealthCheck)

	// Gateways deliver callbacks as GET query params or POST JSON.
	r.engine.GET("/webhook/:gateway/:order_id", r.webhookHandler.HandleCallback)
	r.engine.POST("/webhook/:gateway/:order_id", r.webhookHandler.HandleCallback)

	r.engine.POST("/orders", r.orderHandler.CreateOrder)
	r.engine.PUT("/domains/:domain_id/nameservers", r.domainHandler.UpdateNameservers)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
