// Package router wires the gin routes for the query API.
package router

import (
	"github.com/gin-gonic/gin"

	"candlecast/internal/handler"
)

// Config holds the handlers the router needs.
type Config struct {
	CandleHandler *handler.CandleHandler
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(cfg *Config) *gin.Engine {
	router := gin.Default()

	api := router.Group("/v1/")
	registerCandleRoutes(api, cfg.CandleHandler)

	return router
}
