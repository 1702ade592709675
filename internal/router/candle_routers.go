package router

import (
	"github.com/gin-gonic/gin"

	"candlecast/internal/handler"
)

func registerCandleRoutes(router *gin.RouterGroup, candleHandler *handler.CandleHandler) {
	candles := router.Group("/candles")
	{
		candles.GET("", candleHandler.List)
	}
}
