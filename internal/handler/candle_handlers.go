// Package handler contains the gin HTTP handlers for the query API.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"candlecast/internal/service"
)

// CandleHandler serves candle query requests.
type CandleHandler struct {
	candleService *service.CandleService
	logger        *slog.Logger
}

// NewCandleHandler creates a CandleHandler.
func NewCandleHandler(svc *service.CandleService, logger *slog.Logger) *CandleHandler {
	return &CandleHandler{
		candleService: svc,
		logger:        logger,
	}
}

// List handles GET /v1/candles. All parameters are optional; unrecognized
// sort fields and directions fall back to defaults, and malformed date
// bounds are treated as absent. Callers never see internal errors, only a
// generic failure status.
func (h *CandleHandler) List(c *gin.Context) {
	query := service.CandleQuery{
		Symbol:    c.Query("symbol"),
		StartDate: c.Query("startDate"),
		StartTime: c.Query("startTime"),
		EndDate:   c.Query("endDate"),
		EndTime:   c.Query("endTime"),
		SortBy:    c.Query("sortBy"),
		Order:     c.Query("order"),
	}

	candles, err := h.candleService.ListCandles(c.Request.Context(), query)
	if err != nil {
		h.logger.Error("candle query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, candles)
}
