package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"candlecast/internal/repository"
	"candlecast/internal/service"
	"candlecast/internal/storage/models"
)

type fakeCandleRepository struct {
	lastFilter repository.CandleFilter
	result     []models.Candle
}

func (f *fakeCandleRepository) ListCandles(_ context.Context, filter repository.CandleFilter) ([]models.Candle, error) {
	f.lastFilter = filter
	return f.result, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupRouter(repo repository.CandleRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewCandleHandler(service.NewCandleService(repo), testLogger())
	r := gin.New()
	r.GET("/v1/candles", h.List)
	return r
}

func TestListReturnsCandles(t *testing.T) {
	repo := &fakeCandleRepository{
		result: []models.Candle{{
			Symbol:     "btcusdt",
			BucketTS:   time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
			Open:       decimal.RequireFromString("100"),
			High:       decimal.RequireFromString("102"),
			Low:        decimal.RequireFromString("100"),
			Close:      decimal.RequireFromString("102"),
			Volume:     decimal.RequireFromString("3"),
			BuyVolume:  decimal.RequireFromString("1"),
			SellVolume: decimal.RequireFromString("2"),
			TradeCount: 2,
		}},
	}
	router := setupRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/candles?symbol=btcusdt&sortBy=trade_count&order=asc", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var got []models.Candle
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(got) != 1 || got[0].Symbol != "btcusdt" {
		t.Errorf("Expected one btcusdt candle, got %+v", got)
	}

	if repo.lastFilter.SortBy != "trade_count" {
		t.Errorf("Expected sort field trade_count, got %q", repo.lastFilter.SortBy)
	}
	if repo.lastFilter.Descending {
		t.Error("Expected ascending order")
	}
}

func TestListEmptyResultIsWellFormed(t *testing.T) {
	router := setupRouter(&fakeCandleRepository{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/candles", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if body := w.Body.String(); body != "[]" {
		t.Errorf("Expected empty JSON array, got %q", body)
	}
}

func TestListBadSortParamsStillSucceed(t *testing.T) {
	repo := &fakeCandleRepository{}
	router := setupRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/v1/candles?sortBy=DROP%20TABLE&order=sideways", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected bad sort params to be substituted, got status %d", w.Code)
	}
	if repo.lastFilter.SortBy != "volume" {
		t.Errorf("Expected fallback sort field volume, got %q", repo.lastFilter.SortBy)
	}
	if !repo.lastFilter.Descending {
		t.Error("Expected fallback to descending order")
	}
}
