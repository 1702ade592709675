// Package service normalizes query parameters and mediates between the HTTP
// handlers and the candle repository.
package service

import (
	"context"

	"candlecast/internal/repository"
	"candlecast/internal/storage/models"
	"candlecast/utils"
)

// CandleQuery carries raw query parameters as received over HTTP.
type CandleQuery struct {
	Symbol    string
	StartDate string
	StartTime string
	EndDate   string
	EndTime   string
	SortBy    string
	Order     string
}

// CandleService answers candle queries against already-durable data.
// Unrecognized sort parameters are substituted with defaults rather than
// rejected, so callers always get a well-formed result set.
type CandleService struct {
	repo repository.CandleRepository
}

// NewCandleService creates a CandleService.
func NewCandleService(repo repository.CandleRepository) *CandleService {
	return &CandleService{repo: repo}
}

// ListCandles normalizes the query and fetches matching candles.
func (s *CandleService) ListCandles(ctx context.Context, q CandleQuery) ([]models.Candle, error) {
	sortBy := q.SortBy
	if !repository.SortableField(sortBy) {
		sortBy = repository.DefaultSortField
	}

	filter := repository.CandleFilter{
		Symbol:     q.Symbol,
		SortBy:     sortBy,
		Descending: q.Order != "asc",
		Start:      utils.StartBound(q.StartDate, q.StartTime),
		End:        utils.EndBound(q.EndDate, q.EndTime),
	}

	candles, err := s.repo.ListCandles(ctx, filter)
	if err != nil {
		return nil, err
	}
	if candles == nil {
		candles = []models.Candle{}
	}
	return candles, nil
}
