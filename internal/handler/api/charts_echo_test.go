package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ChartFeed/internal/domain/models"
	drepo "ChartFeed/internal/domain/repository"
	icache "ChartFeed/internal/service/cache"
	"ChartFeed/internal/service/coingecko"
	"ChartFeed/internal/usecase"
	xlogger "ChartFeed/pkg/logger"
)

type stubProvider struct {
	history *models.MarketHistory
	err     error
}

func (s *stubProvider) Fetch(ctx context.Context, cfg drepo.TimeframeConfig) (*models.MarketHistory, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.history, nil
}

func (s *stubProvider) Source() string { return "stub" }

func newTestServer(p drepo.HistoryProvider) *echo.Echo {
	uc := usecase.NewChartUseCase("bitcoin", p, icache.NewChartCache(), nil, xlogger.Nop())
	h := NewChartsEchoHandler(xlogger.Nop(), uc)

	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func doRequest(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestChartEndpointServesCandles(t *testing.T) {
	e := newTestServer(&stubProvider{history: &models.MarketHistory{
		Prices: []models.PricePoint{{TimestampMs: 0, Price: 10}, {TimestampMs: 100, Price: 11}},
	}})

	rec := doRequest(e, "/api/chart?timeframe=7d")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=300", rec.Header().Get(echo.HeaderCacheControl))

	var envelope struct {
		Status int                  `json:"status"`
		Data   models.ChartResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "7D", envelope.Data.Timeframe)
	assert.Equal(t, "bitcoin", envelope.Data.Pair)
	assert.Equal(t, int64(3600), envelope.Data.GranularitySeconds)
	require.Len(t, envelope.Data.Candles, 1)
}

func TestChartEndpointDefaultsTimeframe(t *testing.T) {
	e := newTestServer(&stubProvider{history: &models.MarketHistory{
		Prices: []models.PricePoint{{TimestampMs: 0, Price: 10}},
	}})

	rec := doRequest(e, "/api/chart")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"timeframe":"1D"`)
}

func TestChartEndpointRejectsUnknownTimeframe(t *testing.T) {
	e := newTestServer(&stubProvider{})

	rec := doRequest(e, "/api/chart?timeframe=2W")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_INVALID_TIMEFRAME")
}

func TestChartEndpointMapsUpstreamErrors(t *testing.T) {
	e := newTestServer(&stubProvider{err: &coingecko.HTTPError{Status: 503}})

	rec := doRequest(e, "/api/chart?timeframe=1D")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_BAD_GATEWAY")
}

func TestHealthEndpoint(t *testing.T) {
	e := newTestServer(&stubProvider{})

	rec := doRequest(e, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}
