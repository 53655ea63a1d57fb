package api

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	drepo "ChartFeed/internal/domain/repository"
	"ChartFeed/internal/service/coingecko"
	"ChartFeed/internal/usecase"
	xhttp "ChartFeed/pkg/http"
	xlogger "ChartFeed/pkg/logger"
)

// ChartsEchoHandler serves the chart API over Echo.
type ChartsEchoHandler struct {
	logger *xlogger.Logger
	charts *usecase.ChartUseCase
}

func NewChartsEchoHandler(logger *xlogger.Logger, charts *usecase.ChartUseCase) *ChartsEchoHandler {
	return &ChartsEchoHandler{logger: logger, charts: charts}
}

func (h *ChartsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/chart", h.Chart)
	g.GET("/health", h.Health)
}

type chartRequest struct {
	Timeframe string `query:"timeframe" default:"1D"`
}

func (h *ChartsEchoHandler) Chart(c echo.Context) error {
	req := &chartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	tf, ok := drepo.ParseTimeframe(req.Timeframe)
	if !ok {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_INVALID_TIMEFRAME",
			Field:   "timeframe",
			Message: fmt.Sprintf("timeframe %q is not supported", req.Timeframe),
			Params:  map[string]interface{}{"options": drepo.Timeframes()},
		}})
	}

	res, err := h.charts.GetChart(c.Request().Context(), tf)
	if err != nil {
		h.logger.Error("chart usecase error",
			xlogger.String("timeframe", string(tf)),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, mapUpstreamError(err))
	}

	maxAge := int(h.charts.TTLFor(tf).Seconds())
	c.Response().Header().Set(echo.HeaderCacheControl, fmt.Sprintf("public, max-age=%d", maxAge))
	return xhttp.SuccessResponse(c, res)
}

func (h *ChartsEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// mapUpstreamError translates the upstream error taxonomy into HTTP-facing
// AppErrors. All upstream failure kinds surface as 502 with the kind coded.
func mapUpstreamError(err error) error {
	var he *coingecko.HTTPError
	switch {
	case errors.Is(err, coingecko.ErrUnreachable):
		return xhttp.BadGatewayError("upstream provider unreachable").WithError(err)
	case errors.As(err, &he):
		return xhttp.BadGatewayError("upstream provider returned an error").
			WithParam("upstream_status", he.Status).
			WithError(err)
	case errors.Is(err, coingecko.ErrMalformedResponse):
		return xhttp.BadGatewayError("upstream provider returned malformed data").WithError(err)
	default:
		return xhttp.InternalError("chart generation failed").WithError(err)
	}
}
