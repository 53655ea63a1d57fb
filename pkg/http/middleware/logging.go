package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	applogger "ChartFeed/pkg/logger"
)

// RequestLogging logs each HTTP request with method, path, status and latency.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			if l != nil {
				l.Info("http request",
					applogger.String("method", c.Request().Method),
					applogger.String("path", c.Path()),
					applogger.Int("status", c.Response().Status),
					applogger.Duration("latency", time.Since(start)),
				)
			}

			return err
		}
	}
}
