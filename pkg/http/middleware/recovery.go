package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"

	applogger "ChartFeed/pkg/logger"
)

// Recover converts panics in handlers into 500 responses.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					if l != nil {
						l.Error("panic recovered",
							applogger.Any("panic", r),
							applogger.String("stack", string(debug.Stack())),
						)
					}
					err = echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("%v", r))
				}
			}()
			return next(c)
		}
	}
}
