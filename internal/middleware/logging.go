package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ContextError holds an error a handler answered with a generic message.
const ContextError = "handler_error"

// RequestLogger writes one structured line per request.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			fields := []zap.Field{
				zap.Int("status", c.Response().Status),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("query", req.URL.RawQuery),
				zap.String("route", c.Path()),
				zap.String("ip", c.RealIP()),
				zap.String("user", currentUserID(c)),
				zap.Duration("latency", time.Since(start)),
				zap.String("user-agent", req.UserAgent()),
			}
			if err == nil {
				err, _ = c.Get(ContextError).(error)
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}
			switch s := c.Response().Status; {
			case s >= 500:
				logger.Error("HTTP Request", fields...)
			case s >= 400:
				logger.Warn("HTTP Request", fields...)
			default:
				logger.Info("HTTP Request", fields...)
			}
			return nil
		}
	}
}
