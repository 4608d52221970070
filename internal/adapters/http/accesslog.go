package http

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// AccessLogMiddleware logs HTTP requests with structured slog output:
// method, path, status, latency, bytes sent, request ID, and error if any.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()
		requestID := c.Get(fiber.HeaderXRequestID, "unknown")

		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.String("latency", time.Since(start).String()),
			slog.Int("bytes_out", len(c.Response().Body())),
			slog.String("request_id", requestID),
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
			level = slog.LevelError
		}

		slog.LogAttrs(c.Context(), level, fmt.Sprintf("%s %s", method, path), attrs...)

		return err
	}
}
