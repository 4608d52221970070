package http

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

type ctxKey string

const loggerKey ctxKey = "logger"

// RequestIDLogMiddleware injects a request-scoped *slog.Logger carrying the
// request ID into the user context, so services log traceably downstream.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid, ok := c.Locals("requestid").(string)
		if !ok || rid == "" {
			return c.Next()
		}

		reqLogger := slog.Default().With("request_id", rid)
		c.SetUserContext(context.WithValue(c.UserContext(), loggerKey, reqLogger))

		return c.Next()
	}
}

// LoggerFromCtx extracts the per-request slog.Logger from a context,
// falling back to the default logger.
func LoggerFromCtx(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
