package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/outbound"
)

// Logging returns middleware that logs dispatch start and completion.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, req *outbound.Request, next Handler) *outbound.Response {
		logger.Info("call started",
			slog.String("endpoint", req.Endpoint),
			slog.String("method", req.Method),
			slog.String("url", req.URL),
		)

		start := time.Now()
		resp := next(ctx)
		elapsed := time.Since(start)

		if resp.OK() {
			logger.Info("call completed",
				slog.String("endpoint", req.Endpoint),
				slog.Int("status", resp.StatusCode),
				slog.Duration("elapsed", elapsed),
			)
		} else {
			logger.Error("call failed",
				slog.String("endpoint", req.Endpoint),
				slog.String("category", resp.Category.String()),
				slog.Int("status", resp.StatusCode),
				slog.Duration("elapsed", elapsed),
				slog.String("error", resp.Err),
			)
		}

		return resp
	}
}
