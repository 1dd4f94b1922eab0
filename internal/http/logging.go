package http

import (
	"log/slog"
	"net/http"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// handlerLogger returns the request scoped logger tagged with the handler,
// the operation and the route pattern that matched r.
func handlerLogger(r *http.Request, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	logger := LoggerFromContext(r.Context())
	if logger == nil {
		logger = defaultLogger(fallback)
	}

	pairs := make([]any, 0, 6+len(attrs))
	pairs = append(pairs, "handler", handlerName, "operation", operation)
	if r.Pattern != "" {
		pairs = append(pairs, "route", r.Pattern)
	}
	return logger.With(append(pairs, attrs...)...)
}
