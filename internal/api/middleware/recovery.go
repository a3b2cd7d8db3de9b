package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/rightsquest/internal/api/apierr"
	"github.com/mcoot/rightsquest/internal/middleware"
)

// Recovery creates panic recovery middleware for the API
// Returns JSON error responses on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

// Logging re-exports the shared request logger
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}

// RequestID re-exports the shared request id tagger
func RequestID() func(http.Handler) http.Handler {
	return middleware.RequestID()
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
