package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/gamesessions/internal/api/apierr"
	"github.com/mcoot/gamesessions/internal/middleware"
)

var errInternal = errors.New("internal error")

// Recovery creates panic recovery middleware for the API
// Returns an UNH envelope on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, "", errInternal)
}
