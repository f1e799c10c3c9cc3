package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/scoreboard/internal/api/apierr"
	"github.com/mcoot/scoreboard/internal/middleware"
)

// Recovery turns a panicking score or account handler into a JSON 500.
// The connection is closed since the handler may have left it mid-write.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, writePanicResponse)
}

func writePanicResponse(w http.ResponseWriter, _ *http.Request, _ any) {
	w.Header().Set("Connection", "close")
	apierr.WriteError(w, apierr.NewInternalError())
}
