package middleware

import (
	"net/http"

	"github.com/tableserve/pos-backend/pkg/logger"
)

const terminalIDHeader = "X-Terminal-Id"

// Terminal stamps every request with the identifier of the register
// serving it, in the context, the log fields, and the response headers.
func Terminal(terminalID string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(terminalIDHeader, terminalID)

			ctx := WithTerminalID(r.Context(), terminalID)
			if logg != nil {
				ctx = logg.WithField(ctx, "terminal_id", terminalID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
