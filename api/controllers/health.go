package controllers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/tableserve/pos-backend/api/middleware"
	"github.com/tableserve/pos-backend/api/responses"
	"github.com/tableserve/pos-backend/pkg/config"
	"github.com/tableserve/pos-backend/pkg/instance"
)

// Health reports liveness plus readiness of the flat-file stores. The
// ledger file is created on first append, so only its directory has to
// exist up front.
func Health(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TableServe-Env", cfg.App.Env)

		files := map[string]string{
			"products": pathStatus(cfg.Data.ProductsPath()),
			"addons":   pathStatus(cfg.Data.AddonsPath()),
			"ledger":   pathStatus(filepath.Dir(cfg.Data.LedgerPath())),
		}

		status := "ok"
		httpStatus := http.StatusOK
		for _, st := range files {
			if st != "ok" {
				status = "degraded"
				httpStatus = http.StatusServiceUnavailable
			}
		}

		terminal := middleware.TerminalIDFromContext(r.Context())
		if terminal == "" {
			terminal = instance.GetID()
		}

		responses.WriteSuccessStatus(w, httpStatus, map[string]any{
			"status":   status,
			"terminal": terminal,
			"files":    files,
		})
	}
}

func pathStatus(path string) string {
	if _, err := os.Stat(path); err != nil {
		return err.Error()
	}
	return "ok"
}
