package controllers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tableserve/pos-backend/pkg/config"
)

func TestHealth(t *testing.T) {
	t.Run("reports ok when files exist", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"products.txt", "addons.txt"} {
			if err := os.WriteFile(filepath.Join(dir, name), []byte(""), 0o644); err != nil {
				t.Fatalf("write %s: %v", name, err)
			}
		}

		cfg := &config.Config{
			App: config.AppConfig{Env: "test", Port: "0"},
			Data: config.DataConfig{
				Dir:          dir,
				ProductsFile: "products.txt",
				AddonsFile:   "addons.txt",
				LedgerFile:   "orders.txt",
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
		rec := httptest.NewRecorder()
		Health(cfg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get("X-TableServe-Env"); got != "test" {
			t.Fatalf("expected env header, got %q", got)
		}
		if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
			t.Fatalf("expected ok status, got %s", rec.Body.String())
		}
	})

	t.Run("degrades when a backing file is missing", func(t *testing.T) {
		cfg := &config.Config{
			App: config.AppConfig{Env: "test", Port: "0"},
			Data: config.DataConfig{
				Dir:          filepath.Join(t.TempDir(), "absent"),
				ProductsFile: "products.txt",
				AddonsFile:   "addons.txt",
				LedgerFile:   "orders.txt",
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
		rec := httptest.NewRecorder()
		Health(cfg).ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"status":"degraded"`) {
			t.Fatalf("expected degraded status, got %s", rec.Body.String())
		}
	})
}
