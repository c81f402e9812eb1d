package controllers

import (
	"net/http"

	"github.com/tableserve/pos-backend/api/responses"
	"github.com/tableserve/pos-backend/api/validators"
	"github.com/tableserve/pos-backend/internal/catalog"
	"github.com/tableserve/pos-backend/internal/register"
	pkgerrors "github.com/tableserve/pos-backend/pkg/errors"
	"github.com/tableserve/pos-backend/pkg/logger"
	"github.com/tableserve/pos-backend/pkg/money"
)

// ListProducts returns the product catalog, optionally filtered by a
// case-insensitive name substring via ?name=.
func ListProducts(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		filter := validators.SanitizeString(r.URL.Query().Get("name"), 80)
		products := svc.Products(r.Context(), filter)

		views := make([]productView, 0, len(products))
		for _, p := range products {
			views = append(views, newProductView(p))
		}
		responses.WriteSuccess(w, map[string]any{"products": views})
	}
}

// ListAddons returns the add-on catalog.
func ListAddons(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		addons := svc.Addons(r.Context())

		views := make([]addonView, 0, len(addons))
		for _, a := range addons {
			views = append(views, newAddonView(a))
		}
		responses.WriteSuccess(w, map[string]any{"addons": views})
	}
}

// ReloadCatalog re-reads the product and add-on files. Refused while an
// order is open; the reply carries the per-record load report.
func ReloadCatalog(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		report, err := svc.ReloadCatalog(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

type productView struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	PriceCents   int    `json:"price_cents"`
	Price        string `json:"price"`
	Stock        int    `json:"stock"`
	PresetAddons []int  `json:"preset_addons,omitempty"`
}

type addonView struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
	Price      string `json:"price"`
	Stock      int    `json:"stock"`
}

func newProductView(p catalog.Product) productView {
	return productView{
		ID:           p.ID,
		Name:         p.Name,
		PriceCents:   p.PriceCents,
		Price:        money.FormatCents(p.PriceCents),
		Stock:        p.Stock,
		PresetAddons: p.PresetAddons,
	}
}

func newAddonView(a catalog.Addon) addonView {
	return addonView{
		ID:         a.ID,
		Name:       a.Name,
		PriceCents: a.PriceCents,
		Price:      money.FormatCents(a.PriceCents),
		Stock:      a.Stock,
	}
}
