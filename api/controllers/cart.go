package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tableserve/pos-backend/api/responses"
	"github.com/tableserve/pos-backend/api/validators"
	"github.com/tableserve/pos-backend/internal/cart"
	"github.com/tableserve/pos-backend/internal/register"
	pkgerrors "github.com/tableserve/pos-backend/pkg/errors"
	"github.com/tableserve/pos-backend/pkg/logger"
)

// CartFetch returns the active order: grouped lines, a flat line list,
// running totals, and the order state.
func CartFetch(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}
		responses.WriteSuccess(w, newCartResponse(svc.Cart(r.Context())))
	}
}

// CartAddProduct adds a product to the active order. Quantity defaults
// to one; preset add-ons expand per unit.
func CartAddProduct(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		var payload addProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		qty := payload.Qty
		if qty == 0 {
			qty = 1
		}

		view, err := svc.AddProduct(r.Context(), payload.ProductID, qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

// CartAttachAddon attaches an add-on to one product group. Without a
// group index the newest group is targeted.
func CartAttachAddon(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		var payload attachAddonRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		qty := payload.Qty
		if qty == 0 {
			qty = 1
		}
		groupIndex := register.AttachToLastGroup
		if payload.GroupIndex != nil {
			groupIndex = *payload.GroupIndex
		}

		view, err := svc.AttachAddon(r.Context(), groupIndex, payload.AddonID, qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

// CartRemoveLastLine undoes the most recent line: the newest add-on of
// the newest group, else the whole group.
func CartRemoveLastLine(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		line, view, err := svc.RemoveLastLine(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"removed": line,
			"cart":    newCartResponse(view),
		})
	}
}

// CartRemoveGroup removes one product group and its add-ons.
func CartRemoveGroup(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		index, err := validators.ParseParamInt(chi.URLParam(r, "index"), "index")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.RemoveGroup(r.Context(), index)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

// CartRemoveAddon removes one add-on line from one group.
func CartRemoveAddon(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		index, err := validators.ParseParamInt(chi.URLParam(r, "index"), "index")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addonIndex, err := validators.ParseParamInt(chi.URLParam(r, "addonIndex"), "addonIndex")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.RemoveAddon(r.Context(), index, addonIndex)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

// CartClear abandons the active order and resets the register.
func CartClear(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		view, err := svc.ClearOrder(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

// CartReceipt renders the order summary text for the active order.
func CartReceipt(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		receipt, err := svc.Receipt(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"receipt": receipt})
	}
}

type addProductRequest struct {
	ProductID int `json:"product_id" validate:"required,min=1"`
	Qty       int `json:"qty" validate:"omitempty,min=1"`
}

type attachAddonRequest struct {
	AddonID    int  `json:"addon_id" validate:"required,min=1"`
	Qty        int  `json:"qty" validate:"omitempty,min=1"`
	GroupIndex *int `json:"group_index,omitempty" validate:"omitempty,min=0"`
}

type cartResponse struct {
	register.CartView
	Lines []cart.Line `json:"lines"`
}

func newCartResponse(view register.CartView) cartResponse {
	lines := make([]cart.Line, 0)
	for _, g := range view.Groups {
		lines = append(lines, g.Product)
		lines = append(lines, g.Addons...)
	}
	return cartResponse{CartView: view, Lines: lines}
}
