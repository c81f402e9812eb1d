package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tableserve/pos-backend/api/responses"
	"github.com/tableserve/pos-backend/api/validators"
	"github.com/tableserve/pos-backend/internal/register"
	pkgerrors "github.com/tableserve/pos-backend/pkg/errors"
	"github.com/tableserve/pos-backend/pkg/logger"
)

// ListHolds returns every parked order in hold order.
func ListHolds(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"holds": svc.ListHolds(r.Context())})
	}
}

// CreateHold parks the active order and clears the register for the
// next customer.
func CreateHold(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		held, err := svc.HoldOrder(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, held)
	}
}

// CancelHold drops a parked order without touching stock.
func CancelHold(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		holdID, err := validators.ParseParamInt(chi.URLParam(r, "holdId"), "holdId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		held, err := svc.CancelHold(r.Context(), holdID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, held)
	}
}

// ResumeHold loads a parked order back into the empty register after
// re-checking stock against the current catalog.
func ResumeHold(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		holdID, err := validators.ParseParamInt(chi.URLParam(r, "holdId"), "holdId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.ResumeHold(r.Context(), holdID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}
