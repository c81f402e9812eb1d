package controllers

import (
	"net/http"

	"github.com/tableserve/pos-backend/api/responses"
	"github.com/tableserve/pos-backend/api/validators"
	"github.com/tableserve/pos-backend/internal/register"
	pkgerrors "github.com/tableserve/pos-backend/pkg/errors"
	"github.com/tableserve/pos-backend/pkg/logger"
)

// Checkout finalizes the sent order: tax and tip are applied, the order
// block is appended to the ledger, and the register resets for the next
// customer. The body may be omitted for a zero tip.
func Checkout(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		var payload checkoutRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		record, err := svc.Checkout(r.Context(), payload.TipCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

type checkoutRequest struct {
	TipCents int `json:"tip_cents" validate:"omitempty,min=0"`
}
