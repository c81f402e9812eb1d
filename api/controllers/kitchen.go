package controllers

import (
	"net/http"

	"github.com/tableserve/pos-backend/api/responses"
	"github.com/tableserve/pos-backend/internal/register"
	pkgerrors "github.com/tableserve/pos-backend/pkg/errors"
	"github.com/tableserve/pos-backend/pkg/logger"
)

// KitchenSend fires the active order to the kitchen: stock for every
// line is reserved and persisted, and the order is frozen until
// checkout. Fails atomically when any line cannot be covered.
func KitchenSend(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		view, err := svc.SendToKitchen(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}
