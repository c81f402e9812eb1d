package controllers

import (
	"net/http"
	"strings"

	"github.com/tableserve/pos-backend/api/responses"
	"github.com/tableserve/pos-backend/api/validators"
	"github.com/tableserve/pos-backend/internal/register"
	"github.com/tableserve/pos-backend/pkg/enums"
	pkgerrors "github.com/tableserve/pos-backend/pkg/errors"
	"github.com/tableserve/pos-backend/pkg/logger"
)

// AdjustStock applies one bounded stock delta to a catalog entry. With
// commit set, the new levels are persisted to the backing files in the
// same request.
func AdjustStock(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		var payload stockAdjustmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseItemKind(strings.TrimSpace(payload.Kind))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item kind"))
			return
		}

		level, err := svc.AdjustStock(r.Context(), kind, payload.ID, payload.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if payload.Commit {
			if err := svc.CommitStock(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		responses.WriteSuccess(w, map[string]any{
			"kind":      kind,
			"id":        payload.ID,
			"stock":     level,
			"committed": payload.Commit,
		})
	}
}

// CommitStock persists the in-memory stock levels of both catalogs to
// their backing files.
func CommitStock(svc register.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		if err := svc.CommitStock(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"committed": true})
	}
}

type stockAdjustmentRequest struct {
	Kind   string `json:"kind" validate:"required"`
	ID     int    `json:"id" validate:"required,min=1"`
	Delta  int    `json:"delta"`
	Commit bool   `json:"commit,omitempty"`
}
