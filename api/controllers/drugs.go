package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/avolkov/pharmtrack-backend/api/responses"
	"github.com/avolkov/pharmtrack-backend/api/validators"
	catalogsvc "github.com/avolkov/pharmtrack-backend/internal/catalog"
	pkgerrors "github.com/avolkov/pharmtrack-backend/pkg/errors"
	"github.com/avolkov/pharmtrack-backend/pkg/logger"
	"github.com/avolkov/pharmtrack-backend/pkg/pagination"
)

// ListDrugs searches the catalog by trade name or MNN substring.
func ListDrugs(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalogsvc.ListDrugsInput{
			Query:  strings.TrimSpace(r.URL.Query().Get("q")),
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		result, err := svc.ListDrugs(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetDrug returns the drug with aggregated stats, current offers, and
// analogue suggestions.
func GetDrug(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		drugID, err := validators.ParsePathUUID(chi.URLParam(r, "drugID"), "drugID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetDrug(r.Context(), drugID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
