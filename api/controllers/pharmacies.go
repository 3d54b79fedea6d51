package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/avolkov/pharmtrack-backend/api/responses"
	"github.com/avolkov/pharmtrack-backend/api/validators"
	pharmsvc "github.com/avolkov/pharmtrack-backend/internal/pharmacies"
	pkgerrors "github.com/avolkov/pharmtrack-backend/pkg/errors"
	"github.com/avolkov/pharmtrack-backend/pkg/logger"
)

func ListNetworks(svc pharmsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pharmacy service unavailable"))
			return
		}
		networks, err := svc.ListNetworks(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, networks)
	}
}

func ListPharmacies(svc pharmsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pharmacy service unavailable"))
			return
		}
		city := strings.TrimSpace(r.URL.Query().Get("city"))
		pharmacies, err := svc.ListPharmacies(r.Context(), city)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pharmacies)
	}
}

func GetPharmacy(svc pharmsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pharmacy service unavailable"))
			return
		}
		pharmacyID, err := validators.ParsePathUUID(chi.URLParam(r, "pharmacyID"), "pharmacyID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pharmacy, err := svc.GetPharmacy(r.Context(), pharmacyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pharmacy)
	}
}

func ListCities(svc pharmsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pharmacy service unavailable"))
			return
		}
		cities, err := svc.ListCities(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cities)
	}
}
