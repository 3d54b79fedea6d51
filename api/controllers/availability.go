package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avolkov/pharmtrack-backend/api/responses"
	"github.com/avolkov/pharmtrack-backend/api/validators"
	availsvc "github.com/avolkov/pharmtrack-backend/internal/availability"
	pkgerrors "github.com/avolkov/pharmtrack-backend/pkg/errors"
	"github.com/avolkov/pharmtrack-backend/pkg/logger"
)

const priceHistoryMaxLimit = 500

type upsertAvailabilityRequest struct {
	DrugID      string `json:"drug_id" validate:"required,uuid"`
	PharmacyID  string `json:"pharmacy_id" validate:"required,uuid"`
	Price       string `json:"price" validate:"required"`
	Quantity    int    `json:"quantity" validate:"min=0"`
	IsAvailable bool   `json:"is_available"`
}

// UpsertAvailability records one feed observation by hand, bypassing the
// Pub/Sub path. Meant for admin tooling and backfills.
func UpsertAvailability(svc availsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "availability service unavailable"))
			return
		}

		var payload upsertAvailabilityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		drugID, err := uuid.Parse(payload.DrugID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid drug id"))
			return
		}
		pharmacyID, err := uuid.Parse(payload.PharmacyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pharmacy id"))
			return
		}
		price, err := decimal.NewFromString(payload.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal number"))
			return
		}

		row, err := svc.Upsert(r.Context(), availsvc.UpsertInput{
			DrugID:      drugID,
			PharmacyID:  pharmacyID,
			Price:       price,
			Quantity:    payload.Quantity,
			IsAvailable: payload.IsAvailable,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// AvailabilityPriceHistory lists price observations for one offer, newest
// first.
func AvailabilityPriceHistory(svc availsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "availability service unavailable"))
			return
		}

		availabilityID, err := validators.ParsePathUUID(chi.URLParam(r, "availabilityID"), "availabilityID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 100, 1, priceHistoryMaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.PriceHistory(r.Context(), availabilityID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}
