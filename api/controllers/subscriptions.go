package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avolkov/pharmtrack-backend/api/middleware"
	"github.com/avolkov/pharmtrack-backend/api/responses"
	"github.com/avolkov/pharmtrack-backend/api/validators"
	subsvc "github.com/avolkov/pharmtrack-backend/internal/subscriptions"
	pkgerrors "github.com/avolkov/pharmtrack-backend/pkg/errors"
	"github.com/avolkov/pharmtrack-backend/pkg/logger"
)

type createSubscriptionRequest struct {
	DrugID   string  `json:"drug_id" validate:"required,uuid"`
	City     *string `json:"city,omitempty"`
	MaxPrice *string `json:"max_price,omitempty"`
}

type updateSubscriptionRequest struct {
	City          *string `json:"city,omitempty"`
	MaxPrice      *string `json:"max_price,omitempty"`
	ClearMaxPrice bool    `json:"clear_max_price,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

func ListSubscriptions(svc subsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(r, logg, w)
		if !ok {
			return
		}
		subs, err := svc.ListForUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, subs)
	}
}

func CreateSubscription(svc subsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(r, logg, w)
		if !ok {
			return
		}

		var payload createSubscriptionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		drugID, err := uuid.Parse(payload.DrugID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid drug id"))
			return
		}
		maxPrice, err := parseOptionalDecimal(payload.MaxPrice, "max_price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sub, err := svc.Create(r.Context(), userID, subsvc.CreateInput{
			DrugID:   drugID,
			City:     payload.City,
			MaxPrice: maxPrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sub)
	}
}

func UpdateSubscription(svc subsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(r, logg, w)
		if !ok {
			return
		}
		subID, err := validators.ParsePathUUID(chi.URLParam(r, "subscriptionID"), "subscriptionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateSubscriptionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		maxPrice, err := parseOptionalDecimal(payload.MaxPrice, "max_price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sub, err := svc.Update(r.Context(), userID, subID, subsvc.UpdateInput{
			City:          payload.City,
			MaxPrice:      maxPrice,
			ClearMaxPrice: payload.ClearMaxPrice,
			IsActive:      payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sub)
	}
}

func DeleteSubscription(svc subsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(r, logg, w)
		if !ok {
			return
		}
		subID, err := validators.ParsePathUUID(chi.URLParam(r, "subscriptionID"), "subscriptionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), userID, subID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func callerID(r *http.Request, logg *logger.Logger, w http.ResponseWriter) (uuid.UUID, bool) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
		return uuid.Nil, false
	}
	return userID, true
}

func parseOptionalDecimal(raw *string, field string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	value, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "must be a decimal number").
			WithDetails(map[string]string{"field": field})
	}
	return &value, nil
}
