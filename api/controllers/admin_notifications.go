package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/avolkov/pharmtrack-backend/api/responses"
	pkgerrors "github.com/avolkov/pharmtrack-backend/pkg/errors"
	"github.com/avolkov/pharmtrack-backend/pkg/logger"
)

type notifyRunner interface {
	Run(ctx context.Context, drugID *uuid.UUID) (int, error)
}

// AdminRunNotifications triggers a notification sweep on demand, optionally
// scoped to one drug via the drug_id query parameter.
func AdminRunNotifications(runner notifyRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if runner == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification service unavailable"))
			return
		}

		var drugID *uuid.UUID
		if raw := strings.TrimSpace(r.URL.Query().Get("drug_id")); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid drug id").
					WithDetails(map[string]string{"field": "drug_id"}))
				return
			}
			drugID = &parsed
		}

		sent, err := runner.Run(r.Context(), drugID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"sent": sent})
	}
}
