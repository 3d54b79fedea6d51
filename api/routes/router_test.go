package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	availsvc "github.com/avolkov/pharmtrack-backend/internal/availability"
	catalogsvc "github.com/avolkov/pharmtrack-backend/internal/catalog"
	subsvc "github.com/avolkov/pharmtrack-backend/internal/subscriptions"
	"github.com/avolkov/pharmtrack-backend/pkg/config"
	"github.com/avolkov/pharmtrack-backend/pkg/db/models"
	"github.com/avolkov/pharmtrack-backend/pkg/logger"
	"github.com/avolkov/pharmtrack-backend/pkg/types"
	"github.com/google/uuid"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubCatalog struct{}

func (stubCatalog) GetDrug(context.Context, uuid.UUID) (*catalogsvc.DrugDetail, error) {
	return &catalogsvc.DrugDetail{Drug: models.Drug{TradeName: "Нурофен"}}, nil
}

func (stubCatalog) ListDrugs(context.Context, catalogsvc.ListDrugsInput) (*catalogsvc.DrugListResult, error) {
	return &catalogsvc.DrugListResult{}, nil
}

func (stubCatalog) ComputeDrugStats(context.Context, uuid.UUID) (catalogsvc.DrugStats, error) {
	return catalogsvc.DrugStats{}, nil
}

func (stubCatalog) ResolveAnalogues(context.Context, uuid.UUID) ([]catalogsvc.AnalogueInfo, error) {
	return nil, nil
}

type stubPharmacies struct{}

func (stubPharmacies) ListNetworks(context.Context) ([]models.PharmacyNetwork, error) {
	return nil, nil
}

func (stubPharmacies) ListPharmacies(context.Context, string) ([]models.Pharmacy, error) {
	return nil, nil
}

func (stubPharmacies) GetPharmacy(context.Context, uuid.UUID) (*models.Pharmacy, error) {
	return &models.Pharmacy{}, nil
}

func (stubPharmacies) ListCities(context.Context) ([]string, error) { return []string{"Москва"}, nil }

type stubAvailability struct{}

func (stubAvailability) Upsert(context.Context, availsvc.UpsertInput) (*models.Availability, error) {
	return &models.Availability{}, nil
}

func (stubAvailability) PriceHistory(context.Context, uuid.UUID, int) ([]models.PriceHistory, error) {
	return nil, nil
}

type stubSubscriptions struct{}

func (stubSubscriptions) Create(context.Context, uuid.UUID, subsvc.CreateInput) (*models.UserSubscription, error) {
	return &models.UserSubscription{}, nil
}

func (stubSubscriptions) Update(context.Context, uuid.UUID, uuid.UUID, subsvc.UpdateInput) (*models.UserSubscription, error) {
	return &models.UserSubscription{}, nil
}

func (stubSubscriptions) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (stubSubscriptions) ListForUser(context.Context, uuid.UUID) ([]models.UserSubscription, error) {
	return nil, nil
}

type stubNotify struct {
	sent int
}

func (s *stubNotify) NotifySubscription(context.Context, models.UserSubscription) error { return nil }

func (s *stubNotify) Run(context.Context, *uuid.UUID) (int, error) { return s.sent, nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	return NewRouter(RouterParams{
		Config:        cfg,
		Logger:        logger.New(logger.Options{ServiceName: "router-test"}),
		DB:            stubPinger{},
		Redis:         stubPinger{},
		Catalog:       stubCatalog{},
		Pharmacies:    stubPharmacies{},
		Availability:  stubAvailability{},
		Subscriptions: stubSubscriptions{},
		Notify:        &stubNotify{sent: 2},
	})
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s returned %d", path, w.Code)
		}
	}
}

func TestPublicCatalogRoutes(t *testing.T) {
	router := newTestRouter(t)

	paths := []string{
		"/api/v1/drugs/",
		"/api/v1/drugs/" + uuid.NewString(),
		"/api/v1/pharmacies/",
		"/api/v1/networks",
		"/api/v1/cities",
		"/api/v1/availability/" + uuid.NewString() + "/history",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s returned %d", path, w.Code)
		}
	}
}

func TestSubscriptionRoutesRequireUserHeader(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user header, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/", nil)
	req.Header.Set("X-User-Id", uuid.NewString())
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with user header, got %d", w.Code)
	}
}

func TestCreateSubscriptionRoute(t *testing.T) {
	router := newTestRouter(t)

	body := strings.NewReader(`{"drug_id":"` + uuid.NewString() + `","city":"Москва"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/", body)
	req.Header.Set("X-User-Id", uuid.NewString())
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminRunNotificationsRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/notifications/run", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	data, ok := envelope.Data.(map[string]any)
	if !ok || data["sent"] != float64(2) {
		t.Fatalf("unexpected payload %v", envelope.Data)
	}
}
