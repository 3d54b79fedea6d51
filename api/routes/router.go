package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avolkov/pharmtrack-backend/api/controllers"
	"github.com/avolkov/pharmtrack-backend/api/middleware"
	availsvc "github.com/avolkov/pharmtrack-backend/internal/availability"
	catalogsvc "github.com/avolkov/pharmtrack-backend/internal/catalog"
	"github.com/avolkov/pharmtrack-backend/internal/notify"
	pharmsvc "github.com/avolkov/pharmtrack-backend/internal/pharmacies"
	subsvc "github.com/avolkov/pharmtrack-backend/internal/subscriptions"
	"github.com/avolkov/pharmtrack-backend/pkg/config"
	"github.com/avolkov/pharmtrack-backend/pkg/logger"
)

// RouterParams carries the wired services and dependencies for the HTTP API.
type RouterParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            controllers.Pinger
	Redis         controllers.Pinger
	Catalog       catalogsvc.Service
	Pharmacies    pharmsvc.Service
	Availability  availsvc.Service
	Subscriptions subsvc.Service
	Notify        notify.Service
	Metrics       prometheus.Gatherer
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": params.DB,
			"redis":    params.Redis,
		}))
	})

	if params.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(params.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/drugs", func(r chi.Router) {
			r.Get("/", controllers.ListDrugs(params.Catalog, logg))
			r.Get("/{drugID}", controllers.GetDrug(params.Catalog, logg))
		})

		r.Route("/pharmacies", func(r chi.Router) {
			r.Get("/", controllers.ListPharmacies(params.Pharmacies, logg))
			r.Get("/{pharmacyID}", controllers.GetPharmacy(params.Pharmacies, logg))
		})
		r.Get("/networks", controllers.ListNetworks(params.Pharmacies, logg))
		r.Get("/cities", controllers.ListCities(params.Pharmacies, logg))

		r.Get("/availability/{availabilityID}/history", controllers.AvailabilityPriceHistory(params.Availability, logg))

		r.Route("/subscriptions", func(r chi.Router) {
			r.Use(middleware.UserContext(logg))
			r.Get("/", controllers.ListSubscriptions(params.Subscriptions, logg))
			r.Post("/", controllers.CreateSubscription(params.Subscriptions, logg))
			r.Patch("/{subscriptionID}", controllers.UpdateSubscription(params.Subscriptions, logg))
			r.Delete("/{subscriptionID}", controllers.DeleteSubscription(params.Subscriptions, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Post("/availability", controllers.UpsertAvailability(params.Availability, logg))
		r.Post("/notifications/run", controllers.AdminRunNotifications(params.Notify, logg))
	})

	return r
}
