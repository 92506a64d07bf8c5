package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tennotools/platwatch-backend/api/controllers"
	"github.com/tennotools/platwatch-backend/api/middleware"
	"github.com/tennotools/platwatch-backend/internal/alerts"
	"github.com/tennotools/platwatch-backend/internal/catalog"
	"github.com/tennotools/platwatch-backend/internal/marketsync"
	"github.com/tennotools/platwatch-backend/internal/tracking"
	"github.com/tennotools/platwatch-backend/pkg/config"
	"github.com/tennotools/platwatch-backend/pkg/logger"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      controllers.Pinger
	Redis   controllers.Pinger
	Catalog catalog.Service
	Orders  tracking.Service
	Alerts  alerts.Service
	Sync    marketsync.Service

	// MetricsGatherer defaults to the global prometheus registry.
	MetricsGatherer prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.CORS(deps.Config.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.DB, deps.Redis))
	})

	gatherer := deps.MetricsGatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Post("/sync", controllers.ItemsSync(deps.Sync, deps.Logger))
			r.Get("/", controllers.ItemsList(deps.Catalog, deps.Logger))
			r.Get("/search", controllers.ItemsSearch(deps.Catalog, deps.Logger))
			r.Get("/{itemID}", controllers.ItemsGet(deps.Catalog, deps.Logger))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrdersCreate(deps.Orders, deps.Logger))
			r.Get("/", controllers.OrdersList(deps.Orders, deps.Logger))
			r.Delete("/", controllers.OrdersBulkDelete(deps.Orders, deps.Logger))

			r.Get("/user/{userID}", controllers.OrdersGetByUser(deps.Orders, deps.Logger))
			r.Get("/user/{userID}/all", controllers.OrdersListByUser(deps.Orders, deps.Logger))

			r.Route("/{orderID}", func(r chi.Router) {
				r.Delete("/", controllers.OrdersDelete(deps.Orders, deps.Logger))
				r.Get("/subscribers", controllers.SubscribersList(deps.Alerts, deps.Logger))
				r.Put("/subscribers/{subscriberID}", controllers.SubscribersAdd(deps.Alerts, deps.Logger))
				r.Delete("/subscribers/{subscriberID}", controllers.SubscribersRemove(deps.Alerts, deps.Logger))
			})
		})
	})

	return r
}
