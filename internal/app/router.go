package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/palengke-app/palengke/internal/audit"
	"github.com/palengke-app/palengke/internal/chat"
	"github.com/palengke-app/palengke/internal/dashboard"
	"github.com/palengke-app/palengke/internal/geo"
	"github.com/palengke-app/palengke/internal/navigation"
	"github.com/palengke-app/palengke/internal/notify"
	"github.com/palengke-app/palengke/internal/observability"
	"github.com/palengke-app/palengke/internal/orders"
	"github.com/palengke-app/palengke/internal/payments"
	"github.com/palengke-app/palengke/internal/products"
	"github.com/palengke-app/palengke/internal/users"
	"github.com/palengke-app/palengke/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	OrdersHandler     *orders.Handler
	ProductsHandler   *products.Handler
	UsersHandler      *users.Handler
	PaymentsHandler   *payments.Handler
	NavigationHandler *navigation.Handler
	ChatHandler       *chat.Handler
	GeoHandler        *geo.Handler
	NotifyHandler     *notify.Handler
	DashboardHandler  *dashboard.Handler
	AuditHandler      *audit.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Palengke defaults. All API routes
// live under /api/v1; health and metrics stay at the root.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		if params.OrdersHandler != nil {
			params.OrdersHandler.MountRoutes(api)
		}
		if params.ProductsHandler != nil {
			params.ProductsHandler.MountRoutes(api)
		}
		if params.UsersHandler != nil {
			params.UsersHandler.MountRoutes(api)
		}
		if params.PaymentsHandler != nil {
			params.PaymentsHandler.MountRoutes(api)
		}
		if params.NavigationHandler != nil {
			params.NavigationHandler.MountRoutes(api)
		}
		if params.ChatHandler != nil {
			params.ChatHandler.MountRoutes(api)
		}
		if params.GeoHandler != nil {
			params.GeoHandler.MountRoutes(api)
		}
		if params.NotifyHandler != nil {
			params.NotifyHandler.MountRoutes(api)
		}
		if params.DashboardHandler != nil {
			params.DashboardHandler.MountRoutes(api)
		}
		if params.AuditHandler != nil {
			params.AuditHandler.MountRoutes(api)
		}
		if params.JobHandler != nil {
			params.JobHandler.MountRoutes(api)
		}
	})

	return r
}
