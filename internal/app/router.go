package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/partsdesk/partsdesk/internal/auth"
	"github.com/partsdesk/partsdesk/internal/billing"
	"github.com/partsdesk/partsdesk/internal/catalog"
	"github.com/partsdesk/partsdesk/internal/sales/orders"
	"github.com/partsdesk/partsdesk/internal/sales/quotations"
	"github.com/partsdesk/partsdesk/internal/scanning"
	"github.com/partsdesk/partsdesk/internal/shared"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	SessionManager    *shared.SessionManager
	AuthService       *auth.Service
	AuthHandler       *auth.Handler
	BillingHandler    *billing.Handler
	CatalogHandler    *catalog.Handler
	ScanningHandler   *scanning.Handler
	QuotationsHandler *quotations.Handler
	OrdersHandler     *orders.Handler
}

// NewRouter constructs the chi.Router with PartsDesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(api chi.Router) {
		params.AuthHandler.MountRoutes(api)

		api.Group(func(authed chi.Router) {
			authed.Use(OperatorMiddleware(params.Logger, params.AuthService))
			params.CatalogHandler.MountRoutes(authed)
			params.ScanningHandler.MountRoutes(authed)
			params.BillingHandler.MountRoutes(authed)
			params.QuotationsHandler.MountRoutes(authed)
			params.OrdersHandler.MountRoutes(authed)
		})
	})

	return r
}
