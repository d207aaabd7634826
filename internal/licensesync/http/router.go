package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/licensing/internal/orders"
	"github.com/aussiebroadwan/licensing/internal/orders/store"
	"github.com/aussiebroadwan/licensing/pkg/httpx"
	"github.com/aussiebroadwan/licensing/pkg/slogx"

	_ "github.com/aussiebroadwan/licensing/api/licensesync" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Session reports whether the license client holds a usable token.
type Session interface {
	IsAuthenticated() bool
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store         store.Store
	Dispatcher    *orders.Dispatcher
	Session       Session
	WebhookSecret []byte
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerWebhooks()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			License Sync Service API
//	@version		0.1.0
//	@description	Receives storefront order events and keeps licenses on the license service in step with them.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/licensing
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerWebhooks() {
	h := &OrderWebhookHandler{
		Store:      r.store,
		Dispatcher: r.Dispatcher,
	}

	// POST /v1/webhooks/orders - rate limited before the signature is checked
	r.Mux.Handle("POST /v1/webhooks/orders",
		httpx.Chain(h,
			httpx.RateLimitByIP(httpx.WebhookLimit),
			httpx.SignatureMiddleware(r.WebhookSecret),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.ProbeLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.Session),
			httpx.RateLimitByIP(httpx.ProbeLimit),
		),
	)
}
