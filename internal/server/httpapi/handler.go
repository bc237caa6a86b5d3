// Package httpapi exposes the provider, dishes and account endpoints over
// HTTP with chi.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gophprovider/internal/logging"
	"github.com/dmitrijs2005/gophprovider/internal/server/auth"
	"github.com/dmitrijs2005/gophprovider/internal/server/metrics"
	"github.com/dmitrijs2005/gophprovider/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const uuidPattern = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

// Handler holds the dependencies of every endpoint.
type Handler struct {
	users     *services.UserService
	providers *services.ProviderService
	dishes    *services.DishService
	signer    *auth.Signer
	authz     *auth.Authorizer
	metrics   *metrics.Metrics
	log       logging.Logger
	ping      func(ctx context.Context) error
}

// Deps lists what NewHandler needs. Metrics and Ping are optional.
type Deps struct {
	Users      *services.UserService
	Providers  *services.ProviderService
	Dishes     *services.DishService
	Signer     *auth.Signer
	Authorizer *auth.Authorizer
	Metrics    *metrics.Metrics
	Logger     logging.Logger
	Ping       func(ctx context.Context) error
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		users:     d.Users,
		providers: d.Providers,
		dishes:    d.Dishes,
		signer:    d.Signer,
		authz:     d.Authorizer,
		metrics:   d.Metrics,
		log:       d.Logger.With("module", "http"),
		ping:      d.Ping,
	}
}

// Routes builds the router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(h.metrics.Middleware)

	r.Get("/healthz", h.healthz)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	r.Post("/register", h.register)
	r.Post("/login", h.login)

	r.Route("/provider", func(r chi.Router) {
		r.Get("/", h.listProviders)
		r.Get("/{id}", h.getProvider)

		r.Group(func(r chi.Router) {
			r.Use(h.authenticate)
			r.Post("/", h.createProvider)
			r.Put("/{id}", h.updateProvider)
			r.With(h.requirePolicy(auth.PolicyDeleteProvider)).Delete("/{id}", h.deleteProvider)
		})
	})

	// A segment shaped like a UUID is an id; anything else is a dish name.
	r.Route("/dishes", func(r chi.Router) {
		r.Get("/", h.listDishes)
		r.Get("/{id:"+uuidPattern+"}", h.getDish)
		r.Get("/{id:"+uuidPattern+"}/ingredients", h.listIngredients)
		r.Get("/{name}", h.getDishByName)
	})

	return r
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			h.log.Warn(r.Context(), "health check failed", "error", err)
			writeErrorMessage(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
