package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/othmanee23/oraxonoptic/internal/auth"
	"github.com/othmanee23/oraxonoptic/internal/authz"
	"github.com/othmanee23/oraxonoptic/internal/contact"
	"github.com/othmanee23/oraxonoptic/internal/dashboard"
	"github.com/othmanee23/oraxonoptic/internal/observability"
	"github.com/othmanee23/oraxonoptic/internal/profile"
	"github.com/othmanee23/oraxonoptic/internal/stores"
	"github.com/othmanee23/oraxonoptic/internal/users"
	"github.com/othmanee23/oraxonoptic/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Sessions         SessionRestorer
	Guard            authz.Guard
	AuthHandler      *auth.Handler
	UsersHandler     *users.Handler
	ProfileHandler   *profile.Handler
	StoresHandler    *stores.Handler
	DashboardHandler *dashboard.Handler
	ContactHandler   *contact.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with Oraxon defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:   params.Logger,
		Config:   params.Config,
		Sessions: params.Sessions,
		Metrics:  params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(authRoutes chi.Router) {
			// Credential endpoints are the brute-force surface.
			authRoutes.Use(httprate.Limit(20, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
			params.AuthHandler.MountRoutes(authRoutes)
		})
		api.Route("/users", params.UsersHandler.MountRoutes)
		api.Route("/profile", params.ProfileHandler.MountRoutes)
		api.Route("/stores", params.StoresHandler.MountRoutes)
		api.Route("/dashboard", params.DashboardHandler.MountRoutes)
		api.Route("/contact-messages", params.ContactHandler.MountRoutes)

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(params.Guard.RequireSuperAdmin())
			if params.JobHandler != nil {
				admin.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	return r
}
