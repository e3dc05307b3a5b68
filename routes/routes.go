package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/calvinballing/server/app"
	"github.com/calvinballing/server/handlers"
	"github.com/calvinballing/server/internal/observability"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	if deps.Config.Observability.MetricsEnabled {
		r.Use(observability.MetricsMiddleware())
	}

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler(deps.DB.DB, deps.Logger)
	policyHandler := handlers.NewPolicyHandler(deps.PolicyService, deps.OrgUserService, deps.Policies, deps.Logger)
	orgUserHandler := handlers.NewOrganizationUserHandler(deps.OrgUserService, deps.OrganizationUsers, deps.Logger)

	// Health check endpoints
	r.Get("/health", healthHandler.HandleHealth)
	r.Get("/health/ready", healthHandler.HandleReadiness)

	if deps.Config.Observability.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)
		r.Use(deps.AuthMiddleware.ExtractTenant)

		r.Route("/organizations/{orgID}", func(r chi.Router) {
			r.Route("/policies", func(r chi.Router) {
				r.Get("/", policyHandler.HandleListPolicies)
				r.Get("/{type}", policyHandler.HandleGetPolicy)
				r.Put("/{type}", policyHandler.HandleSavePolicy)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", orgUserHandler.HandleListOrganizationUsers)
				r.Post("/", orgUserHandler.HandleInviteOrganizationUser)
				r.Delete("/{id}", orgUserHandler.HandleRemoveOrganizationUser)
			})
		})

		r.Get("/users/me/master-password-policy", policyHandler.HandleEffectiveMasterPasswordPolicy)
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","message":"The requested resource was not found"}`))
	})

	return r
}
