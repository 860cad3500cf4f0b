package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/FACorreiaa/go-trip-planner/internal/api/catalog"
	"github.com/FACorreiaa/go-trip-planner/internal/api/plan"
)

// Config carries the handlers and middleware the router wires together.
// Server-wide middleware (request ID, logger, recoverer) is applied in
// main.go before this router is mounted.
type Config struct {
	PlanHandler            *plan.HandlerImpl
	CatalogHandler         *catalog.HandlerImpl
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter builds the main application router. Reads are public;
// everything that writes a plan or the catalog sits behind authentication.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// public reads
		r.Group(func(r chi.Router) {
			r.Get("/pois", cfg.CatalogHandler.ListPOIs)
			r.Get("/pois/{poiID}", cfg.CatalogHandler.GetPOI)
			r.Get("/plans/{planID}", cfg.PlanHandler.GetPlan)
			r.Get("/plans/{planID}/versions", cfg.PlanHandler.ListVersions)
			r.Get("/plans/{planID}/versions/{versionNumber}", cfg.PlanHandler.GetVersion)
		})

		// mutations require a valid token
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/pois", cfg.CatalogHandler.CreatePOI)

			r.Post("/plans", cfg.PlanHandler.Generate)
			r.Delete("/plans/{planID}", cfg.PlanHandler.DeletePlan)
			r.Delete("/plans/{planID}/items/{itemID}", cfg.PlanHandler.RemoveItem)
			r.Post("/plans/{planID}/items/{itemID}/replace", cfg.PlanHandler.ReplaceItem)
			r.Post("/plans/{planID}/regenerate", cfg.PlanHandler.RegenerateRange)
			r.Post("/plans/{planID}/rollback", cfg.PlanHandler.Rollback)
		})
	})

	return r
}
