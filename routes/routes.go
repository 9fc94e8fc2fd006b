package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/poker-league/docs" // регистрирует swagger-спецификацию
	"github.com/Dosada05/poker-league/handlers"
	"github.com/Dosada05/poker-league/metrics"
	"github.com/Dosada05/poker-league/middleware"
)

type Handlers struct {
	Tournaments   *handlers.TournamentHandler
	Games         *handlers.GameHandler
	Registrations *handlers.RegistrationHandler
	Dashboard     *handlers.DashboardHandler
}

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	RateLimiter    *middleware.IPRateLimiter
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer // nil: без /metrics
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(middleware.Metrics(opts.Metrics))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if opts.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	authenticate := middleware.Authenticate(opts.JWTSecret)
	adminOnly := middleware.Authorize(middleware.RoleAdmin)
	limited := func(next http.Handler) http.Handler { return next }
	if opts.RateLimiter != nil {
		limited = middleware.RateLimit(opts.RateLimiter)
	}

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты: просмотр сезона
		r.Get("/", h.Tournaments.ListHandler)
		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", h.Tournaments.GetByIDHandler)
			r.Get("/standings", h.Tournaments.StandingsHandler)
			r.Get("/standings.xlsx", h.Tournaments.StandingsXLSXHandler)
			r.Get("/standings/{userID}", h.Tournaments.UserStandingHandler)
			r.Get("/penalties", h.Tournaments.PenaltiesHandler)
			r.Get("/games", h.Games.ListHandler)

			r.Group(func(r chi.Router) {
				r.Use(limited, authenticate, adminOnly)
				r.Post("/games", h.Games.CreateHandler)
				r.Post("/penalties", h.Tournaments.ApplyPenaltyHandler)
				r.Post("/standings/rebuild", h.Tournaments.RebuildHandler)
			})
		})

		// Защищенные маршруты только для администраторов
		r.Group(func(r chi.Router) {
			r.Use(limited, authenticate, adminOnly)
			r.Post("/", h.Tournaments.CreateHandler)
		})
	})

	router.Route("/games/{gameID}", func(r chi.Router) {
		r.Get("/", h.Games.GetByIDHandler)
		r.Get("/results", h.Games.ListResultsHandler)
		r.Get("/registrations", h.Registrations.ListHandler)

		// Игрок сам записывается и отменяет запись
		r.Group(func(r chi.Router) {
			r.Use(limited, authenticate)
			r.Post("/register", h.Registrations.RegisterHandler)
			r.Post("/cancel", h.Registrations.CancelHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(limited, authenticate, adminOnly)
			r.Patch("/", h.Games.UpdateHandler)
			r.Put("/registrations/{userID}/paid", h.Registrations.MarkPaidHandler)
			r.Post("/results", h.Games.RecordResultsHandler)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate, adminOnly)
		r.Get("/admin/stats", h.Dashboard.Stats)
	})
}
