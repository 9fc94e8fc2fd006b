package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"github.com/Dosada05/poker-league/config"
	"github.com/Dosada05/poker-league/db"
	"github.com/Dosada05/poker-league/handlers"
	"github.com/Dosada05/poker-league/metrics"
	"github.com/Dosada05/poker-league/middleware"
	api "github.com/Dosada05/poker-league/routes"
	"github.com/Dosada05/poker-league/services"
	"github.com/Dosada05/poker-league/storage"
)

func main() {
	app := &cli.App{
		Name:  "poker-league",
		Usage: "poker season league: games, registrations, penalties and standings",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API together with the lifecycle sweeper",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply embedded database migrations",
				Action: migrate,
			},
			{
				Name:   "sweep",
				Usage:  "start every game whose registration deadline has passed, once",
				Action: sweepOnce,
			},
			{
				Name:  "token",
				Usage: "issue a signed access token for local use",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "user", Required: true, Usage: "user id"},
					&cli.StringFlag{Name: "role", Value: middleware.RolePlayer, Usage: "admin or player"},
					&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour, Usage: "token lifetime"},
				},
				Action: issueToken,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// bootstrap загружает конфигурацию, настраивает логгер и открывает базу с миграциями.
func bootstrap(ctx context.Context) (*config.Config, *slog.Logger, *db.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Server.LogLevel}))
	slog.SetDefault(logger)

	dbConn, err := db.Connect(cfg.Database.Driver, cfg.Database.URL, cfg.Database.ConnectTimeout)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("database connection established", slog.String("driver", cfg.Database.Driver))

	applied, err := dbConn.ApplyMigrations(ctx)
	if err != nil {
		_ = dbConn.Close()
		return nil, nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, name := range applied {
		logger.Info("migration applied", slog.String("name", name))
	}
	return cfg, logger, dbConn, nil
}

func closeDB(logger *slog.Logger, dbConn *db.DB) {
	if err := dbConn.Close(); err != nil {
		logger.Error("failed to close database connection", slog.Any("error", err))
	} else {
		logger.Info("database connection closed")
	}
}

func leagueRules(cfg config.LeagueConfig) services.Rules {
	return services.Rules{
		CancellationPenaltyWindow:     cfg.CancellationPenaltyWindow(),
		LateCancellationPenaltyPoints: cfg.LateCancellationPenaltyPoints,
		NoShowPenaltyPoints:           cfg.NoShowPenaltyPoints,
		DefaultRegistrationWindow:     cfg.DefaultRegistrationWindow(),
		DefaultTopPlayersCount:        cfg.DefaultTopPlayersCount,
		PointsTable:                   cfg.Table(),
	}
}

func migrate(c *cli.Context) error {
	_, logger, dbConn, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer closeDB(logger, dbConn)
	logger.Info("database schema is up to date")
	return nil
}

func sweepOnce(c *cli.Context) error {
	cfg, logger, dbConn, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer closeDB(logger, dbConn)

	league := services.NewLeague(dbConn, services.LeagueOptions{
		Rules:  leagueRules(cfg.League),
		Logger: logger,
	})
	started, err := league.Sweeper.SweepOnce(c.Context)
	if err != nil {
		return err
	}
	logger.Info("sweep finished", slog.Int("started", started))
	return nil
}

func issueToken(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	token, err := middleware.GenerateToken([]byte(cfg.Auth.JWTSecretKey), c.Int64("user"), c.String("role"), c.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, token)
	return nil
}

func serve(c *cli.Context) error {
	cfg, logger, dbConn, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer closeDB(logger, dbConn)
	logger.Info("configuration loaded", slog.Int("port", cfg.Server.Port))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	leagueMetrics := metrics.New(registry)

	// Публикация снимков таблицы в бакет (Cloudflare R2 / S3), если настроена
	var publisher services.SnapshotPublisher
	if cfg.Snapshot.Enabled() {
		uploader, err := storage.NewS3Uploader(c.Context, storage.S3UploaderConfig{
			AccountID:       cfg.Snapshot.AccountID,
			Endpoint:        cfg.Snapshot.Endpoint,
			Region:          cfg.Snapshot.Region,
			AccessKeyID:     cfg.Snapshot.AccessKeyID,
			SecretAccessKey: cfg.Snapshot.SecretAccessKey,
			BucketName:      cfg.Snapshot.BucketName,
			PublicBaseURL:   cfg.Snapshot.PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize snapshot uploader: %w", err)
		}
		publisher = storage.NewSnapshotPublisher(uploader, cfg.Snapshot.Prefix)
		logger.Info("standings snapshot publisher initialized", slog.String("bucket", cfg.Snapshot.BucketName))
	}

	league := services.NewLeague(dbConn, services.LeagueOptions{
		Rules:         leagueRules(cfg.League),
		SweepInterval: cfg.League.SweeperInterval(),
		Publisher:     publisher,
		Metrics:       leagueMetrics,
		Logger:        logger,
	})
	logger.Info("Services initialized")

	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	league.Sweeper.Start(sweeperCtx)
	defer league.Sweeper.Stop()

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Tournaments:   handlers.NewTournamentHandler(league.Tournaments, league.Standings, league.Penalties),
		Games:         handlers.NewGameHandler(league.Games, league.Results),
		Registrations: handlers.NewRegistrationHandler(league.Registrations),
		Dashboard:     handlers.NewDashboardHandler(league.Dashboard),
	}, api.Options{
		JWTSecret:      []byte(cfg.Auth.JWTSecretKey),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimiter:    middleware.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst),
		Metrics:        leagueMetrics,
		Gatherer:       registry,
	})
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return err
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
	return nil
}
