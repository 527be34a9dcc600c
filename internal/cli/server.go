package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"student-analyzer/internal/app"
	"student-analyzer/internal/auth"
	"student-analyzer/internal/config"
	"student-analyzer/internal/infra/memory"
	"student-analyzer/internal/infra/postgres"
	redisinfra "student-analyzer/internal/infra/redis"
	"student-analyzer/internal/logger"
	transport "student-analyzer/internal/transport/http"
)

const devSecret = "student-analyzer-dev-secret"

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get().With().Str("component", "server").Logger()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var store app.DocumentStore = memory.NewDocumentStore()
	var requests app.RequestStore
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		db := postgres.OpenBun(cfg.Postgres.URL)
		defer db.Close()
		store = postgres.NewDocumentStore(pool)
		requests = postgres.NewSocialStore(db)
	} else {
		log.Warn().Msg("postgres not configured, documents are kept in memory")
		requests = app.NewDocumentRequests(store)
	}

	attemptTTL := config.TTLDuration(cfg.Exam.TTL, 2*time.Hour)
	var (
		attempts app.AttemptRepository
		bus      app.EventBus
		revoker  auth.Revoker
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		attempts = redisinfra.NewAttemptStore(client, config.TTLDuration(cfg.Redis.TTL, attemptTTL))
		bus = redisinfra.NewEventBus(client)
		revoker = redisinfra.NewRevoker(client)
	} else {
		attempts = memory.NewAttemptStore(attemptTTL)
		bus = memory.NewEventBus()
		revoker = memory.NewRevoker()
	}

	secret := cfg.Auth.Secret
	if secret == "" {
		log.Warn().Msg("auth secret not configured, using the development secret")
		secret = devSecret
	}
	provider := auth.NewLocalProvider(store, auth.NewTokens(secret, config.TTLDuration(cfg.Auth.TokenTTL, 8*time.Hour)), revoker)

	exams := app.NewExamService(app.DefaultExamBank(), attempts, store,
		app.WithTick(config.TTLDuration(cfg.Exam.Tick, time.Second)))
	defer exams.Shutdown()
	social := app.NewSocialService(store, requests, bus)

	// sign-outs end the user's live social feeds
	authEvents, stopWatch := provider.Watch()
	defer stopWatch()
	go func() {
		for ev := range authEvents {
			if !ev.SignedIn {
				social.SignedOut(context.Background(), ev.UID)
			}
		}
	}()

	api := transport.NewAPI(transport.Services{
		Auth:         provider,
		Registrar:    auth.NewRegistrar(provider, store),
		Exams:        exams,
		Leaderboards: app.NewLeaderboardService(store),
		Roster:       app.NewRosterService(store),
		Profiles:     app.NewProfileService(store),
		Social:       social,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      api.Routes(cfg.CORS.AllowedOrigins),
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting student analyzer")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.TTLDuration(cfg.Server.ShutdownTimeout, 5*time.Second))
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
