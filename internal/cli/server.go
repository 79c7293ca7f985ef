package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"this-or-that/internal/app"
	"this-or-that/internal/config"
	"this-or-that/internal/domain"
	"this-or-that/internal/infra/auth"
	"this-or-that/internal/infra/memory"
	"this-or-that/internal/infra/postgres"
	redisstore "this-or-that/internal/infra/redis"
	transport "this-or-that/internal/transport/http"
)

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
	logger := newLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var repo app.GameRepository
	var loader memory.GameLoader
	if cfg.Postgres.URL != "" {
		if err := RunMigrations(ctx, cfg.Postgres.URL, logger); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		pg := postgres.NewGameRepository(pool)
		repo, loader = pg, pg
	} else {
		logger.Warn("postgres url not configured, using in-memory storage")
		mem := memory.NewGameRepository()
		repo, loader = mem, mem
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return err
		}
	}

	cacheTTL := config.TTLDuration(cfg.Cache.TTL, time.Minute)
	identityTTL := config.TTLDuration(cfg.Redis.TTL, 30*24*time.Hour)
	draftTTL := config.TTLDuration(cfg.Drafts.TTL, 72*time.Hour)

	var (
		games      app.GameCache
		drafts     app.DraftStore
		identities app.IdentityStore
	)
	if redisClient != nil {
		games = redisstore.NewGameCache(redisClient, loader, cacheTTL)
		drafts = redisstore.NewDraftStore(redisClient, draftTTL)
		identities = redisstore.NewIdentityStore(redisClient, identityTTL)
	} else {
		games = memory.NewGameCache(loader, cacheTTL)
		drafts = memory.NewDraftStore()
		identities = memory.NewIdentityStore()
	}

	authenticator, err := newAuthenticator(cfg, logger)
	if err != nil {
		return err
	}

	admin := app.NewAdminService(repo, games, logger)
	play := app.NewPlayService(repo, games, drafts, identities, logger)
	board := app.NewLeaderboardService(repo, games)
	api := transport.NewAPIHandler(admin, play, board, authenticator, logger, cfg.Server.SiteURL)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      api.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting this-or-that service", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newAuthenticator verifies tokens against the backend when one is configured
// and falls back to the static token table otherwise.
func newAuthenticator(cfg config.Config, logger *slog.Logger) (app.Authenticator, error) {
	if cfg.Backend.URL != "" {
		key := cfg.Backend.ServiceKey
		if key == "" {
			key = cfg.Backend.PublicKey
		}
		if key == "" {
			return nil, errors.New("backend url set without a service or public key")
		}
		return auth.NewBackendAuthenticator(cfg.Backend.URL, key, config.TTLDuration(cfg.Backend.Timeout, 5*time.Second)), nil
	}

	logger.Warn("backend url not configured, using static auth tokens", "tokens", len(cfg.Auth.Tokens))
	users := make(map[string]domain.User, len(cfg.Auth.Tokens))
	for token, userID := range cfg.Auth.Tokens {
		users[token] = domain.User{ID: userID}
	}
	return auth.NewStaticAuthenticator(users), nil
}
