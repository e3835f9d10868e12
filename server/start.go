// Package server wires configuration, storage and handlers into the HTTP
// server and runs it until the process is signalled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gengocodes/gensupply-backend/auth"
	cachepackage "github.com/gengocodes/gensupply-backend/cache"
	"github.com/gengocodes/gensupply-backend/config"
	"github.com/gengocodes/gensupply-backend/database"
	"github.com/gengocodes/gensupply-backend/handlers"
	"github.com/gengocodes/gensupply-backend/service"
	"github.com/gengocodes/gensupply-backend/store"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Dependencies are the long-lived resources shared by all requests.
type Dependencies struct {
	Config *config.Config
	DB     *sqlx.DB
	Redis  *redis.Client // nil disables token revocation
	Logger *zap.Logger
}

// Build assembles the stores, services, handlers and router.
func Build(deps Dependencies) http.Handler {
	cfg := deps.Config

	userStore := store.NewUserStore(deps.DB, cfg.DBQueryTimeout)
	supplyStore := store.NewSupplyStore(deps.DB, cfg.DBQueryTimeout)

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)

	var denylist auth.Denylist = auth.NopDenylist{}
	if deps.Redis != nil {
		denylist = auth.NewRedisDenylist(deps.Redis)
	}

	authService := service.NewAuthService(userStore, hasher, tokens, cfg.UniformLogin)
	supplyService := service.NewSupplyService(supplyStore)

	cookies := handlers.NewCookieHelper(cfg.CookieSecure)

	return NewRouter(Handlers{
		Auth:          handlers.NewAuthHandler(authService, tokens, denylist, cookies, deps.Logger),
		Supply:        handlers.NewSupplyHandler(supplyService, deps.Logger),
		Health:        handlers.NewHealthHandler(deps.DB, deps.Logger),
		Middleware:    handlers.NewAuthMiddleware(tokens, denylist, cookies, deps.Logger),
		AllowedOrigin: cfg.AllowedOrigin,
	})
}

// StartServer connects to the database and optional Redis, then serves
// until SIGINT or SIGTERM.
func StartServer(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting gensupply backend...", zap.String("environment", cfg.Environment))

	dbConn, err := database.InitializeDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	redisClient, err := cachepackage.InitializeCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv := &http.Server{
		Addr: net.JoinHostPort("", cfg.Port),
		Handler: Build(Dependencies{
			Config: cfg,
			DB:     dbConn,
			Redis:  redisClient,
			Logger: log,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server started", zap.String("addr", srv.Addr), zap.String("allowed_origin", cfg.AllowedOrigin))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
