// Package app boots one of the HTTP services: configuration, logging, the
// store, the shared middleware chain and a graceful HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"

	"verdant/internal/auth"
	"verdant/internal/authz"
	"verdant/internal/config"
	"verdant/internal/database"
	"verdant/internal/handlers"
	"verdant/internal/logging"
	"verdant/internal/middleware"
	"verdant/internal/services"
	"verdant/internal/store"
	"verdant/internal/store/memstore"
	"verdant/internal/store/mongostore"
)

// Spec describes one service binary.
type Spec struct {
	Name        string
	DefaultPort int
	Banner      string
	// EnsureIndexes runs once against the mongo database at startup.
	EnsureIndexes func(db *mongo.Database) error
	// Mount registers the API routes.
	Mount func(r gin.IRouter, rt *Runtime)
}

// Runtime holds what route mounting needs.
type Runtime struct {
	Config   *config.Config
	Store    *store.Store
	Tokens   *auth.Tokens
	Enforcer *authz.Enforcer
	Clock    services.Clock
}

// Main loads configuration and runs the service until SIGINT or SIGTERM.
// It exits the process on startup failure.
func Main(spec Spec) {
	cfg, err := config.Load(spec.Name, spec.DefaultPort)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, spec, cfg); err != nil {
		logging.Fatal().Err(err).Str("app", spec.Name).Msg("service stopped with error")
	}
	logging.Info().Str("app", spec.Name).Msg("service stopped")
}

// Run serves until ctx is canceled.
func Run(ctx context.Context, spec Spec, cfg *config.Config) error {
	rt, err := NewRuntime(ctx, spec, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Database.Timeout)
		defer cancel()
		if err := rt.Store.Close(closeCtx); err != nil {
			logging.Warn().Err(err).Msg("store close failed")
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           NewRouter(spec, rt),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logging.Info().Str("app", spec.Name).Str("addr", srv.Addr).Str("driver", cfg.Database.Driver).Msg("listening")
	return serve(ctx, srv, cfg.Server.ShutdownTimeout)
}

func NewRuntime(ctx context.Context, spec Spec, cfg *config.Config) (*Runtime, error) {
	loc, err := cfg.Server.Location()
	if err != nil {
		return nil, err
	}

	enforcer, err := authz.NewEnforcer(cfg.Security.CasbinModelPath, cfg.Security.CasbinPolicyPath)
	if err != nil {
		return nil, fmt.Errorf("authorization: %w", err)
	}

	s, err := OpenStore(ctx, cfg.Database, spec.EnsureIndexes)
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Config:   cfg,
		Store:    s,
		Tokens:   auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Enforcer: enforcer,
		Clock:    services.SystemClock(loc),
	}, nil
}

// OpenStore connects the configured driver. Index failures are logged and
// do not stop startup.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, ensure func(*mongo.Database) error) (*store.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		logging.Warn().Msg("using the in-memory store; data is lost on restart")
		return memstore.New().Store(), nil
	case config.DriverMongo:
		client, err := database.Connect(ctx, cfg.URI, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Name)
		if ensure != nil {
			if err := ensure(db); err != nil {
				logging.Warn().Err(err).Str("db", cfg.Name).Msg("index setup incomplete")
			}
		}
		return mongostore.New(db), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// NewRouter builds the engine with the shared middleware chain and the
// operational endpoints, then lets spec mount its API.
func NewRouter(spec Spec, rt *Runtime) *gin.Engine {
	sec := rt.Config.Security

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(spec.Name),
		middleware.CORS(sec.CORSOrigins),
		middleware.RateLimit(sec.RateLimitRequests, sec.RateLimitWindow, sec.RateLimitDisabled),
	)

	r.GET("/", handlers.Home(spec.Banner))
	r.GET("/healthz", handlers.Healthz(rt.Store.Ping))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if spec.Mount != nil {
		spec.Mount(r, rt)
	}
	return r
}

// serve runs srv until ctx is done, then shuts it down within timeout.
func serve(ctx context.Context, srv *http.Server, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		logging.Info().Msg("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return nil
	}
}
