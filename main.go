package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/blogem/toolshelf/audit"
	"github.com/blogem/toolshelf/config"
	"github.com/blogem/toolshelf/controllers"
	"github.com/blogem/toolshelf/database"
	appmiddleware "github.com/blogem/toolshelf/middleware"
	"github.com/blogem/toolshelf/repositories"
	"github.com/blogem/toolshelf/security"
	"github.com/blogem/toolshelf/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load the env vars", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		slog.Error("refusing to start", "error", err)
		os.Exit(1)
	}
	if cfg.AdminSecret == "" {
		slog.Error("ADMIN_SECRET is not set: every catalog mutation will be rejected")
	}

	// Durable audit copies are optional
	var db *sql.DB
	if cfg.AuditDBPath != "" {
		db, err = database.InitializeDatabase(cfg.AuditDBPath)
		if err != nil {
			slog.Error("failed to initialize audit database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	app := newApplication(cfg, db, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go security.RunSweeper(ctx, security.SweepInterval, app.limiter, app.tokens)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Printf("🚀 Toolshelf starting on port %s\n", cfg.Port)
		fmt.Printf("📂 Catalog: %s\n", app.repos.Catalog.Path())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
	app.audit.Flush()
	slog.Info("shutdown complete")
}

// application holds the process-wide components; each instance is isolated
type application struct {
	cfg        *config.Config
	audit      *audit.Logger
	limiter    *security.RateLimiter
	tokens     *security.TokenStore
	authorizer *security.Authorizer
	repos      *repositories.Repositories
	router     *chi.Mux
}

// newApplication wires repositories, security components, services and
// controllers. failureDelay overrides the invalid-credential delay when set.
func newApplication(cfg *config.Config, db *sql.DB, failureDelay func(context.Context)) *application {
	repos := repositories.NewRepositories(cfg.CatalogCandidates(repositories.DefaultCatalogPaths), db)

	var sink audit.Sink
	if repos.Audit != nil {
		sink = repos.Audit
	}
	auditLog := audit.NewLogger(audit.DefaultCapacity, sink)

	limiter := security.NewRateLimiter(auditLog)
	tokens := security.NewTokenStore(cfg.SessionTTL)
	authorizer := security.NewAuthorizer(security.AuthorizerConfig{
		Secret:       cfg.AdminSecret,
		AllowList:    security.NewIPAllowList(cfg.IPAllowList),
		Suspicion:    limiter,
		Tokens:       tokens,
		Audit:        auditLog,
		FailureDelay: failureDelay,
	})

	srvs := services.NewServices(repos, auditLog)
	ctrl := controllers.NewControllers(controllers.Dependencies{
		Services:    srvs,
		Authorizer:  authorizer,
		Tokens:      tokens,
		Audit:       auditLog,
		AuditStore:  repos.Audit,
		CatalogPath: repos.Catalog.Path(),
		DevMode:     cfg.IsDevelopment(),
	})

	app := &application{
		cfg:        cfg,
		audit:      auditLog,
		limiter:    limiter,
		tokens:     tokens,
		authorizer: authorizer,
		repos:      repos,
	}
	app.router = app.setupRouter(ctrl)
	return app
}

// setupRouter configures all routes
func (a *application) setupRouter(ctrl *controllers.Controllers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(appmiddleware.SecurityHeaders)
	r.Use(appmiddleware.CORS(a.cfg.AllowedOrigins))
	r.Use(appmiddleware.ClientIP(a.cfg.TrustProxy))

	// PUBLIC ROUTES (no authentication required)
	r.Get("/health", ctrl.Health.Index)

	r.Route("/api", func(r chi.Router) {
		r.With(appmiddleware.RateLimit(a.limiter, a.readPolicy("catalog-read"))).
			Get("/catalog", ctrl.Catalog.Get)

		// ADMIN ROUTES (bearer credential required)
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.AuditRequests(a.audit))
			r.Use(middleware.RequestSize(a.cfg.MaxBodyBytes))

			r.With(
				appmiddleware.RateLimit(a.limiter, a.writePolicy("login")),
				appmiddleware.RequireAdmin(a.authorizer, false),
			).Post("/login", ctrl.Auth.Login)

			r.With(
				appmiddleware.RateLimit(a.limiter, a.writePolicy("logout")),
				appmiddleware.RequireAdmin(a.authorizer, true),
			).Post("/logout", ctrl.Auth.Logout)

			r.With(
				appmiddleware.RateLimit(a.limiter, a.writePolicy("catalog-write")),
				appmiddleware.RequireAdmin(a.authorizer, true),
			).Post("/catalog", ctrl.Catalog.Save)
		})

		r.With(
			appmiddleware.RateLimit(a.limiter, a.readPolicy("audit-read")),
			appmiddleware.RequireAdmin(a.authorizer, true),
		).Get("/audit", ctrl.Audit.Index)
	})

	return r
}

func (a *application) readPolicy(name string) security.Policy {
	return security.Policy{Name: name, MaxRequests: a.cfg.ReadLimit, Window: a.cfg.ReadWindow}
}

func (a *application) writePolicy(name string) security.Policy {
	return security.Policy{Name: name, MaxRequests: a.cfg.WriteLimit, Window: a.cfg.WriteWindow}
}
