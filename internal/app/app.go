package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/domain"
	"github.com/openshelf/openshelf/internal/middleware"
	"github.com/openshelf/openshelf/internal/module/admin"
	"github.com/openshelf/openshelf/internal/module/auth"
	"github.com/openshelf/openshelf/internal/module/catalog"
	"github.com/openshelf/openshelf/internal/module/loan"
	"github.com/openshelf/openshelf/internal/module/member"
	"github.com/openshelf/openshelf/internal/pkg"
	"github.com/openshelf/openshelf/web"
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine *gin.Engine
	db     *gorm.DB
	logger *logger.Logger
	cfg    *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, database, domain repositories, services, handlers,
// middleware, template rendering, and routes.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		sqlDB, err := db.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", slog.Any("error", err))
		}
	}()

	// AutoMigrate in debug mode only.
	if cfg.Server.Mode == gin.DebugMode {
		if err := db.AutoMigrate(
			&domain.Category{},
			&domain.Book{},
			&domain.Member{},
			&domain.Loan{},
			&domain.Reservation{},
		); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed")
	}

	tokens := pkg.NewTokenService(cfg.Auth.JWTSecret, cfg.TokenExpiryDuration())

	// Manual dependency injection: repository → service → handler → module.
	bookRepo := catalog.NewBookRepository(db)
	categoryRepo := catalog.NewCategoryRepository(db)
	catalogModule := catalog.NewModule(catalog.NewHandler(catalog.NewService(bookRepo, categoryRepo)))

	memberRepo := member.NewRepository(db)
	memberSvc := member.NewService(memberRepo)
	memberModule := member.NewModule(member.NewHandler(memberSvc))

	if cfg.Auth.SeedAdmin.Email != "" {
		if err := seedAdmin(context.Background(), memberRepo, memberSvc, cfg.Auth.SeedAdmin, log.Logger); err != nil {
			return nil, fmt.Errorf("seed admin: %w", err)
		}
	}

	loanSvc := loan.NewService(db, cfg.LoanPeriodDuration())
	loanModule := loan.NewModule(loan.NewHandler(loanSvc))

	authSvc := auth.NewService(memberRepo, tokens)
	authModule := auth.NewModule(auth.NewHandler(authSvc, cfg.Server.Mode == gin.ReleaseMode))

	adminModule := admin.NewModule(admin.NewHandler(admin.NewService(db)))

	// Create Gin engine with custom middleware (not gin.Default()).
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	corsConfig := resolveCORSConfig(cfg.Server.Mode, cfg.Server.CORS.AllowOrigins)
	corsConfig.AllowCredentials = cfg.Server.CORS.AllowCredentials

	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestID(),
		middleware.Logger(log.Logger),
		middleware.CORSWithConfig(corsConfig),
		middleware.Guard(tokens, guardRules(cfg.Auth.Protected), cfg.Auth.LoginPath),
	)

	// Determine filesystem mode and set up template renderer.
	var fsys fs.FS
	if cfg.Server.Mode == gin.DebugMode {
		fsys, err = resolveDebugWebFS()
		if err != nil {
			return nil, fmt.Errorf("resolve debug template fs: %w", err)
		}
	} else {
		fsys = web.EmbeddedFS
	}

	renderer, err := NewTemplateRenderer(fsys, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		return nil, fmt.Errorf("setup template renderer: %w", err)
	}
	engine.HTMLRender = renderer

	csrfSecret, err := resolveCSRFSecret(cfg.Server.CSRFSecret, cfg.Server.Mode, log.Logger)
	if err != nil {
		return nil, err
	}

	if err := RegisterRoutes(engine, &RouteDeps{
		Modules:    []Module{catalogModule, memberModule, loanModule, authModule, adminModule},
		DB:         db,
		CSRFSecret: csrfSecret,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine: engine,
		db:     db,
		logger: log,
		cfg:    cfg,
	}, nil
}

// seedAdmin ensures the configured administrator account exists. It is a
// no-op when a member with the seed email is already registered, so restarts
// and redeploys never touch an existing account.
func seedAdmin(ctx context.Context, repo domain.MemberRepository, svc domain.MemberService, seed config.SeedAdminConfig, log *slog.Logger) error {
	_, err := repo.GetByEmail(ctx, seed.Email)
	if err == nil {
		log.Info("seed admin already registered", slog.String("email", seed.Email))
		return nil
	}
	if !domain.IsNotFound(err) {
		return err
	}

	if _, err := svc.Register(ctx, seed.Name, seed.Email, seed.Password, domain.RoleAdmin); err != nil {
		return err
	}
	log.Info("seed admin created", slog.String("email", seed.Email))
	return nil
}

// resolveCSRFSecret rejects placeholder secrets in release mode and falls
// back to a random per-process secret otherwise. A random secret changes on
// restart, which invalidates outstanding tokens; that is acceptable outside
// release mode.
func resolveCSRFSecret(secret, mode string, log *slog.Logger) (string, error) {
	if !isPlaceholderCSRFSecret(secret) {
		return strings.TrimSpace(secret), nil
	}
	if mode == gin.ReleaseMode {
		return "", errors.New("server.csrf_secret must be a non-placeholder value in release mode")
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate csrf secret: %w", err)
	}
	log.Warn("no csrf_secret configured, using a random secret (changes on restart)")
	return hex.EncodeToString(b), nil
}

func isPlaceholderCSRFSecret(secret string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(secret))
	switch trimmed {
	case "", "change-me", "change-me-in-env", "change-me-to-a-random-secret":
		return true
	}
	return false
}

func guardRules(protected []config.ProtectedRule) []middleware.GuardRule {
	rules := make([]middleware.GuardRule, 0, len(protected))
	for _, p := range protected {
		rules = append(rules, middleware.GuardRule{Prefix: p.Prefix, Role: p.Role})
	}
	return rules
}

func resolveCORSConfig(mode string, configuredAllowOrigins []string) middleware.CORSConfig {
	corsConfig := middleware.DefaultCORSConfig()

	if len(configuredAllowOrigins) > 0 {
		corsConfig.AllowOrigins = configuredAllowOrigins
		return corsConfig
	}

	// In release mode, when no allowlist is configured, deny cross-origin requests.
	if mode == gin.ReleaseMode {
		corsConfig.AllowOrigins = []string{}
	}

	return corsConfig
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

func resolveDebugWebFS() (fs.FS, error) {
	if _, file, _, ok := runtime.Caller(0); ok {
		webDir := filepath.Clean(filepath.Join(filepath.Dir(file), "..", "..", "web"))
		if stat, err := os.Stat(webDir); err == nil && stat.IsDir() {
			return os.DirFS(webDir), nil
		}
	}

	exePath, err := os.Executable()
	if err == nil {
		webDir := filepath.Join(filepath.Dir(exePath), "web")
		if stat, err := os.Stat(webDir); err == nil && stat.IsDir() {
			return os.DirFS(webDir), nil
		}
	}

	return nil, errors.New("debug web directory not found")
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It performs graceful shutdown with a 5-second timeout and closes the
// database connection.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logf().Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error

	select {
	case <-ctx.Done():
		a.logf().Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logf().Error("server shutdown error", slog.Any("error", err))
		}
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.logf().Error("database close error", slog.Any("error", err))
			} else {
				a.logf().Info("database connection closed")
			}
		}
	}

	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}

	return runErr
}

// logf returns the app logger, falling back to the default slog logger when
// the app was constructed without one.
func (a *App) logf() *slog.Logger {
	if a.logger != nil {
		return a.logger.Logger
	}
	return slog.Default()
}
