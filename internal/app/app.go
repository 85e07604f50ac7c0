package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aliuyar1234/formkit/internal/access"
	"github.com/aliuyar1234/formkit/internal/auth"
	"github.com/aliuyar1234/formkit/internal/config"
	"github.com/aliuyar1234/formkit/internal/db"
	"github.com/aliuyar1234/formkit/internal/forms"
	"github.com/aliuyar1234/formkit/internal/questions"
	"github.com/aliuyar1234/formkit/internal/responses"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Services bundles the domain services the router dispatches to.
type Services struct {
	Auth      *auth.Service
	Forms     *forms.Service
	Questions *questions.Service
	Access    *access.Service
	Responses *responses.Service
}

// NewServices wires the Postgres stores into the domain services.
func NewServices(pool *pgxpool.Pool, cfg *config.Config) Services {
	accessStore := access.NewPostgresStore(pool)
	formStore := forms.NewPostgresStore(pool)
	questionStore := questions.NewPostgresStore(pool)

	resolver := access.NewResolver(accessStore)
	formSvc := forms.NewService(formStore, resolver)

	return Services{
		Auth:      auth.NewService(auth.NewPostgresStore(pool), cfg.JWTSecret, cfg.SessionHours),
		Forms:     formSvc,
		Questions: questions.NewService(questionStore, formSvc, resolver),
		Access:    access.NewService(accessStore, resolver, cfg.BaseURL),
		Responses: responses.NewService(responses.NewPostgresStore(pool), formStore, questionStore, resolver),
	}
}

// App holds the application state
type App struct {
	Config *config.Config
	DB     *pgxpool.Pool
	Router http.Handler

	server *http.Server
}

// New creates and initializes a new application instance
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	setupLogger(cfg.LogLevel, cfg.IsDev())

	log.Info().Msg("Initializing formkit")
	log.Info().Interface("config", cfg.RedactedValues()).Msg("Configuration loaded")

	log.Info().Msg("Connecting to database...")
	pool, err := db.Connect(ctx, cfg.DBDSN, int32(cfg.DBMaxConns))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info().Msg("Database connection established")

	if cfg.IsDev() {
		log.Info().Msg("Development mode: running migrations automatically")
		if err := db.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	} else {
		log.Info().Msg("Production mode: migrations must be run manually")
	}

	app := &App{
		Config: cfg,
		DB:     pool,
		Router: NewRouter(cfg, NewServices(pool, cfg), pool),
	}

	log.Info().Msg("Application initialized successfully")
	return app, nil
}

// Start starts the HTTP server. It returns http.ErrServerClosed after Shutdown.
func (a *App) Start() error {
	addr := a.Config.HTTPAddr
	log.Info().Str("addr", addr).Msg("Starting HTTP server")

	a.server = &http.Server{
		Addr:         addr,
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (a *App) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Close releases the database pool.
func (a *App) Close() {
	log.Info().Msg("Shutting down application")
	if a.DB != nil {
		log.Info().Msg("Closing database connection")
		a.DB.Close()
	}
}

// setupLogger configures the global logger: console output in dev, JSON otherwise.
func setupLogger(level string, dev bool) {
	if dev {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Debug().Str("level", level).Msg("Logger configured")
}
