package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	httpapi "github.com/yli59577/puyuann/internal/identity/http"
	"github.com/yli59577/puyuann/internal/identity/notify"
	"github.com/yli59577/puyuann/internal/identity/service"
	"github.com/yli59577/puyuann/internal/identity/store"
	"github.com/yli59577/puyuann/internal/identity/store/drivers/postgres"
	"github.com/yli59577/puyuann/internal/identity/store/drivers/sqlite"
	"github.com/yli59577/puyuann/pkg/clockx"
	"github.com/yli59577/puyuann/pkg/cryptox"
	"github.com/yli59577/puyuann/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the identity service together.
type Application struct {
	cfg    Config
	logger *slog.Logger
	clock  clockx.System

	// Core dependencies
	db   store.Store
	keys signingKeys

	// Mail
	smtp       *notify.SMTPSender // nil when mail is only logged
	dispatcher *notify.Dispatcher

	// Services
	credentials *service.CredentialService
	ledger      *service.VerificationLedger
	lifecycle   *service.IdentityLifecycle
	gateway     *service.AuthGateway
	sweeper     *service.ExpirySweeper

	// HTTP server
	server  *http.Server
	router  *httpapi.Router
	started bool
	stopped chan struct{}
}

// New builds an Application with every dependency initialized. Nothing runs
// until Run is called.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "identity-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	clock, err := clockx.LoadSystem(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}
	app.clock = clock

	if err := app.initDatabase(context.Background()); err != nil {
		return nil, err
	}

	app.keys, err = initSigningKeys(cfg, clock.Now, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the routed HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts background workers and the HTTP server, and blocks until a
// shutdown signal or a server failure.
func (app *Application) Run() error {
	app.start()

	app.logger.Info("identity service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

func (app *Application) start() {
	app.stopped = make(chan struct{})
	app.dispatcher.Start()
	go app.watchDeliveries(app.stopped)
	app.sweeper.Start()
	app.started = true
}

// watchDeliveries logs failed deliveries until the dispatcher shuts down.
// Codes stay valid in the ledger, so the user can ask for a resend.
func (app *Application) watchDeliveries(stop <-chan struct{}) {
	for {
		select {
		case fail := <-app.dispatcher.Errors():
			app.logger.Warn("notification not delivered",
				slog.String("kind", string(fail.Message.Kind)),
				slogx.Email(fail.Message.To),
				slog.Any("error", fail.Err),
			)
		case <-stop:
			return
		}
	}
}

// Shutdown drains in-flight work and releases resources.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down identity service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.started {
		app.sweeper.Stop()
	}

	if err := app.dispatcher.Stop(ctx); err != nil {
		app.logger.Error("mail queue not drained", "error", err)
	}
	if app.started {
		close(app.stopped)
		app.started = false
	}
	if app.smtp != nil {
		app.smtp.Close()
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("identity service stopped")
	return nil
}

// initDatabase opens the configured driver and applies migrations.
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(sqliteDSN(app.cfg.DatabaseURL))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// sqliteDSN accepts a bare file path, ":memory:", or a ready-made "file:" DSN.
func sqliteDSN(url string) string {
	if url == ":memory:" || strings.HasPrefix(url, "file:") {
		return url
	}
	return sqlite.FileDSN(url)
}

func (app *Application) initNotifier() error {
	var sender notify.Sender = notify.LogSender{Logger: app.logger}

	if app.cfg.SMTP.Host != "" {
		smtp, err := notify.NewSMTPSender(notify.SMTPConfig{
			Host:        app.cfg.SMTP.Host,
			Port:        app.cfg.SMTP.Port,
			Username:    app.cfg.SMTP.Username,
			Password:    app.cfg.SMTP.Password,
			From:        app.cfg.SMTP.From,
			MaxConns:    app.cfg.SMTP.MaxConns,
			SendTimeout: app.cfg.SMTP.SendTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize smtp: %w", err)
		}
		app.smtp = smtp
		sender = smtp
		app.logger.Info("smtp delivery enabled", "host", app.cfg.SMTP.Host, "port", app.cfg.SMTP.Port)
	} else {
		app.logger.Warn("SMTP_HOST not set, notifications are logged only")
	}

	app.dispatcher = notify.NewDispatcher(sender, notify.DispatcherConfig{
		QueueSize:     app.cfg.MailQueueSize,
		Workers:       app.cfg.MailWorkers,
		RatePerSecond: app.cfg.MailRatePerSecond,
		SendTimeout:   app.cfg.SMTP.SendTimeout,
		CodeWindow:    app.cfg.CodeWindow,
	}, app.logger)
	return nil
}

// initServices builds the business services on top of the store.
func (app *Application) initServices() error {
	pepper, err := loadPepper(app.cfg)
	if err != nil {
		return err
	}

	if err := app.initNotifier(); err != nil {
		return err
	}

	app.credentials = &service.CredentialService{
		Hasher:   cryptox.NewPasswordHasher(pepper),
		Signer:   app.keys.signer,
		Verifier: app.keys.verifier,
		Clock:    app.clock,
		Issuer:   app.cfg.TokenIssuer,
	}
	app.ledger = &service.VerificationLedger{
		Store:  app.db,
		Clock:  app.clock,
		Window: app.cfg.CodeWindow,
	}
	app.lifecycle = &service.IdentityLifecycle{
		Store:       app.db,
		Credentials: app.credentials,
		Ledger:      app.ledger,
		Notifier:    app.dispatcher,
		Clock:       app.clock,
		Grace:       app.cfg.VerificationGrace,
		SessionTTL:  app.cfg.SessionTTL,
	}
	app.gateway = &service.AuthGateway{Credentials: app.credentials}
	app.sweeper = service.NewExpirySweeper(
		app.db,
		app.clock,
		app.logger,
		app.cfg.SweepInterval,
		app.cfg.TicketRetention,
	)
	return nil
}

// initHTTP builds the router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys.keys,
		app.gateway,
		BuildVersion,
		app.db,
		app.logger,
	)
	router.Lifecycle = app.lifecycle
	router.EchoCodes = app.cfg.Env == "dev"
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
