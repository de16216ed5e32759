package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/jayanthmani8045/hara-tool/config"
	"github.com/jayanthmani8045/hara-tool/internal/database"
	"github.com/jayanthmani8045/hara-tool/internal/middleware"
	"github.com/jayanthmani8045/hara-tool/internal/repositories/assessmentrun"
	"github.com/jayanthmani8045/hara-tool/internal/startup"
	"github.com/jayanthmani8045/hara-tool/internal/tracing"
	"github.com/jayanthmani8045/hara-tool/pkg/events"
	"github.com/jayanthmani8045/hara-tool/pkg/kafka"
	"github.com/jayanthmani8045/hara-tool/pkg/routes/classify"
	"github.com/jayanthmani8045/hara-tool/pkg/routes/health"
	"github.com/jayanthmani8045/hara-tool/pkg/routes/run"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	tracing.SetTracer(tp.Tracer(cfg.AppName))

	app := &application{cfg: cfg, logger: logger}

	boot := startup.New(logger, cfg.StartupMaxAttempts)
	boot.AddDependency(&databaseDependency{app: app})
	if cfg.KafkaEnabled {
		boot.AddDependency(&kafkaDependency{app: app})
	}
	boot.AddDependency(&serverDependency{app: app})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := boot.Start(ctx); err != nil {
		logger.WithError(err).Error("Startup failed")
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := boot.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Shutdown did not complete cleanly")
	}
	_ = tp.Shutdown(shutdownCtx)
}

func newLogger(cfg *config.Config) ectologger.Logger {
	var zapLogger *zap.Logger
	var err error
	if cfg.PrettyLogs {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

// application holds the shared state the startup dependencies wire together.
type application struct {
	cfg      *config.Config
	logger   ectologger.Logger
	db       database.DB
	producer *kafka.Producer
	echo     *echo.Echo
	checker  *health.Checker
}

type databaseDependency struct {
	app *application
}

func (d *databaseDependency) GetName() string     { return "database" }
func (d *databaseDependency) DependsOn() []string { return nil }

func (d *databaseDependency) Start(ctx context.Context) error {
	cfg := d.app.cfg
	db, err := database.Connect(database.ConnectionConfig{
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		UserName:        cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, d.app.logger)
	if err != nil {
		return err
	}
	d.app.db = db

	driver, err := migratepg.WithInstance(db.Unsafe().DB, &migratepg.Config{})
	if err != nil {
		return err
	}
	migration := database.NewMigrationService(d.app.logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
	})
	return migration.Migrate(cfg.DatabaseName, driver)
}

func (d *databaseDependency) Stop(ctx context.Context) error {
	if d.app.db != nil {
		return d.app.db.Close()
	}
	return nil
}

type kafkaDependency struct {
	app *application
}

func (d *kafkaDependency) GetName() string     { return "kafka" }
func (d *kafkaDependency) DependsOn() []string { return nil }

func (d *kafkaDependency) Start(ctx context.Context) error {
	cfg := d.app.cfg
	d.app.producer = kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		Topic:        cfg.KafkaRunTopic,
		BatchSize:    cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: cfg.KafkaRequiredAcks,
		Compression:  cfg.KafkaCompression,
	}, d.app.logger)
	return nil
}

func (d *kafkaDependency) Stop(ctx context.Context) error {
	if d.app.producer != nil {
		return d.app.producer.Close()
	}
	return nil
}

type serverDependency struct {
	app *application
}

func (d *serverDependency) GetName() string { return "http-server" }

func (d *serverDependency) DependsOn() []string {
	deps := []string{"database"}
	if d.app.cfg.KafkaEnabled {
		deps = append(deps, "kafka")
	}
	return deps
}

func (d *serverDependency) Start(ctx context.Context) error {
	app := d.app
	cfg := app.cfg

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.Error(app.logger)
	e.Use(echomiddleware.Recover())
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(app.logger))

	app.checker = health.NewChecker(app.db.Unsafe(), version)
	app.checker.RegisterRoutes(e)

	var emitter *events.Emitter
	if app.producer != nil {
		emitter = events.NewEmitter(app.producer, app.logger)
	}

	repo := assessmentrun.NewRepository(app.db, app.logger)
	api := e.Group("/api/v1")
	run.NewHandler(cfg, repo, emitter, app.logger).RegisterRoutes(api)
	classify.NewHandler().RegisterRoutes(api)

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	app.echo = e

	go func() {
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && err != http.ErrServerClosed {
			app.logger.WithError(err).Error("HTTP server stopped unexpectedly")
		}
	}()

	app.checker.SetReady(true)
	app.logger.WithField("port", cfg.Port).Infof("%s listening on port %d", cfg.AppName, cfg.Port)
	return nil
}

func (d *serverDependency) Stop(ctx context.Context) error {
	if d.app.checker != nil {
		d.app.checker.SetReady(false)
	}
	if d.app.echo != nil {
		return d.app.echo.Shutdown(ctx)
	}
	return nil
}
