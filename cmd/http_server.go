package cmd

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

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ussdlab/journey-console/internal"
	"github.com/ussdlab/journey-console/internal/auth"
	authPostgres "github.com/ussdlab/journey-console/internal/auth/postgres"
	"github.com/ussdlab/journey-console/internal/cache"
	"github.com/ussdlab/journey-console/internal/carrier"
	carrierPostgres "github.com/ussdlab/journey-console/internal/carrier/postgres"
	"github.com/ussdlab/journey-console/internal/category"
	categoryPostgres "github.com/ussdlab/journey-console/internal/category/postgres"
	"github.com/ussdlab/journey-console/internal/core/events"
	"github.com/ussdlab/journey-console/internal/gateway"
	gatewayPostgres "github.com/ussdlab/journey-console/internal/gateway/postgres"
	"github.com/ussdlab/journey-console/internal/journey"
	journeyPostgres "github.com/ussdlab/journey-console/internal/journey/postgres"
	"github.com/ussdlab/journey-console/internal/menu"
	menuPostgres "github.com/ussdlab/journey-console/internal/menu/postgres"
	"github.com/ussdlab/journey-console/internal/payment"
	paymentPostgres "github.com/ussdlab/journey-console/internal/payment/postgres"
	"github.com/ussdlab/journey-console/internal/registration"
	registrationPostgres "github.com/ussdlab/journey-console/internal/registration/postgres"
	"github.com/ussdlab/journey-console/internal/transport"
	"github.com/ussdlab/journey-console/internal/transport/rest"
	"github.com/ussdlab/journey-console/internal/transport/swagger"
	"github.com/ussdlab/journey-console/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *gorm.DB
	Cache  *cache.Cache
	Router *chi.Mux
	Logger *slog.Logger

	AuthHandler         *auth.Handler
	CarrierHandler      *carrier.Handler
	GatewayHandler      *gateway.Handler
	MenuHandler         *menu.Handler
	CategoryHandler     *category.Handler
	JourneyHandler      *journey.Handler
	RegistrationHandler *registration.Handler
	PaymentHandler      *payment.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := deps.DB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get database handle: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(
		deps.Router,
		sqlDB,
		deps.AuthHandler,
		deps.CarrierHandler,
		deps.GatewayHandler,
		deps.MenuHandler,
		deps.CategoryHandler,
		deps.JourneyHandler,
		deps.RegistrationHandler,
		deps.PaymentHandler,
		deps.Config.Server.AllowedOrigins,
		deps.Logger,
	)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.Cache.Close(); err != nil {
			deps.Logger.Error("cache close error", "error", err)
		}
		if err := sqlDB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"), config.Observability.Logging.Level)
	log := logger.L()

	// Fail fast on an unparseable API contract rather than at first request.
	if _, err := swagger.LoadSpec("./api/openapi.yml"); err != nil {
		return nil, fmt.Errorf("failed to load openapi spec: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var listCache *cache.Cache
	if config.Redis.Enabled {
		listCache, err = cache.New(config.Redis.Addr, config.Redis.Password, config.Redis.DB, config.Redis.ListTTL, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
	}

	eventBus := events.NewEventBus(log)
	registerEventHandlers(eventBus, log)

	baseHandler := transport.NewBaseHandler(log)

	carrierService := carrier.NewService(carrierPostgres.NewCarrierRepository(db), log)
	categoryService := category.NewService(categoryPostgres.NewCategoryRepository(db), log)
	gatewayService := gateway.NewService(
		gatewayPostgres.NewGatewayRepository(db),
		carrierRefLookup{carriers: carrierService},
		listCache, eventBus, log,
	)
	menuService := menu.NewService(
		menuPostgres.NewMenuRepository(db),
		gatewayExistsLookup{gateways: gatewayService},
		log,
	)
	journeyService := journey.NewService(
		journeyPostgres.NewJourneyRepository(db),
		categoryService,
		listCache, eventBus, log,
	)
	registrationService := registration.NewService(
		registrationPostgres.NewRegistrationRepository(db),
		gatewayExistsLookup{gateways: gatewayService},
		journeyService,
		eventBus, log,
	)
	paymentService := payment.NewService(paymentPostgres.NewPaymentRepository(db), eventBus, log)

	tokens := auth.NewJWTTokenGenerator(config.Security.AccessTokenSecret, config.Security.RefreshTokenSecret)
	tokens.AccessTokenTTL = config.Security.AccessTokenDuration
	tokens.RefreshTokenTTL = config.Security.RefreshTokenDuration
	authService := auth.NewService(authPostgres.NewOperatorRepository(db), tokens, config.Security.BCryptCost, log)

	return &Dependencies{
		Config: config,
		DB:     db,
		Cache:  listCache,
		Router: chi.NewRouter(),
		Logger: log,

		AuthHandler:         auth.NewHandler(baseHandler, authService),
		CarrierHandler:      carrier.NewHandler(baseHandler, carrierService),
		GatewayHandler:      gateway.NewHandler(baseHandler, gatewayService),
		MenuHandler:         menu.NewHandler(baseHandler, menuService),
		CategoryHandler:     category.NewHandler(baseHandler, categoryService),
		JourneyHandler:      journey.NewHandler(baseHandler, journeyService),
		RegistrationHandler: registration.NewHandler(baseHandler, registrationService),
		PaymentHandler:      payment.NewHandler(baseHandler, paymentService),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: dbConn.DB}), &gorm.Config{})
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to wrap db connection: %w", err)
	}

	return db, nil
}

func registerEventHandlers(bus *events.EventBus, log *slog.Logger) {
	audit := func(ctx context.Context, event events.Event) error {
		log.Info("console event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	}

	bus.Subscribe(events.EventJourneyPublished, audit)
	bus.Subscribe(events.EventVersionPromoted, audit)
	bus.Subscribe(events.EventRegistrationCreated, audit)
	bus.Subscribe(events.EventDefaultMethodChanged, audit)
	bus.Subscribe(events.EventGatewayStatusChanged, audit)
}

// carrierRefLookup narrows the carrier service to what the gateway service
// needs for ownership checks.
type carrierRefLookup struct {
	carriers *carrier.Service
}

func (l carrierRefLookup) GetByID(ctx context.Context, id string) (*gateway.CarrierRef, error) {
	record, err := l.carriers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &gateway.CarrierRef{ID: record.ID, Country: record.Country}, nil
}

// gatewayExistsLookup answers existence checks for menu and registration
// services without leaking gateway internals.
type gatewayExistsLookup struct {
	gateways *gateway.Service
}

func (l gatewayExistsLookup) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := l.gateways.GetByID(ctx, id); err != nil {
		if errors.Is(err, internal.ErrGatewayNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
