// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	router "doctrade-ledger/internal/api"
	"doctrade-ledger/internal/api/handler"
	"doctrade-ledger/internal/audit"
	"doctrade-ledger/internal/config"
	"doctrade-ledger/internal/repository"
	"doctrade-ledger/internal/repository/postgres"
	"doctrade-ledger/internal/service"
	"doctrade-ledger/internal/util"
	"doctrade-ledger/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB
	Redis  *redis.Client

	// Repositories
	UserRepository               repository.UserRepository
	WalletRepository             repository.WalletRepository
	TransactionRepository        repository.TransactionRepository
	PositionRepository           repository.PositionRepository
	DocumentRepository           repository.DocumentRepository
	DocumentInvestmentRepository repository.DocumentInvestmentRepository
	RequestRepository            repository.RequestRepository

	// Services
	LedgerService   service.LedgerService
	PositionService service.PositionService
	MarketService   service.MarketService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	// Redis backs the rate limiter only; it is not on the money path.
	app.Redis = redis.NewClient(&redis.Options{Addr: app.Config.RedisAddr})

	app.UserRepository = postgres.NewUserRepository(app.DB)
	app.WalletRepository = postgres.NewWalletRepository(app.DB)
	app.TransactionRepository = postgres.NewTransactionRepository(app.DB)
	app.PositionRepository = postgres.NewPositionRepository(app.DB)
	app.DocumentRepository = postgres.NewDocumentRepository(app.DB)
	app.DocumentInvestmentRepository = postgres.NewDocumentInvestmentRepository(app.DB)
	app.RequestRepository = postgres.NewRequestRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	auditSink := audit.NewPostgresSink(app.DB, app.Logger)

	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	app.LedgerService = service.NewLedgerService(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		app.UserRepository,
		app.WalletRepository,
		app.TransactionRepository,
		app.RequestRepository,
		auditSink,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.PositionService = service.NewPositionService(
		app.DB,
		app.DB,
		app.WalletRepository,
		app.TransactionRepository,
		app.PositionRepository,
		app.Config.StakingPlans,
		app.Config.InvestmentPackages,
		auditSink,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.MarketService = service.NewMarketService(
		app.DB,
		app.DB,
		app.WalletRepository,
		app.TransactionRepository,
		app.DocumentRepository,
		app.DocumentInvestmentRepository,
		auditSink,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.Logger.Info("Services initialized.")

	walletHandler := handler.NewWalletHandler(app.LedgerService, app.Logger)
	stakingHandler := handler.NewStakingHandler(app.PositionService, app.Logger)
	investmentHandler := handler.NewInvestmentHandler(app.PositionService, app.Logger)
	documentHandler := handler.NewDocumentHandler(app.MarketService, app.Logger)
	adminHandler := handler.NewAdminHandler(app.LedgerService, app.Logger)
	app.HTTPHandler = router.NewRouter(walletHandler, stakingHandler, investmentHandler, documentHandler, adminHandler, app.Redis, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			app.Logger.Error("Failed to close redis connection", "error", err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
