package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campussync/complaint-management/internal"
	"github.com/campussync/complaint-management/internal/auth"
	"github.com/campussync/complaint-management/internal/complaint"
	complaintpg "github.com/campussync/complaint-management/internal/complaint/postgres"
	"github.com/campussync/complaint-management/internal/report"
	reportpg "github.com/campussync/complaint-management/internal/report/postgres"
	"github.com/campussync/complaint-management/internal/storage"
	"github.com/campussync/complaint-management/internal/transport/rest"
	"github.com/campussync/complaint-management/internal/user"
	userpg "github.com/campussync/complaint-management/internal/user/postgres"
	"github.com/campussync/complaint-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
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
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger

	AuthHandler      *auth.Handler
	RoleGate         *auth.RoleGate
	UserHandler      *user.Handler
	ComplaintHandler *complaint.Handler
	ReportHandler    *report.Handler
	Escalator        *complaint.Escalator
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB,
		deps.AuthHandler, deps.RoleGate, deps.UserHandler,
		deps.ComplaintHandler, deps.ReportHandler, deps.Logger)

	// background escalation sweeps run for the lifetime of the server
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go deps.Escalator.Run(sweepCtx)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
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
		deps.Logger.Info("Received signal, shutting down...", "signal", sig.String())
		stopSweeper()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		stopSweeper()
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Format)
	lg := logger.L()

	// schema is created on start so a fresh deployment can run `server` alone
	if err := applyMigrations(context.Background(), config.Database.Source, defaultMigrationsDir, "up"); err != nil {
		return nil, fmt.Errorf("failed to run schema migrations: %w", err)
	}
	lg.Info("schema migrations applied")

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	uploads, err := initStorage(config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize upload storage: %w", err)
	}

	userRepo := userpg.NewUserRepository(gormDB)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	complaintRepo := complaintpg.NewComplaintRepository(gormDB)
	complaintService := complaint.NewService(complaintRepo, userService, config.Escalation.Threshold, lg)
	complaintHandler := complaint.NewHandler(complaintService, uploads)
	escalator := complaint.NewEscalator(complaintService, config.Escalation.SweepInterval, lg)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(userRepo, tokenGen, complaintService,
		config.Registration.AllowedEmailDomain, config.Security.BCryptCost, lg)
	authHandler := auth.NewHandler(authService)
	gate := auth.NewRoleGate(db, lg)

	reportRepo := reportpg.NewReportRepository(db)
	reportService := report.NewService(reportRepo, lg)
	reportHandler := report.NewHandler(reportService)

	return &Dependencies{
		Config:           config,
		DB:               db,
		Gorm:             gormDB,
		Router:           chi.NewRouter(),
		Logger:           lg,
		AuthHandler:      authHandler,
		RoleGate:         gate,
		UserHandler:      userHandler,
		ComplaintHandler: complaintHandler,
		ReportHandler:    reportHandler,
		Escalator:        escalator,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers the ORM over the already-open pgx connection pool so both
// query paths share one pool.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
}

func initStorage(cfg internal.StorageConfig) (*storage.Store, error) {
	var backend storage.ObjectStorage

	switch cfg.Backend {
	case "minio":
		b, err := storage.NewMinioBackend(cfg.Minio)
		if err != nil {
			return nil, err
		}
		backend = b
	default:
		b, err := storage.NewLocalBackend(cfg.UploadDir)
		if err != nil {
			return nil, err
		}
		backend = b
	}

	store := storage.NewStore(backend, cfg.MaxUploadBytes, cfg.AllowedExtensions)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	return store, nil
}
