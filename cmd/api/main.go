package main

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

	"github.com/avvikelse/avvikelse-backend-go/internal/config"
	appHTTP "github.com/avvikelse/avvikelse-backend-go/internal/handler/http"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/cron"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/database"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/jwt"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/lock"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/logger"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/metrics"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/redis"
	"github.com/avvikelse/avvikelse-backend-go/internal/pkg/storage"
	"github.com/avvikelse/avvikelse-backend-go/internal/repository/postgresql"
	deviationService "github.com/avvikelse/avvikelse-backend-go/internal/service/deviation"
	employeeService "github.com/avvikelse/avvikelse-backend-go/internal/service/employee"
	exportService "github.com/avvikelse/avvikelse-backend-go/internal/service/export"
	"github.com/avvikelse/avvikelse-backend-go/internal/service/leave"
	timeCodeService "github.com/avvikelse/avvikelse-backend-go/internal/service/timecode"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closeLog := logger.Setup(logger.Options{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
		Env:    cfg.App.Env,
		File:   cfg.App.LogFile,
	})
	defer closeLog()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	log.Info("Connected to PostgreSQL", "host", cfg.Database.Host, "db", cfg.Database.Name)

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db, log); err != nil {
			return err
		}
	}

	// Redis is only needed when several API instances share the export lock.
	var locker lock.Locker
	redisClient, err := redis.NewClient(redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, log)
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-process export lock", "error", err)
		locker = lock.NewLocal()
	} else {
		defer redisClient.Close()
		locker = redisClient
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	accessTTL, err := time.ParseDuration(cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("parse JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	m := metrics.New()
	location := cfg.Location()

	transactor := postgresql.NewTransactor(db)
	deviationRepo := postgresql.NewDeviationRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	timeCodeRepo := postgresql.NewTimeCodeRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	balanceRepo := postgresql.NewVacationBalanceRepository(db)
	batchRepo := postgresql.NewExportBatchRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, accessTTL)
	deviationSvc := deviationService.NewDeviationService(deviationRepo, employeeRepo, timeCodeRepo, log, location)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, log)
	timeCodeSvc := timeCodeService.NewTimeCodeService(timeCodeRepo, log)
	leaveSvc := leave.NewLeaveService(transactor, leaveRequestRepo, balanceRepo, employeeRepo, m, log)
	exportSvc := exportService.NewExportService(
		deviationRepo,
		employeeRepo,
		timeCodeRepo,
		batchRepo,
		transactor,
		locker,
		fileStorage,
		m,
		log,
		exportService.Config{
			OrgNumber:     cfg.Export.OrgNumber,
			CompanyName:   cfg.Export.CompanyName,
			PayrollSystem: cfg.Export.PayrollSystem,
			LockTTL:       cfg.Export.LockTTL,
			Location:      location,
		},
	)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AllowedOrigins: []string{cfg.App.FrontendURL},
			Env:            cfg.App.Env,
			Version:        version,
			LogLevel:       logger.ParseLevel(cfg.App.LogLevel),
		},
		JWTService,
		m,
		appHTTP.Handlers{
			Deviation: appHTTP.NewDeviationHandler(deviationSvc),
			Leave:     appHTTP.NewLeaveHandler(leaveSvc),
			Employee:  appHTTP.NewEmployeeHandler(employeeSvc),
			TimeCode:  appHTTP.NewTimeCodeHandler(timeCodeSvc),
			Export:    appHTTP.NewExportHandler(exportSvc),
		},
	)

	scheduler := cron.NewScheduler(log, time.Minute)
	cron.NewExportJobs(exportSvc, m, log, cfg.Export.ReadinessCron).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server running", "addr", srv.Addr, "env", cfg.App.Env, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
