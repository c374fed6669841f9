package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/focus/api/handler"
	"github.com/fastygo/focus/internal/config"
	"github.com/fastygo/focus/internal/infrastructure/buffer"
	"github.com/fastygo/focus/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/focus/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/focus/internal/infrastructure/redis"
	"github.com/fastygo/focus/internal/middleware"
	"github.com/fastygo/focus/internal/router"
	"github.com/fastygo/focus/internal/services"
	"github.com/fastygo/focus/internal/services/lifecycle"
	"github.com/fastygo/focus/pkg/clock"
	"github.com/fastygo/focus/pkg/httpcontext"
	"github.com/fastygo/focus/pkg/logger"
	"github.com/fastygo/focus/repository"
	"github.com/fastygo/focus/repository/memory"
	"github.com/fastygo/focus/repository/postgres"
	redisRepo "github.com/fastygo/focus/repository/redis"
	"github.com/fastygo/focus/usecase"
	categoryUC "github.com/fastygo/focus/usecase/category"
	goalUC "github.com/fastygo/focus/usecase/goal"
	reportUC "github.com/fastygo/focus/usecase/report"
	taskUC "github.com/fastygo/focus/usecase/task"
	timerUC "github.com/fastygo/focus/usecase/timer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.SignalContext(context.Background())
	defer stop()

	store := openStore(appCtx, cfg, manager, zapLogger)

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	var (
		locker repository.TaskLocker
		cache  repository.ReportCache
	)
	if redisClient != nil {
		locker = redisRepo.NewTaskLocker(redisClient, cfg.Timer.LockTTL, cfg.Timer.LockTTL, zapLogger)
		cache = redisRepo.NewReportCache(redisClient)
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
	} else {
		zapLogger.Info("redis disabled, task locks and report cache are off")
	}

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "buffer", cfg.Buffer.MaxSize)
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(store, cfg.Store.Driver, redisClient, bufferStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	dispatcher := usecase.NewDispatcher()
	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		dispatcher,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  cfg.Buffer.BatchSize,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	bufferBridge := services.NewBufferBridge(bufferProcessor)

	clk := clock.System{}
	goalUseCase := goalUC.New(store, bufferBridge, goalUC.Policy{AutoComplete: cfg.Goal.AutoComplete}, zapLogger)
	dispatcher.RegisterCommand(usecase.CommandGoalRecompute, goalUseCase.HandleRecompute)

	timerUseCase := timerUC.New(store, timerUC.Dependencies{
		Locker: locker,
		Cache:  cache,
		Goals:  goalUseCase,
		Clock:  clk,
	}, timerUC.Config{MaxInterval: cfg.Timer.MaxInterval}, zapLogger)
	taskUseCase := taskUC.New(store, taskUC.Dependencies{
		Cache: cache,
		Goals: goalUseCase,
		Timer: timerUseCase,
		Clock: clk,
	}, taskUC.Config{MaxInterval: cfg.Timer.MaxInterval}, zapLogger)
	categoryUseCase := categoryUC.New(store.Categories(), zapLogger)
	reportUseCase := reportUC.New(store, cache, clk, reportUC.Config{
		Days:         cfg.Report.Days,
		Location:     cfg.Report.Location,
		InsightLimit: cfg.Report.InsightLimit,
		CacheTTL:     cfg.Report.CacheTTL,
	}, zapLogger)

	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:     apiHandler.NewTaskHandler(taskUseCase, clk, ctxAdapter, zapLogger),
		Timer:    apiHandler.NewTimerHandler(timerUseCase, taskUseCase, clk, cfg.Timer.StaleAfter, ctxAdapter, zapLogger),
		Goal:     apiHandler.NewGoalHandler(goalUseCase, ctxAdapter, zapLogger),
		Category: apiHandler.NewCategoryHandler(categoryUseCase, ctxAdapter, zapLogger),
		Report:   apiHandler.NewReportHandler(reportUseCase, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("store", cfg.Store.Driver))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

// openStore builds the configured persistence backend and registers its shutdown hook.
func openStore(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, zapLogger *zap.Logger) repository.Store {
	if cfg.Store.Driver == config.StoreDriverMemory {
		zapLogger.Warn("using in-memory store, data is lost on restart")
		return memory.NewStore()
	}

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pgInfra.Close(pool, zapLogger)
		return nil
	})
	return postgres.NewStore(pool)
}
