package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"resalelens/server/config"
	"resalelens/server/internal/analysis"
	"resalelens/server/internal/api"
	"resalelens/server/internal/completion"
	"resalelens/server/internal/database"
	"resalelens/server/internal/estimator"
	"resalelens/server/internal/processor"
	"resalelens/server/internal/queue"
	"resalelens/server/internal/scheduler"
	"resalelens/server/internal/trend"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, using info")
	}

	if err := config.LoadTemplates(cfg.Estimator.TemplateFile); err != nil {
		logger.WithError(err).Fatal("Failed to load template replies")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var collaborator completion.Collaborator
	if cfg.Estimator.Strategy == config.StrategyExternal {
		collaborator, err = completion.New(ctx, cfg, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create completion client")
		}
	}

	strategy, err := estimator.New(cfg, collaborator)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create estimator")
	}

	service := analysis.NewService(strategy, trend.NewSimulator(), analysis.NewRandFactory(cfg.Estimator.RandomSeed), logger)

	var history api.HistoryStore
	if cfg.History.Enabled {
		logger.Infof("Using history database at: %s", cfg.History.DBPath)
		db, err := database.NewDatabase(cfg.History.DBPath)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize database")
		}
		defer db.Close()

		logger.Info("Running database migrations...")
		if err := db.RunMigrations(); err != nil {
			logger.WithError(err).Fatal("Failed to run database migrations")
		}

		recordQueue := queue.NewRecordQueue(cfg.BatchProcessing.MaxBatchSize, logger)
		batchProcessor := processor.NewBatchProcessor(db.GetDB(), recordQueue, cfg, logger)
		batchProcessor.Start()
		defer batchProcessor.Stop()

		service.SetRecorder(batchProcessor)
		history = db

		if cfg.History.Retention > 0 {
			pruneScheduler := scheduler.NewScheduler(db, cfg.History.Retention, cfg.History.PruneInterval, logger)
			pruneScheduler.Start()
			defer pruneScheduler.Stop()
		}
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(cfg.CORSAllowedOrigins, logger)
	api.SetupRoutes(router, api.NewHandler(service, history, cfg, logger))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithFields(logrus.Fields{
			"port":     cfg.Port,
			"strategy": strategy.Name(),
			"history":  cfg.History.Enabled,
		}).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Server stopped with error")
	}
}
