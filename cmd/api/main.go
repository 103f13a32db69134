package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flight-delay-api/config"
	"flight-delay-api/handlers"
	"flight-delay-api/logging"
	"flight-delay-api/services"
	"flight-delay-api/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.Server.GinMode)

	// Model and airports are loaded once; the process does not start without them.
	model, err := services.LoadDelayModel(cfg.Data.ModelPath)
	if err != nil {
		logger.Fatal("failed to load model", zap.String("path", cfg.Data.ModelPath), zap.Error(err))
	}
	logger.Info("model loaded", zap.String("version", model.Version()))

	airports, err := loadAirports(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to load airports", zap.String("source", cfg.Data.AirportsSource), zap.Error(err))
	}
	logger.Info("airports loaded", zap.Int("count", airports.Len()), zap.String("source", cfg.Data.AirportsSource))

	// Redis is optional: without it predictions are served but not fanned out.
	publisher, err := services.NewPredictionPublisher(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Warn("live prediction feed disabled", zap.Error(err))
	} else if publisher.Available() {
		logger.Info("live prediction feed enabled", zap.String("channel", publisher.Channel()))
	}
	defer publisher.Close()

	router := handlers.NewRouter(handlers.RouterDeps{
		Airports:  airports,
		Model:     model,
		Publisher: publisher,
		Frontend:  web.Static(),
		CORS:      cfg.CORS,
		Logger:    logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}

func loadAirports(ctx context.Context, cfg *config.Config) (*services.AirportTable, error) {
	if cfg.Data.AirportsSource != config.AirportsSourceDB {
		return services.LoadAirportsCSV(cfg.Data.AirportsPath)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db handle: %w", err)
	}
	// The table is read once, so the connection is not kept.
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return services.LoadAirportsFromDB(ctx, db)
}
