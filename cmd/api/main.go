package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trip-stitcher/internal/core/cache"
	"trip-stitcher/internal/core/config"
	"trip-stitcher/internal/core/geo"
	"trip-stitcher/internal/core/logger"
	"trip-stitcher/internal/core/metrics"
	"trip-stitcher/internal/core/server"
	"trip-stitcher/internal/features/itinerary/adapters"
	"trip-stitcher/internal/features/itinerary/continuity"
	"trip-stitcher/internal/features/itinerary/handler"
	"trip-stitcher/internal/features/itinerary/ports"
	"trip-stitcher/internal/features/itinerary/service"

	"go.uber.org/zap"
)

// @title Trip Stitcher API
// @version 1.0
// @description This API stores travel itineraries and repairs continuity gaps between their segments.
// @contact.name API Support
// @contact.email support@tripstitcher.dev
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	m := metrics.NewMetrics("trip_stitcher")

	store, err := newCache(cfg.Redis)
	if err != nil {
		l.Fatal("Cache initialization failed", zap.Error(err))
	}
	defer store.Close()

	repo := adapters.NewRedisItineraryRepository(store, cfg.Redis.SnapshotTTL)
	locker := adapters.NewCacheLocker(store, cfg.Redis.LockTTL, cfg.Redis.LockWait)

	engineCfg := continuity.Config{
		MinTransferDuration:  cfg.Engine.MinTransferDuration,
		SynthesisConfidence:  cfg.Engine.SynthesisConfidence,
		OverlapTolerance:     cfg.Engine.OverlapTolerance,
		ProximityMeters:      cfg.Engine.ProximityMeters,
		MinContainmentLength: cfg.Engine.MinContainmentLength,
	}
	matcher, err := continuity.NewMatcher(cfg.Engine.Matcher, engineCfg)
	if err != nil {
		l.Fatal("Engine initialization failed", zap.Error(err))
	}
	engine := continuity.NewEngine(engineCfg, continuity.WithMatcher(matcher))
	l.Info("Continuity engine ready", zap.String("matcher", cfg.Engine.Matcher))

	var extractor ports.SegmentExtractor
	if cfg.Extractor.URL != "" {
		extractor = adapters.NewHTTPSegmentExtractor(cfg.Extractor)
		l.Info("Document imports enabled", zap.String("extractor_url", cfg.Extractor.URL))
	} else {
		l.Warn("EXTRACTOR_URL not set, document imports are disabled")
	}

	exporter := adapters.NewICalExporter(geo.NewTimezoneResolver())

	// Initialize Itinerary Service & Handler
	itinerarySvc := service.NewItineraryService(repo, locker, engine, extractor, exporter, m)
	itineraryHdl := handler.NewItineraryHandler(itinerarySvc)

	srv := server.New(cfg, m)

	// Register Routes
	srv.App.Get("/itineraries/:id", itineraryHdl.GetItinerary)
	srv.App.Delete("/itineraries/:id", itineraryHdl.DeleteItinerary)
	srv.App.Put("/itineraries/:id/segments", itineraryHdl.ReplaceSegments)
	srv.App.Post("/itineraries/:id/repair", itineraryHdl.RepairItinerary)
	srv.App.Post("/itineraries/:id/imports", itineraryHdl.ImportDocument)
	srv.App.Get("/itineraries/:id/calendar.ics", itineraryHdl.ExportCalendar)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		l.Info("Shutting down server")
		if err := srv.Shutdown(); err != nil {
			l.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}

// newCache connects to Redis when a URL is configured and falls back to an
// in-process store otherwise.
func newCache(cfg config.RedisConfig) (cache.Cache, error) {
	if cfg.URL == "" {
		logger.Get().Warn("REDIS_URL not set, itineraries are kept in memory")
		return cache.NewMemoryAdapter(time.Minute), nil
	}

	redisAdapter, err := cache.NewRedisAdapter(cfg.URL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisAdapter.Ping(ctx); err != nil {
		redisAdapter.Close()
		return nil, err
	}
	logger.Get().Info("Redis connection verified")
	return redisAdapter, nil
}
