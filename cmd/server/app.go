package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/salesday/backend/internal/azuremaps"
	"github.com/salesday/backend/internal/config"
	"github.com/salesday/backend/internal/db"
	"github.com/salesday/backend/internal/geocode"
	"github.com/salesday/backend/internal/maps"
	"github.com/salesday/backend/internal/metrics"
	"github.com/salesday/backend/internal/roster"
	"github.com/salesday/backend/internal/routing"
	"github.com/salesday/backend/internal/service"
	"github.com/salesday/backend/internal/visitday"
)

type app struct {
	cfg     config.Config
	logger  zerolog.Logger
	metrics *metrics.Metrics
	store   *db.Store
	orch    *service.Orchestrator
}

func newLogger(cfg config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return log.Level(level).With().Str("service", "salesday-backend").Str("env", cfg.Env).Logger()
}

// buildApp wires providers from configuration: Azure Maps when a key is set,
// otherwise local routing over Nominatim or the built-in sample addresses.
func buildApp(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*app, error) {
	m := metrics.Default()
	a := &app{cfg: cfg, logger: logger, metrics: m}

	var (
		router   routing.Client
		renderer maps.Renderer
	)
	if cfg.AzureMapsKey != "" {
		az, err := azuremaps.New(cfg.AzureMapsKey,
			azuremaps.WithBaseURL(cfg.AzureMapsURL),
			azuremaps.WithRegion(cfg.GeocodeRegion),
		)
		if err != nil {
			return nil, err
		}
		router = metrics.InstrumentRouting(az, "azure", m)
		renderer = metrics.InstrumentRenderer(az, "azure", m)
		logger.Info().Str("url", cfg.AzureMapsURL).Msg("using azure maps")
	} else {
		var (
			g    geocode.Geocoder
			name string
		)
		if cfg.NominatimURL != "" {
			g = &geocode.NominatimGeocoder{BaseURL: cfg.NominatimURL, UserAgent: cfg.NominatimUserAgent, Region: cfg.GeocodeRegion}
			name = "nominatim"
		} else {
			g = geocode.NewStaticGeocoder(roster.SampleAddresses())
			name = "static"
		}
		router = metrics.InstrumentRouting(routing.Local{Geocoder: g, SpeedKmh: cfg.AverageSpeedKmh}, "local", m)
		renderer = metrics.InstrumentRenderer(maps.Placeholder{}, "placeholder", m)
		logger.Info().Str("geocoder", name).Msg("using local routing and placeholder maps")
	}
	if cfg.MapCacheTTL > 0 {
		renderer = maps.NewCache(renderer, cfg.MapCacheTTL)
	}

	var provider roster.Provider = roster.Sample{Count: cfg.RosterSize}
	if cfg.DatabaseURL != "" {
		store, err := openStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.store = store
		provider = store
		logger.Info().Msg("roster from database schedule")
	} else {
		logger.Info().Int("size", cfg.RosterSize).Msg("using sample roster")
	}

	a.orch = service.NewOrchestrator(visitday.NewSession(), router, renderer,
		service.WithRosterProvider(provider),
		service.WithLogger(logger),
		service.WithGeocodeConcurrency(cfg.GeocodeConcurrency),
	)
	return a, nil
}

func openStore(ctx context.Context, url string) (*db.Store, error) {
	store, err := db.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}
