// Package engine assembles the routing engine from configuration and the
// startup artifacts.
package engine

import (
	"fmt"
	"log/slog"

	"moyen/internal/catalog"
	"moyen/internal/classifier"
	"moyen/internal/config"
	"moyen/internal/domain"
	"moyen/internal/lookup"
	"moyen/internal/orchestrator"
	"moyen/internal/rules"
	"moyen/internal/session"
)

// Engine holds the immutable startup artifacts and the service built on them.
type Engine struct {
	Catalog    *catalog.Catalog
	Classifier *classifier.Classifier
	Service    *orchestrator.Service
}

// Build loads the catalog and classifier artifacts and wires the router. It
// fails if any artifact is missing, unreadable or inconsistent.
func Build(cfg config.EngineConfig, sessions session.Store, publisher orchestrator.TurnPublisher, logger *slog.Logger) (*Engine, error) {
	cat, err := catalog.Load(cfg.IntentsPath)
	if err != nil {
		return nil, err
	}
	cls, err := classifier.Load(cfg.VectorizerPath, cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	if err := cat.Validate(cls.Classes()); err != nil {
		return nil, fmt.Errorf("artifacts disagree: %w", err)
	}

	weather := lookup.NewWeatherClient(cfg.WeatherBaseURL, cfg.WeatherAPIKey, cfg.WeatherDefaultCity, cfg.WeatherTimeout)
	worldTime := lookup.NewWorldTimeClient(cfg.WorldTimeBaseURL, cfg.TimezoneMatchCutoff, cfg.WorldTimeTimeout)

	dispatcher := orchestrator.NewDispatcher(orchestrator.NewCatalogHandler(cat)).
		Register(domain.TagTime, orchestrator.NewTimeHandler(worldTime, lookup.SystemClock)).
		Register(domain.TagWeather, orchestrator.NewWeatherHandler(weather))

	svc := orchestrator.New(orchestrator.Config{
		ConfidenceThreshold: cfg.ConfidenceThreshold,
	}, rules.NewLayer(cfg.BotName, lookup.SystemClock), cls, dispatcher, sessions, publisher, logger)

	return &Engine{Catalog: cat, Classifier: cls, Service: svc}, nil
}
