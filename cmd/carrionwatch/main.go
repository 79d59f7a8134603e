// Command carrionwatch fetches research-grade vulture observations, filters
// them down to carcass reports, clips them with the colony and outbreak
// reference layers to the configured country, and publishes the tabular,
// GeoJSON, and map artifacts.
//
// By default it runs once and exits. Setting WATCH_INTERVAL re-runs the
// pipeline on that interval and serves /healthz, /readyz, /statusz, and
// /metrics while it does.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fennwick/carrionwatch/internal/adapter/export"
	httpadapter "github.com/fennwick/carrionwatch/internal/adapter/http"
	"github.com/fennwick/carrionwatch/internal/adapter/inat"
	"github.com/fennwick/carrionwatch/internal/adapter/refdata"
	"github.com/fennwick/carrionwatch/internal/config"
	"github.com/fennwick/carrionwatch/internal/domain"
	"github.com/fennwick/carrionwatch/internal/observability"
	"github.com/fennwick/carrionwatch/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		logger.Error("failed to load rules", "path", cfg.RulesPath, "error", err)
		os.Exit(1)
	}

	p, err := buildPipeline(cfg, rules, logger, metrics)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.WatchInterval == 0 {
		if err := p.RunOnce(ctx); err != nil {
			logger.Error("run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if err := p.Watch(ctx, cfg.WatchInterval); err != nil {
		logger.Error("watch loop error", "error", err)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

// buildPipeline loads the reference datasets and wires the adapters. Any
// missing reference input is fatal before the first run starts.
func buildPipeline(cfg *config.Config, rules *config.Rules, logger *slog.Logger, metrics *observability.Metrics) (*pipeline.Pipeline, error) {
	boundary, err := refdata.LoadBoundary(rules.Boundary.Path, rules.Country)
	if err != nil {
		return nil, err
	}
	colonies, err := refdata.LoadTable(rules.Colonies.Path)
	if err != nil {
		return nil, err
	}
	outbreaks, err := refdata.LoadTable(rules.Outbreaks.Path)
	if err != nil {
		return nil, err
	}
	logger.Info("reference data loaded",
		"country", rules.Country,
		"colonies", len(colonies.Rows),
		"outbreaks", len(outbreaks.Rows),
	)

	client := inat.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger)
	query := inat.Query{
		TaxonName:  cfg.TaxonName,
		PlaceID:    cfg.PlaceID,
		MaxResults: cfg.MaxResults,
	}
	source := pipeline.SourceFunc(func(ctx context.Context) ([]domain.Observation, error) {
		return client.FetchObservations(ctx, query)
	})

	params := pipeline.Params{
		Keywords: domain.KeywordRules{
			Include: rules.Keywords.Include,
			Exclude: rules.Keywords.Exclude,
		},
		Cutoff:          rules.Cutoff(),
		ColonyColumns:   domain.ColumnMap{Lon: rules.Colonies.LongitudeColumn, Lat: rules.Colonies.LatitudeColumn},
		OutbreakColumns: domain.ColumnMap{Lon: rules.Outbreaks.LongitudeColumn, Lat: rules.Outbreaks.LatitudeColumn},
		MapTitle:        rules.Map.Title,
	}

	writer := export.NewWriter(cfg.OutputDir, logger)

	return pipeline.New(source, writer, params, boundary, colonies, outbreaks, logger, metrics), nil
}
