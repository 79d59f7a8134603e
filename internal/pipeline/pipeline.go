// Package pipeline orchestrates the fetch-filter-clip-export run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fennwick/carrionwatch/internal/adapter/export"
	"github.com/fennwick/carrionwatch/internal/adapter/render"
	"github.com/fennwick/carrionwatch/internal/domain"
	"github.com/fennwick/carrionwatch/internal/observability"
)

// Layer names used for artifacts, metrics labels, and map legends.
const (
	LayerObservations = "carcass_observations"
	LayerColonies     = "colonies"
	LayerOutbreaks    = "outbreaks"
)

// Source fetches the raw observation records for one run.
type Source interface {
	FetchObservations(ctx context.Context) ([]domain.Observation, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]domain.Observation, error)

func (f SourceFunc) FetchObservations(ctx context.Context) ([]domain.Observation, error) {
	return f(ctx)
}

// ArtifactWriter publishes a complete artifact set atomically.
type ArtifactWriter interface {
	WriteAll(artifacts []export.Artifact) error
}

// Params is the per-run policy derived from the rules file.
type Params struct {
	Keywords domain.KeywordRules
	Cutoff   time.Time

	ColonyColumns   domain.ColumnMap
	OutbreakColumns domain.ColumnMap

	MapTitle string
}

// Report summarizes one completed run: how many records each stage saw and
// dropped, and which artifacts were published.
type Report struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Fetched           int                 `json:"fetched"`
	Lexical           domain.FilterCounts `json:"lexical"`
	CoordinateDropped map[string]int      `json:"coordinate_dropped"`
	OutsideBoundary   map[string]int      `json:"outside_boundary"`
	LayerRecords      map[string]int      `json:"layer_records"`

	Artifacts []string `json:"artifacts"`
}

// Pipeline runs the batch pipeline over fixed reference data. The boundary
// and reference tables are loaded once at construction; each run fetches a
// fresh observation snapshot.
type Pipeline struct {
	source    Source
	writer    ArtifactWriter
	params    Params
	boundary  domain.Boundary
	colonies  domain.Table
	outbreaks domain.Table

	logger  *slog.Logger
	metrics *observability.Metrics

	ready      atomic.Bool
	lastReport atomic.Pointer[Report]
}

// New creates a Pipeline.
func New(source Source, writer ArtifactWriter, params Params, boundary domain.Boundary,
	colonies, outbreaks domain.Table, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:    source,
		writer:    writer,
		params:    params,
		boundary:  boundary,
		colonies:  colonies,
		outbreaks: outbreaks,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once at least one run has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// LastReport returns the most recent run report, or nil before the first
// completed run.
func (p *Pipeline) LastReport() any {
	r := p.lastReport.Load()
	if r == nil {
		return nil
	}
	return r
}

// RunOnce executes one complete batch run. Either every artifact is
// published or none is: record-level defects are dropped and counted, while
// fetch failures, CRS mismatches, and export failures abort the run.
func (p *Pipeline) RunOnce(ctx context.Context) error {
	start := domain.Clock().Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	report, err := p.run(ctx)
	p.metrics.RunDuration.Observe(domain.Clock().Since(start).Seconds())
	if err != nil {
		p.metrics.Runs.WithLabelValues("error").Inc()
		return err
	}

	report.StartedAt = start
	report.FinishedAt = domain.Clock().Now()
	p.metrics.Runs.WithLabelValues("success").Inc()
	p.metrics.LastRunUnixTime.Set(float64(report.FinishedAt.Unix()))
	p.lastReport.Store(report)
	p.ready.Store(true)

	p.logger.Info("run complete",
		"fetched", report.Fetched,
		"lexical_kept", report.Lexical.Kept,
		"observations", report.LayerRecords[LayerObservations],
		"colonies", report.LayerRecords[LayerColonies],
		"outbreaks", report.LayerRecords[LayerOutbreaks],
		"artifacts", len(report.Artifacts),
	)
	return nil
}

func (p *Pipeline) run(ctx context.Context) (*Report, error) {
	report := &Report{
		CoordinateDropped: map[string]int{},
		OutsideBoundary:   map[string]int{},
		LayerRecords:      map[string]int{},
	}

	// Extract.
	obs, err := p.source.FetchObservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch observations: %w", err)
	}
	report.Fetched = len(obs)
	p.metrics.ObservationsFetched.Add(float64(len(obs)))
	p.logger.Info("observations fetched", "count", len(obs))

	// Lexical filter.
	kept, counts := domain.FilterObservations(obs, p.params.Keywords, p.params.Cutoff)
	report.Lexical = counts
	p.metrics.LexicalDropped.WithLabelValues("no_inclusion").Add(float64(counts.NoInclusion))
	p.metrics.LexicalDropped.WithLabelValues("exclusion_hit").Add(float64(counts.ExclusionHit))
	p.metrics.LexicalDropped.WithLabelValues("before_cutoff").Add(float64(counts.BeforeCutoff))
	p.logger.Info("lexical filter applied",
		"input", counts.Input,
		"no_inclusion", counts.NoInclusion,
		"exclusion_hit", counts.ExclusionHit,
		"before_cutoff", counts.BeforeCutoff,
		"kept", counts.Kept,
	)

	rawTable := domain.ObservationTable(obs)

	// Geometry, then containment, per layer.
	obsCols := domain.ColumnMap{Lon: "longitude", Lat: "latitude"}
	layers := make([]domain.Layer, 0, 3)
	for _, in := range []struct {
		name  string
		table domain.Table
		cols  domain.ColumnMap
	}{
		{LayerObservations, domain.ObservationTable(kept), obsCols},
		{LayerColonies, p.colonies, p.params.ColonyColumns},
		{LayerOutbreaks, p.outbreaks, p.params.OutbreakColumns},
	} {
		layer, dropped := domain.BuildLayer(in.name, in.table, in.cols, domain.CRSWGS84)
		report.CoordinateDropped[in.name] = dropped
		p.metrics.CoordinateDropped.WithLabelValues(in.name).Add(float64(dropped))

		clipped, outside, err := domain.ClipLayer(layer, p.boundary)
		if err != nil {
			return nil, fmt.Errorf("clip %s: %w", in.name, err)
		}
		report.OutsideBoundary[in.name] = outside
		report.LayerRecords[in.name] = len(clipped.Features)
		p.metrics.OutsideBoundary.WithLabelValues(in.name).Add(float64(outside))
		p.metrics.LayerRecords.WithLabelValues(in.name).Set(float64(len(clipped.Features)))

		layers = append(layers, clipped)
	}

	// Export and render, all-or-nothing.
	styled := []render.StyledLayer{
		{Layer: layers[0], Label: "Carcass observations", Color: "#c0392b", Shape: "circle"},
		{Layer: layers[1], Label: "Colonies", Color: "#2e6da4", Shape: "square"},
		{Layer: layers[2], Label: "Outbreak sites", Color: "#8e44ad", Shape: "triangle"},
	}

	artifacts := []export.Artifact{
		export.TableCSV("observations_raw", rawTable),
	}
	for _, l := range layers {
		artifacts = append(artifacts, export.LayerCSV(l), export.LayerGeoJSON(l))
	}
	artifacts = append(artifacts,
		export.Artifact{Name: "map.svg", Render: func(w io.Writer) error {
			return render.StaticMap(w, p.boundary, styled, p.params.MapTitle)
		}},
		export.Artifact{Name: "map.html", Render: func(w io.Writer) error {
			return render.WebMap(w, p.boundary, styled, p.params.MapTitle)
		}},
	)

	if err := p.writer.WriteAll(artifacts); err != nil {
		return nil, fmt.Errorf("publish artifacts: %w", err)
	}
	for _, a := range artifacts {
		report.Artifacts = append(report.Artifacts, a.Name)
	}

	return report, nil
}
