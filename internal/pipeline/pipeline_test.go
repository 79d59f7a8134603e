package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fennwick/carrionwatch/internal/adapter/export"
	"github.com/fennwick/carrionwatch/internal/domain"
	"github.com/fennwick/carrionwatch/internal/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// captureWriter renders every artifact into memory instead of the filesystem.
type captureWriter struct {
	artifacts map[string][]byte
	err       error
	calls     int
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{artifacts: map[string][]byte{}}
}

func (c *captureWriter) WriteAll(artifacts []export.Artifact) error {
	c.calls++
	if c.err != nil {
		return c.err
	}
	for _, a := range artifacts {
		var buf bytes.Buffer
		if err := a.Render(&buf); err != nil {
			return err
		}
		c.artifacts[a.Name] = buf.Bytes()
	}
	return nil
}

func coord(v float64) *float64 { return &v }

func testObservations() []domain.Observation {
	observed := time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC)
	old := time.Date(2019, 6, 10, 0, 0, 0, 0, time.UTC)
	return []domain.Observation{
		// Kept all the way through.
		{ID: 1, ObservedOn: observed, Tags: []string{"dead"}, Longitude: coord(5), Latitude: coord(5)},
		// Keyword hit but outside the boundary.
		{ID: 2, ObservedOn: observed, Description: "fresh carcass", Longitude: coord(50), Latitude: coord(5)},
		// Keyword hit but no coordinates.
		{ID: 3, ObservedOn: observed, Tags: []string{"dead"}},
		// Exclusion keyword.
		{ID: 4, ObservedOn: observed, Description: "dead, only a skeleton", Longitude: coord(5), Latitude: coord(5)},
		// Before cutoff.
		{ID: 5, ObservedOn: old, Tags: []string{"dead"}, Longitude: coord(5), Latitude: coord(5)},
		// No keyword at all.
		{ID: 6, ObservedOn: observed, Description: "soaring overhead", Longitude: coord(5), Latitude: coord(5)},
	}
}

func testParams() Params {
	return Params{
		Keywords: domain.KeywordRules{
			Include: []string{"dead", "carcass"},
			Exclude: []string{"skeleton"},
		},
		Cutoff:          time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		ColonyColumns:   domain.ColumnMap{Lon: "lon", Lat: "lat"},
		OutbreakColumns: domain.ColumnMap{Lon: "lon", Lat: "lat"},
		MapTitle:        "Test carcass map",
	}
}

func testBoundary(crs string) domain.Boundary {
	return domain.Boundary{
		Name: "Testland",
		CRS:  crs,
		Geom: orb.MultiPolygon{orb.Polygon{orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}},
	}
}

func testReferenceTables() (colonies, outbreaks domain.Table) {
	colonies = domain.Table{
		Columns: []string{"name", "lat", "lon"},
		Rows: []domain.Row{
			{"name": "north cliff", "lat": "8", "lon": "2"},
			{"name": "offshore stack", "lat": "5", "lon": "20"}, // outside
			{"name": "bad row", "lat": "", "lon": "2"},          // dropped
		},
	}
	outbreaks = domain.Table{
		Columns: []string{"name", "lat", "lon"},
		Rows: []domain.Row{
			{"name": "farm A", "lat": "3", "lon": "3"},
		},
	}
	return colonies, outbreaks
}

func newTestPipeline(source Source, writer ArtifactWriter, boundary domain.Boundary) *Pipeline {
	colonies, outbreaks := testReferenceTables()
	return New(source, writer, testParams(), boundary, colonies, outbreaks,
		testLogger(), observability.NewMetricsForTesting())
}

func fixedSource(obs []domain.Observation, err error) Source {
	return SourceFunc(func(context.Context) ([]domain.Observation, error) {
		return obs, err
	})
}

func TestRunOnce(t *testing.T) {
	writer := newCaptureWriter()
	p := newTestPipeline(fixedSource(testObservations(), nil), writer, testBoundary(domain.CRSWGS84))

	require.NoError(t, p.RunOnce(context.Background()))

	report, ok := p.LastReport().(*Report)
	require.True(t, ok)

	assert.Equal(t, 6, report.Fetched)
	assert.Equal(t, 1, report.Lexical.NoInclusion)
	assert.Equal(t, 1, report.Lexical.ExclusionHit)
	assert.Equal(t, 1, report.Lexical.BeforeCutoff)
	assert.Equal(t, 3, report.Lexical.Kept)

	assert.Equal(t, 1, report.CoordinateDropped[LayerObservations])
	assert.Equal(t, 1, report.CoordinateDropped[LayerColonies])
	assert.Equal(t, 1, report.OutsideBoundary[LayerObservations])
	assert.Equal(t, 1, report.OutsideBoundary[LayerColonies])

	assert.Equal(t, 1, report.LayerRecords[LayerObservations])
	assert.Equal(t, 1, report.LayerRecords[LayerColonies])
	assert.Equal(t, 1, report.LayerRecords[LayerOutbreaks])

	// 1 raw snapshot + 3 layers x (csv + geojson) + 2 maps.
	wantArtifacts := []string{
		"observations_raw.csv",
		"carcass_observations.csv", "carcass_observations.geojson",
		"colonies.csv", "colonies.geojson",
		"outbreaks.csv", "outbreaks.geojson",
		"map.svg", "map.html",
	}
	assert.Equal(t, wantArtifacts, report.Artifacts)
	for _, name := range wantArtifacts {
		assert.Contains(t, writer.artifacts, name)
	}

	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestRunOnce_FetchFailureAborts(t *testing.T) {
	writer := newCaptureWriter()
	p := newTestPipeline(fixedSource(nil, errors.New("service unavailable")), writer, testBoundary(domain.CRSWGS84))

	err := p.RunOnce(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch observations")
	assert.Equal(t, 0, writer.calls, "no artifacts may be published on a failed fetch")
	assert.Error(t, p.CheckReadiness(context.Background()))
	assert.Nil(t, p.LastReport())
}

func TestRunOnce_CRSMismatchAborts(t *testing.T) {
	writer := newCaptureWriter()
	p := newTestPipeline(fixedSource(testObservations(), nil), writer, testBoundary("EPSG:3857"))

	err := p.RunOnce(context.Background())

	require.Error(t, err)
	var mismatch *domain.CRSMismatchError
	assert.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 0, writer.calls)
}

func TestRunOnce_PublishFailure(t *testing.T) {
	writer := newCaptureWriter()
	writer.err = errors.New("disk full")
	p := newTestPipeline(fixedSource(testObservations(), nil), writer, testBoundary(domain.CRSWGS84))

	err := p.RunOnce(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish artifacts")
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestRunOnce_Idempotent(t *testing.T) {
	first := newCaptureWriter()
	p1 := newTestPipeline(fixedSource(testObservations(), nil), first, testBoundary(domain.CRSWGS84))
	require.NoError(t, p1.RunOnce(context.Background()))

	second := newCaptureWriter()
	p2 := newTestPipeline(fixedSource(testObservations(), nil), second, testBoundary(domain.CRSWGS84))
	require.NoError(t, p2.RunOnce(context.Background()))

	require.Equal(t, len(first.artifacts), len(second.artifacts))
	for name, content := range first.artifacts {
		assert.Equal(t, content, second.artifacts[name], "artifact %s must be byte-identical across runs", name)
	}
}

func TestWatch_StopsOnCancel(t *testing.T) {
	writer := newCaptureWriter()
	p := newTestPipeline(fixedSource(testObservations(), nil), writer, testBoundary(domain.CRSWGS84))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Watch(ctx, time.Hour) }()

	// Wait for the first run, then cancel.
	require.Eventually(t, func() bool {
		return p.CheckReadiness(context.Background()) == nil
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
	assert.Equal(t, 1, writer.calls)
}

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, 60*time.Second, nextBackoff(30*time.Second, 5*time.Minute))
	assert.Equal(t, 5*time.Minute, nextBackoff(4*time.Minute, 5*time.Minute))
	assert.Equal(t, 5*time.Minute, nextBackoff(5*time.Minute, 5*time.Minute))
}
