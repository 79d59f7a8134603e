// Command validate performs integrity checks on an exported artifact
// directory: artifact-set completeness, CSV/GeoJSON row parity per layer,
// coordinate ranges, and CRS declarations.
//
// Usage:
//
//	go run ./cmd/validate -out out
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// layerSpec names the paired CSV and GeoJSON artifacts for one layer.
type layerSpec struct {
	name        string
	csvFile     string
	geojsonFile string
}

var layers = []layerSpec{
	{name: "carcass_observations", csvFile: "carcass_observations.csv", geojsonFile: "carcass_observations.geojson"},
	{name: "colonies", csvFile: "colonies.csv", geojsonFile: "colonies.geojson"},
	{name: "outbreaks", csvFile: "outbreaks.csv", geojsonFile: "outbreaks.geojson"},
}

var standaloneArtifacts = []string{"observations_raw.csv", "map.svg", "map.html"}

const wgs84URN = "urn:ogc:def:crs:EPSG::4326"

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	outDir := flag.String("out", "", "artifact directory to validate")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*outDir); code != 0 {
		os.Exit(code)
	}
}

func run(outDir string) int {
	fmt.Println("=== Artifact Integrity Validation ===")
	fmt.Println()

	phases := []*phase{
		validateCompleteness(outDir),
		validateRowParity(outDir),
		validateCoordinates(outDir),
		validateCRS(outDir),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-32s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateCompleteness checks that every artifact the exporter emits is
// present. The exporter writes all-or-nothing, so a partial set means the
// directory was tampered with or holds a stale run.
func validateCompleteness(outDir string) *phase {
	p := &phase{name: "artifact completeness"}

	var expected []string
	expected = append(expected, standaloneArtifacts...)
	for _, l := range layers {
		expected = append(expected, l.csvFile, l.geojsonFile)
	}

	for _, name := range expected {
		path := filepath.Join(outDir, name)
		info, err := os.Stat(path)
		if err != nil {
			p.errorf("missing artifact %s", name)
			continue
		}
		if info.Size() == 0 {
			p.errorf("artifact %s is empty", name)
		}
	}
	return p
}

// validateRowParity checks that each layer's CSV data rows match its GeoJSON
// feature count.
func validateRowParity(outDir string) *phase {
	p := &phase{name: "CSV/GeoJSON row parity"}

	for _, l := range layers {
		rows, err := loadCSVRows(filepath.Join(outDir, l.csvFile))
		if err != nil {
			p.errorf("%s: load CSV: %v", l.name, err)
			continue
		}
		fc, err := loadFeatureCollection(filepath.Join(outDir, l.geojsonFile))
		if err != nil {
			p.errorf("%s: load GeoJSON: %v", l.name, err)
			continue
		}
		if len(rows) != len(fc.Features) {
			p.errorf("%s: %d CSV rows vs %d GeoJSON features", l.name, len(rows), len(fc.Features))
		}
	}
	return p
}

// validateCoordinates checks that every feature is a point with coordinates
// inside WGS84 bounds.
func validateCoordinates(outDir string) *phase {
	p := &phase{name: "coordinate ranges"}

	for _, l := range layers {
		fc, err := loadFeatureCollection(filepath.Join(outDir, l.geojsonFile))
		if err != nil {
			p.errorf("%s: load GeoJSON: %v", l.name, err)
			continue
		}
		for i, f := range fc.Features {
			pt, ok := f.Geometry.(orb.Point)
			if !ok {
				p.errorf("%s: feature %d is not a point", l.name, i)
				continue
			}
			lon, lat := pt.Lon(), pt.Lat()
			if lon < -180 || lon > 180 {
				p.errorf("%s: feature %d longitude %s out of range", l.name, i, formatCoord(lon))
			}
			if lat < -90 || lat > 90 {
				p.errorf("%s: feature %d latitude %s out of range", l.name, i, formatCoord(lat))
			}
		}
	}
	return p
}

// validateCRS checks that each GeoJSON artifact declares the WGS84 CRS member.
func validateCRS(outDir string) *phase {
	p := &phase{name: "CRS declarations"}

	for _, l := range layers {
		data, err := os.ReadFile(filepath.Join(outDir, l.geojsonFile))
		if err != nil {
			p.errorf("%s: %v", l.name, err)
			continue
		}
		var doc struct {
			CRS struct {
				Properties struct {
					Name string `json:"name"`
				} `json:"properties"`
			} `json:"crs"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			p.errorf("%s: parse: %v", l.name, err)
			continue
		}
		if doc.CRS.Properties.Name != wgs84URN {
			p.errorf("%s: crs member %q, want %q", l.name, doc.CRS.Properties.Name, wgs84URN)
		}
	}
	return p
}

func loadCSVRows(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no header row in %s", path)
	}

	header := all[0]
	rows := make([]map[string]string, 0, len(all)-1)
	for _, rec := range all[1:] {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(rec) {
				fields[h] = strings.TrimSpace(rec[j])
			}
		}
		rows = append(rows, fields)
	}
	return rows, nil
}

func loadFeatureCollection(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return geojson.UnmarshalFeatureCollection(data)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
