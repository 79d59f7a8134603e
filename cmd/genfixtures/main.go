// Command genfixtures writes a deterministic sample dataset for local runs
// and demos: the colony and outbreak reference CSVs, a small boundary
// collection, a rules file pointing at them, and a mock observation API
// payload that a stub server (or test) can serve.
//
// Usage:
//
//	go run ./cmd/genfixtures -out data/sample
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/sample", "output directory for fixture files")
	flag.Parse()

	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	files := map[string]func() ([]byte, error){
		"colonies.csv":      func() ([]byte, error) { return []byte(coloniesCSV), nil },
		"outbreaks.csv":     func() ([]byte, error) { return []byte(outbreaksCSV), nil },
		"countries.geojson": func() ([]byte, error) { return []byte(countriesGeoJSON), nil },
		"rules.yaml":        func() ([]byte, error) { return []byte(rulesYAML), nil },
		"observations.json": observationsJSON,
	}

	for name, gen := range files {
		data, err := gen()
		if err != nil {
			return fmt.Errorf("generate %s: %w", name, err)
		}
		path := filepath.Join(*out, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d bytes)\n", path, len(data))
	}
	return nil
}

const coloniesCSV = `name,lat,lon
Hoces del Duratón,41.29,-3.85
Monfragüe,39.83,-6.05
Foz de Arbayún,42.66,-1.18
Hoces del Riaza,41.55,-3.65
`

const outbreaksCSV = `name,latitude,longitude
Zaragoza poultry farm,41.65,-0.90
Lleida waterfowl site,41.62,0.62
Guadalajara farm,40.63,-3.16
`

// A simplified Iberian outline, sufficient for clipping demos. Real runs
// should point rules.yaml at a Natural Earth countries file instead.
const countriesGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"ADMIN": "Spain"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[
          [-9.30, 36.00], [-7.40, 37.18], [-6.90, 39.00], [-7.00, 41.80],
          [-8.90, 41.87], [-9.30, 43.00], [-7.70, 43.79], [-4.50, 43.45],
          [-1.80, 43.40], [-1.38, 43.03], [0.70, 42.85], [3.30, 42.43],
          [3.20, 41.89], [0.72, 40.52], [0.10, 40.06], [-0.30, 39.30],
          [0.20, 38.73], [-0.50, 38.30], [-2.10, 36.75], [-4.40, 36.71],
          [-5.35, 36.05], [-6.00, 36.18], [-7.40, 36.95], [-9.30, 36.00]
        ]]
      }
    }
  ]
}`

const rulesYAML = `country: Spain
cutoff_date: 2021-01-01
keywords:
  include: [dead, carcass, muerto, muerta, cadaver, cadáver]
  exclude: [skeleton, bones, esqueleto, huesos]
boundary:
  path: data/sample/countries.geojson
colonies:
  path: data/sample/colonies.csv
  longitude_column: lon
  latitude_column: lat
outbreaks:
  path: data/sample/outbreaks.csv
map:
  title: Griffon vulture carcass observations, Spain
`

// observationsJSON mirrors the /v1/observations response shape so the file
// can back a stub API server.
func observationsJSON() ([]byte, error) {
	type point struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	}
	type obs struct {
		ID           int64               `json:"id"`
		ObservedOn   string              `json:"observed_on"`
		Description  string              `json:"description"`
		PlaceGuess   string              `json:"place_guess"`
		URI          string              `json:"uri"`
		QualityGrade string              `json:"quality_grade"`
		LicenseCode  string              `json:"license_code"`
		Tags         []string            `json:"tags"`
		User         map[string]string   `json:"user"`
		Photos       []map[string]string `json:"photos"`
		GeoJSON      point               `json:"geojson"`
	}

	results := []obs{
		{
			ID: 100001, ObservedOn: "2023-06-10",
			Description: "Dead adult below the power line, partially scavenged",
			PlaceGuess:  "Monfragüe, Cáceres", QualityGrade: "research", LicenseCode: "cc-by-nc",
			Tags:    []string{"dead", "electrocution"},
			User:    map[string]string{"login": "vulturista", "name": "V. Observer"},
			URI:     "https://www.inaturalist.org/observations/100001",
			Photos:  []map[string]string{{"url": "https://static.example/photos/100001/square.jpg"}},
			GeoJSON: point{Type: "Point", Coordinates: []float64{-6.05, 39.83}},
		},
		{
			ID: 100002, ObservedOn: "2023-08-02",
			Description: "Carcass at the feeding station perimeter",
			PlaceGuess:  "Hoces del Riaza, Segovia", QualityGrade: "research",
			Tags:    []string{"carcass"},
			User:    map[string]string{"login": "buitrero"},
			URI:     "https://www.inaturalist.org/observations/100002",
			GeoJSON: point{Type: "Point", Coordinates: []float64{-3.65, 41.55}},
		},
		{
			ID: 100003, ObservedOn: "2022-11-19",
			Description: "Old skeleton on the scree, dead for months",
			PlaceGuess:  "Foz de Arbayún, Navarra", QualityGrade: "research",
			User:    map[string]string{"login": "navarra_birds"},
			URI:     "https://www.inaturalist.org/observations/100003",
			GeoJSON: point{Type: "Point", Coordinates: []float64{-1.18, 42.66}},
		},
		{
			ID: 100004, ObservedOn: "2020-03-05",
			Description: "dead vulture near the road",
			PlaceGuess:  "Teruel", QualityGrade: "research",
			User:    map[string]string{"login": "aragonwild"},
			URI:     "https://www.inaturalist.org/observations/100004",
			GeoJSON: point{Type: "Point", Coordinates: []float64{-1.10, 40.34}},
		},
		{
			ID: 100005, ObservedOn: "2023-09-27",
			Description: "Soaring over the gorge at midday",
			PlaceGuess:  "Hoces del Duratón, Segovia", QualityGrade: "research",
			Tags:    []string{"flight"},
			User:    map[string]string{"login": "segovia_raptors"},
			URI:     "https://www.inaturalist.org/observations/100005",
			GeoJSON: point{Type: "Point", Coordinates: []float64{-3.85, 41.29}},
		},
	}

	payload := map[string]any{
		"total_results": len(results),
		"page":          1,
		"per_page":      200,
		"results":       results,
	}
	return json.MarshalIndent(payload, "", "  ")
}
