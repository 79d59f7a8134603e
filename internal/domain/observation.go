package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// CRSWGS84 is the coordinate reference system used by every layer in the
// pipeline. All spatial predicates require both operands to declare it.
const CRSWGS84 = "EPSG:4326"

// Observation is one record returned by the observation API. It is immutable
// after retrieval; every downstream stage produces a fresh collection.
type Observation struct {
	ID           int64
	ObservedOn   time.Time
	Latitude     *float64 // nil when the record carries no coordinate
	Longitude    *float64
	Tags         []string
	Description  string
	PlaceGuess   string
	UserLogin    string
	UserName     string
	LicenseCode  string
	URI          string // canonical record page
	PhotoURL     string // first photo, empty when none
	QualityGrade string
}

// TagText returns the tag list flattened into a single free-text field for
// keyword matching and tabular export.
func (o Observation) TagText() string {
	return strings.Join(o.Tags, ", ")
}

// Row is a single tabular record: column name to cell value. Cells are kept
// as strings so reference CSVs and API records share one shape.
type Row map[string]string

// Table is an ordered tabular collection. Columns preserves the source
// column order so exports are deterministic.
type Table struct {
	Columns []string
	Rows    []Row
}

// ObservationColumns is the canonical column order for observation tables.
var ObservationColumns = []string{
	"id", "observed_on", "latitude", "longitude",
	"tag_list", "description", "place_guess",
	"user_login", "user_name", "license_code",
	"url", "image_url", "quality_grade",
}

// ObservationTable converts observations into the shared tabular shape
// consumed by the geometry builder and the exporters.
func ObservationTable(obs []Observation) Table {
	rows := make([]Row, 0, len(obs))
	for _, o := range obs {
		rows = append(rows, Row{
			"id":            strconv.FormatInt(o.ID, 10),
			"observed_on":   formatDate(o.ObservedOn),
			"latitude":      formatCoord(o.Latitude),
			"longitude":     formatCoord(o.Longitude),
			"tag_list":      o.TagText(),
			"description":   o.Description,
			"place_guess":   o.PlaceGuess,
			"user_login":    o.UserLogin,
			"user_name":     o.UserName,
			"license_code":  o.LicenseCode,
			"url":           o.URI,
			"image_url":     o.PhotoURL,
			"quality_grade": o.QualityGrade,
		})
	}
	return Table{Columns: ObservationColumns, Rows: rows}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Layer is a named collection of point features under a single declared CRS.
type Layer struct {
	Name     string
	CRS      string
	Columns  []string // attribute column order for tabular export
	Features []*geojson.Feature
}

// Boundary is a country outline used as a containment predicate.
type Boundary struct {
	Name string
	CRS  string
	Geom orb.MultiPolygon
}
