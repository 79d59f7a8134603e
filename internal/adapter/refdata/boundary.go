package refdata

import (
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/fennwick/carrionwatch/internal/domain"
)

// boundaryNameProperties are the feature properties checked, in order, when
// matching the configured country name. Natural Earth exports use ADMIN or
// NAME depending on the product; lower-case name covers hand-rolled files.
var boundaryNameProperties = []string{"ADMIN", "NAME", "name", "admin"}

// LoadBoundary reads a countries GeoJSON collection and returns the outline
// of the named country as a WGS-84 boundary. Name comparison is
// case-insensitive exact equality. Returns domain.ErrCountryNotFound when no
// feature matches, domain.ErrMissingReferenceFile when the file cannot be
// read.
func LoadBoundary(path, country string) (domain.Boundary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Boundary{}, fmt.Errorf("%w: %s: %v", domain.ErrMissingReferenceFile, path, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return domain.Boundary{}, fmt.Errorf("parse boundary collection %s: %w", path, err)
	}

	for _, f := range fc.Features {
		if !matchesCountry(f, country) {
			continue
		}
		geom, err := asMultiPolygon(f.Geometry)
		if err != nil {
			return domain.Boundary{}, fmt.Errorf("boundary for %s: %w", country, err)
		}
		return domain.Boundary{Name: country, CRS: domain.CRSWGS84, Geom: geom}, nil
	}

	return domain.Boundary{}, fmt.Errorf("%w: %q in %s", domain.ErrCountryNotFound, country, path)
}

func matchesCountry(f *geojson.Feature, country string) bool {
	for _, prop := range boundaryNameProperties {
		v, ok := f.Properties[prop]
		if !ok {
			continue
		}
		if name, ok := v.(string); ok && strings.EqualFold(name, country) {
			return true
		}
	}
	return false
}

func asMultiPolygon(g orb.Geometry) (orb.MultiPolygon, error) {
	switch geom := g.(type) {
	case orb.Polygon:
		return orb.MultiPolygon{geom}, nil
	case orb.MultiPolygon:
		return geom, nil
	default:
		return nil, fmt.Errorf("unsupported boundary geometry %T", g)
	}
}
