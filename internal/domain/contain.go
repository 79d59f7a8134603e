package domain

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// ClipLayer returns the features of layer whose point geometry intersects
// the boundary polygon, plus the count of features dropped as outside.
// Containment is closed: a point exactly on the boundary edge is retained.
//
// Both inputs must declare the same CRS; a mismatch returns a
// *CRSMismatchError before any containment test runs.
func ClipLayer(layer Layer, b Boundary) (Layer, int, error) {
	if layer.CRS != b.CRS {
		return Layer{}, 0, &CRSMismatchError{Left: layer.CRS, Right: b.CRS}
	}

	clipped := Layer{
		Name:     layer.Name,
		CRS:      layer.CRS,
		Columns:  layer.Columns,
		Features: make([]*geojson.Feature, 0, len(layer.Features)),
	}

	dropped := 0
	for _, f := range layer.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			dropped++
			continue
		}
		if planar.MultiPolygonContains(b.Geom, pt) {
			clipped.Features = append(clipped.Features, f)
			continue
		}
		dropped++
	}
	return clipped, dropped, nil
}
