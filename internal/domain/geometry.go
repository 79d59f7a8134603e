package domain

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ColumnMap names the longitude/latitude columns of a source table.
// The three input shapes (observations, colonies, outbreaks) differ only in
// these names, so one builder serves all of them.
type ColumnMap struct {
	Lon string
	Lat string
}

// BuildPoint converts one tabular row into a point feature carrying every
// cell of the row as a feature property. It returns an
// *InvalidCoordinateError when the mapped cells are missing, non-numeric, or
// outside ±180 longitude / ±90 latitude.
func BuildPoint(row Row, cols ColumnMap) (*geojson.Feature, error) {
	lon, err := parseCoord(row, cols.Lon, 180)
	if err != nil {
		return nil, err
	}
	lat, err := parseCoord(row, cols.Lat, 90)
	if err != nil {
		return nil, err
	}

	f := geojson.NewFeature(orb.Point{lon, lat})
	for k, v := range row {
		f.Properties[k] = v
	}
	return f, nil
}

// BuildLayer converts a table into a point layer, dropping rows that fail
// coordinate validation. It returns the layer and the number of dropped rows;
// dropping is record-level recovery, not a pipeline failure.
func BuildLayer(name string, t Table, cols ColumnMap, crs string) (Layer, int) {
	layer := Layer{
		Name:     name,
		CRS:      crs,
		Columns:  t.Columns,
		Features: make([]*geojson.Feature, 0, len(t.Rows)),
	}

	dropped := 0
	for _, row := range t.Rows {
		f, err := BuildPoint(row, cols)
		if err != nil {
			dropped++
			continue
		}
		layer.Features = append(layer.Features, f)
	}
	return layer, dropped
}

func parseCoord(row Row, column string, limit float64) (float64, error) {
	raw, ok := row[column]
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, &InvalidCoordinateError{Column: column, Value: raw, Reason: "missing"}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &InvalidCoordinateError{Column: column, Value: raw, Reason: "not numeric"}
	}
	if v < -limit || v > limit {
		return 0, &InvalidCoordinateError{Column: column, Value: raw, Reason: "out of range"}
	}
	return v, nil
}
