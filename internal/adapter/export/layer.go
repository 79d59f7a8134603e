package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb/geojson"

	"github.com/fennwick/carrionwatch/internal/domain"
)

// crsMember is the legacy GeoJSON crs object declaring EPSG:4326. Modern
// GeoJSON implies WGS-84, but downstream GIS tooling still reads the member.
var crsMember = map[string]any{
	"type": "name",
	"properties": map[string]any{
		"name": "urn:ogc:def:crs:EPSG::4326",
	},
}

// LayerCSV returns the tabular artifact for a layer: a CSV with the layer's
// original column order, one row per retained feature, all attributes kept.
func LayerCSV(l domain.Layer) Artifact {
	return Artifact{
		Name: l.Name + ".csv",
		Render: func(w io.Writer) error {
			cw := csv.NewWriter(w)
			if err := cw.Write(l.Columns); err != nil {
				return err
			}
			for _, f := range l.Features {
				row := make([]string, len(l.Columns))
				for i, col := range l.Columns {
					row[i] = propString(f.Properties[col])
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
			cw.Flush()
			return cw.Error()
		},
	}
}

// LayerGeoJSON returns the geometry-interchange artifact for a layer: a
// FeatureCollection with the declared CRS member.
func LayerGeoJSON(l domain.Layer) Artifact {
	return Artifact{
		Name: l.Name + ".geojson",
		Render: func(w io.Writer) error {
			fc := geojson.NewFeatureCollection()
			if l.Features != nil {
				fc.Features = l.Features
			}
			fc.ExtraMembers = geojson.Properties{"crs": crsMember}

			data, err := json.MarshalIndent(fc, "", "  ")
			if err != nil {
				return err
			}
			_, err = w.Write(append(data, '\n'))
			return err
		},
	}
}

// TableCSV returns the tabular artifact for a raw table, used for the
// unfiltered observation snapshot.
func TableCSV(name string, t domain.Table) Artifact {
	return Artifact{
		Name: name + ".csv",
		Render: func(w io.Writer) error {
			cw := csv.NewWriter(w)
			if err := cw.Write(t.Columns); err != nil {
				return err
			}
			for _, row := range t.Rows {
				rec := make([]string, len(t.Columns))
				for i, col := range t.Columns {
					rec[i] = row[col]
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
			cw.Flush()
			return cw.Error()
		},
	}
}

func propString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
