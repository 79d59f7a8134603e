package refdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fennwick/carrionwatch/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTable(t *testing.T) {
	csv := `name,lat,lon
# feeding stations are not colonies, keep them out
Hoces del Duratón,41.29,-3.85
Monfragüe,39.83,-6.05
`
	table, err := LoadTable(writeFile(t, "colonies.csv", csv))

	require.NoError(t, err)
	assert.Equal(t, []string{"name", "lat", "lon"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Hoces del Duratón", table.Rows[0]["name"])
	assert.Equal(t, "41.29", table.Rows[0]["lat"])
	assert.Equal(t, "-6.05", table.Rows[1]["lon"])
}

func TestLoadTable_ColumnOrderIndependent(t *testing.T) {
	csv := "lon,name,lat\n-0.2,Los Monegros,41.6\n"
	table, err := LoadTable(writeFile(t, "sites.csv", csv))

	require.NoError(t, err)
	assert.Equal(t, []string{"lon", "name", "lat"}, table.Columns)
	assert.Equal(t, "41.6", table.Rows[0]["lat"])
	assert.Equal(t, "Los Monegros", table.Rows[0]["name"])
}

func TestLoadTable_MissingFile(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "absent.csv"))
	require.ErrorIs(t, err, domain.ErrMissingReferenceFile)
}

func TestLoadTable_EmptyFile(t *testing.T) {
	_, err := LoadTable(writeFile(t, "empty.csv", ""))
	require.ErrorIs(t, err, domain.ErrMissingReferenceFile)
}

const testBoundaryJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"ADMIN": "Portugal"},
      "geometry": {"type": "Polygon", "coordinates": [[[-9.5,37],[-6.2,37],[-6.2,42.1],[-9.5,42.1],[-9.5,37]]]}
    },
    {
      "type": "Feature",
      "properties": {"ADMIN": "Spain"},
      "geometry": {"type": "MultiPolygon", "coordinates": [
        [[[-9.3,36],[3.3,36],[3.3,43.8],[-9.3,43.8],[-9.3,36]]],
        [[[1.2,38.6],[4.3,38.6],[4.3,40.1],[1.2,40.1],[1.2,38.6]]]
      ]}
    }
  ]
}`

func TestLoadBoundary(t *testing.T) {
	path := writeFile(t, "countries.geojson", testBoundaryJSON)

	b, err := LoadBoundary(path, "Spain")

	require.NoError(t, err)
	assert.Equal(t, "Spain", b.Name)
	assert.Equal(t, domain.CRSWGS84, b.CRS)
	require.Len(t, b.Geom, 2)
}

func TestLoadBoundary_CaseInsensitiveMatch(t *testing.T) {
	path := writeFile(t, "countries.geojson", testBoundaryJSON)

	b, err := LoadBoundary(path, "spain")
	require.NoError(t, err)
	assert.Equal(t, "spain", b.Name)
}

func TestLoadBoundary_PolygonPromotedToMultiPolygon(t *testing.T) {
	path := writeFile(t, "countries.geojson", testBoundaryJSON)

	b, err := LoadBoundary(path, "Portugal")
	require.NoError(t, err)
	require.Len(t, b.Geom, 1)
	assert.IsType(t, orb.Polygon{}, b.Geom[0])
}

func TestLoadBoundary_CountryNotFound(t *testing.T) {
	path := writeFile(t, "countries.geojson", testBoundaryJSON)

	_, err := LoadBoundary(path, "Atlantis")
	require.ErrorIs(t, err, domain.ErrCountryNotFound)
}

func TestLoadBoundary_MissingFile(t *testing.T) {
	_, err := LoadBoundary(filepath.Join(t.TempDir(), "absent.geojson"), "Spain")
	require.ErrorIs(t, err, domain.ErrMissingReferenceFile)
}

func TestLoadBoundary_MalformedCollection(t *testing.T) {
	path := writeFile(t, "broken.geojson", "{not geojson")
	_, err := LoadBoundary(path, "Spain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse boundary collection")
}
