package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/paulmach/orb/geojson"

	"github.com/fennwick/carrionwatch/internal/domain"
)

// WebMap renders a self-contained interactive Leaflet document: boundary
// fill, one toggleable overlay per layer, a legend (the layer control), a
// scale indicator, and per-point popups. Observation popups expose
// attribution, place guess, date, description, tags, the record link, and a
// photo thumbnail when present; reference-site popups show the site name.
func WebMap(w io.Writer, b domain.Boundary, layers []StyledLayer, title string) error {
	boundaryJSON, err := boundaryGeoJSON(b)
	if err != nil {
		return fmt.Errorf("serialize boundary: %w", err)
	}

	data := webMapData{
		Title:    title,
		Boundary: template.JS(boundaryJSON),
	}
	for _, sl := range layers {
		fc := geojson.NewFeatureCollection()
		if sl.Layer.Features != nil {
			fc.Features = sl.Layer.Features
		}
		layerJSON, err := fc.MarshalJSON()
		if err != nil {
			return fmt.Errorf("serialize layer %s: %w", sl.Layer.Name, err)
		}
		data.Layers = append(data.Layers, webMapLayer{
			Label:   sl.Label,
			Color:   sl.Color,
			Shape:   sl.Shape,
			GeoJSON: template.JS(layerJSON),
		})
	}

	return webMapTemplate.Execute(w, data)
}

func boundaryGeoJSON(b domain.Boundary) ([]byte, error) {
	f := geojson.NewFeature(b.Geom)
	f.Properties["name"] = b.Name
	fc := geojson.NewFeatureCollection()
	fc.Append(f)
	return json.Marshal(fc)
}

type webMapData struct {
	Title    string
	Boundary template.JS
	Layers   []webMapLayer
}

type webMapLayer struct {
	Label   string
	Color   string
	Shape   string
	GeoJSON template.JS
}

var webMapTemplate = template.Must(template.New("webmap").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
  html, body, #map { height: 100%; margin: 0; }
  .map-title {
    position: absolute; top: 10px; left: 50%; transform: translateX(-50%);
    z-index: 1000; background: rgba(255,255,255,0.9); padding: 6px 14px;
    border-radius: 4px; font-family: sans-serif; font-size: 16px;
  }
  .popup-thumb { max-width: 150px; display: block; margin-top: 4px; }
</style>
</head>
<body>
<div id="map"></div>
<div class="map-title">{{.Title}}</div>
<script>
var map = L.map('map');
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
L.control.scale().addTo(map);

var boundary = L.geoJSON({{.Boundary}}, {
  style: { color: '#5b6e3f', weight: 1.5, fillColor: '#e8efdc', fillOpacity: 0.35 }
}).addTo(map);
map.fitBounds(boundary.getBounds());

function esc(v) {
  return String(v).replace(/&/g, '&amp;').replace(/</g, '&lt;').replace(/>/g, '&gt;');
}

function popupHTML(props) {
  if (props.url) {
    var who = props.user_name || props.user_login || 'unknown observer';
    var html = '<b>' + esc(who) + '</b>';
    if (props.license_code) { html += ' (' + esc(props.license_code) + ')'; }
    if (props.place_guess) { html += '<br>' + esc(props.place_guess); }
    if (props.observed_on) { html += '<br>Observed: ' + esc(props.observed_on); }
    if (props.description) { html += '<br>' + esc(props.description); }
    if (props.tag_list) { html += '<br><i>Tags: ' + esc(props.tag_list) + '</i>'; }
    html += '<br><a href="' + esc(props.url) + '" target="_blank">View observation</a>';
    if (props.image_url) {
      html += '<img class="popup-thumb" src="' + esc(props.image_url) + '">';
    }
    return html;
  }
  return '<b>' + esc(props.name || 'site') + '</b>';
}

function markerFor(latlng, color) {
  return L.circleMarker(latlng, {
    radius: 6, color: '#fff', weight: 1, fillColor: color, fillOpacity: 0.85
  });
}

var overlays = {};
{{range .Layers}}
(function() {
  var layer = L.geoJSON({{.GeoJSON}}, {
    pointToLayer: function(f, latlng) { return markerFor(latlng, '{{.Color}}'); },
    onEachFeature: function(f, l) { l.bindPopup(popupHTML(f.properties || {})); }
  }).addTo(map);
  overlays['{{.Label}}'] = layer;
})();
{{end}}
L.control.layers(null, overlays, { collapsed: false }).addTo(map);
</script>
</body>
</html>
`))
