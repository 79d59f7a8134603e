// Package render draws the final point layers over the country boundary:
// a static SVG map and an interactive Leaflet document.
package render

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"
	"github.com/paulmach/orb"

	"github.com/fennwick/carrionwatch/internal/domain"
)

// StyledLayer pairs a point layer with its presentation on both maps.
type StyledLayer struct {
	Layer domain.Layer
	Label string
	Color string
	Shape string // "circle", "square", or "triangle"
}

const (
	mapWidth  = 900
	mapHeight = 700
	mapMargin = 40

	boundaryFill   = "#e8efdc"
	boundaryStroke = "#8a9a6d"
	oceanFill      = "#dce9f2"
)

// StaticMap renders the boundary plus the styled layers as a standalone SVG
// with a title and legend. Points are projected equirectangularly onto the
// boundary's padded bounding box, which is adequate at country scale.
func StaticMap(w io.Writer, b domain.Boundary, layers []StyledLayer, title string) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)

	proj := newProjection(b.Geom.Bound(), mapWidth, mapHeight, mapMargin)

	canvas.Start(mapWidth, mapHeight)
	canvas.Rect(0, 0, mapWidth, mapHeight, "fill:"+oceanFill)

	for _, poly := range b.Geom {
		drawPolygon(canvas, proj, poly)
	}

	for _, sl := range layers {
		for _, f := range sl.Layer.Features {
			pt, ok := f.Geometry.(orb.Point)
			if !ok {
				continue
			}
			x, y := proj.project(pt)
			drawMarker(canvas, x, y, sl.Shape, sl.Color)
		}
	}

	canvas.Text(mapWidth/2, 28, title,
		"text-anchor:middle;font-size:20px;font-family:sans-serif;fill:#333")
	drawLegend(canvas, layers)
	canvas.End()

	return ew.err
}

// projection maps WGS-84 coordinates onto the SVG viewport, preserving
// aspect ratio and flipping the Y axis.
type projection struct {
	minLon, minLat float64
	scale          float64
	offX, offY     float64
	height         int
}

func newProjection(bound orb.Bound, width, height, margin int) projection {
	pad := 0.05
	dLon := bound.Max.Lon() - bound.Min.Lon()
	dLat := bound.Max.Lat() - bound.Min.Lat()
	minLon := bound.Min.Lon() - dLon*pad
	minLat := bound.Min.Lat() - dLat*pad
	dLon *= 1 + 2*pad
	dLat *= 1 + 2*pad

	usableW := float64(width - 2*margin)
	usableH := float64(height - 2*margin)
	scale := usableW / dLon
	if s := usableH / dLat; s < scale {
		scale = s
	}

	// Center the drawing in the unused dimension.
	offX := float64(margin) + (usableW-dLon*scale)/2
	offY := float64(margin) + (usableH-dLat*scale)/2

	return projection{
		minLon: minLon,
		minLat: minLat,
		scale:  scale,
		offX:   offX,
		offY:   offY,
		height: height,
	}
}

func (p projection) project(pt orb.Point) (int, int) {
	x := p.offX + (pt.Lon()-p.minLon)*p.scale
	y := float64(p.height) - (p.offY + (pt.Lat()-p.minLat)*p.scale)
	return int(x + 0.5), int(y + 0.5)
}

func drawPolygon(canvas *svg.SVG, proj projection, poly orb.Polygon) {
	if len(poly) == 0 {
		return
	}
	// Outer ring only; none of the supported countries have holes that
	// matter at this rendering scale.
	ring := poly[0]
	xs := make([]int, len(ring))
	ys := make([]int, len(ring))
	for i, pt := range ring {
		xs[i], ys[i] = proj.project(pt)
	}
	canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", boundaryFill, boundaryStroke))
}

func drawMarker(canvas *svg.SVG, x, y int, shape, color string) {
	style := fmt.Sprintf("fill:%s;stroke:#fff;stroke-width:0.8;fill-opacity:0.85", color)
	switch shape {
	case "square":
		canvas.Rect(x-4, y-4, 8, 8, style)
	case "triangle":
		canvas.Polygon([]int{x, x - 5, x + 5}, []int{y - 5, y + 4, y + 4}, style)
	default:
		canvas.Circle(x, y, 4, style)
	}
}

func drawLegend(canvas *svg.SVG, layers []StyledLayer) {
	x := mapWidth - 220
	y := 50
	canvas.Rect(x-12, y-18, 210, 24*len(layers)+24, "fill:#fff;fill-opacity:0.85;stroke:#999")
	for _, sl := range layers {
		drawMarker(canvas, x, y-4, sl.Shape, sl.Color)
		label := fmt.Sprintf("%s (%d)", sl.Label, len(sl.Layer.Features))
		canvas.Text(x+14, y, label, "font-size:13px;font-family:sans-serif;fill:#333")
		y += 24
	}
}

// errWriter records the first write error so svgo's unchecked writes still
// surface failures to the caller.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
