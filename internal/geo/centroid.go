package geo

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// Point is a geographic position in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// String formats the point as "(lat, lon)".
func (p Point) String() string {
	return fmt.Sprintf("(%v, %v)", p.Lat, p.Lon)
}

// ProjectGeometry returns a copy of g with every vertex passed through
// proj.Forward. Only the X/Y ordinates change; extra dimensions are kept.
func ProjectGeometry(g geom.T, proj Projection) (geom.T, error) {
	switch t := g.(type) {
	case *geom.Polygon:
		return geom.NewPolygonFlat(t.Layout(), forwardFlat(t.FlatCoords(), t.Stride(), proj), t.Ends()), nil
	case *geom.MultiPolygon:
		return geom.NewMultiPolygonFlat(t.Layout(), forwardFlat(t.FlatCoords(), t.Stride(), proj), t.Endss()), nil
	case nil:
		return nil, eris.New("geo: nil geometry")
	default:
		return nil, eris.Errorf("geo: unsupported geometry %T", g)
	}
}

func forwardFlat(flat []float64, stride int, proj Projection) []float64 {
	out := make([]float64, len(flat))
	copy(out, flat)
	for i := 0; i+1 < len(out); i += stride {
		out[i], out[i+1] = proj.Forward(out[i], out[i+1])
	}
	return out
}

// Centroid computes the area centroid of a geographic Polygon or
// MultiPolygon in the planar system of proj, then converts it back to
// degrees.
func Centroid(g geom.T, proj Projection) (Point, error) {
	if err := checkRings(g); err != nil {
		return Point{}, err
	}

	projected, err := ProjectGeometry(g, proj)
	if err != nil {
		return Point{}, err
	}

	c, err := xy.Centroid(projected)
	if err != nil {
		return Point{}, eris.Wrap(err, "geo: centroid")
	}
	if len(c) < 2 || math.IsNaN(c[0]) || math.IsNaN(c[1]) {
		return Point{}, eris.New("geo: centroid undefined for degenerate geometry")
	}

	lon, lat := proj.Inverse(c[0], c[1])
	return Point{Lat: lat, Lon: lon}, nil
}

// minRingCoords is the shortest closed ring: three vertices and the closing one.
const minRingCoords = 4

// checkRings rejects polygons that xy.Centroid cannot handle.
func checkRings(g geom.T) error {
	switch t := g.(type) {
	case *geom.Polygon:
		return checkPolygon(t)
	case *geom.MultiPolygon:
		if t.NumPolygons() == 0 {
			return eris.New("geo: empty multipolygon")
		}
		for i := 0; i < t.NumPolygons(); i++ {
			if err := checkPolygon(t.Polygon(i)); err != nil {
				return eris.Wrapf(err, "geo: polygon %d", i)
			}
		}
	}
	return nil
}

func checkPolygon(p *geom.Polygon) error {
	if p.NumLinearRings() == 0 {
		return eris.New("geo: empty polygon")
	}
	for i := 0; i < p.NumLinearRings(); i++ {
		if n := p.LinearRing(i).NumCoords(); n < minRingCoords {
			return eris.Errorf("geo: ring %d has %d coordinates, need at least %d", i, n, minRingCoords)
		}
	}
	return nil
}
