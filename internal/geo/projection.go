// Package geo provides the coordinate operations behind the commune radius
// report: conformal projection, projected centroids and ellipsoidal distance.
package geo

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/wroge/wgs84"
)

// Projection converts between geographic degrees and planar meters.
type Projection interface {
	Name() string
	Forward(lon, lat float64) (x, y float64)
	Inverse(x, y float64) (lon, lat float64)
}

// Ellipsoid is defined by its semi-major axis (m) and inverse flattening.
// It satisfies wgs84.Spheroid.
type Ellipsoid struct {
	Name       string
	SemiMajor  float64
	InvFlatten float64
}

// Supported ellipsoids.
var (
	GRS80 = Ellipsoid{Name: "GRS80", SemiMajor: wgs84.GRS80{}.A(), InvFlatten: wgs84.GRS80{}.Fi()}
	WGS84 = Ellipsoid{Name: "WGS84", SemiMajor: wgs84.A, InvFlatten: wgs84.Fi}
)

// A returns the semi-major axis.
func (e Ellipsoid) A() float64 { return e.SemiMajor }

// Fi returns the inverse flattening.
func (e Ellipsoid) Fi() float64 { return e.InvFlatten }

// EllipsoidByName resolves an ellipsoid name case-insensitively.
// An empty name selects GRS80.
func EllipsoidByName(name string) (Ellipsoid, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "GRS80":
		return GRS80, nil
	case "WGS84":
		return WGS84, nil
	default:
		return Ellipsoid{}, eris.Errorf("geo: unknown ellipsoid %q", name)
	}
}

// LCCParams describes a Lambert conformal conic with two standard parallels.
// Angles are in degrees, offsets in meters.
type LCCParams struct {
	Name          string
	Lat0          float64 // latitude of origin
	Lon0          float64 // central meridian
	Lat1          float64 // first standard parallel
	Lat2          float64 // second standard parallel
	FalseEasting  float64
	FalseNorthing float64
	Ellipsoid     Ellipsoid
}

// ConicProjection is a projected reference system backed by wgs84.
// Geographic input is taken on the system's own datum; RGF93 and WGS84
// agree well below the precision of the report.
type ConicProjection struct {
	name string
	code int
	crs  wgs84.ProjectedReferenceSystem
}

// NewLambertConformal builds a two-standard-parallel Lambert conformal
// conic from explicit parameters.
func NewLambertConformal(p LCCParams) (*ConicProjection, error) {
	if p.Ellipsoid.SemiMajor <= 0 || p.Ellipsoid.InvFlatten <= 0 {
		return nil, eris.Errorf("geo: projection %q: invalid ellipsoid", p.Name)
	}
	if p.Lat1 == p.Lat2 {
		return nil, eris.Errorf("geo: projection %q: standard parallels must differ", p.Name)
	}
	if p.Lat1 == -p.Lat2 {
		return nil, eris.Errorf("geo: projection %q: standard parallels must not be symmetric about the equator", p.Name)
	}
	for _, lat := range []float64{p.Lat0, p.Lat1, p.Lat2} {
		if math.Abs(lat) >= 90 {
			return nil, eris.Errorf("geo: projection %q: latitude %v out of range", p.Name, lat)
		}
	}

	datum := wgs84.Datum{Spheroid: p.Ellipsoid}
	return &ConicProjection{
		name: p.Name,
		crs:  datum.LambertConformalConic2SP(p.Lon0, p.Lat0, p.Lat1, p.Lat2, p.FalseEasting, p.FalseNorthing),
	}, nil
}

// Name returns the projection name.
func (c *ConicProjection) Name() string { return c.name }

// EPSG returns the EPSG code of a preset, or 0 for custom parameters.
func (c *ConicProjection) EPSG() int { return c.code }

// Forward projects geographic degrees to easting/northing in meters.
func (c *ConicProjection) Forward(lon, lat float64) (x, y float64) {
	return c.crs.Projection.FromLonLat(lon, lat, c.crs.Datum)
}

// Inverse converts easting/northing in meters back to geographic degrees.
func (c *ConicProjection) Inverse(x, y float64) (lon, lat float64) {
	return c.crs.Projection.ToLonLat(x, y, c.crs.Datum)
}

// Projection presets.
const (
	Lambert93 = "lambert93"
	Custom    = "custom"
)

// presets maps preset names to EPSG codes. Only metropolitan France is
// covered; overseas departments need their own projections.
var presets = map[string]int{
	Lambert93: 2154,
}

func init() {
	// RGF93 / CC42 .. CC50.
	for zone := 42; zone <= 50; zone++ {
		presets[fmt.Sprintf("cc%d", zone)] = 3900 + zone
	}
}

var epsg = wgs84.EPSG()

// Presets returns the sorted list of preset names.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetCode returns the EPSG code of a named preset.
func PresetCode(name string) (int, bool) {
	code, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

// NewProjection resolves a preset by name. When name is "custom" the
// supplied parameters are used instead.
func NewProjection(name string, custom LCCParams) (Projection, error) {
	if strings.EqualFold(strings.TrimSpace(name), Custom) {
		custom.Name = Custom
		return NewLambertConformal(custom)
	}

	code, ok := PresetCode(name)
	if !ok {
		return nil, eris.Errorf("geo: unknown projection %q (available: %s, %s)",
			name, strings.Join(Presets(), ", "), Custom)
	}
	crs, ok := epsg.Code(code).(wgs84.ProjectedReferenceSystem)
	if !ok {
		return nil, eris.Errorf("geo: projection %q: EPSG:%d is not a projected system", name, code)
	}
	return &ConicProjection{
		name: strings.ToLower(strings.TrimSpace(name)),
		code: code,
		crs:  crs,
	}, nil
}
