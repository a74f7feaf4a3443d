package commune

import (
	"os"
	"strings"
	"unicode"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// readShapefile reads polygons and their DBF attributes. Attribute text is
// decoded with the charset named in the sidecar .cpg file.
func readShapefile(path string) ([]Feature, error) {
	dec, err := dbfDecoder(path)
	if err != nil {
		return nil, err
	}

	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "commune: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	var features []Feature
	for reader.Next() {
		idx, shape := reader.Shape()

		g, err := shapeToGeometry(shape)
		if err != nil {
			return nil, &GeometryError{Source: path, Index: idx, Reason: err.Error()}
		}

		props := make(map[string]any, len(names))
		for i, name := range names {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			if dec != nil {
				decoded, derr := dec.String(val)
				if derr != nil {
					return nil, eris.Wrapf(derr, "commune: decode %s field %s", path, name)
				}
				val = decoded
			}
			if val == "" {
				props[name] = nil
				continue
			}
			props[name] = val
		}

		features = append(features, Feature{
			Source:     path,
			Index:      idx,
			Geometry:   g,
			Properties: props,
		})
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "commune: read shapefile %s", path)
	}

	return features, nil
}

// dbfDecoder returns nil for UTF-8 or when no .cpg file exists.
func dbfDecoder(shpPath string) (*encoding.Decoder, error) {
	cpgPath := strings.TrimSuffix(shpPath, ".shp") + ".cpg"
	if strings.HasSuffix(shpPath, ".SHP") {
		cpgPath = strings.TrimSuffix(shpPath, ".SHP") + ".CPG"
	}

	data, err := os.ReadFile(cpgPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "commune: read %s", cpgPath)
	}

	label := strings.ToLower(strings.TrimSpace(string(data)))
	switch label {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	// ArcGIS writes bare Windows code page numbers.
	if isDigits(label) {
		label = "windows-" + label
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, eris.Wrapf(err, "commune: unsupported charset %q in %s", label, cpgPath)
	}
	zap.L().Debug("commune: decoding DBF attributes", zap.String("file", shpPath), zap.String("charset", label))
	return enc.NewDecoder(), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// minRingPoints is the shortest closed ring: three vertices and the closing one.
const minRingPoints = 4

// shapeToGeometry converts a shapefile polygon to a geom.MultiPolygon.
// Clockwise rings start a new polygon; counter-clockwise rings are holes of
// the preceding one.
func shapeToGeometry(s shp.Shape) (geom.T, error) {
	var parts []int32
	var points []shp.Point

	switch p := s.(type) {
	case *shp.Polygon:
		parts, points = p.Parts, p.Points
	case *shp.PolygonZ:
		parts, points = p.Parts, p.Points
	case nil:
		return nil, eris.New("null shape")
	default:
		return nil, eris.Errorf("unsupported shape %T", s)
	}

	mp := geom.NewMultiPolygon(geom.XY)
	var current [][]geom.Coord

	flush := func() error {
		if len(current) == 0 {
			return nil
		}
		poly, err := geom.NewPolygon(geom.XY).SetCoords(current)
		if err != nil {
			return err
		}
		current = nil
		return mp.Push(poly)
	}

	for i := range parts {
		start := int(parts[i])
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		if start >= end || end > len(points) {
			continue
		}
		if n := end - start; n < minRingPoints {
			return nil, eris.Errorf("ring %d has %d points, need at least %d", i, n, minRingPoints)
		}

		ring := make([]geom.Coord, 0, end-start)
		flat := make([]float64, 0, 2*(end-start))
		for _, pt := range points[start:end] {
			ring = append(ring, geom.Coord{pt.X, pt.Y})
			flat = append(flat, pt.X, pt.Y)
		}

		if !xy.IsRingCounterClockwise(geom.XY, flat) || len(current) == 0 {
			if err := flush(); err != nil {
				return nil, eris.Wrap(err, "polygon")
			}
		}
		current = append(current, ring)
	}
	if err := flush(); err != nil {
		return nil, eris.Wrap(err, "polygon")
	}

	if mp.NumPolygons() == 0 {
		return nil, eris.New("empty polygon")
	}
	return mp, nil
}
