package commune

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// LoadOptions configures Load.
type LoadOptions struct {
	// Diagnostics receives one "Reading file" line per file. Nil discards.
	Diagnostics io.Writer
}

// Load reads every file matching pattern and concatenates their features.
// A pattern matching nothing returns an empty collection, not an error.
func Load(ctx context.Context, pattern string, opts LoadOptions) (*Collection, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, eris.Wrapf(err, "commune: bad pattern %q", pattern)
	}

	diag := opts.Diagnostics
	if diag == nil {
		diag = io.Discard
	}

	log := zap.L().With(zap.String("component", "commune.loader"))
	log.Debug("matched input files", zap.String("pattern", pattern), zap.Int("files", len(files)))

	coll := &Collection{}
	seen := make(map[string]bool)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "commune: load cancelled")
		}

		if _, err := fmt.Fprintf(diag, "Reading file: %s\n", file); err != nil {
			return nil, eris.Wrap(err, "commune: write diagnostics")
		}

		features, err := readFile(file)
		if err != nil {
			return nil, err
		}

		for i := range features {
			coll.addColumns(seen, sortedKeys(features[i].Properties))
		}
		coll.Files = append(coll.Files, file)
		coll.Features = append(coll.Features, features...)

		log.Debug("file loaded", zap.String("file", file), zap.Int("features", len(features)))
	}

	log.Info("communes loaded",
		zap.Int("files", len(coll.Files)),
		zap.Int("features", len(coll.Features)),
		zap.Int("columns", len(coll.Columns)),
	)

	return coll, nil
}

// readFile dispatches on the file extension.
func readFile(path string) ([]Feature, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return readGeoJSON(path)
	case ".shp":
		return readShapefile(path)
	default:
		return nil, eris.Errorf("commune: unsupported file format %s", path)
	}
}

// readGeoJSON decodes an RFC 7946 FeatureCollection.
func readGeoJSON(path string) ([]Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "commune: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := fc.UnmarshalJSON(data); err != nil {
		return nil, eris.Wrapf(err, "commune: decode %s", path)
	}

	features := make([]Feature, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f == nil {
			return nil, &GeometryError{Source: path, Index: i, Type: "null"}
		}
		if err := checkPolygonal(path, i, f.Geometry); err != nil {
			return nil, err
		}
		props := f.Properties
		if props == nil {
			props = map[string]any{}
		}
		features = append(features, Feature{
			Source:     path,
			Index:      i,
			Geometry:   f.Geometry,
			Properties: props,
		})
	}
	return features, nil
}

// checkPolygonal enforces the Polygon/MultiPolygon geometry contract.
func checkPolygonal(path string, index int, g geom.T) error {
	switch g.(type) {
	case *geom.Polygon, *geom.MultiPolygon:
		return nil
	case nil:
		return &GeometryError{Source: path, Index: index, Type: "null"}
	default:
		return &GeometryError{Source: path, Index: index, Type: fmt.Sprintf("%T", g)}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
