package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/commune-radius/internal/config"
)

const fixtureCollection = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"nom":"Centre","codeDepartement":"1","population":900},
  "geometry":{"type":"Polygon","coordinates":[[[4.7594672,46.214264],[4.7694672,46.214264],[4.7694672,46.224264],[4.7594672,46.224264],[4.7594672,46.214264]]]}},
 {"type":"Feature","properties":{"nom":"Nord","codeDepartement":"01","population":450},
  "geometry":{"type":"Polygon","coordinates":[[[4.7594672,46.314264],[4.7694672,46.314264],[4.7694672,46.324264],[4.7594672,46.324264],[4.7594672,46.314264]]]}}
]}`

func chdirFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "communes-01.geojson"), []byte(fixtureCollection), 0o644))
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String() + errOut.String(), err
}

func TestRootCommand_Metadata(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "commune-radius", cmd.Name())
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}

func TestRootCommand_Flags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"pattern", "lat", "lon", "projection", "xlsx", "log-level"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "expected --%s flag", name)
	}
}

func TestRootCommand_Report(t *testing.T) {
	chdirFixtures(t)

	out, err := execute(t, "0", "5")
	require.NoError(t, err)

	assert.Contains(t, out, "Reading file: communes-01.geojson\n")
	assert.Contains(t, out, "Columns: codeDepartement, nom, population\n")
	assert.Contains(t, out, "Name\tDepartment\tDistance (km)\tPopulation\nCentre\t01\t0.00\t900\n")
	assert.NotContains(t, out, "Nord")
}

func TestRootCommand_WiderBandSorted(t *testing.T) {
	chdirFixtures(t)

	out, err := execute(t, "0", "20")
	require.NoError(t, err)

	centre := strings.Index(out, "Centre\t")
	nord := strings.Index(out, "Nord\t")
	require.NotEqual(t, -1, centre)
	require.NotEqual(t, -1, nord)
	assert.Less(t, centre, nord)
}

func TestRootCommand_InvertedBand(t *testing.T) {
	chdirFixtures(t)

	out, err := execute(t, "100", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "No commune found between 100 and 50 km around position (46.219264, 4.7644672).")
}

func TestRootCommand_NoFiles(t *testing.T) {
	chdirFixtures(t)

	out, err := execute(t, "0", "10", "--pattern", "./missing-*.geojson")
	require.NoError(t, err)
	assert.Contains(t, out, `No data loaded from files matching "./missing-*.geojson".`)
}

func TestRootCommand_ReferenceFlags(t *testing.T) {
	chdirFixtures(t)

	// Move the reference onto "Nord" so it becomes the nearest commune.
	out, err := execute(t, "0", "5", "--lat", "46.319264", "--lon", "4.7644672")
	require.NoError(t, err)
	assert.Contains(t, out, "Nord\t01\t0.00\t450\n")
	assert.NotContains(t, out, "Centre\t")
}

func TestRootCommand_Workbook(t *testing.T) {
	dir := chdirFixtures(t)

	_, err := execute(t, "0", "20", "--xlsx", "report.xlsx")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "report.xlsx"))
}

func TestRootCommand_MalformedArgs(t *testing.T) {
	chdirFixtures(t)

	tests := [][]string{
		{"ten", "20"},
		{"0", "twenty"},
		{"0"},
		{"0", "1", "2"},
	}
	for _, args := range tests {
		out, err := execute(t, args...)
		assert.Error(t, err, "args %v", args)
		assert.Contains(t, out, "Usage:", "args %v", args)
	}
}

func TestRootCommand_UnknownProjection(t *testing.T) {
	chdirFixtures(t)

	_, err := execute(t, "0", "10", "--projection", "utm31")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown projection")
}

func TestRootCommand_MissingField(t *testing.T) {
	dir := chdirFixtures(t)
	cfgYAML := "schema:\n  population: habitants\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(cfgYAML), 0o644))

	_, err := execute(t, "0", "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing field "habitants"`)
}

func TestFloatArgs(t *testing.T) {
	assert.NoError(t, floatArgs(nil, []string{"0", "12.5"}))
	assert.NoError(t, floatArgs(nil, []string{"1e2"}))
	assert.Error(t, floatArgs(nil, []string{"0", "abc"}))
}

func TestLCCParams(t *testing.T) {
	p := lccParams(config.LCCConfig{Lat0: 46.5, Lon0: 3, Lat1: 49, Lat2: 44, FalseEasting: 700000, FalseNorthing: 6600000, Ellipsoid: "grs80"})
	assert.InDelta(t, 6378137.0, p.Ellipsoid.SemiMajor, 1e-9)
	assert.InDelta(t, 49.0, p.Lat1, 1e-9)

	p = lccParams(config.LCCConfig{Ellipsoid: "unknown"})
	assert.Zero(t, p.Ellipsoid.SemiMajor)
}
