package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./communes-*.geojson", cfg.Input.Pattern)
	assert.InDelta(t, 46.219264, cfg.Reference.Lat, 1e-9)
	assert.InDelta(t, 4.7644672, cfg.Reference.Lon, 1e-9)
	assert.Equal(t, "lambert93", cfg.Projection.Name)
	assert.Equal(t, "GRS80", cfg.Projection.LCC.Ellipsoid)
	assert.Equal(t, "nom", cfg.Schema.Name)
	assert.Equal(t, "codeDepartement", cfg.Schema.Department)
	assert.Equal(t, "population", cfg.Schema.Population)
	assert.Empty(t, cfg.Report.XLSXPath)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
input:
  pattern: data/*.shp
reference:
  lat: 45.764
  lon: 4.8357
projection:
  name: cc46
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/*.shp", cfg.Input.Pattern)
	assert.InDelta(t, 45.764, cfg.Reference.Lat, 1e-9)
	assert.InDelta(t, 4.8357, cfg.Reference.Lon, 1e-9)
	assert.Equal(t, "cc46", cfg.Projection.Name)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, "nom", cfg.Schema.Name)
}

func TestLoadCustomProjection(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
projection:
  name: custom
  lcc:
    lat0: 46.5
    lon0: 3
    lat1: 49
    lat2: 44
    false_easting: 700000
    false_northing: 6600000
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "custom", cfg.Projection.Name)
	assert.InDelta(t, 46.5, cfg.Projection.LCC.Lat0, 1e-9)
	assert.InDelta(t, 49.0, cfg.Projection.LCC.Lat1, 1e-9)
	assert.InDelta(t, 700000.0, cfg.Projection.LCC.FalseEasting, 1e-9)
	assert.InDelta(t, 6600000.0, cfg.Projection.LCC.FalseNorthing, 1e-9)
	assert.Equal(t, "GRS80", cfg.Projection.LCC.Ellipsoid)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
input:
  pattern: a/*.geojson
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("COMMUNES_INPUT_PATTERN", "b/*.geojson")
	t.Setenv("COMMUNES_LOG_LEVEL", "error")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "b/*.geojson", cfg.Input.Pattern)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("COMMUNES_REFERENCE_LAT", "48.8566")
	t.Setenv("COMMUNES_SCHEMA_POPULATION", "pop")

	cfg, err := Load()
	require.NoError(t, err)
	assert.InDelta(t, 48.8566, cfg.Reference.Lat, 1e-9)
	assert.Equal(t, "pop", cfg.Schema.Population)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("input: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Input:      InputConfig{Pattern: "*.geojson"},
			Reference:  ReferenceConfig{Lat: 46.2, Lon: 4.76},
			Projection: ProjectionConfig{Name: "lambert93"},
			Schema:     SchemaConfig{Name: "nom", Department: "codeDepartement", Population: "population"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty pattern", mutate: func(c *Config) { c.Input.Pattern = " " }, wantErr: "input.pattern is required"},
		{name: "latitude out of range", mutate: func(c *Config) { c.Reference.Lat = 91 }, wantErr: "reference.lat"},
		{name: "longitude out of range", mutate: func(c *Config) { c.Reference.Lon = -181 }, wantErr: "reference.lon"},
		{name: "missing projection", mutate: func(c *Config) { c.Projection.Name = "" }, wantErr: "projection.name is required"},
		{name: "missing schema field", mutate: func(c *Config) { c.Schema.Department = "" }, wantErr: "schema.department"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := &Config{Reference: ReferenceConfig{Lat: 100}}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input.pattern is required")
	assert.Contains(t, err.Error(), "reference.lat")
	assert.Contains(t, err.Error(), "projection.name is required")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
