package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Input      InputConfig      `yaml:"input" mapstructure:"input"`
	Reference  ReferenceConfig  `yaml:"reference" mapstructure:"reference"`
	Projection ProjectionConfig `yaml:"projection" mapstructure:"projection"`
	Schema     SchemaConfig     `yaml:"schema" mapstructure:"schema"`
	Report     ReportConfig     `yaml:"report" mapstructure:"report"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// InputConfig selects the commune boundary files.
type InputConfig struct {
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
}

// ReferenceConfig is the point distances are measured from.
type ReferenceConfig struct {
	Lat float64 `yaml:"lat" mapstructure:"lat"`
	Lon float64 `yaml:"lon" mapstructure:"lon"`
}

// ProjectionConfig selects the planar projection used for centroids.
// Name is a preset ("lambert93", "cc42".."cc50") or "custom", in which case
// LCC supplies the cone parameters.
type ProjectionConfig struct {
	Name string    `yaml:"name" mapstructure:"name"`
	LCC  LCCConfig `yaml:"lcc" mapstructure:"lcc"`
}

// LCCConfig holds Lambert conformal conic parameters in degrees and meters.
type LCCConfig struct {
	Lat0          float64 `yaml:"lat0" mapstructure:"lat0"`
	Lon0          float64 `yaml:"lon0" mapstructure:"lon0"`
	Lat1          float64 `yaml:"lat1" mapstructure:"lat1"`
	Lat2          float64 `yaml:"lat2" mapstructure:"lat2"`
	FalseEasting  float64 `yaml:"false_easting" mapstructure:"false_easting"`
	FalseNorthing float64 `yaml:"false_northing" mapstructure:"false_northing"`
	Ellipsoid     string  `yaml:"ellipsoid" mapstructure:"ellipsoid"`
}

// SchemaConfig names the feature properties the report depends on.
type SchemaConfig struct {
	Name       string `yaml:"name" mapstructure:"name"`
	Department string `yaml:"department" mapstructure:"department"`
	Population string `yaml:"population" mapstructure:"population"`
}

// ReportConfig configures optional report outputs.
type ReportConfig struct {
	XLSXPath string `yaml:"xlsx_path" mapstructure:"xlsx_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COMMUNES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("input.pattern", "./communes-*.geojson")
	v.SetDefault("reference.lat", 46.219264)
	v.SetDefault("reference.lon", 4.7644672)
	v.SetDefault("projection.name", "lambert93")
	v.SetDefault("projection.lcc.ellipsoid", "GRS80")
	v.SetDefault("projection.lcc.lat0", 0.0)
	v.SetDefault("projection.lcc.lon0", 0.0)
	v.SetDefault("projection.lcc.lat1", 0.0)
	v.SetDefault("projection.lcc.lat2", 0.0)
	v.SetDefault("projection.lcc.false_easting", 0.0)
	v.SetDefault("projection.lcc.false_northing", 0.0)
	v.SetDefault("schema.name", "nom")
	v.SetDefault("schema.department", "codeDepartement")
	v.SetDefault("schema.population", "population")
	v.SetDefault("report.xlsx_path", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail deep inside the pipeline.
// All problems are reported at once.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Input.Pattern) == "" {
		problems = append(problems, "input.pattern is required")
	}
	if c.Reference.Lat < -90 || c.Reference.Lat > 90 {
		problems = append(problems, "reference.lat must be within [-90, 90]")
	}
	if c.Reference.Lon < -180 || c.Reference.Lon > 180 {
		problems = append(problems, "reference.lon must be within [-180, 180]")
	}
	if c.Projection.Name == "" {
		problems = append(problems, "projection.name is required")
	}
	if c.Schema.Name == "" || c.Schema.Department == "" || c.Schema.Population == "" {
		problems = append(problems, "schema.name, schema.department and schema.population are required")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
// Logs always go to stderr so stdout stays reserved for the report.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
