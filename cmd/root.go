package main

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/commune-radius/internal/commune"
	"github.com/sells-group/commune-radius/internal/config"
	"github.com/sells-group/commune-radius/internal/geo"
	"github.com/sells-group/commune-radius/internal/radius"
)

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	cmd := &cobra.Command{
		Use:   "commune-radius <min_km> <max_km>",
		Short: "List communes between two distances from a fixed point",
		Long: `Loads commune boundaries (GeoJSON or shapefile), computes each commune's
centroid in a conformal projection, measures the geodesic distance to the
reference point and prints, as tab-separated lines sorted by distance, the
communes whose distance lies between <min_km> and <max_km> (inclusive).`,
		Args: cobra.MatchAll(cobra.ExactArgs(2), floatArgs),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c, err := config.Load()
			if err != nil {
				return eris.Wrap(err, "load config")
			}
			applyFlags(cmd, c)

			if err := c.Validate(); err != nil {
				return err
			}
			if err := config.InitLogger(c.Log); err != nil {
				return eris.Wrap(err, "init logger")
			}
			cfg = c
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = zap.L().Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Validated by floatArgs.
			minKM, _ := strconv.ParseFloat(args[0], 64)
			maxKM, _ := strconv.ParseFloat(args[1], 64)

			log := zap.L().With(zap.String("run_id", uuid.NewString()))

			proj, err := geo.NewProjection(cfg.Projection.Name, lccParams(cfg.Projection.LCC))
			if err != nil {
				return err
			}

			log.Info("starting commune radius report",
				zap.String("pattern", cfg.Input.Pattern),
				zap.Float64("ref_lat", cfg.Reference.Lat),
				zap.Float64("ref_lon", cfg.Reference.Lon),
				zap.String("projection", proj.Name()),
				zap.Float64("min_km", minKM),
				zap.Float64("max_km", maxKM),
			)

			res, err := radius.Run(ctx, radius.Options{
				Pattern:    cfg.Input.Pattern,
				Reference:  geo.Point{Lat: cfg.Reference.Lat, Lon: cfg.Reference.Lon},
				Projection: proj,
				Schema: commune.Schema{
					Name:       cfg.Schema.Name,
					Department: cfg.Schema.Department,
					Population: cfg.Schema.Population,
				},
				MinKM:    minKM,
				MaxKM:    maxKM,
				Out:      cmd.OutOrStdout(),
				XLSXPath: cfg.Report.XLSXPath,
			})
			if err != nil {
				log.Error("commune radius report failed",
					zap.String("kind", string(radius.KindOf(err))),
					zap.Error(err),
				)
				return err
			}

			log.Info("commune radius report complete",
				zap.String("outcome", res.Outcome.String()),
				zap.Int("files", len(res.Files)),
				zap.Int("loaded", res.Loaded),
				zap.Int("rows", len(res.Rows)),
			)
			return nil
		},
	}

	f := cmd.Flags()
	f.String("pattern", "", "glob of commune files (.geojson, .json, .shp)")
	f.Float64("lat", 0, "reference point latitude")
	f.Float64("lon", 0, "reference point longitude")
	f.String("projection", "", "planar projection for centroids (lambert93, cc42..cc50, custom)")
	f.String("xlsx", "", "also write the report to this .xlsx workbook")
	f.String("log-level", "", "log level (debug, info, warn, error)")

	return cmd
}

// floatArgs rejects non-numeric radius arguments.
func floatArgs(_ *cobra.Command, args []string) error {
	for i, name := range []string{"min_km", "max_km"} {
		if i >= len(args) {
			break
		}
		if _, err := strconv.ParseFloat(args[i], 64); err != nil {
			return eris.Errorf("invalid %s %q: not a number", name, args[i])
		}
	}
	return nil
}

// applyFlags overrides configuration with explicitly set flags.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("pattern") {
		c.Input.Pattern, _ = f.GetString("pattern")
	}
	if f.Changed("lat") {
		c.Reference.Lat, _ = f.GetFloat64("lat")
	}
	if f.Changed("lon") {
		c.Reference.Lon, _ = f.GetFloat64("lon")
	}
	if f.Changed("projection") {
		c.Projection.Name, _ = f.GetString("projection")
	}
	if f.Changed("xlsx") {
		c.Report.XLSXPath, _ = f.GetString("xlsx")
	}
	if f.Changed("log-level") {
		c.Log.Level, _ = f.GetString("log-level")
	}
}

// lccParams converts configured cone parameters. An unknown ellipsoid
// yields a zero ellipsoid, which NewLambertConformal rejects.
func lccParams(c config.LCCConfig) geo.LCCParams {
	ell, err := geo.EllipsoidByName(c.Ellipsoid)
	if err != nil {
		zap.L().Warn("unknown ellipsoid", zap.String("ellipsoid", c.Ellipsoid), zap.Error(err))
	}
	return geo.LCCParams{
		Lat0:          c.Lat0,
		Lon0:          c.Lon0,
		Lat1:          c.Lat1,
		Lat2:          c.Lat2,
		FalseEasting:  c.FalseEasting,
		FalseNorthing: c.FalseNorthing,
		Ellipsoid:     ell,
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
