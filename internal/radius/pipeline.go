package radius

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/commune-radius/internal/commune"
	"github.com/sells-group/commune-radius/internal/geo"
)

// Outcome tells how a run ended when it did not fail.
type Outcome int

// Run outcomes.
const (
	Found Outcome = iota
	NoFilesFound
	NoRecordsLoaded
	NoRecordsInRange
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NoFilesFound:
		return "no_files_found"
	case NoRecordsLoaded:
		return "no_records_loaded"
	case NoRecordsInRange:
		return "no_records_in_range"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Kind classifies fatal run errors.
type Kind string

// Fatal error kinds.
const (
	KindMissingField Kind = "missing_field"
	KindGeometry     Kind = "geometry"
	KindValue        Kind = "value"
	KindInput        Kind = "input"
)

// KindOf classifies err. Errors that are none of the typed commune errors
// are input errors (unreadable files, bad patterns, write failures).
func KindOf(err error) Kind {
	var mf *commune.MissingFieldError
	var ge *commune.GeometryError
	var ve *commune.ValueError
	switch {
	case errors.As(err, &mf):
		return KindMissingField
	case errors.As(err, &ge):
		return KindGeometry
	case errors.As(err, &ve):
		return KindValue
	default:
		return KindInput
	}
}

// Options configures a run.
type Options struct {
	Pattern    string
	Reference  geo.Point
	Projection geo.Projection
	Schema     commune.Schema
	MinKM      float64
	MaxKM      float64
	// Out receives diagnostics and the report. Required.
	Out io.Writer
	// XLSXPath, when set, also saves the report rows as a workbook.
	XLSXPath string
}

// Result is the outcome of a successful run.
type Result struct {
	Outcome Outcome
	Files   []string
	Columns []string
	Loaded  int
	Rows    []Row
}

// Run loads communes, measures their distance to the reference point and
// writes the communes inside [MinKM, MaxKM] to opts.Out.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Out == nil {
		return nil, eris.New("radius: output writer is required")
	}
	if opts.Projection == nil {
		return nil, eris.New("radius: projection is required")
	}

	log := zap.L().With(zap.String("component", "radius"))
	start := time.Now()

	coll, err := commune.Load(ctx, opts.Pattern, commune.LoadOptions{Diagnostics: opts.Out})
	if err != nil {
		return nil, eris.Wrap(err, "radius: load")
	}

	res := &Result{Files: coll.Files, Columns: coll.Columns, Loaded: len(coll.Features)}

	if len(coll.Files) == 0 || coll.Empty() {
		res.Outcome = NoRecordsLoaded
		if len(coll.Files) == 0 {
			res.Outcome = NoFilesFound
		}
		if _, err := fmt.Fprintln(opts.Out, NoDataMessage(opts.Pattern)); err != nil {
			return nil, eris.Wrap(err, "radius: write message")
		}
		log.Info("nothing loaded", zap.String("outcome", res.Outcome.String()))
		return res, nil
	}

	if _, err := fmt.Fprintf(opts.Out, "Columns: %s\n", strings.Join(coll.Columns, ", ")); err != nil {
		return nil, eris.Wrap(err, "radius: write columns")
	}

	if err := opts.Schema.Validate(coll.Columns); err != nil {
		return nil, eris.Wrap(err, "radius: schema")
	}

	records, err := opts.Schema.Records(coll)
	if err != nil {
		return nil, eris.Wrap(err, "radius: map records")
	}

	if err := Measure(records, opts.Projection, opts.Reference); err != nil {
		return nil, err
	}

	matched := Filter(records, opts.MinKM, opts.MaxKM)
	SortByDistance(matched)

	log.Info("communes measured",
		zap.Int("loaded", len(records)),
		zap.Int("matched", len(matched)),
		zap.Float64("min_km", opts.MinKM),
		zap.Float64("max_km", opts.MaxKM),
		zap.String("projection", opts.Projection.Name()),
		zap.Duration("elapsed", time.Since(start)),
	)

	if len(matched) == 0 {
		res.Outcome = NoRecordsInRange
		if _, err := fmt.Fprintln(opts.Out, NoResultMessage(opts.MinKM, opts.MaxKM, opts.Reference)); err != nil {
			return nil, eris.Wrap(err, "radius: write message")
		}
		return res, nil
	}

	res.Outcome = Found
	res.Rows = Rows(matched)

	if err := WriteTSV(opts.Out, res.Rows); err != nil {
		return nil, err
	}

	if opts.XLSXPath != "" {
		if err := WriteXLSX(opts.XLSXPath, res.Rows); err != nil {
			return nil, err
		}
		log.Info("workbook saved", zap.String("path", opts.XLSXPath), zap.Int("rows", len(res.Rows)))
	}

	return res, nil
}

// Measure sets the centroid and distance of every record in place.
func Measure(records []commune.Record, proj geo.Projection, ref geo.Point) error {
	for i := range records {
		c, err := geo.Centroid(records[i].Geometry, proj)
		if err != nil {
			return eris.Wrapf(&commune.GeometryError{
				Source: records[i].Source,
				Index:  records[i].Index,
				Reason: err.Error(),
			}, "radius: centroid of %q", records[i].Name)
		}
		records[i].Centroid = c
		records[i].DistanceKM = geo.DistanceKM(c, ref)
	}
	return nil
}
