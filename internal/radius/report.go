package radius

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/commune-radius/internal/commune"
	"github.com/sells-group/commune-radius/internal/geo"
)

// Header is the report's column row.
var Header = []string{"Name", "Department", "Distance (km)", "Population"}

// Row is one formatted report line.
type Row struct {
	Name       string
	Department string
	DistanceKM float64
	Population *int64
}

// Cells renders the row as report text.
func (r Row) Cells() []string {
	pop := ""
	if r.Population != nil {
		pop = strconv.FormatInt(*r.Population, 10)
	}
	return []string{
		r.Name,
		PadDepartment(r.Department),
		strconv.FormatFloat(r.DistanceKM, 'f', 2, 64),
		pop,
	}
}

// Rows converts records to report rows, preserving order.
func Rows(records []commune.Record) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{
			Name:       r.Name,
			Department: r.Department,
			DistanceKM: r.DistanceKM,
			Population: r.Population,
		}
	}
	return rows
}

// PadDepartment left-pads a department code with zeros to two characters.
// Longer codes such as "971" are returned unchanged.
func PadDepartment(code string) string {
	if len(code) >= 2 {
		return code
	}
	return strings.Repeat("0", 2-len(code)) + code
}

// WriteTSV writes the header and one tab-separated line per row.
func WriteTSV(w io.Writer, rows []Row) error {
	if _, err := fmt.Fprintln(w, strings.Join(Header, "\t")); err != nil {
		return eris.Wrap(err, "radius: write header")
	}
	for _, r := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(r.Cells(), "\t")); err != nil {
			return eris.Wrap(err, "radius: write row")
		}
	}
	return nil
}

// NoDataMessage is printed when nothing was loaded.
func NoDataMessage(pattern string) string {
	return fmt.Sprintf("No data loaded from files matching %q.", pattern)
}

// NoResultMessage is printed when the band excludes every commune.
func NoResultMessage(minKM, maxKM float64, ref geo.Point) string {
	return fmt.Sprintf("No commune found between %s and %s km around position %s.",
		formatKM(minKM), formatKM(maxKM), ref)
}

func formatKM(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
