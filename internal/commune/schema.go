package commune

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Schema names the properties that carry commune attributes.
type Schema struct {
	Name       string
	Department string
	Population string
}

// DefaultSchema matches the geo.api.gouv.fr commune exports.
var DefaultSchema = Schema{
	Name:       "nom",
	Department: "codeDepartement",
	Population: "population",
}

// Validate checks that every schema field appears in columns.
func (s Schema) Validate(columns []string) error {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	for _, f := range []string{s.Name, s.Department, s.Population} {
		if !present[f] {
			return &MissingFieldError{Field: f, Columns: columns}
		}
	}
	return nil
}

// Records maps every feature of c onto a Record.
func (s Schema) Records(c *Collection) ([]Record, error) {
	if c == nil {
		return nil, nil
	}

	records := make([]Record, 0, len(c.Features))
	for _, f := range c.Features {
		r := Record{
			Name:       textValue(f.Properties[s.Name]),
			Department: textValue(f.Properties[s.Department]),
			Geometry:   f.Geometry,
			Source:     f.Source,
			Index:      f.Index,
		}

		pop, err := intValue(f.Properties[s.Population])
		if err != nil {
			return nil, &ValueError{Source: f.Source, Index: f.Index, Field: s.Population, Value: f.Properties[s.Population]}
		}
		r.Population = pop

		records = append(records, r)
	}
	return records, nil
}

// textValue renders a property as text. Integral numbers lose their
// decimal part so a numeric department code 1 reads "1", not "1.0".
func textValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// intValue converts a property to an integer. Nil and blank values are
// unknown rather than invalid.
func intValue(v any) (*int64, error) {
	var n int64
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, eris.New("not finite")
		}
		n = int64(math.Round(t))
	case int:
		n = int64(t)
	case int64:
		n = t
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		n = int64(math.Round(f))
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		n = int64(math.Round(f))
	default:
		return nil, eris.Errorf("unsupported type %T", v)
	}
	return &n, nil
}
