package commune

import "fmt"

// MissingFieldError reports a required property absent from every loaded file.
type MissingFieldError struct {
	Field   string
	Columns []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("commune: missing field %q (available: %v)", e.Field, e.Columns)
}

// GeometryError reports a feature whose geometry is not a usable polygon.
type GeometryError struct {
	Source string
	Index  int
	Type   string
	Reason string
}

func (e *GeometryError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("commune: %s feature %d: %s", e.Source, e.Index, e.Reason)
	}
	return fmt.Sprintf("commune: %s feature %d: geometry %s is not a Polygon or MultiPolygon", e.Source, e.Index, e.Type)
}

// ValueError reports a property value that cannot be converted.
type ValueError struct {
	Source string
	Index  int
	Field  string
	Value  any
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("commune: %s feature %d: field %q has invalid value %v", e.Source, e.Index, e.Field, e.Value)
}
