// Package commune loads commune boundary files and maps their attributes
// onto typed records.
package commune

import (
	"github.com/twpayne/go-geom"

	"github.com/sells-group/commune-radius/internal/geo"
)

// Feature is one decoded feature before schema mapping.
type Feature struct {
	Source     string
	Index      int
	Geometry   geom.T
	Properties map[string]any
}

// Collection is the concatenation of every loaded file.
// Features keep file order, then in-file order.
type Collection struct {
	Files    []string
	Columns  []string
	Features []Feature
}

// Empty reports whether no feature was loaded.
func (c *Collection) Empty() bool { return c == nil || len(c.Features) == 0 }

// addColumns appends unseen property keys to the column union.
func (c *Collection) addColumns(seen map[string]bool, keys []string) {
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		c.Columns = append(c.Columns, k)
	}
}

// Record is one commune enriched with its centroid and distance.
type Record struct {
	Name       string
	Department string
	// Population is nil when the feature carries no value.
	Population *int64
	Geometry   geom.T
	Source     string
	Index      int
	Centroid   geo.Point
	DistanceKM float64
}
