// Package radius filters communes by geodesic distance from a reference
// point and reports the ones inside a kilometer band.
package radius

import (
	"sort"

	"github.com/sells-group/commune-radius/internal/commune"
)

// Filter keeps the records whose distance lies in [minKM, maxKM].
// An inverted band keeps nothing.
func Filter(records []commune.Record, minKM, maxKM float64) []commune.Record {
	var out []commune.Record
	for _, r := range records {
		if r.DistanceKM >= minKM && r.DistanceKM <= maxKM {
			out = append(out, r)
		}
	}
	return out
}

// SortByDistance orders records by ascending distance. Ties keep their
// load order.
func SortByDistance(records []commune.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DistanceKM < records[j].DistanceKM
	})
}
