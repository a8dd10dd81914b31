package wdk

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Description summarizes a Distribution.
type Description struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Count  int64   `json:"count"`
}

// Distribution collects values to be described once the stream ends. It
// keeps every value.
type Distribution struct {
	values []float64
}

// Add records v.
func (d *Distribution) Add(v float64) {
	d.values = append(d.values, v)
}

// Merge records every value of other.
func (d *Distribution) Merge(other *Distribution) {
	d.values = append(d.values, other.values...)
}

// Len returns the number of values recorded.
func (d *Distribution) Len() int { return len(d.values) }

// Describe returns the minimum, maximum, mean and median of the recorded
// values. An empty distribution is described by zeros. The median of an
// even number of values is the mean of the two middle ones.
func (d *Distribution) Describe() Description {
	if len(d.values) == 0 {
		return Description{}
	}
	sorted := make([]float64, len(d.values))
	copy(sorted, d.values)
	sort.Float64s(sorted)

	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return Description{
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		Mean:   stat.Mean(sorted, nil),
		Median: median,
		Count:  int64(n),
	}
}
