// Package report renders correctness and benchmark results for people and
// for machines.
package report

import (
	"strconv"
	"time"
)

// Unit is a display unit for durations.
type Unit struct {
	Name string
	Size time.Duration
}

// Units from coarsest to finest.
var Units = []Unit{
	{"day", 24 * time.Hour},
	{"hr", time.Hour},
	{"min", time.Minute},
	{"s", time.Second},
	{"ms", time.Millisecond},
	{"us", time.Microsecond},
	{"ns", time.Nanosecond},
}

// BestUnit is the coarsest unit in which d is at least one whole unit, or
// nanoseconds.
func BestUnit(d time.Duration) Unit {
	for _, u := range Units {
		if d/u.Size != 0 {
			return u
		}
	}
	return Units[len(Units)-1]
}

// Format renders d as a whole number of u, truncating.
func Format(d time.Duration, u Unit) string {
	return strconv.FormatInt(int64(d/u.Size), 10)
}
