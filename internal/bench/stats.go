package bench

import (
	"fmt"
	"math"
	"time"
)

// Statistics summarizes the recorded samples of one (engine, case) pair.
type Statistics struct {
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	StdDev time.Duration
}

// Compute summarizes the first count samples. The mean truncates to whole
// nanoseconds and the standard deviation uses the n-1 denominator; a single
// sample has zero deviation and no samples give all zeros.
func Compute(samples []time.Duration, count int) Statistics {
	if count > len(samples) {
		panic(fmt.Sprintf("bench: %d samples requested from a buffer of %d", count, len(samples)))
	}
	if count <= 0 {
		return Statistics{}
	}

	var total int64
	lo, hi := samples[0], samples[0]
	for _, d := range samples[:count] {
		total += int64(d)
		lo = min(lo, d)
		hi = max(hi, d)
	}
	mean := total / int64(count)

	s := Statistics{Min: lo, Max: hi, Mean: time.Duration(mean)}
	if count == 1 {
		return s
	}
	var squares float64
	for _, d := range samples[:count] {
		dev := float64(int64(d) - mean)
		squares += dev * dev
	}
	s.StdDev = time.Duration(math.Round(math.Sqrt(squares / float64(count-1))))
	return s
}
