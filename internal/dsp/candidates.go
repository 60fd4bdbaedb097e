package dsp

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Candidate is a carrier-like region of a spectrum sweep.
type Candidate struct {
	// FrequencyKHz is the centre of the region.
	FrequencyKHz uint32
	// BandwidthKHz is the distance between the first and last bin above
	// threshold.
	BandwidthKHz uint32
	// PeakDB is the strongest bin in dB.
	PeakDB float64
	// SNRDB is the peak over the noise floor.
	SNRDB float64
}

// NoiseFloor estimates the floor of a sweep in dB as the lower quartile of
// the bins.
func NoiseFloor(db []float64) float64 {
	if len(db) == 0 {
		return math.Inf(-1)
	}
	sorted := append([]float64(nil), db...)
	sort.Float64s(sorted)
	return stat.Quantile(0.25, stat.Empirical, sorted, nil)
}

// MilliDBToDB converts scan power in 0.001 dB to dB.
func MilliDBToDB(power []int32) []float64 {
	out := make([]float64, len(power))
	for i, p := range power {
		out[i] = float64(p) / 1000
	}
	return out
}

// Candidates finds contiguous runs of bins more than thresholdDB above the
// noise floor. freqs and power must be the same length; power is in
// 0.001 dB as produced by a spectrum scan.
func Candidates(freqs []uint32, power []int32, thresholdDB float64) []Candidate {
	n := len(freqs)
	if len(power) < n {
		n = len(power)
	}
	if n == 0 {
		return nil
	}
	db := MilliDBToDB(power[:n])
	floor := NoiseFloor(db)
	level := floor + thresholdDB

	var out []Candidate
	for i := 0; i < n; {
		if db[i] <= level {
			i++
			continue
		}
		start := i
		for i < n && db[i] > level {
			i++
		}
		run := db[start:i]
		peak := floats.Max(run)
		lo, hi := freqs[start], freqs[i-1]
		out = append(out, Candidate{
			FrequencyKHz: lo + (hi-lo)/2,
			BandwidthKHz: hi - lo,
			PeakDB:       peak,
			SNRDB:        peak - floor,
		})
	}
	return out
}

// Strongest returns the index of the candidate with the highest peak, or
// -1 for none.
func Strongest(c []Candidate) int {
	if len(c) == 0 {
		return -1
	}
	peaks := make([]float64, len(c))
	for i := range c {
		peaks[i] = c[i].PeakDB
	}
	return floats.MaxIdx(peaks)
}
