package dsp

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// IQStats summarises a constellation capture.
type IQStats struct {
	Count int
	// MeanI and MeanQ expose a DC offset.
	MeanI, MeanQ float64
	// Amplitude is the mean symbol magnitude.
	Amplitude float64
	// MERDB is the modulation error ratio against the nearest QPSK point.
	MERDB float64
}

// ConstellationMER estimates MER in dB for a QPSK-like cloud. Each symbol
// is sliced to the quadrant point scaled by the mean absolute component.
// It returns +Inf for a perfect cloud and 0 for an empty one.
func ConstellationMER(re, im []float64) float64 {
	n := len(re)
	if len(im) < n {
		n = len(im)
	}
	if n == 0 {
		return 0
	}
	absI := make([]float64, n)
	absQ := make([]float64, n)
	for k := 0; k < n; k++ {
		absI[k] = math.Abs(re[k])
		absQ[k] = math.Abs(im[k])
	}
	a := (stat.Mean(absI, nil) + stat.Mean(absQ, nil)) / 2
	if a == 0 {
		return 0
	}
	errI := make([]float64, n)
	errQ := make([]float64, n)
	for k := 0; k < n; k++ {
		errI[k] = re[k] - math.Copysign(a, re[k])
		errQ[k] = im[k] - math.Copysign(a, im[k])
	}
	noise := floats.Dot(errI, errI) + floats.Dot(errQ, errQ)
	signal := float64(n) * 2 * a * a
	if noise == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(signal/noise)
}

// Analyze computes IQStats over a capture.
func Analyze(re, im []float64) IQStats {
	n := len(re)
	if len(im) < n {
		n = len(im)
	}
	st := IQStats{Count: n}
	if n == 0 {
		return st
	}
	re, im = re[:n], im[:n]
	st.MeanI = stat.Mean(re, nil)
	st.MeanQ = stat.Mean(im, nil)
	mag := make([]float64, n)
	for k := range mag {
		mag[k] = math.Hypot(re[k], im[k])
	}
	st.Amplitude = stat.Mean(mag, nil)
	st.MERDB = ConstellationMER(re, im)
	return st
}
