// Package dsp holds the numeric post-processing applied to scan buffers:
// spectrum smoothing, carrier candidate detection and constellation
// statistics.
package dsp

// Smooth3 applies a 3-tap moving average. Interior points average their
// neighbours; the first and last points weight themselves twice. Integer
// division truncates toward zero.
func Smooth3(in []int32) []int32 {
	n := len(in)
	out := make([]int32, n)
	switch n {
	case 0:
		return out
	case 1:
		out[0] = in[0]
		return out
	}
	out[0] = int32((2*int64(in[0]) + int64(in[1])) / 3)
	for i := 1; i < n-1; i++ {
		out[i] = int32((int64(in[i-1]) + int64(in[i]) + int64(in[i+1])) / 3)
	}
	out[n-1] = int32((2*int64(in[n-1]) + int64(in[n-2])) / 3)
	return out
}
