package dsp

import (
	"math"
	"testing"
)

func TestSmooth3(t *testing.T) {
	got := Smooth3([]int32{3, 6, 9, 12})
	want := []int32{4, 6, 9, 11}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("smooth[%d]=%d want %d", i, got[i], want[i])
		}
	}
	neg := Smooth3([]int32{-1000, -2000})
	if neg[0] != -1333 || neg[1] != -1666 {
		t.Fatalf("negative edges %v", neg)
	}
	if one := Smooth3([]int32{-7}); one[0] != -7 {
		t.Fatalf("single point %v", one)
	}
	if len(Smooth3(nil)) != 0 {
		t.Fatalf("empty input")
	}
}

func TestCandidatesFindsCarrier(t *testing.T) {
	freqs := make([]uint32, 20)
	power := make([]int32, 20)
	for i := range freqs {
		freqs[i] = 950000 + uint32(i)*500
		power[i] = -60000
	}
	for i := 8; i <= 11; i++ {
		power[i] = -40000
	}
	power[9] = -35000

	c := Candidates(freqs, power, 6)
	if len(c) != 1 {
		t.Fatalf("expected one candidate, got %d", len(c))
	}
	if c[0].FrequencyKHz != 954750 || c[0].BandwidthKHz != 1500 {
		t.Fatalf("candidate %+v", c[0])
	}
	if c[0].PeakDB != -35 || c[0].SNRDB != 25 {
		t.Fatalf("levels %+v", c[0])
	}
	if Strongest(c) != 0 || Strongest(nil) != -1 {
		t.Fatalf("strongest")
	}
}

func TestCandidatesFlatSpectrum(t *testing.T) {
	freqs := []uint32{1, 2, 3}
	power := []int32{-50000, -50000, -50000}
	if c := Candidates(freqs, power, 3); len(c) != 0 {
		t.Fatalf("flat spectrum produced %v", c)
	}
	if Candidates(nil, nil, 3) != nil {
		t.Fatalf("empty sweep")
	}
}

func TestConstellationMER(t *testing.T) {
	re := []float64{1, -1, 1, -1}
	im := []float64{1, 1, -1, -1}
	if !math.IsInf(ConstellationMER(re, im), 1) {
		t.Fatalf("perfect cloud must be +Inf")
	}
	re = []float64{1.1, -0.9, 1.1, -0.9}
	im = []float64{1, 1, -1, -1}
	// a = 1, error power 4*0.01, signal 4*2
	if got := ConstellationMER(re, im); math.Abs(got-10*math.Log10(200)) > 1e-9 {
		t.Fatalf("mer %v", got)
	}
	if ConstellationMER(nil, nil) != 0 {
		t.Fatalf("empty cloud")
	}
}

func TestAnalyze(t *testing.T) {
	st := Analyze([]float64{3, -3}, []float64{4, -4})
	if st.Count != 2 || st.MeanI != 0 || st.MeanQ != 0 || st.Amplitude != 5 {
		t.Fatalf("stats %+v", st)
	}
}
