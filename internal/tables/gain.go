package tables

// GainSteps are the per-step gains, in 0.01 dB, of the tuner RF, IF and
// baseband stages for one frequency regime. Delta is the fixed offset
// subtracted from the summed gain.
type GainSteps struct {
	RF    [13]uint32
	IF    [12]uint32
	BB    [13]uint32
	Delta int32
}

const (
	// TIAStep is the gain per TIA code.
	TIAStep = 290
	// PGA2CoarseStep and PGA2FineStep split the PGA2 code into its integer
	// and fractional parts.
	PGA2CoarseStep = 46
	PGA2FineStep   = 290
)

var baseGainSteps = GainSteps{
	RF: [13]uint32{0, 276, 278, 283, 272, 294, 296, 292, 292, 299, 305, 292, 300},
	IF: [12]uint32{0, 0, 232, 268, 266, 289, 295, 290, 291, 298, 304, 304},
	BB: [13]uint32{0, 296, 297, 295, 298, 302, 293, 292, 286, 294, 278, 298, 267},
}

// GainStepsFor returns the calibration for freqMHz.
func GainStepsFor(freqMHz uint32) GainSteps {
	g := baseGainSteps
	switch {
	case freqMHz >= 1750:
		g.RF[1], g.RF[2] = 240, 260
		g.IF[2], g.IF[3], g.IF[4] = 200, 245, 255
		g.Delta = 800
	case freqMHz >= 1350:
		g.RF[12] = 285
		g.Delta = 900
	default:
		g.RF[1], g.RF[2] = 310, 293
		g.IF[2], g.IF[3], g.IF[4] = 270, 290, 280
		g.IF[11] = 320
		g.Delta = 1000
	}
	return g
}
