// Package tables holds the immutable lookup tables shared by the tuner and
// demodulator code: PLS decoding, gain calibration, log tables and the
// gold-code checkpoints.
package tables

import "fmt"

// DeliverySystem identifies the broadcast standard.
type DeliverySystem int

const (
	SystemUndefined DeliverySystem = iota
	S1
	S2
	S2X
	Auto
)

func (d DeliverySystem) String() string {
	switch d {
	case S1:
		return "DVB-S"
	case S2:
		return "DVB-S2"
	case S2X:
		return "DVB-S2X"
	case Auto:
		return "auto"
	default:
		return "undefined"
	}
}

// Modulation is the constellation in use.
type Modulation int

const (
	ModulationUndefined Modulation = iota
	QPSK
	PSK8
	APSK8L
	APSK16
	APSK16L
	APSK32
	APSK32L
	APSK64
	APSK64L
	APSK128
	APSK128L
	APSK256
	APSK256L
)

var modulationNames = map[Modulation]string{
	ModulationUndefined: "undefined",
	QPSK:                "QPSK",
	PSK8:                "8PSK",
	APSK8L:              "8APSK-L",
	APSK16:              "16APSK",
	APSK16L:             "16APSK-L",
	APSK32:              "32APSK",
	APSK32L:             "32APSK-L",
	APSK64:              "64APSK",
	APSK64L:             "64APSK-L",
	APSK128:             "128APSK",
	APSK128L:            "128APSK-L",
	APSK256:             "256APSK",
	APSK256L:            "256APSK-L",
}

func (m Modulation) String() string {
	if s, ok := modulationNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Modulation(%d)", int(m))
}

// BitsPerSymbol is the modulation factor used for data-rate estimates.
// Unknown modulations count as QPSK.
func (m Modulation) BitsPerSymbol() uint32 {
	switch m {
	case PSK8, APSK8L:
		return 3
	case APSK16, APSK16L:
		return 4
	case APSK32, APSK32L:
		return 5
	case APSK64, APSK64L:
		return 6
	case APSK128, APSK128L:
		return 7
	case APSK256, APSK256L:
		return 8
	default:
		return 2
	}
}

// CodeRate is an LDPC/BCH or convolutional code rate.
type CodeRate int

const (
	RateUndefined CodeRate = iota
	Rate1_4
	Rate1_3
	Rate2_5
	Rate1_2
	Rate3_5
	Rate2_3
	Rate3_4
	Rate4_5
	Rate5_6
	Rate7_8
	Rate8_9
	Rate9_10
	Rate5_9
	Rate7_9
	Rate4_15
	Rate7_15
	Rate8_15
	Rate11_15
	Rate13_18
	Rate9_20
	Rate11_20
	Rate23_36
	Rate25_36
	Rate11_45
	Rate13_45
	Rate14_45
	Rate26_45
	Rate28_45
	Rate29_45
	Rate31_45
	Rate32_45
	Rate77_90
)

var rateFractions = map[CodeRate][2]uint32{
	Rate1_4:   {1, 4},
	Rate1_3:   {1, 3},
	Rate2_5:   {2, 5},
	Rate1_2:   {1, 2},
	Rate3_5:   {3, 5},
	Rate2_3:   {2, 3},
	Rate3_4:   {3, 4},
	Rate4_5:   {4, 5},
	Rate5_6:   {5, 6},
	Rate7_8:   {7, 8},
	Rate8_9:   {8, 9},
	Rate9_10:  {9, 10},
	Rate5_9:   {5, 9},
	Rate7_9:   {7, 9},
	Rate4_15:  {4, 15},
	Rate7_15:  {7, 15},
	Rate8_15:  {8, 15},
	Rate11_15: {11, 15},
	Rate13_18: {13, 18},
	Rate9_20:  {9, 20},
	Rate11_20: {11, 20},
	Rate23_36: {23, 36},
	Rate25_36: {25, 36},
	Rate11_45: {11, 45},
	Rate13_45: {13, 45},
	Rate14_45: {14, 45},
	Rate26_45: {26, 45},
	Rate28_45: {28, 45},
	Rate29_45: {29, 45},
	Rate31_45: {31, 45},
	Rate32_45: {32, 45},
	Rate77_90: {77, 90},
}

// Fraction returns numerator and denominator. ok is false for
// RateUndefined.
func (r CodeRate) Fraction() (num, den uint32, ok bool) {
	f, ok := rateFractions[r]
	return f[0], f[1], ok
}

func (r CodeRate) String() string {
	num, den, ok := r.Fraction()
	if !ok {
		return "undefined"
	}
	return fmt.Sprintf("%d/%d", num, den)
}

// FrameLength distinguishes normal and short FECFRAMEs.
type FrameLength int

const (
	FrameNormal FrameLength = iota
	FrameShort
)

func (f FrameLength) String() string {
	if f == FrameShort {
		return "short"
	}
	return "normal"
}

// RollOff is the pulse-shaping excess bandwidth.
type RollOff int

const (
	RollOffUndefined RollOff = iota
	RollOff35
	RollOff25
	RollOff20
	RollOff15
	RollOff10
	RollOff05
)

func (r RollOff) String() string {
	switch r {
	case RollOff35:
		return "0.35"
	case RollOff25:
		return "0.25"
	case RollOff20:
		return "0.20"
	case RollOff15:
		return "0.15"
	case RollOff10:
		return "0.10"
	case RollOff05:
		return "0.05"
	default:
		return "undefined"
	}
}

// PLSKind tags how much of a PLS entry can be trusted.
type PLSKind int

const (
	// Defined entries carry every field, modulation and dummy flag included.
	Defined PLSKind = iota
	// Partial entries know rate, pilot and frame length but not modulation.
	Partial
	// Reserved entries carry pilot and frame length only.
	Reserved
)

func (k PLSKind) String() string {
	switch k {
	case Defined:
		return "defined"
	case Partial:
		return "partial"
	default:
		return "reserved"
	}
}

// PLSEntry is one row of the PLS table. Modulation and the dummy-frame flag
// are only reachable for Defined entries.
type PLSEntry struct {
	Code   uint8
	Kind   PLSKind
	System DeliverySystem
	Rate   CodeRate
	Pilot  bool
	Frame  FrameLength

	modulation Modulation
	dummy      bool
}

// Modulation reports the table modulation when the entry defines one.
func (e PLSEntry) Modulation() (Modulation, bool) {
	if e.Kind != Defined {
		return ModulationUndefined, false
	}
	return e.modulation, true
}

// Dummy reports the dummy-frame flag when the entry defines one.
func (e PLSEntry) Dummy() (bool, bool) {
	if e.Kind != Defined {
		return false, false
	}
	return e.dummy, true
}

func defined(code uint8, sys DeliverySystem, mod Modulation, rate CodeRate, pilot, dummy bool, frame FrameLength) PLSEntry {
	return PLSEntry{Code: code, Kind: Defined, System: sys, Rate: rate, Pilot: pilot, Frame: frame, modulation: mod, dummy: dummy}
}

func partial(code uint8, sys DeliverySystem, rate CodeRate, pilot bool, frame FrameLength) PLSEntry {
	return PLSEntry{Code: code, Kind: Partial, System: sys, Rate: rate, Pilot: pilot, Frame: frame}
}

func reserved(code uint8, sys DeliverySystem, pilot bool, frame FrameLength) PLSEntry {
	return PLSEntry{Code: code, Kind: Reserved, System: sys, Rate: RateUndefined, Pilot: pilot, Frame: frame}
}
