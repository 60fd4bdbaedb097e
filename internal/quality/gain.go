// Package quality turns raw tuner and demodulator counters into RF level,
// CNR and bit error figures.
package quality

import (
	"context"
	"fmt"

	"github.com/rjboer/GoDVB/internal/regbus"
	"github.com/rjboer/GoDVB/internal/tables"
)

// GainCodes are the tuner AGC stage codes read from the tuner.
type GainCodes struct {
	RF, IF, TIA, BB, PGA2 byte
	// Baseband is tuner 0x96, the baseband power detector.
	Baseband byte
}

// GainReport is the gain breakdown in 0.01 dB.
type GainReport struct {
	Codes GainCodes

	RF, IF, TIA, BB, PGA2 int32
	Total                 int32
	Delta                 int32
	BasebandDBm           int32
	// Gain is Total minus Delta minus BasebandDBm. The received level is
	// -Gain.
	Gain int32
}

// ReadGainCodes collects the AGC codes from the tuner.
func ReadGainCodes(ctx context.Context, tuner regbus.Bus) (GainCodes, error) {
	var regs [6]byte
	for i, addr := range []byte{0x5a, 0x5f, 0x3f, 0x77, 0x76, 0x96} {
		v, err := tuner.Read(ctx, addr)
		if err != nil {
			return GainCodes{}, fmt.Errorf("read gain: %w", err)
		}
		regs[i] = v
	}
	return GainCodes{
		RF:       regs[0] & 0x0f,
		IF:       regs[1] & 0x0f,
		TIA:      (regs[2] >> 4) & 0x07,
		BB:       (regs[3] >> 4) & 0x0f,
		PGA2:     regs[4] & 0x3f,
		Baseband: regs[5],
	}, nil
}

// ComputeGain evaluates the gain model for codes at freqMHz. Stage codes
// beyond the end of their table saturate at the last step.
func ComputeGain(codes GainCodes, freqMHz uint32) GainReport {
	steps := tables.GainStepsFor(freqMHz)
	r := GainReport{Codes: codes, Delta: steps.Delta}

	r.RF = cumulative(steps.RF[:], 0, int(codes.RF))
	r.IF = cumulative(steps.IF[:], 1, int(codes.IF))
	r.BB = cumulative(steps.BB[:], 0, int(codes.BB))
	r.TIA = int32(codes.TIA) * tables.TIAStep
	cri, crf := int32(codes.PGA2>>2), int32(codes.PGA2&0x03)
	r.PGA2 = cri*tables.PGA2CoarseStep + crf*tables.PGA2FineStep

	r.Total = r.RF + r.IF - r.TIA + r.BB + r.PGA2
	r.BasebandDBm = tables.BasebandDBm[codes.Baseband>>4&0x0f][codes.Baseband&0x0f]
	r.Gain = r.Total - r.Delta - r.BasebandDBm
	return r
}

func cumulative(steps []uint32, from, to int) int32 {
	if to >= len(steps) {
		to = len(steps) - 1
	}
	var sum int32
	for i := from; i <= to; i++ {
		sum += int32(steps[i])
	}
	return sum
}

// ReadGain reads the AGC codes and evaluates the gain model.
func ReadGain(ctx context.Context, tuner regbus.Bus, freqMHz uint32) (GainReport, error) {
	codes, err := ReadGainCodes(ctx, tuner)
	if err != nil {
		return GainReport{}, err
	}
	return ComputeGain(codes, freqMHz), nil
}

// Strength is the received level derived from a gain in 0.01 dB.
type Strength struct {
	// MilliDB is the level in 0.001 dBm.
	MilliDB int32
	// Relative is scaled so that 0 dBm is 100*656, clamped to 16 bits.
	Relative uint16
}

// StrengthFromGain converts a gain to a level.
func StrengthFromGain(gain int32) Strength {
	rel := (100 + (-gain / 100)) * 656
	switch {
	case rel < 0:
		rel = 0
	case rel > 0xffff:
		rel = 0xffff
	}
	return Strength{MilliDB: -gain * 10, Relative: uint16(rel)}
}
