package synth

import (
	"context"

	"github.com/rjboer/GoDVB/internal/regbus"
	"github.com/rjboer/GoDVB/internal/tables"
)

// SelectMasterClock picks the ADC clock whose harmonics sit furthest from
// the carrier. Ties keep the earlier candidate; if no candidate has a
// positive offset the first one is used.
func SelectMasterClock(freqMHz, symbolRateKSs uint32) tables.MasterClock {
	if symbolRateKSs >= tables.HighRateSymbolKSs {
		return tables.HighRateMasterClock
	}
	best := tables.MasterClocks[0]
	var maxOffset uint32
	for _, c := range tables.MasterClocks {
		adcMHz := c.KHz / 1000
		offset := freqMHz % adcMHz
		if offset > adcMHz/2 {
			offset = adcMHz - offset
		}
		if offset > maxOffset {
			maxOffset = offset
			best = c
		}
	}
	return best
}

// ApplyMasterClock programs the tuner PLL feedback for clk. The caller
// waits for the PLL to settle.
func ApplyMasterClock(ctx context.Context, tuner regbus.Bus, clk tables.MasterClock) error {
	if err := regbus.ClearBits(ctx, tuner, 0x15, 0x01); err != nil {
		return err
	}
	return regbus.WriteSeq(ctx, tuner,
		[2]byte{0x16, clk.Reg16},
		[2]byte{0x17, 0xc1},
		[2]byte{0x17, 0x81},
	)
}

// ADCRegister returns the demod 0xa0 value for an arbitrary master clock.
func ADCRegister(mclkKHz uint32) byte {
	switch mclkKHz {
	case 93000:
		return 0x42
	case 99000:
		return 0x46
	case 110250:
		return 0x4e
	default:
		return 0x44
	}
}
