// Package synth computes the tuner and demodulator clocking registers: the
// RF local oscillator PLL, the ADC master clock and the transport stream
// output clock.
package synth

import (
	"context"

	"github.com/rjboer/GoDVB/internal/regbus"
)

// PLLRegisters is the tuner LO programming for one frequency.
type PLLRegisters struct {
	N1, N2 uint32

	Reg27, Reg28 byte
	Reg29, Reg2A byte
	Reg36, Reg39 byte
	Reg2C        byte
	Reg41        byte
	// DivideBy2 sets tuner 0x3d bit 7.
	DivideBy2 bool
}

type loBand struct {
	minMHz     uint32
	div1, mod1 uint32
	fine1      bool
	div2, mod2 uint32
	fine2      bool
	divBy2     bool
}

// loBands is ordered from the top. fine selects the 1.5 MHz reference
// divider, otherwise the 1 MHz one is used.
var loBands = []loBand{
	{minMHz: 1550, div1: 2, mod1: 0, div2: 2, mod2: 0},
	{minMHz: 1380, div1: 3, mod1: 16, fine1: true, div2: 2, mod2: 0},
	{minMHz: 1070, div1: 3, mod1: 16, fine1: true, div2: 3, mod2: 16, fine2: true},
	{minMHz: 1000, div1: 4, mod1: 64, div2: 4, mod2: 64},
	{minMHz: 775, div1: 4, mod1: 64, div2: 4, mod2: 64},
	{minMHz: 700, div1: 6, mod1: 48, fine1: true, div2: 4, mod2: 64},
	{minMHz: 520, div1: 6, mod1: 48, fine1: true, div2: 6, mod2: 48, fine2: true},
	{minMHz: 375, div1: 8, mod1: 96, div2: 8, mod2: 96},
	{minMHz: 0, div1: 12, mod1: 80, div2: 12, mod2: 80, divBy2: true},
}

// referenceDividers returns the 1 MHz and 1.5 MHz reference dividers and
// the 0x41 value for the crystal. Unknown crystals are treated as 27 MHz.
func referenceDividers(crystalKHz uint32) (div1m, div1p5m uint32, reg41 byte) {
	if crystalKHz == 24000 {
		return 16, 8, 0x8a
	}
	return 19, 10, 0x82
}

// loDivider evaluates ((f*div)*(ref+8)/crystal - 1024)/2 with the same
// truncation order as the hardware reference.
func loDivider(freqMHz, div, ref, crystalKHz uint32) uint32 {
	return ((freqMHz*1000*div)*(ref+8)/crystalKHz - 1024) / 2
}

// ComputePLL derives the LO registers for freqMHz and a crystal of
// crystalKHz.
func ComputePLL(freqMHz, crystalKHz uint32) PLLRegisters {
	if crystalKHz == 0 {
		crystalKHz = 27000
	}
	div1m, div1p5m, reg41 := referenceDividers(crystalKHz)

	band := loBands[len(loBands)-1]
	for _, b := range loBands {
		if freqMHz >= b.minMHz {
			band = b
			break
		}
	}
	ref1, ref2 := div1m, div1m
	if band.fine1 {
		ref1 = div1p5m
	}
	if band.fine2 {
		ref2 = div1p5m
	}

	n1 := loDivider(freqMHz, band.div1, ref1, crystalKHz)
	n2 := loDivider(freqMHz, band.div2, ref2, crystalKHz)

	p := PLLRegisters{
		N1:        n1,
		N2:        n2,
		Reg27:     byte((((n1 >> 8) & 0x0f) + band.mod1) & 0x7f),
		Reg28:     byte(n1),
		Reg29:     byte((((n2 >> 8) & 0x0f) + band.mod2) & 0x7f),
		Reg2A:     byte(n2),
		Reg36:     byte(ref1 & 0x1f),
		Reg39:     byte(ref2),
		Reg41:     reg41,
		DivideBy2: band.divBy2,
	}
	if ref1&0x1f == 19 {
		p.Reg2C = 0x02
	}
	return p
}

// Apply writes the LO registers to the tuner.
func (p PLLRegisters) Apply(ctx context.Context, tuner regbus.Bus) error {
	if err := tuner.Write(ctx, 0x41, p.Reg41); err != nil {
		return err
	}
	err := regbus.WriteSeq(ctx, tuner,
		[2]byte{0x27, p.Reg27},
		[2]byte{0x28, p.Reg28},
		[2]byte{0x29, p.Reg29},
		[2]byte{0x2a, p.Reg2A},
		[2]byte{0x36, p.Reg36},
		[2]byte{0x39, p.Reg39},
	)
	if err != nil {
		return err
	}
	var opt byte
	if p.DivideBy2 {
		opt = 0x80
	}
	if err := regbus.Update(ctx, tuner, 0x3d, 0x80, opt); err != nil {
		return err
	}
	return tuner.Write(ctx, 0x2c, p.Reg2C)
}
