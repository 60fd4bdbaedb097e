package synth

import "github.com/rjboer/GoDVB/internal/tables"

// SerialFastClockKHz is the serial transport clock above which demod 0x0a
// selects the fast output driver.
const SerialFastClockKHz = 116000

// SelectXM picks a serial transport clock from the XM table line matching
// reg16. Entries below current are skipped. The first entry whose spur
// offset from freqKHz exceeds the signal half-bandwidth wins; if none does
// the last entry of the line is used.
func SelectXM(freqKHz, symbolRateKSs uint32, reg16 byte, current uint32) uint32 {
	c := symbolRateKSs * 135 / 200
	c += 2000
	c = c * 110 / 100

	line := tables.XMClocks[tables.XMLine(reg16)]
	xm := current
	var maxOffset uint32
	for _, entry := range line {
		if xm > entry {
			continue
		}
		offset := freqKHz % entry
		if offset > entry/2 {
			offset = entry - offset
		}
		if offset > c {
			return entry
		}
		if offset > maxOffset {
			maxOffset = offset
			xm = entry
		}
	}
	return line[len(line)-1]
}

// DataRate estimates the transport payload rate in kB/s for the locked
// channel. DVB-S2 and S2X divide by 8 before the code-rate denominator,
// DVB-S after it; the truncation differs between the two.
func DataRate(sys tables.DeliverySystem, mod tables.Modulation, rate tables.CodeRate, symbolRateKSs uint32) uint32 {
	if sys == tables.S1 {
		const fac = 2
		switch rate {
		case tables.Rate1_2, tables.Rate2_3, tables.Rate3_4, tables.Rate5_6, tables.Rate7_8:
		default:
			rate = tables.Rate3_4
		}
		num, den, _ := rate.Fraction()
		return symbolRateKSs * fac * num / den / 8
	}
	fac := mod.BitsPerSymbol()
	num, den, ok := rate.Fraction()
	if !ok || rate == tables.Rate7_8 {
		num, den = 2, 3
	}
	return symbolRateKSs * fac * num / 8 / den
}

// DivideRatio computes the parallel/common mode output divider for a data
// rate at mclkKHz. DVB-S2 additionally avoids divider values the output
// stage cannot produce cleanly.
func DivideRatio(mclkKHz, dataRate uint32, mode TSMode, s2 bool) uint32 {
	dataRate = dataRate * 105 / 100
	if dataRate < 6000 {
		dataRate = 6000
	}
	ratio := mclkKHz / dataRate
	if ratio < 8 {
		ratio = 8
	}
	if mode == TSCommon {
		if ratio > 27 {
			ratio = 27
		}
		if s2 {
			switch ratio {
			case 14, 15:
				ratio = 13
			case 19, 20:
				ratio = 18
			}
		}
		return ratio
	}
	if ratio > 24 {
		ratio = 24
	}
	if s2 {
		switch ratio {
		case 12, 13:
			ratio = 11
		case 19, 20:
			ratio = 18
		}
	}
	return ratio
}

// DivideRegisters returns the low nibble for demod 0xfe and the 0xea value
// for a divide ratio.
func DivideRegisters(ratio uint32) (fe, ea byte) {
	tmp1 := byte(ratio/2-1) & 0x3f
	tmp2 := byte((ratio+1)/2-1) & 0x3f
	return (tmp1 >> 2) & 0x0f, (tmp1&0x03)<<6 | tmp2
}
