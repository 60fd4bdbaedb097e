package synth

const (
	bbMinKHz = 6000
	bbMaxKHz = 43000

	// LowRateKSs is the symbol rate below which the tuner is offset by
	// LowRateOffsetKHz.
	LowRateKSs       = 5000
	LowRateOffsetKHz = 3000
)

// BasebandBandwidth is the tuner low-pass corner in kHz: roughly 1.3 times
// the symbol rate plus 2 MHz margin plus any LPF offset, clamped to the
// filter range.
func BasebandBandwidth(symbolRateKSs uint32, lpfOffsetKHz int32) uint32 {
	f3dB := int64(symbolRateKSs)*9/14 + 2000 + int64(lpfOffsetKHz)
	switch {
	case f3dB < bbMinKHz:
		f3dB = bbMinKHz
	case f3dB > bbMaxKHz:
		f3dB = bbMaxKHz
	}
	return uint32(f3dB)
}

// BasebandRegister is the tuner 0x40 value, the corner in MHz.
func BasebandRegister(symbolRateKSs uint32, lpfOffsetKHz int32) byte {
	return byte(BasebandBandwidth(symbolRateKSs, lpfOffsetKHz) / 1000)
}

// BandwidthRegister is the tuner 0x40 value for an explicit corner.
func BandwidthRegister(bwKHz uint32) byte {
	switch {
	case bwKHz < bbMinKHz:
		bwKHz = bbMinKHz
	case bwKHz > bbMaxKHz:
		bwKHz = bbMaxKHz
	}
	return byte(bwKHz / 1000)
}

// LPFOffset returns the offset applied to low symbol rate carriers.
func LPFOffset(symbolRateKSs uint32) int32 {
	if symbolRateKSs < LowRateKSs {
		return LowRateOffsetKHz
	}
	return 0
}

// SymbolRateRegister is the demod 0x61/0x62 value for symbolRateKSs at
// master clock mclkKHz.
func SymbolRateRegister(symbolRateKSs, mclkKHz uint32) uint16 {
	return uint16(((uint64(symbolRateKSs) << 15) + uint64(mclkKHz/4)) / uint64(mclkKHz/2))
}

// LPFOffsetRegister is the demod 0x5e/0x5f carrier offset compensation,
// rounded to nearest.
func LPFOffsetRegister(lpfOffsetKHz int32, mclkKHz uint32) uint16 {
	v := int64(0x10000) * int64(lpfOffsetKHz)
	m := int64(mclkKHz)
	return uint16((2*v + m) / (2 * m))
}

// SymbolRateFromRegister converts the locked symbol rate readback
// (0x6e:0x6d) to kS/s.
func SymbolRateFromRegister(raw uint16, mclkKHz uint32) uint32 {
	return uint32(uint64(raw) * uint64(mclkKHz) >> 16)
}

// CarrierOffsetKHz converts the two frequency offset readings to kHz.
func CarrierOffsetKHz(raw1, raw2 uint16, mclkKHz uint32) int32 {
	n1, n2 := int64(int16(raw1)), int64(int16(raw2))
	return int32((n1 - n2) * int64(mclkKHz) / (1 << 16))
}
