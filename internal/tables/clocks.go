package tables

// MasterClock is one ADC sampling clock the tuner can provide.
type MasterClock struct {
	KHz uint32
	// Reg16 is the tuner PLL feedback value producing KHz.
	Reg16 byte
	// ADC is the matching demod register 0xa0 value.
	ADC byte
}

// MasterClocks are the candidates evaluated for spur avoidance, in
// preference order.
var MasterClocks = [3]MasterClock{
	{KHz: 96000, Reg16: 96, ADC: 0x44},
	{KHz: 93000, Reg16: 92, ADC: 0x42},
	{KHz: 99000, Reg16: 100, ADC: 0x46},
}

// HighRateMasterClock is forced at and above HighRateSymbolKSs.
var HighRateMasterClock = MasterClocks[2]

// HighRateSymbolKSs is the symbol rate, in kS/s, from which the master
// clock is pinned.
const HighRateSymbolKSs = 46000

// XMClocks lists the serial transport clocks reachable from each master
// clock line, indexed by XMLine.
var XMClocks = [3][8]uint32{
	{96000, 102400, 107162, 109714, 115200, 128000, 135529, 144000},
	{93000, 99200, 111600, 117473, 124000, 139500, 144000, 148800},
	{99000, 105600, 108000, 110511, 118800, 132000, 144000, 148500},
}

// XMLine picks the XMClocks row for tuner register 0x16.
func XMLine(reg16 byte) int {
	switch reg16 {
	case 92:
		return 1
	case 100:
		return 2
	default:
		return 0
	}
}

// RegVal is a register/value pair.
type RegVal struct {
	Reg byte
	Val byte
}

// DemodPreset is written to the demodulator on every tune before the
// delivery-system specific bits.
var DemodPreset = []RegVal{
	{0x04, 0x00},
	{0x8a, 0x01},
	{0x16, 0xa7},
	{0x30, 0x88},
	{0x4a, 0x80},
	{0x4d, 0x91},
	{0xae, 0x09},
	{0x22, 0x01},
	{0x23, 0x00},
	{0x24, 0x00},
	{0x27, 0x07},
	{0x9c, 0x31},
	{0x9d, 0xc1},
	{0xcb, 0xf4},
	{0xca, 0x00},
	{0x7f, 0x04},
	{0x78, 0x0c},
	{0x85, 0x08},
	{0x08, 0x47},
	{0xf0, 0x03},
	{0xfa, 0x01},
	{0xf2, 0x00},
	{0xfa, 0x00},
	{0xe6, 0x00},
	{0xe7, 0xf3},
	{0x08, 0x43},
	{0xe0, 0xf8},
	{0x00, 0x00},
	{0xbd, 0x83},
	{0xbe, 0xa1},
}

// TunerInit is the tuner register sequence following the first wakeup.
var TunerInit = []RegVal{
	{0x24, 0x04},
	{0x6e, 0x39},
	{0x83, 0x01},
	{0x70, 0x90},
	{0x71, 0xf0},
	{0x72, 0xb6},
	{0x73, 0xeb},
	{0x74, 0x6f},
	{0x75, 0xfc},
}
