package tables

// Log10 holds round(10000*log10(i+1)) for i in [0,79]. Indexed by a
// signal/noise ratio minus one it yields CNR in 0.001 dB.
var Log10 = [80]uint16{
	0, 3010, 4771, 6021, 6990, 7781, 8451, 9031, 9542, 10000,
	10414, 10792, 11139, 11461, 11761, 12041, 12304, 12553, 12788, 13010,
	13222, 13424, 13617, 13802, 13979, 14150, 14314, 14472, 14624, 14771,
	14914, 15052, 15185, 15315, 15441, 15563, 15682, 15798, 15911, 16021,
	16128, 16232, 16335, 16435, 16532, 16628, 16721, 16812, 16902, 16990,
	17076, 17160, 17243, 17324, 17404, 17482, 17559, 17634, 17709, 17782,
	17853, 17924, 17993, 18062, 18129, 18195, 18261, 18325, 18388, 18451,
	18513, 18573, 18633, 18692, 18751, 18808, 18865, 18921, 18976, 19031,
}

// Ln holds round(10000*ln(i+1)) for i in [0,31].
var Ln = [32]uint16{
	0, 6931, 10986, 13863, 16094, 17918, 19459, 20794, 21972, 23026,
	23979, 24849, 25649, 26391, 27081, 27726, 28332, 28904, 29444, 29957,
	30445, 30910, 31355, 31781, 32189, 32581, 32958, 33322, 33673, 34012,
	34340, 34657,
}

// BasebandDBm maps tuner register 0x96 (high nibble, low nibble) to
// baseband power in 0.01 dBm.
var BasebandDBm = [16][16]int32{
	{-5000, -4999, -4397, -4044, -3795, -3601, -3442, -3309, -3193, -3090, -2999, -2916, -2840, -2771, -2706, -2647},
	{-2590, -2538, -2488, -2441, -2397, -2354, -2314, -2275, -2238, -2203, -2169, -2136, -2104, -2074, -2044, -2016},
	{-1988, -1962, -1936, -1911, -1886, -1862, -1839, -1817, -1795, -1773, -1752, -1732, -1712, -1692, -1673, -1655},
	{-1636, -1618, -1601, -1584, -1567, -1550, -1534, -1518, -1502, -1487, -1472, -1457, -1442, -1428, -1414, -1400},
	{-1386, -1373, -1360, -1347, -1334, -1321, -1309, -1296, -1284, -1272, -1260, -1249, -1237, -1226, -1215, -1203},
	{-1193, -1182, -1171, -1161, -1150, -1140, -1130, -1120, -1110, -1100, -1090, -1081, -1071, -1062, -1052, -1043},
	{-1034, -1025, -1016, -1007, -999, -990, -982, -973, -965, -956, -948, -940, -932, -924, -916, -908},
	{-900, -893, -885, -877, -870, -862, -855, -848, -840, -833, -826, -819, -812, -805, -798, -791},
	{-784, -778, -771, -764, -758, -751, -745, -738, -732, -725, -719, -713, -706, -700, -694, -688},
	{-682, -676, -670, -664, -658, -652, -647, -641, -635, -629, -624, -618, -612, -607, -601, -596},
	{-590, -585, -580, -574, -569, -564, -558, -553, -548, -543, -538, -533, -528, -523, -518, -513},
	{-508, -503, -498, -493, -488, -483, -479, -474, -469, -464, -460, -455, -450, -446, -441, -437},
	{-432, -428, -423, -419, -414, -410, -405, -401, -397, -392, -388, -384, -379, -375, -371, -367},
	{-363, -358, -354, -350, -346, -342, -338, -334, -330, -326, -322, -318, -314, -310, -306, -302},
	{-298, -294, -290, -287, -283, -279, -275, -271, -268, -264, -260, -257, -253, -249, -246, -242},
	{-238, -235, -231, -227, -224, -220, -217, -213, -210, -206, -203, -199, -196, -192, -189, -186},
}

// GoldCheckpoint is the scrambler state after Index LFSR steps.
type GoldCheckpoint struct {
	Index uint32
	State [3]byte
}

// GoldStride is the spacing between checkpoints.
const GoldStride = 5000

// GoldCheckpoints holds the scrambler state every GoldStride steps from the
// seed.
var GoldCheckpoints = [53]GoldCheckpoint{
	{0, [3]byte{0x01, 0x00, 0x00}},
	{5000, [3]byte{0x0d, 0xe0, 0x00}},
	{10000, [3]byte{0x51, 0x15, 0x00}},
	{15000, [3]byte{0xcf, 0xc9, 0x00}},
	{20000, [3]byte{0x67, 0x33, 0x03}},
	{25000, [3]byte{0x02, 0xc9, 0x02}},
	{30000, [3]byte{0xe5, 0xc6, 0x01}},
	{35000, [3]byte{0xdb, 0xc0, 0x03}},
	{40000, [3]byte{0x7c, 0x5f, 0x02}},
	{45000, [3]byte{0x8d, 0x65, 0x00}},
	{50000, [3]byte{0x14, 0x96, 0x00}},
	{55000, [3]byte{0xf7, 0x61, 0x03}},
	{60000, [3]byte{0xbc, 0x28, 0x00}},
	{65000, [3]byte{0x77, 0xa9, 0x01}},
	{70000, [3]byte{0xe7, 0x05, 0x01}},
	{75000, [3]byte{0x88, 0x85, 0x01}},
	{80000, [3]byte{0x2f, 0xbb, 0x02}},
	{85000, [3]byte{0xe1, 0x07, 0x00}},
	{90000, [3]byte{0xd5, 0x67, 0x01}},
	{95000, [3]byte{0x94, 0x37, 0x03}},
	{100000, [3]byte{0x57, 0x39, 0x02}},
	{105000, [3]byte{0xc7, 0x03, 0x00}},
	{110000, [3]byte{0xbf, 0x12, 0x00}},
	{115000, [3]byte{0x50, 0x0e, 0x00}},
	{120000, [3]byte{0xca, 0xc4, 0x00}},
	{125000, [3]byte{0x46, 0xc3, 0x00}},
	{130000, [3]byte{0x2f, 0xc6, 0x01}},
	{135000, [3]byte{0x7c, 0xe5, 0x01}},
	{140000, [3]byte{0xb9, 0x36, 0x01}},
	{145000, [3]byte{0x9d, 0xe5, 0x01}},
	{150000, [3]byte{0xc4, 0x32, 0x01}},
	{155000, [3]byte{0x13, 0xb3, 0x00}},
	{160000, [3]byte{0x0c, 0x9f, 0x02}},
	{165000, [3]byte{0xb2, 0xb5, 0x03}},
	{170000, [3]byte{0xac, 0x7e, 0x01}},
	{175000, [3]byte{0xb6, 0xa2, 0x01}},
	{180000, [3]byte{0xb6, 0x3e, 0x01}},
	{185000, [3]byte{0x17, 0x2c, 0x02}},
	{190000, [3]byte{0xd7, 0x2a, 0x02}},
	{195000, [3]byte{0x93, 0x61, 0x02}},
	{200000, [3]byte{0x67, 0x92, 0x02}},
	{205000, [3]byte{0x38, 0x07, 0x01}},
	{210000, [3]byte{0xb4, 0x5a, 0x01}},
	{215000, [3]byte{0xed, 0x31, 0x02}},
	{220000, [3]byte{0x9e, 0x4d, 0x02}},
	{225000, [3]byte{0x17, 0x08, 0x02}},
	{230000, [3]byte{0x37, 0xb9, 0x00}},
	{235000, [3]byte{0x2c, 0xed, 0x00}},
	{240000, [3]byte{0xe0, 0x64, 0x00}},
	{245000, [3]byte{0x90, 0x39, 0x01}},
	{250000, [3]byte{0x35, 0x0e, 0x01}},
	{255000, [3]byte{0x1c, 0x9e, 0x02}},
	{260000, [3]byte{0x58, 0x78, 0x00}},
}
