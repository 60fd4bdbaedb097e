package tables

// PLS maps every 8-bit physical layer signalling code to its decoded
// parameters.
var PLS = [256]PLSEntry{
	0x00: defined(0x00, S2, ModulationUndefined, RateUndefined, false, true, FrameNormal),
	0x01: defined(0x01, S2, ModulationUndefined, RateUndefined, true, true, FrameNormal),
	0x02: defined(0x02, S2, ModulationUndefined, RateUndefined, false, true, FrameShort),
	0x03: defined(0x03, S2, ModulationUndefined, RateUndefined, true, true, FrameShort),
	0x04: defined(0x04, S2, QPSK, Rate1_4, false, false, FrameNormal),
	0x05: defined(0x05, S2, QPSK, Rate1_4, true, false, FrameNormal),
	0x06: defined(0x06, S2, QPSK, Rate1_4, false, false, FrameShort),
	0x07: defined(0x07, S2, QPSK, Rate1_4, true, false, FrameShort),
	0x08: defined(0x08, S2, QPSK, Rate1_3, false, false, FrameNormal),
	0x09: defined(0x09, S2, QPSK, Rate1_3, true, false, FrameNormal),
	0x0A: defined(0x0A, S2, QPSK, Rate1_3, false, false, FrameShort),
	0x0B: defined(0x0B, S2, QPSK, Rate1_3, true, false, FrameShort),
	0x0C: defined(0x0C, S2, QPSK, Rate2_5, false, false, FrameNormal),
	0x0D: defined(0x0D, S2, QPSK, Rate2_5, true, false, FrameNormal),
	0x0E: defined(0x0E, S2, QPSK, Rate2_5, false, false, FrameShort),
	0x0F: defined(0x0F, S2, QPSK, Rate2_5, true, false, FrameShort),
	0x10: defined(0x10, S2, QPSK, Rate1_2, false, false, FrameNormal),
	0x11: defined(0x11, S2, QPSK, Rate1_2, true, false, FrameNormal),
	0x12: defined(0x12, S2, QPSK, Rate1_2, false, false, FrameShort),
	0x13: defined(0x13, S2, QPSK, Rate1_2, true, false, FrameShort),
	0x14: defined(0x14, S2, QPSK, Rate3_5, false, false, FrameNormal),
	0x15: defined(0x15, S2, QPSK, Rate3_5, true, false, FrameNormal),
	0x16: defined(0x16, S2, QPSK, Rate3_5, false, false, FrameShort),
	0x17: defined(0x17, S2, QPSK, Rate3_5, true, false, FrameShort),
	0x18: defined(0x18, S2, QPSK, Rate2_3, false, false, FrameNormal),
	0x19: defined(0x19, S2, QPSK, Rate2_3, true, false, FrameNormal),
	0x1A: defined(0x1A, S2, QPSK, Rate2_3, false, false, FrameShort),
	0x1B: defined(0x1B, S2, QPSK, Rate2_3, true, false, FrameShort),
	0x1C: defined(0x1C, S2, QPSK, Rate3_4, false, false, FrameNormal),
	0x1D: defined(0x1D, S2, QPSK, Rate3_4, true, false, FrameNormal),
	0x1E: defined(0x1E, S2, QPSK, Rate3_4, false, false, FrameShort),
	0x1F: defined(0x1F, S2, QPSK, Rate3_4, true, false, FrameShort),
	0x20: defined(0x20, S2, QPSK, Rate4_5, false, false, FrameNormal),
	0x21: defined(0x21, S2, QPSK, Rate4_5, true, false, FrameNormal),
	0x22: defined(0x22, S2, QPSK, Rate4_5, false, false, FrameShort),
	0x23: defined(0x23, S2, QPSK, Rate4_5, true, false, FrameShort),
	0x24: defined(0x24, S2, QPSK, Rate5_6, false, false, FrameNormal),
	0x25: defined(0x25, S2, QPSK, Rate5_6, true, false, FrameNormal),
	0x26: defined(0x26, S2, QPSK, Rate5_6, false, false, FrameShort),
	0x27: defined(0x27, S2, QPSK, Rate5_6, true, false, FrameShort),
	0x28: defined(0x28, S2, QPSK, Rate8_9, false, false, FrameNormal),
	0x29: defined(0x29, S2, QPSK, Rate8_9, true, false, FrameNormal),
	0x2A: defined(0x2A, S2, QPSK, Rate8_9, false, false, FrameShort),
	0x2B: defined(0x2B, S2, QPSK, Rate8_9, true, false, FrameShort),
	0x2C: defined(0x2C, S2, QPSK, Rate9_10, false, false, FrameNormal),
	0x2D: defined(0x2D, S2, QPSK, Rate9_10, true, false, FrameNormal),
	0x2E: partial(0x2E, S2, Rate9_10, false, FrameShort),
	0x2F: partial(0x2F, S2, Rate9_10, true, FrameShort),
	0x30: defined(0x30, S2, PSK8, Rate3_5, false, false, FrameNormal),
	0x31: defined(0x31, S2, PSK8, Rate3_5, true, false, FrameNormal),
	0x32: defined(0x32, S2, PSK8, Rate3_5, false, false, FrameShort),
	0x33: defined(0x33, S2, PSK8, Rate3_5, true, false, FrameShort),
	0x34: defined(0x34, S2, PSK8, Rate2_3, false, false, FrameNormal),
	0x35: defined(0x35, S2, PSK8, Rate2_3, true, false, FrameNormal),
	0x36: defined(0x36, S2, PSK8, Rate2_3, false, false, FrameShort),
	0x37: defined(0x37, S2, PSK8, Rate2_3, true, false, FrameShort),
	0x38: defined(0x38, S2, PSK8, Rate3_4, false, false, FrameNormal),
	0x39: defined(0x39, S2, PSK8, Rate3_4, true, false, FrameNormal),
	0x3A: defined(0x3A, S2, PSK8, Rate3_4, false, false, FrameShort),
	0x3B: defined(0x3B, S2, PSK8, Rate3_4, true, false, FrameShort),
	0x3C: defined(0x3C, S2, PSK8, Rate5_6, false, false, FrameNormal),
	0x3D: defined(0x3D, S2, PSK8, Rate5_6, true, false, FrameNormal),
	0x3E: defined(0x3E, S2, PSK8, Rate5_6, false, false, FrameShort),
	0x3F: defined(0x3F, S2, PSK8, Rate5_6, true, false, FrameShort),
	0x40: defined(0x40, S2, PSK8, Rate8_9, false, false, FrameNormal),
	0x41: defined(0x41, S2, PSK8, Rate8_9, true, false, FrameNormal),
	0x42: defined(0x42, S2, PSK8, Rate8_9, false, false, FrameShort),
	0x43: defined(0x43, S2, PSK8, Rate8_9, true, false, FrameShort),
	0x44: defined(0x44, S2, PSK8, Rate9_10, false, false, FrameNormal),
	0x45: defined(0x45, S2, PSK8, Rate9_10, true, false, FrameNormal),
	0x46: partial(0x46, S2, Rate9_10, false, FrameShort),
	0x47: partial(0x47, S2, Rate9_10, true, FrameShort),
	0x48: defined(0x48, S2, APSK16, Rate2_3, false, false, FrameNormal),
	0x49: defined(0x49, S2, APSK16, Rate2_3, true, false, FrameNormal),
	0x4A: defined(0x4A, S2, APSK16, Rate2_3, false, false, FrameShort),
	0x4B: defined(0x4B, S2, APSK16, Rate2_3, true, false, FrameShort),
	0x4C: defined(0x4C, S2, APSK16, Rate3_4, false, false, FrameNormal),
	0x4D: defined(0x4D, S2, APSK16, Rate3_4, true, false, FrameNormal),
	0x4E: defined(0x4E, S2, APSK16, Rate3_4, false, false, FrameShort),
	0x4F: defined(0x4F, S2, APSK16, Rate3_4, true, false, FrameShort),
	0x50: defined(0x50, S2, APSK16, Rate4_5, false, false, FrameNormal),
	0x51: defined(0x51, S2, APSK16, Rate4_5, true, false, FrameNormal),
	0x52: defined(0x52, S2, APSK16, Rate4_5, false, false, FrameShort),
	0x53: defined(0x53, S2, APSK16, Rate4_5, true, false, FrameShort),
	0x54: defined(0x54, S2, APSK16, Rate5_6, false, false, FrameNormal),
	0x55: defined(0x55, S2, APSK16, Rate5_6, true, false, FrameNormal),
	0x56: defined(0x56, S2, APSK16, Rate5_6, false, false, FrameShort),
	0x57: defined(0x57, S2, APSK16, Rate5_6, true, false, FrameShort),
	0x58: defined(0x58, S2, APSK16, Rate8_9, false, false, FrameNormal),
	0x59: defined(0x59, S2, APSK16, Rate8_9, true, false, FrameNormal),
	0x5A: defined(0x5A, S2, APSK16, Rate8_9, false, false, FrameShort),
	0x5B: defined(0x5B, S2, APSK16, Rate8_9, true, false, FrameShort),
	0x5C: defined(0x5C, S2, APSK16, Rate9_10, false, false, FrameNormal),
	0x5D: defined(0x5D, S2, APSK16, Rate9_10, true, false, FrameNormal),
	0x5E: partial(0x5E, S2, Rate9_10, false, FrameShort),
	0x5F: partial(0x5F, S2, Rate9_10, true, FrameShort),
	0x60: defined(0x60, S2, APSK32, Rate3_4, false, false, FrameNormal),
	0x61: defined(0x61, S2, APSK32, Rate3_4, true, false, FrameNormal),
	0x62: defined(0x62, S2, APSK32, Rate3_4, false, false, FrameShort),
	0x63: defined(0x63, S2, APSK32, Rate3_4, true, false, FrameShort),
	0x64: defined(0x64, S2, APSK32, Rate4_5, false, false, FrameNormal),
	0x65: defined(0x65, S2, APSK32, Rate4_5, true, false, FrameNormal),
	0x66: defined(0x66, S2, APSK32, Rate4_5, false, false, FrameShort),
	0x67: defined(0x67, S2, APSK32, Rate4_5, true, false, FrameShort),
	0x68: defined(0x68, S2, APSK32, Rate5_6, false, false, FrameNormal),
	0x69: defined(0x69, S2, APSK32, Rate5_6, true, false, FrameNormal),
	0x6A: defined(0x6A, S2, APSK32, Rate5_6, false, false, FrameShort),
	0x6B: defined(0x6B, S2, APSK32, Rate5_6, true, false, FrameShort),
	0x6C: defined(0x6C, S2, APSK32, Rate8_9, false, false, FrameNormal),
	0x6D: defined(0x6D, S2, APSK32, Rate8_9, true, false, FrameNormal),
	0x6E: defined(0x6E, S2, APSK32, Rate8_9, false, false, FrameShort),
	0x6F: defined(0x6F, S2, APSK32, Rate8_9, true, false, FrameShort),
	0x70: defined(0x70, S2, APSK32, Rate9_10, false, false, FrameNormal),
	0x71: defined(0x71, S2, APSK32, Rate9_10, true, false, FrameNormal),
	0x72: defined(0x72, S2, APSK32, Rate9_10, false, false, FrameShort),
	0x73: defined(0x73, S2, APSK32, Rate9_10, true, false, FrameShort),
	0x74: reserved(0x74, S2, false, FrameNormal),
	0x75: reserved(0x75, S2, true, FrameNormal),
	0x76: reserved(0x76, S2, false, FrameShort),
	0x77: reserved(0x77, S2, true, FrameShort),
	0x78: reserved(0x78, S2, false, FrameNormal),
	0x79: reserved(0x79, S2, true, FrameNormal),
	0x7A: reserved(0x7A, S2, false, FrameShort),
	0x7B: reserved(0x7B, S2, true, FrameShort),
	0x7C: reserved(0x7C, S2, false, FrameNormal),
	0x7D: reserved(0x7D, S2, true, FrameNormal),
	0x7E: reserved(0x7E, S2, false, FrameShort),
	0x7F: reserved(0x7F, S2, true, FrameShort),
	0x80: reserved(0x80, S2X, false, FrameNormal),
	0x81: reserved(0x81, S2X, true, FrameNormal),
	0x82: reserved(0x82, S2X, false, FrameNormal),
	0x83: reserved(0x83, S2X, true, FrameNormal),
	0x84: defined(0x84, S2X, QPSK, Rate13_45, false, false, FrameNormal),
	0x85: defined(0x85, S2X, QPSK, Rate13_45, true, false, FrameNormal),
	0x86: defined(0x86, S2X, QPSK, Rate9_20, false, false, FrameNormal),
	0x87: defined(0x87, S2X, QPSK, Rate9_20, true, false, FrameNormal),
	0x88: defined(0x88, S2X, QPSK, Rate11_20, false, false, FrameNormal),
	0x89: defined(0x89, S2X, QPSK, Rate11_20, true, false, FrameNormal),
	0x8A: defined(0x8A, S2X, APSK8L, Rate5_9, false, false, FrameNormal),
	0x8B: defined(0x8B, S2X, APSK8L, Rate5_9, true, false, FrameNormal),
	0x8C: defined(0x8C, S2X, APSK8L, Rate26_45, false, false, FrameNormal),
	0x8D: defined(0x8D, S2X, APSK8L, Rate26_45, true, false, FrameNormal),
	0x8E: defined(0x8E, S2X, PSK8, Rate23_36, false, false, FrameNormal),
	0x8F: defined(0x8F, S2X, PSK8, Rate23_36, true, false, FrameNormal),
	0x90: defined(0x90, S2X, PSK8, Rate25_36, false, false, FrameNormal),
	0x91: defined(0x91, S2X, PSK8, Rate25_36, true, false, FrameNormal),
	0x92: defined(0x92, S2X, PSK8, Rate13_18, false, false, FrameNormal),
	0x93: defined(0x93, S2X, PSK8, Rate13_18, true, false, FrameNormal),
	0x94: defined(0x94, S2X, APSK16L, Rate1_2, false, false, FrameNormal),
	0x95: defined(0x95, S2X, APSK16L, Rate1_2, true, false, FrameNormal),
	0x96: defined(0x96, S2X, APSK16L, Rate8_15, false, false, FrameNormal),
	0x97: defined(0x97, S2X, APSK16L, Rate8_15, true, false, FrameNormal),
	0x98: defined(0x98, S2X, APSK16L, Rate5_9, false, false, FrameNormal),
	0x99: defined(0x99, S2X, APSK16L, Rate5_9, true, false, FrameNormal),
	0x9A: defined(0x9A, S2X, APSK16, Rate26_45, false, false, FrameNormal),
	0x9B: defined(0x9B, S2X, APSK16, Rate26_45, true, false, FrameNormal),
	0x9C: defined(0x9C, S2X, APSK16, Rate3_5, false, false, FrameNormal),
	0x9D: defined(0x9D, S2X, APSK16, Rate3_5, true, false, FrameNormal),
	0x9E: defined(0x9E, S2X, APSK16L, Rate3_5, false, false, FrameNormal),
	0x9F: defined(0x9F, S2X, APSK16L, Rate3_5, true, false, FrameNormal),
	0xA0: defined(0xA0, S2X, APSK16, Rate28_45, false, false, FrameNormal),
	0xA1: defined(0xA1, S2X, APSK16, Rate28_45, true, false, FrameNormal),
	0xA2: defined(0xA2, S2X, APSK16, Rate23_36, false, false, FrameNormal),
	0xA3: defined(0xA3, S2X, APSK16, Rate23_36, true, false, FrameNormal),
	0xA4: defined(0xA4, S2X, APSK16L, Rate2_3, false, false, FrameNormal),
	0xA5: defined(0xA5, S2X, APSK16L, Rate2_3, true, false, FrameNormal),
	0xA6: defined(0xA6, S2X, APSK16, Rate8_15, false, false, FrameNormal),
	0xA7: defined(0xA7, S2X, APSK16, Rate8_15, true, false, FrameNormal),
	0xA8: defined(0xA8, S2X, APSK16, Rate13_18, false, false, FrameNormal),
	0xA9: defined(0xA9, S2X, APSK16, Rate13_18, true, false, FrameNormal),
	0xAA: defined(0xAA, S2X, APSK16, Rate7_9, false, false, FrameNormal),
	0xAB: defined(0xAB, S2X, APSK16, Rate7_9, true, false, FrameNormal),
	0xAC: defined(0xAC, S2X, APSK16, Rate77_90, false, false, FrameNormal),
	0xAD: defined(0xAD, S2X, APSK16, Rate77_90, true, false, FrameNormal),
	0xAE: defined(0xAE, S2X, APSK32L, Rate2_3, false, false, FrameNormal),
	0xAF: defined(0xAF, S2X, APSK32L, Rate2_3, true, false, FrameNormal),
	0xB0: reserved(0xB0, S2X, false, FrameNormal),
	0xB1: reserved(0xB1, S2X, true, FrameNormal),
	0xB2: defined(0xB2, S2X, APSK32, Rate32_45, false, false, FrameNormal),
	0xB3: defined(0xB3, S2X, APSK32, Rate32_45, true, false, FrameNormal),
	0xB4: defined(0xB4, S2X, APSK32, Rate11_15, false, false, FrameNormal),
	0xB5: defined(0xB5, S2X, APSK32, Rate11_15, true, false, FrameNormal),
	0xB6: defined(0xB6, S2X, APSK32, Rate7_9, false, false, FrameNormal),
	0xB7: defined(0xB7, S2X, APSK32, Rate7_9, true, false, FrameNormal),
	0xB8: defined(0xB8, S2X, APSK64L, Rate32_45, false, false, FrameNormal),
	0xB9: defined(0xB9, S2X, APSK64L, Rate32_45, true, false, FrameNormal),
	0xBA: defined(0xBA, S2X, APSK64, Rate11_15, false, false, FrameNormal),
	0xBB: defined(0xBB, S2X, APSK64, Rate11_15, true, false, FrameNormal),
	0xBC: reserved(0xBC, S2X, false, FrameNormal),
	0xBD: reserved(0xBD, S2X, true, FrameNormal),
	0xBE: defined(0xBE, S2X, APSK64, Rate7_9, false, false, FrameNormal),
	0xBF: reserved(0xBF, S2X, true, FrameNormal),
	0xC0: reserved(0xC0, S2X, false, FrameNormal),
	0xC1: reserved(0xC1, S2X, true, FrameNormal),
	0xC2: defined(0xC2, S2X, APSK64, Rate4_5, false, false, FrameNormal),
	0xC3: defined(0xC3, S2X, APSK64, Rate4_5, true, false, FrameNormal),
	0xC4: reserved(0xC4, S2X, false, FrameNormal),
	0xC5: reserved(0xC5, S2X, true, FrameNormal),
	0xC6: defined(0xC6, S2X, APSK64, Rate5_6, false, false, FrameNormal),
	0xC7: defined(0xC7, S2X, APSK64, Rate5_6, true, false, FrameNormal),
	0xC8: defined(0xC8, S2X, APSK128, Rate3_4, false, false, FrameNormal),
	0xC9: defined(0xC9, S2X, APSK128, Rate3_4, true, false, FrameNormal),
	0xCA: defined(0xCA, S2X, APSK128, Rate7_9, false, false, FrameNormal),
	0xCB: defined(0xCB, S2X, APSK128, Rate7_9, true, false, FrameNormal),
	0xCC: defined(0xCC, S2X, APSK256L, Rate29_45, false, false, FrameNormal),
	0xCD: defined(0xCD, S2X, APSK256L, Rate29_45, true, false, FrameNormal),
	0xCE: defined(0xCE, S2X, APSK256L, Rate2_3, false, false, FrameNormal),
	0xCF: defined(0xCF, S2X, APSK256L, Rate2_3, true, false, FrameNormal),
	0xD0: defined(0xD0, S2X, APSK256L, Rate31_45, false, false, FrameNormal),
	0xD1: defined(0xD1, S2X, APSK256L, Rate31_45, true, false, FrameNormal),
	0xD2: defined(0xD2, S2X, APSK256, Rate32_45, false, false, FrameNormal),
	0xD3: defined(0xD3, S2X, APSK256, Rate32_45, true, false, FrameNormal),
	0xD4: defined(0xD4, S2X, APSK256L, Rate11_15, false, false, FrameNormal),
	0xD5: defined(0xD5, S2X, APSK256L, Rate11_15, true, false, FrameNormal),
	0xD6: defined(0xD6, S2X, APSK256, Rate3_4, false, false, FrameNormal),
	0xD7: defined(0xD7, S2X, APSK256, Rate3_4, true, false, FrameShort),
	0xD8: defined(0xD8, S2X, QPSK, Rate11_45, false, false, FrameShort),
	0xD9: defined(0xD9, S2X, QPSK, Rate11_45, true, false, FrameShort),
	0xDA: defined(0xDA, S2X, QPSK, Rate4_15, false, false, FrameShort),
	0xDB: defined(0xDB, S2X, QPSK, Rate4_15, true, false, FrameShort),
	0xDC: defined(0xDC, S2X, QPSK, Rate14_45, false, false, FrameShort),
	0xDD: defined(0xDD, S2X, QPSK, Rate14_45, true, false, FrameShort),
	0xDE: defined(0xDE, S2X, QPSK, Rate7_15, false, false, FrameShort),
	0xDF: defined(0xDF, S2X, QPSK, Rate7_15, true, false, FrameShort),
	0xE0: defined(0xE0, S2X, QPSK, Rate8_15, false, false, FrameShort),
	0xE1: defined(0xE1, S2X, QPSK, Rate8_15, true, false, FrameShort),
	0xE2: defined(0xE2, S2X, QPSK, Rate32_45, false, false, FrameShort),
	0xE3: defined(0xE3, S2X, QPSK, Rate32_45, true, false, FrameShort),
	0xE4: defined(0xE4, S2X, PSK8, Rate7_15, false, false, FrameShort),
	0xE5: defined(0xE5, S2X, PSK8, Rate7_15, true, false, FrameShort),
	0xE6: defined(0xE6, S2X, PSK8, Rate8_15, false, false, FrameShort),
	0xE7: defined(0xE7, S2X, PSK8, Rate8_15, true, false, FrameShort),
	0xE8: defined(0xE8, S2X, PSK8, Rate26_45, false, false, FrameShort),
	0xE9: defined(0xE9, S2X, PSK8, Rate26_45, true, false, FrameShort),
	0xEA: defined(0xEA, S2X, PSK8, Rate32_45, false, false, FrameShort),
	0xEB: defined(0xEB, S2X, PSK8, Rate32_45, true, false, FrameShort),
	0xEC: defined(0xEC, S2X, APSK16, Rate7_15, false, false, FrameShort),
	0xED: defined(0xED, S2X, APSK16, Rate7_15, true, false, FrameShort),
	0xEE: defined(0xEE, S2X, APSK16, Rate8_15, false, false, FrameShort),
	0xEF: defined(0xEF, S2X, APSK16, Rate8_15, true, false, FrameShort),
	0xF0: defined(0xF0, S2X, APSK16, Rate26_45, false, false, FrameShort),
	0xF1: defined(0xF1, S2X, APSK16, Rate26_45, true, false, FrameShort),
	0xF2: defined(0xF2, S2X, APSK16, Rate3_5, false, false, FrameShort),
	0xF3: defined(0xF3, S2X, APSK16, Rate3_5, true, false, FrameShort),
	0xF4: defined(0xF4, S2X, APSK16, Rate32_45, false, false, FrameShort),
	0xF5: defined(0xF5, S2X, APSK16, Rate32_45, true, false, FrameShort),
	0xF6: defined(0xF6, S2X, APSK32, Rate2_3, false, false, FrameShort),
	0xF7: defined(0xF7, S2X, APSK32, Rate2_3, true, false, FrameShort),
	0xF8: defined(0xF8, S2X, APSK32, Rate32_45, false, false, FrameShort),
	0xF9: defined(0xF9, S2X, APSK32, Rate32_45, true, false, FrameShort),
	0xFA: reserved(0xFA, S2X, false, FrameNormal),
	0xFB: reserved(0xFB, S2X, true, FrameNormal),
	0xFC: reserved(0xFC, S2X, false, FrameNormal),
	0xFD: reserved(0xFD, S2X, true, FrameNormal),
	0xFE: reserved(0xFE, S2X, false, FrameNormal),
	0xFF: reserved(0xFF, S2X, true, FrameNormal),
}
