package synth

import (
	"context"
	"testing"

	"github.com/rjboer/GoDVB/internal/regbus"
	"github.com/rjboer/GoDVB/internal/tables"
)

func TestComputePLLKnownValues(t *testing.T) {
	p := ComputePLL(1200, 27000)
	if p.N1 != 688 || p.N2 != 688 {
		t.Fatalf("N = %d/%d, want 688", p.N1, p.N2)
	}
	if p.Reg27 != 0x12 || p.Reg28 != 0xb0 || p.Reg29 != 0x12 || p.Reg2A != 0xb0 {
		t.Fatalf("dividers = %#x %#x %#x %#x", p.Reg27, p.Reg28, p.Reg29, p.Reg2A)
	}
	if p.Reg36 != 10 || p.Reg39 != 10 || p.Reg2C != 0 || p.Reg41 != 0x82 || p.DivideBy2 {
		t.Fatalf("refs = %+v", p)
	}

	p = ComputePLL(1600, 27000)
	if p.N1 != 1088 || p.Reg27 != 0x04 || p.Reg28 != 0x40 || p.Reg2C != 0x02 || p.Reg36 != 19 {
		t.Fatalf("1600 MHz = %+v", p)
	}

	p = ComputePLL(1200, 24000)
	if p.Reg41 != 0x8a || p.Reg36 != 8 {
		t.Fatalf("24 MHz crystal = %+v", p)
	}
}

func TestComputePLLDeterministic(t *testing.T) {
	for mhz := uint32(950); mhz <= 2150; mhz += 7 {
		for _, xtal := range []uint32{24000, 27000} {
			a, b := ComputePLL(mhz, xtal), ComputePLL(mhz, xtal)
			if a != b {
				t.Fatalf("%d MHz / %d kHz differs: %+v vs %+v", mhz, xtal, a, b)
			}
			if a.Reg27 > 0x7f || a.Reg29 > 0x7f {
				t.Fatalf("%d MHz: divider high byte exceeds 7 bits", mhz)
			}
		}
	}
}

func TestPLLApplyOrder(t *testing.T) {
	ctx := context.Background()
	tuner := regbus.NewMock()
	tuner.Set(0x3d, 0xff)
	if err := ComputePLL(1200, 27000).Apply(ctx, tuner); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if tuner.Get(0x3d) != 0x7f {
		t.Fatalf("0x3d = %#x", tuner.Get(0x3d))
	}
	log := tuner.Log()
	if !log[0].Write || log[0].Addr != 0x41 {
		t.Fatalf("first access = %v", log[0])
	}
	if tuner.Get(0x27) != 0x12 || tuner.Get(0x28) != 0xb0 {
		t.Fatalf("divider not written")
	}
}

func TestSelectMasterClock(t *testing.T) {
	c := SelectMasterClock(1200, 27500)
	if c.KHz != 96000 || c.Reg16 != 96 || ADCRegister(c.KHz) != 0x44 {
		t.Fatalf("1200 MHz = %+v", c)
	}
	if c := SelectMasterClock(1200, 46000); c.KHz != 99000 || c.Reg16 != 100 {
		t.Fatalf("high rate = %+v", c)
	}
	// 96 is a multiple of both: every offset is zero and the first wins.
	if c := SelectMasterClock(0, 1000); c.KHz != 96000 {
		t.Fatalf("zero offsets = %+v", c)
	}
}

func TestSelectMasterClockIdempotent(t *testing.T) {
	for mhz := uint32(950); mhz <= 2150; mhz++ {
		for _, sr := range []uint32{1000, 27500, 45000, 47000} {
			if SelectMasterClock(mhz, sr) != SelectMasterClock(mhz, sr) {
				t.Fatalf("%d MHz %d kS/s not idempotent", mhz, sr)
			}
		}
	}
}

func TestApplyMasterClock(t *testing.T) {
	ctx := context.Background()
	tuner := regbus.NewMock()
	tuner.Set(0x15, 0x6d)
	if err := ApplyMasterClock(ctx, tuner, tables.MasterClocks[1]); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if tuner.Get(0x15) != 0x6c || tuner.Get(0x16) != 92 {
		t.Fatalf("0x15=%#x 0x16=%d", tuner.Get(0x15), tuner.Get(0x16))
	}
	if w := tuner.Writes(0x17); len(w) != 2 || w[0] != 0xc1 || w[1] != 0x81 {
		t.Fatalf("0x17 writes = %v", w)
	}
}

func TestTapDecomposition(t *testing.T) {
	for _, serial := range []bool{false, true} {
		floor := MinTap(serial)
		for div := uint32(0); div <= 64; div++ {
			stages, raw := Decompose(div, serial)
			if stages < 2 || stages > 4 {
				t.Fatalf("div %d: %d stages", div, stages)
			}
			if serial && stages == 3 {
				t.Fatalf("serial mode used 3 stages for %d", div)
			}
			var sum uint32
			for _, f := range raw {
				sum += f
			}
			if sum != div {
				t.Fatalf("div %d serial=%v: taps %v sum %d", div, serial, raw, sum)
			}
			for i, f := range Snap(raw, serial) {
				if f != 0 && uint32(f) < floor {
					t.Fatalf("div %d tap %d = %d in forbidden range", div, i, f)
				}
				if f > 15 {
					t.Fatalf("div %d tap %d = %d does not fit 4 bits", div, i, f)
				}
			}
		}
	}
}

func TestSnapBoundaries(t *testing.T) {
	got := Snap([4]uint32{16, 8, 1, 0}, false)
	if got != [4]byte{0, 9, 9, 0} {
		t.Fatalf("parallel snap = %v", got)
	}
	got = Snap([4]uint32{16, 8, 1, 0}, true)
	if got != [4]byte{0, 8, 8, 0} {
		t.Fatalf("serial snap = %v", got)
	}
	if _, raw := Decompose(65, false); raw != [4]uint32{16, 16, 16, 16} {
		t.Fatalf("saturation = %v", raw)
	}
}

func TestPlanTSClockRoundTrip(t *testing.T) {
	plan := PlanTSClock(144000, 0x00, 96, TSParallel)
	if plan.FeedbackDiv != 128 || plan.Div != 32 || plan.Stages != 2 {
		t.Fatalf("plan = %+v", plan)
	}
	if plan.Raw != [4]uint32{0, 16, 16, 0} || plan.Taps != [4]byte{0, 0, 0, 0} {
		t.Fatalf("taps = %v / %v", plan.Raw, plan.Taps)
	}
	r1d, r1e, r1f := plan.Registers(0x02)
	if r1d != 0x81 || r1e != 0 || r1f != 0 {
		t.Fatalf("regs = %#x %#x %#x", r1d, r1e, r1f)
	}
	if got := ReadTSClock(0x00, 96, r1d, r1e, r1f); got != 144000 {
		t.Fatalf("readback = %d", got)
	}
}

func TestSetTSClockOnTuner(t *testing.T) {
	ctx := context.Background()
	tuner := regbus.NewMock()
	tuner.Set(0x16, 96)
	tuner.Set(0x1d, 0x03)
	plan, err := SetTSClock(ctx, tuner, 96000, TSSerial)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	// 9000*128*4/96000 = 48 -> four stages in serial mode.
	if plan.Div != 48 || plan.Stages != 4 {
		t.Fatalf("plan = %+v", plan)
	}
	got, err := GetTSClock(ctx, tuner)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != 96000 {
		t.Fatalf("readback = %d", got)
	}
}

func TestBaseband(t *testing.T) {
	if got := BasebandBandwidth(27500, 0); got != 19678 {
		t.Fatalf("27.5 MS/s = %d", got)
	}
	if got := BasebandRegister(27500, 0); got != 19 {
		t.Fatalf("reg40 = %d", got)
	}
	if got := BasebandBandwidth(2000, LPFOffset(2000)); got != 6285 {
		t.Fatalf("2 MS/s = %d", got)
	}
	if got := BasebandBandwidth(100, 0); got != 6000 {
		t.Fatalf("floor = %d", got)
	}
	if got := BasebandBandwidth(90000, 0); got != 43000 {
		t.Fatalf("ceiling = %d", got)
	}
	if BandwidthRegister(1000) != 6 || BandwidthRegister(20000) != 20 || BandwidthRegister(50000) != 43 {
		t.Fatalf("explicit bandwidth register")
	}
	if LPFOffset(4999) != 3000 || LPFOffset(5000) != 0 {
		t.Fatalf("lpf offset threshold")
	}
}

func TestSymbolRateRegisters(t *testing.T) {
	if got := SymbolRateRegister(27500, 96000); got != 0x4955 {
		t.Fatalf("sr reg = %#x", got)
	}
	if got := SymbolRateFromRegister(0x4955, 96000); got != 27499 {
		t.Fatalf("sr readback = %d", got)
	}
	if got := LPFOffsetRegister(3000, 96000); got != 2048 {
		t.Fatalf("lpf reg = %d", got)
	}
	if got := LPFOffsetRegister(0, 96000); got != 0 {
		t.Fatalf("zero lpf reg = %d", got)
	}
}

func TestCarrierOffset(t *testing.T) {
	// -1024 and +1024 counts at 96 MHz.
	if got := CarrierOffsetKHz(0xfc00, 0x0400, 96000); got != -3000 {
		t.Fatalf("offset = %d", got)
	}
}

func TestDataRateAndDivider(t *testing.T) {
	dr := DataRate(tables.S2, tables.QPSK, tables.Rate2_3, 27500)
	if dr != 27500*2*2/8/3 {
		t.Fatalf("S2 data rate = %d", dr)
	}
	if got := DataRate(tables.S2, tables.QPSK, tables.RateUndefined, 27500); got != dr {
		t.Fatalf("undefined rate should default to 2/3, got %d", got)
	}
	if got := DataRate(tables.S1, tables.QPSK, tables.Rate1_2, 27500); got != 27500*2*1/2/8 {
		t.Fatalf("S1 data rate = %d", got)
	}

	if got := DivideRatio(144000, 100, TSParallel, true); got != 24 {
		t.Fatalf("clamped ratio = %d", got)
	}
	// 96000 / (7300*105/100=7665) = 12 -> forbidden in parallel S2.
	if got := DivideRatio(96000, 7300, TSParallel, true); got != 11 {
		t.Fatalf("parallel forbidden = %d", got)
	}
	if got := DivideRatio(96000, 7300, TSParallel, false); got != 12 {
		t.Fatalf("S1 keeps 12, got %d", got)
	}
	if got := DivideRatio(96000, 6300, TSCommon, true); got != 13 {
		t.Fatalf("common 14 -> %d", got)
	}
	fe, ea := DivideRegisters(11)
	if fe != 1 || ea != 0x05 {
		t.Fatalf("divide regs = %#x %#x", fe, ea)
	}
}

func TestSelectXM(t *testing.T) {
	// 27.5 MS/s: C = ((27500*135/200)+2000)*110/100 = 22618.
	got := SelectXM(1200000, 27500, 96, 96000)
	if got != 96000 {
		t.Fatalf("xm = %d", got)
	}
	if got := SelectXM(1200000, 27500, 96, 200000); got != 144000 {
		t.Fatalf("nothing eligible should fall back to last entry, got %d", got)
	}
}
