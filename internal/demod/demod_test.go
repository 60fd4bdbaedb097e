package demod

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rjboer/GoDVB/internal/auxclk"
	"github.com/rjboer/GoDVB/internal/clock"
	"github.com/rjboer/GoDVB/internal/gold"
	"github.com/rjboer/GoDVB/internal/logging"
	"github.com/rjboer/GoDVB/internal/regbus"
	"github.com/rjboer/GoDVB/internal/tables"
)

type fakeAux struct {
	hz  []uint32
	err error
}

func (f *fakeAux) SetFrequency(_ context.Context, hz uint32) error {
	f.hz = append(f.hz, hz)
	return f.err
}

type fakeSpeed uint32

func (s fakeSpeed) TransportSpeed(context.Context) (uint32, error) { return uint32(s), nil }

type rig struct {
	d     *Demod
	demod *regbus.Mock
	tuner *regbus.Mock
	clk   *clock.Fake
}

func newRig(cfg Config) *rig {
	r := &rig{
		demod: regbus.NewMock(),
		tuner: regbus.NewMock(),
		clk:   clock.NewFake(time.Unix(0, 0)),
	}
	r.demod.Port(0xb0)
	r.d = New(r.demod, r.tuner, cfg, r.clk, logging.Nop())
	return r
}

// reportS2 makes demod 0x08 read back with the DVB-S2 status bit set.
func (r *rig) reportS2() {
	r.demod.OnWrite(0x08, func(v byte) byte { return v | 0x08 })
	r.demod.Set(0x08, r.demod.Get(0x08)|0x08)
}

func newReadyRig(t *testing.T, cfg Config) *rig {
	t.Helper()
	r := newRig(cfg)
	r.demod.Set(0xb9, 0x42)
	if err := r.d.Bringup(context.Background(), FirmwareBytes(make([]byte, 70))); err != nil {
		t.Fatalf("bringup: %v", err)
	}
	r.demod.ResetLog()
	r.tuner.ResetLog()
	r.clk.ResetSleeps()
	return r
}

func s2Request() TuneRequest {
	return TuneRequest{
		FrequencyKHz: 1200000,
		SymbolRate:   27500000,
		System:       tables.S2,
		StreamID:     StreamID(NoStreamFilter),
	}
}

func TestBringupDownloadsFirmwareInChunks(t *testing.T) {
	r := newRig(Config{})
	r.demod.Set(0xb9, 0x42)
	if err := r.d.Bringup(context.Background(), FirmwareBytes(make([]byte, 70))); err != nil {
		t.Fatalf("bringup: %v", err)
	}
	chunks := r.demod.Bursts(0xb0)
	if len(chunks) != 3 || len(chunks[0]) != 32 || len(chunks[1]) != 32 || len(chunks[2]) != 6 {
		t.Fatalf("unexpected firmware chunks: %d", len(chunks))
	}
	w := r.demod.Writes(0xb2)
	if len(w) != 2 || w[0] != 0x01 || w[1] != 0x00 {
		t.Fatalf("download window writes %x", w)
	}
	if !r.d.Ready() || r.d.FirmwareVersion() != 0x42 {
		t.Fatalf("ready=%v version=%#x", r.d.Ready(), r.d.FirmwareVersion())
	}
}

func TestBringupRejectsSilentFirmware(t *testing.T) {
	r := newRig(Config{})
	err := r.d.Bringup(context.Background(), FirmwareBytes{1, 2, 3})
	if !errors.Is(err, ErrFirmware) {
		t.Fatalf("expected ErrFirmware, got %v", err)
	}
	if r.d.Ready() {
		t.Fatalf("session must not be ready")
	}
}

func TestBringupProgramsBootCIClock(t *testing.T) {
	r := newRig(Config{HasCI: true})
	aux := &fakeAux{}
	r.d.SetAuxClock(aux, fakeSpeed(0))
	r.demod.Set(0xb9, 1)
	if err := r.d.Bringup(context.Background(), FirmwareBytes{0}); err != nil {
		t.Fatalf("bringup: %v", err)
	}
	if len(aux.hz) != 1 || aux.hz[0] != auxclk.BootHz {
		t.Fatalf("aux clock calls %v", aux.hz)
	}
}

func TestTuneBeforeBringup(t *testing.T) {
	r := newRig(Config{})
	if _, err := r.d.Tune(context.Background(), s2Request()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestTuneRejectsParametersBeforeWriting(t *testing.T) {
	r := newReadyRig(t, Config{})
	cases := []TuneRequest{
		{FrequencyKHz: 900000},
		{FrequencyKHz: 2200000},
		{FrequencyKHz: 1200000, SymbolRate: 50000},
		{FrequencyKHz: 1200000, SymbolRate: 60000000},
		{FrequencyKHz: 1200000, ScramblingIndex: 0x40000},
		{FrequencyKHz: 1200000, System: tables.DeliverySystem(9)},
		{FrequencyKHz: 1200000, System: tables.DeliverySystem(-1)},
		{FrequencyKHz: 1200000, Modulation: tables.Modulation(42)},
		{FrequencyKHz: 1200000, Modulation: tables.Modulation(-1)},
		{FrequencyKHz: 1200000, System: tables.S1, Modulation: tables.PSK8},
	}
	for _, req := range cases {
		_, err := r.d.Tune(context.Background(), req)
		if !IsParameter(err) {
			t.Fatalf("%+v: expected parameter error, got %v", req, err)
		}
	}
	if n := len(r.demod.Log()) + len(r.tuner.Log()); n != 0 {
		t.Fatalf("rejected requests touched %d registers", n)
	}
}

func TestTuneLocksDVBS2(t *testing.T) {
	r := newReadyRig(t, Config{})
	r.reportS2()
	r.demod.Script(0x0d, 0, 0, 0, 0, 0, 0, 0, 0, 0, LockS2)
	r.demod.Script(0x18, 0x00)
	r.demod.Script(0x19, 0x19)

	res, err := r.d.Tune(context.Background(), s2Request())
	if err != nil {
		t.Fatalf("tune: %v", err)
	}
	if res.State != Locked || res.Iterations != 10 || res.LockByte != LockS2 {
		t.Fatalf("state=%v iterations=%d lock=%#x", res.State, res.Iterations, res.LockByte)
	}
	if r.demod.Reads(0x0d) != 10 {
		t.Fatalf("lock register read %d times", r.demod.Reads(0x0d))
	}
	if res.FrequencyKHz != 1200000 || res.LPFOffsetKHz != 0 {
		t.Fatalf("freq=%d lpf=%d", res.FrequencyKHz, res.LPFOffsetKHz)
	}
	if res.MasterClock != r.d.MasterClockKHz() {
		t.Fatalf("master clock %d vs %d", res.MasterClock, r.d.MasterClockKHz())
	}
	info := res.Info
	if info.System != tables.S2 || info.Modulation != tables.QPSK || info.Rate != tables.Rate2_3 ||
		!info.Pilot || info.Frame != tables.FrameNormal {
		t.Fatalf("unexpected channel %v", info)
	}
	if res.ScramblingSeq != [3]byte{1, 0, 0} {
		t.Fatalf("root code bytes % x", res.ScramblingSeq[:])
	}
	if len(r.demod.Writes(0x07)) == 0 || r.demod.Writes(0x07)[0] != 0x80 {
		t.Fatalf("attempt must start with a reset pulse")
	}
}

func TestTuneLowSymbolRateOffsetsLO(t *testing.T) {
	r := newReadyRig(t, Config{})
	r.demod.Script(0x0d, LockS1)
	req := TuneRequest{FrequencyKHz: 1200000, SymbolRate: 2000000, System: tables.S1, StreamID: StreamID(NoStreamFilter)}
	res, err := r.d.Tune(context.Background(), req)
	if err != nil {
		t.Fatalf("tune: %v", err)
	}
	if res.LPFOffsetKHz != 3000 || res.FrequencyKHz != 1203000 {
		t.Fatalf("lpf=%d freq=%d", res.LPFOffsetKHz, res.FrequencyKHz)
	}
	if res.State != Locked || res.Iterations != 1 {
		t.Fatalf("state=%v iterations=%d", res.State, res.Iterations)
	}
	if res.Info.System != tables.S1 || res.Info.Rate != tables.Rate7_8 || res.Info.VCM != -1 {
		t.Fatalf("unexpected channel %v", res.Info)
	}
}

func TestTuneTimesOut(t *testing.T) {
	r := newReadyRig(t, Config{})
	r.demod.Script(0x0d, 0x83)
	res, err := r.d.Tune(context.Background(), s2Request())
	if err != nil {
		t.Fatalf("timeout must not be an error: %v", err)
	}
	if res.State != TimedOut || res.Iterations != defaultAttempts {
		t.Fatalf("state=%v iterations=%d", res.State, res.Iterations)
	}
	if !res.Viterbi {
		t.Fatalf("viterbi bit not reported")
	}
	if r.clk.Elapsed() < defaultAttempts*defaultPoll {
		t.Fatalf("polling slept only %v", r.clk.Elapsed())
	}
	if len(r.demod.Writes(0xf5)) != 1 {
		t.Fatalf("isi register must only be cleared")
	}

	// a new attempt may follow a timeout
	r.demod.Script(0x0d, LockS2)
	res, err = r.d.Tune(context.Background(), s2Request())
	if err != nil || res.State != Locked {
		t.Fatalf("second attempt: %v %v", res.State, err)
	}
}

func TestTuneSelectsRequestedISI(t *testing.T) {
	r := newReadyRig(t, Config{})
	r.reportS2()
	r.demod.Script(0x0d, LockS2)
	r.demod.Script(0xf1, 3)
	r.demod.Script(0xf3, 4, 7, 9)
	req := s2Request()
	req.StreamID = NewStreamID(7, 0, 0)

	res, err := r.d.Tune(context.Background(), req)
	if err != nil {
		t.Fatalf("tune: %v", err)
	}
	if len(res.ISIs) != 3 || res.SelectedISI != 7 {
		t.Fatalf("isis=%v selected=%d", res.ISIs, res.SelectedISI)
	}
	w := r.demod.Writes(0xf5)
	if w[len(w)-1] != 7 {
		t.Fatalf("isi write %v", w)
	}
}

func TestTuneFallsBackToFirstISI(t *testing.T) {
	r := newReadyRig(t, Config{})
	r.reportS2()
	r.demod.Script(0x0d, LockS2)
	r.demod.Script(0xf1, 2)
	r.demod.Script(0xf3, 4, 9)
	req := s2Request()
	req.StreamID = NewStreamID(5, 0, 0)

	res, err := r.d.Tune(context.Background(), req)
	if err != nil {
		t.Fatalf("tune: %v", err)
	}
	if res.SelectedISI != 4 {
		t.Fatalf("selected %d", res.SelectedISI)
	}
}

func TestTuneTransportFailure(t *testing.T) {
	r := newReadyRig(t, Config{})
	r.demod.FailOn(0x61, false, true)
	res, err := r.d.Tune(context.Background(), s2Request())
	var te *regbus.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if res.State != Failed {
		t.Fatalf("state %v", res.State)
	}
}

func TestScramblingBytes(t *testing.T) {
	if got := ScramblingBytes(PLSSelection{Mode: 0, Code: 0x2abcd}); got != [3]byte{0xcd, 0xab, 0x02} {
		t.Fatalf("root bytes % x", got[:])
	}
	for _, idx := range []uint32{0, 1, 1000, 262142} {
		if ScramblingBytes(PLSSelection{Mode: 1, Code: idx}) != gold.Reference(idx) {
			t.Fatalf("gold index %d differs from reference", idx)
		}
	}
}

func TestSelectPLS(t *testing.T) {
	sel := TuneRequest{StreamID: StreamID(NoStreamFilter)}.SelectPLS()
	if sel != (PLSSelection{Code: 1}) {
		t.Fatalf("unfiltered %+v", sel)
	}
	sel = TuneRequest{StreamID: NewStreamID(3, 1, 500)}.SelectPLS()
	if sel != (PLSSelection{ISI: 3, Mode: 1, Code: 500}) {
		t.Fatalf("filtered %+v", sel)
	}
	sel = TuneRequest{StreamID: StreamID(NoStreamFilter), ScramblingIndex: 42}.SelectPLS()
	if sel.Mode != 1 || sel.Code != 42 {
		t.Fatalf("scrambling override %+v", sel)
	}
}

func TestStreamIDFields(t *testing.T) {
	id := NewStreamID(0x12, 2, 0x3ffff)
	if id.ISI() != 0x12 || id.PLSMode() != 2 || id.PLSCode() != 0x3ffff || !id.Filtered() {
		t.Fatalf("fields of %#x", uint32(id))
	}
	if StreamID(NoStreamFilter).String() != "none" {
		t.Fatalf("unfiltered string")
	}
}

func TestValidateDefaults(t *testing.T) {
	req := TuneRequest{FrequencyKHz: 1200000}
	if err := req.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if req.SymbolRate != DefaultSymbolRate || req.System != tables.Auto {
		t.Fatalf("defaults %+v", req)
	}
}

func TestValidateEnums(t *testing.T) {
	cases := map[string]struct {
		req   TuneRequest
		field string
	}{
		"system out of range":     {TuneRequest{FrequencyKHz: 1200000, System: tables.Auto + 1}, "system"},
		"modulation out of range": {TuneRequest{FrequencyKHz: 1200000, Modulation: tables.APSK256L + 1}, "modulation"},
		"dvb-s 16apsk":            {TuneRequest{FrequencyKHz: 1200000, System: tables.S1, Modulation: tables.APSK16}, "modulation"},
	}
	for name, tc := range cases {
		var pe *ParameterError
		if err := tc.req.Validate(); !errors.As(err, &pe) || pe.Field != tc.field {
			t.Fatalf("%s: got %v, want %s error", name, err, tc.field)
		}
	}
	ok := []TuneRequest{
		{FrequencyKHz: 1200000, System: tables.S1, Modulation: tables.QPSK},
		{FrequencyKHz: 1200000, System: tables.S2X, Modulation: tables.APSK256L},
		{FrequencyKHz: 1200000, Modulation: tables.ModulationUndefined},
	}
	for _, req := range ok {
		if err := req.Validate(); err != nil {
			t.Fatalf("%+v: %v", req, err)
		}
	}
}

func TestAcquisitionTransitions(t *testing.T) {
	a := NewAcquisition(3)
	if a.StartPolling() == nil {
		t.Fatalf("polling must follow programming")
	}
	if err := a.Begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if a.Begin() == nil {
		t.Fatalf("begin while programming must fail")
	}
	if a.Observe(LockS2) != Programming {
		t.Fatalf("observation outside polling changed state")
	}
	if err := a.StartPolling(); err != nil {
		t.Fatalf("start polling: %v", err)
	}
	a.Observe(0x00)
	a.Observe(0x0f)
	if a.Observe(0x01) != TimedOut || a.Iterations() != 3 || a.Viterbi() {
		t.Fatalf("state=%v iterations=%d", a.State(), a.Iterations())
	}
	a.Fail()
	if a.State() != TimedOut {
		t.Fatalf("terminal state overwritten")
	}
	if err := a.Begin(); err != nil || a.Iterations() != 0 {
		t.Fatalf("restart: %v", err)
	}
	_ = a.StartPolling()
	if a.Observe(LockS1) != Locked || a.LastByte() != LockS1 {
		t.Fatalf("s1 lock not recognised")
	}
}

func TestIsLocked(t *testing.T) {
	if !IsLocked(tables.S1, 0xf7) || IsLocked(tables.S1, 0x8f) {
		t.Fatalf("s1 mask")
	}
	if !IsLocked(tables.S2, 0xff) || IsLocked(tables.S2, 0x0f) || !IsLocked(tables.S2X, 0x8f) {
		t.Fatalf("s2 mask")
	}
}

func TestPollStatusLocked(t *testing.T) {
	r := newReadyRig(t, Config{})
	r.reportS2()
	r.demod.Script(0x0d, LockS2)
	r.demod.Script(0x19, 0x19)
	r.demod.Script(0x6d, 0x55)
	r.demod.Script(0x6e, 0x49)
	if _, err := r.d.Tune(context.Background(), s2Request()); err != nil {
		t.Fatalf("tune: %v", err)
	}
	r.demod.ResetLog()

	for i := 0; i < 2; i++ {
		st, err := r.d.PollStatus(context.Background())
		if err != nil {
			t.Fatalf("poll %d: %v", i, err)
		}
		if !st.Locked || !st.CNRValid || st.System != tables.S2 {
			t.Fatalf("poll %d: %+v", i, st)
		}
		if st.Info.Rate != tables.Rate2_3 {
			t.Fatalf("poll %d: channel %v", i, st.Info)
		}
	}
	if n := len(r.demod.Writes(0xea)); n != 1 {
		t.Fatalf("clock ratio applied %d times", n)
	}
	if r.demod.Reads(0x8c) != 2*10 {
		t.Fatalf("cnr samples %d", r.demod.Reads(0x8c))
	}
}

func TestPollStatusUnlockedSkipsQuality(t *testing.T) {
	r := newReadyRig(t, Config{})
	r.demod.Script(0x0d, 0x00)
	st, err := r.d.PollStatus(context.Background())
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if st.Locked || st.CNRValid {
		t.Fatalf("unlocked status %+v", st)
	}
	if r.tuner.Reads(0x5a) != 1 {
		t.Fatalf("strength must be read while unlocked")
	}
	if r.demod.Reads(0xff) != 0 || r.demod.Reads(0x8c) != 0 {
		t.Fatalf("cnr read while unlocked")
	}
}

func TestPollStatusProgramsCIClockOnce(t *testing.T) {
	r := newRig(Config{HasCI: true})
	aux := &fakeAux{}
	r.d.SetAuxClock(aux, fakeSpeed(20000))
	r.demod.Set(0xb9, 1)
	r.reportS2()
	if err := r.d.Bringup(context.Background(), FirmwareBytes{0}); err != nil {
		t.Fatalf("bringup: %v", err)
	}
	r.demod.Script(0x0d, LockS2)
	if _, err := r.d.Tune(context.Background(), s2Request()); err != nil {
		t.Fatalf("tune: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := r.d.PollStatus(context.Background()); err != nil {
			t.Fatalf("poll: %v", err)
		}
	}
	if len(aux.hz) != 2 || aux.hz[1] != auxclk.CIClock(20000) {
		t.Fatalf("aux clock calls %v", aux.hz)
	}
}

func TestSetVoltage(t *testing.T) {
	r := newReadyRig(t, Config{})
	r.demod.Set(0xa2, 0xf0)
	ctx := context.Background()
	want := map[Voltage]byte{Voltage18: 0xf3, Voltage13: 0xf2, VoltageOff: 0xf0}
	for v, reg := range want {
		if err := r.d.SetVoltage(ctx, v); err != nil {
			t.Fatalf("voltage %v: %v", v, err)
		}
		if got := r.demod.Get(0xa2); got != reg {
			t.Fatalf("voltage %v: 0xa2=%#x want %#x", v, got, reg)
		}
	}
	if !IsParameter(r.d.SetVoltage(ctx, Voltage(9))) {
		t.Fatalf("unknown voltage accepted")
	}
}

func TestSetTone(t *testing.T) {
	r := newReadyRig(t, Config{})
	ctx := context.Background()
	r.demod.Set(0xa1, 0xff)
	if err := r.d.SetTone(ctx, true); err != nil {
		t.Fatalf("tone on: %v", err)
	}
	if r.demod.Get(0xa2)&0x80 != 0 || r.demod.Get(0xa1) != 0xbc {
		t.Fatalf("tone on: a2=%#x a1=%#x", r.demod.Get(0xa2), r.demod.Get(0xa1))
	}
	if err := r.d.SetTone(ctx, false); err != nil {
		t.Fatalf("tone off: %v", err)
	}
	if r.demod.Get(0xa2)&0x80 == 0 {
		t.Fatalf("tone off: a2=%#x", r.demod.Get(0xa2))
	}
}

func TestSendDiSEqC(t *testing.T) {
	r := newReadyRig(t, Config{})
	msg := []byte{0xe0, 0x10, 0x38, 0xf0}
	if err := r.d.SendDiSEqC(context.Background(), msg); err != nil {
		t.Fatalf("diseqc: %v", err)
	}
	b := r.demod.Bursts(0xa3)
	if len(b) != 1 || string(b[0]) != string(msg) {
		t.Fatalf("payload %x", b)
	}
	if w := r.demod.Writes(0xa1); len(w) != 1 || w[0] != 0x1f {
		t.Fatalf("control writes %x", w)
	}
	if r.demod.Get(0xa2)&0xc0 != 0x80 {
		t.Fatalf("sec output not released")
	}
	if r.clk.Elapsed() != 4*diseqcByteTime {
		t.Fatalf("slept %v", r.clk.Elapsed())
	}
}

func TestSendDiSEqCTimeout(t *testing.T) {
	r := newReadyRig(t, Config{})
	r.demod.Script(0xa1, 0x40)
	err := r.d.SendDiSEqC(context.Background(), []byte{0xe0, 0x10, 0x38})
	if !errors.Is(err, ErrDiSEqCTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if r.clk.Elapsed() <= diseqcCmdTimeout {
		t.Fatalf("gave up after %v", r.clk.Elapsed())
	}
	if r.demod.Get(0xa2)&0xc0 != 0x80 {
		t.Fatalf("sec output not released after timeout")
	}
}

func TestSendDiSEqCLength(t *testing.T) {
	r := newReadyRig(t, Config{})
	for _, n := range []int{0, 2, 7} {
		if !IsParameter(r.d.SendDiSEqC(context.Background(), make([]byte, n))) {
			t.Fatalf("length %d accepted", n)
		}
	}
	if len(r.demod.Log()) != 0 {
		t.Fatalf("rejected commands touched registers")
	}
}

func TestSendBurst(t *testing.T) {
	r := newReadyRig(t, Config{})
	if err := r.d.SendBurst(context.Background(), BurstB); err != nil {
		t.Fatalf("burst: %v", err)
	}
	if w := r.demod.Writes(0xa1); len(w) != 1 || w[0] != 0x01 {
		t.Fatalf("burst code %x", w)
	}
	if r.clk.Elapsed() != burstTime {
		t.Fatalf("slept %v", r.clk.Elapsed())
	}
}

func TestSleepWakeupSequences(t *testing.T) {
	r := newReadyRig(t, Config{})
	ctx := context.Background()
	if err := r.d.Sleep(ctx); err != nil {
		t.Fatalf("sleep: %v", err)
	}
	if w := r.tuner.Writes(0x07); len(w) != 1 || w[0] != 0x6d {
		t.Fatalf("sleep wrote 0x07 %x", w)
	}
	if err := r.d.Wakeup(ctx); err != nil {
		t.Fatalf("wakeup: %v", err)
	}
	if w := r.tuner.Writes(0x07); len(w) != 2 || w[1] != 0x7d {
		t.Fatalf("wakeup wrote 0x07 %x", w)
	}
	if w := r.tuner.Writes(0x10); len(w) != 2 || w[0] != 0x00 || w[1] != 0xfb {
		t.Fatalf("0x10 writes %x", w)
	}
	if r.clk.Elapsed() != 20*time.Millisecond {
		t.Fatalf("slept %v", r.clk.Elapsed())
	}
}

func TestIQSampling(t *testing.T) {
	r := newReadyRig(t, Config{})
	ctx := context.Background()
	r.demod.Set(0x36, 0x05)
	if err := r.d.BeginIQ(ctx); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if r.demod.Get(0x36) != 0x04 || r.demod.Get(0x38) != 0x53 {
		t.Fatalf("iq routing 36=%#x 38=%#x", r.demod.Get(0x36), r.demod.Get(0x38))
	}
	r.demod.Script(0x39, 0x00, 0x80)
	if ok, _ := r.d.SampleReady(ctx); ok {
		t.Fatalf("sample ready too early")
	}
	if ok, _ := r.d.SampleReady(ctx); !ok {
		t.Fatalf("sample not ready")
	}
	r.demod.Script(0x3b, 0x81, 0x7f)
	re, im, err := r.d.ReadIQ(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if re != -2 || im != 2 {
		t.Fatalf("iq = (%d, %d)", re, im)
	}
	if err := r.d.EndIQ(ctx); err != nil {
		t.Fatalf("end: %v", err)
	}
	if r.demod.Get(0x36) != 0x05 || r.demod.Get(0x38) != 0x50 {
		t.Fatalf("iq routing not restored")
	}
}

func TestSetRFProgramsBandwidth(t *testing.T) {
	r := newReadyRig(t, Config{})
	if err := r.d.SetRF(context.Background(), 1500400, 1000); err != nil {
		t.Fatalf("set rf: %v", err)
	}
	if r.tuner.Get(0x40) != 6 {
		t.Fatalf("bandwidth register %d", r.tuner.Get(0x40))
	}
	if len(r.tuner.Writes(0x41)) == 0 {
		t.Fatalf("pll not programmed")
	}
	if _, err := r.d.NarrowbandPower(context.Background()); err != nil {
		t.Fatalf("power: %v", err)
	}
	if r.tuner.Reads(0x5a) != 1 {
		t.Fatalf("gain codes not read")
	}
}
