package app

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/rjboer/GoDVB/internal/clock"
	"github.com/rjboer/GoDVB/internal/demod"
	"github.com/rjboer/GoDVB/internal/logging"
	"github.com/rjboer/GoDVB/internal/regbus"
	"github.com/rjboer/GoDVB/internal/scan"
	"github.com/rjboer/GoDVB/internal/tables"
	"github.com/rjboer/GoDVB/internal/telemetry"
)

var _ Frontend = (*demod.Demod)(nil)

// queuedTicker delivers a fixed number of ticks up front.
type queuedTicker struct{ ch chan time.Time }

func (q queuedTicker) C() <-chan time.Time { return q.ch }
func (q queuedTicker) Stop()               {}

type tickClock struct {
	*clock.Fake
	ticks int
}

func (c *tickClock) NewTicker(time.Duration) clock.Ticker {
	ch := make(chan time.Time, c.ticks)
	for i := 0; i < c.ticks; i++ {
		ch <- c.Now()
	}
	return queuedTicker{ch: ch}
}

type bench struct {
	rx    *Receiver
	dev   *demod.Demod
	demod *regbus.Mock
	tuner *regbus.Mock
	hub   *telemetry.Hub
}

func newBench(cfg Config, ticks int) *bench {
	logger := logging.New(logging.Debug, logging.Text, io.Discard)
	clk := &tickClock{Fake: clock.NewFake(time.Unix(0, 0)), ticks: ticks}
	b := &bench{demod: regbus.NewMock(), tuner: regbus.NewMock()}
	b.demod.Port(0xb0)
	b.demod.Set(0xb9, 0x10)
	b.dev = demod.New(b.demod, b.tuner, demod.Config{}, clk, logger)
	b.hub = telemetry.NewHub(10, logger)
	if cfg.Firmware == nil {
		cfg.Firmware = demod.FirmwareBytes{0, 1, 2}
	}
	b.rx = NewReceiver(b.dev, b.hub, logger, clk, cfg)
	return b
}

func s2Request() demod.TuneRequest {
	return demod.TuneRequest{
		FrequencyKHz: 1200000,
		SymbolRate:   27500000,
		System:       tables.S2,
		StreamID:     demod.StreamID(demod.NoStreamFilter),
	}
}

func TestInitBringsUpAndTunes(t *testing.T) {
	b := newBench(Config{
		Request: s2Request(),
		Voltage: demod.Voltage18,
		Tone:    true,
		DiSEqC:  []byte{0xe0, 0x10, 0x38, 0xf0},
	}, 0)
	b.demod.Script(0x0d, 0x00, 0x00, demod.LockS2)

	if err := b.rx.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	res := b.rx.LastTune()
	if res.State != demod.Locked || res.Iterations != 3 {
		t.Fatalf("state=%v iterations=%d", res.State, res.Iterations)
	}
	if b.demod.Get(0xa2)&0x03 != 0x03 {
		t.Fatalf("lnb voltage not set: %#x", b.demod.Get(0xa2))
	}
	if len(b.demod.Bursts(0xa3)) != 1 {
		t.Fatalf("diseqc not sent")
	}
}

func TestInitWithoutFrequencySkipsTune(t *testing.T) {
	b := newBench(Config{}, 0)
	if err := b.rx.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if b.demod.Reads(0x0d) != 0 {
		t.Fatalf("tuned without a frequency")
	}
}

func TestInitBringupFailure(t *testing.T) {
	b := newBench(Config{}, 0)
	b.demod.Set(0xb9, 0)
	if err := b.rx.Init(context.Background()); !errors.Is(err, demod.ErrFirmware) {
		t.Fatalf("expected firmware error, got %v", err)
	}
}

func TestRunReportsEachPoll(t *testing.T) {
	b := newBench(Config{Request: s2Request(), MaxPolls: 3}, 3)
	b.demod.Script(0x0d, demod.LockS2)
	if err := b.rx.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := b.rx.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	h := b.hub.History()
	if len(h) != 3 {
		t.Fatalf("reported %d samples", len(h))
	}
	for _, s := range h {
		if !s.Locked || s.System != "DVB-S2" {
			t.Fatalf("sample %+v", s)
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	b := newBench(Config{}, 0)
	if err := b.rx.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.rx.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScanRecordsSpectrum(t *testing.T) {
	b := newBench(Config{}, 0)
	if err := b.rx.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	buf, cands, err := b.rx.Scan(context.Background(), scan.Range{StartKHz: 950000, EndKHz: 952000}, 500)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if buf.Valid != 4 || buf.Freqs[3] != 951500 {
		t.Fatalf("buffer %+v", buf)
	}
	if len(cands) != 0 {
		t.Fatalf("flat sweep produced candidates %v", cands)
	}
	if len(b.hub.Spectrum().Freqs) != 4 {
		t.Fatalf("spectrum not forwarded to the hub")
	}
	if _, ok := b.rx.Engine().Active(); !ok {
		t.Fatalf("finished sweep should stay readable")
	}

	b.demod.Script(0x0d, demod.LockS2)
	if _, err := b.rx.Tune(context.Background(), s2Request()); err != nil {
		t.Fatalf("tune: %v", err)
	}
	if _, ok := b.rx.Engine().Active(); ok {
		t.Fatalf("tune must stop the scan session")
	}
}

func TestTuneDuringSweepStopsRetuning(t *testing.T) {
	b := newBench(Config{}, 0)
	if err := b.rx.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	reached := make(chan struct{})
	release := make(chan struct{})
	bwWrites := 0
	b.tuner.OnWrite(0x40, func(v byte) byte {
		bwWrites++
		if bwWrites == 3 {
			close(reached)
			<-release
		}
		return v
	})

	swept := make(chan struct{})
	go func() {
		defer close(swept)
		b.rx.Scan(context.Background(), scan.Range{StartKHz: 950000, EndKHz: 1450000}, 500)
	}()
	<-reached

	b.demod.Script(0x0d, demod.LockS2)
	tuned := make(chan error, 1)
	go func() {
		_, err := b.rx.Tune(context.Background(), s2Request())
		tuned <- err
	}()
	time.Sleep(10 * time.Millisecond)
	close(release)
	if err := <-tuned; err != nil {
		t.Fatalf("tune: %v", err)
	}

	after := len(b.tuner.Log())
	if _, ok := b.rx.Engine().Active(); ok {
		t.Fatalf("scan session survived the tune")
	}
	<-swept
	if n := len(b.tuner.Log()); n != after {
		t.Fatalf("%d tuner accesses after tune returned", n-after)
	}
	if b.rx.LastTune().State != demod.Locked {
		t.Fatalf("tune did not lock: %v", b.rx.LastTune().State)
	}
}

func TestConstellationStats(t *testing.T) {
	b := newBench(Config{}, 0)
	if err := b.rx.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	b.demod.Script(0x39, 0x80)
	b.demod.Script(0x3b, 0x20)
	buf, st, err := b.rx.Constellation(context.Background(), 8)
	if err != nil {
		t.Fatalf("constellation: %v", err)
	}
	if buf.Valid != 8 || buf.Points[0] != (scan.Point{Real: 64, Imag: 64}) {
		t.Fatalf("buffer %+v", buf)
	}
	if st.Count != 8 || !math.IsInf(st.MERDB, 1) {
		t.Fatalf("stats %+v", st)
	}
}
