package auxclk

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rjboer/GoDVB/internal/logging"
	"github.com/rjboer/GoDVB/internal/regbus"
)

func TestCIClock(t *testing.T) {
	if got := CIClock(0); got != 23733833 {
		t.Fatalf("floor clock = %d", got)
	}
	if got := CIClock(20000); got != 72338000 {
		t.Fatalf("clock = %d", got)
	}
}

func TestPlanFractional(t *testing.T) {
	plan, err := PlanFrequency(DefaultCrystalHz, BootHz)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.PLLHz != 900000000 || plan.MSInteger != 14 || plan.Integer {
		t.Fatalf("plan = %+v", plan)
	}
	if plan.MS != (Params{P1: 1331, P2: 209715, P3: denominator}) {
		t.Fatalf("ms = %+v", plan.MS)
	}
	want := []byte{0xff, 0xff, 0x00, 0x05, 0x33, 0xf3, 0x33, 0x33}
	if !bytes.Equal(plan.MSBytes(), want) {
		t.Fatalf("ms bytes = % x", plan.MSBytes())
	}
	if !bytes.Equal(plan.PLL.Bytes(), []byte{0, 1, 0, 0x10, 0, 0, 0, 0}) {
		t.Fatalf("pll bytes = % x", plan.PLL.Bytes())
	}
}

func TestPlanInteger(t *testing.T) {
	plan, err := PlanFrequency(DefaultCrystalHz, 120000000)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !plan.Integer || plan.MSInteger != 6 || plan.PLLHz != 720000000 || plan.PLL.P1 != 3174 {
		t.Fatalf("plan = %+v", plan)
	}
	if plan.Control() != 0x4f {
		t.Fatalf("control = %#x", plan.Control())
	}

	plan, err = PlanFrequency(DefaultCrystalHz, 180000000)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !plan.DivBy4 || plan.MSBytes()[2] != 0x0c {
		t.Fatalf("div by 4 plan = %+v", plan)
	}
}

func TestPlanRange(t *testing.T) {
	for _, hz := range []uint32{0, 999999, 200000001} {
		if _, err := PlanFrequency(DefaultCrystalHz, hz); !errors.Is(err, ErrRange) {
			t.Fatalf("%d Hz: %v", hz, err)
		}
	}
}

func TestInitAndSetFrequency(t *testing.T) {
	ctx := context.Background()
	bus := regbus.NewMock()
	clk := New(bus, 0, logging.Nop())
	if err := clk.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if bus.Get(regOutputEnable) != 0xff || bus.Get(regCLK0Control+7) != 0x80 || bus.Get(regXtalLoad) != 0xc0 {
		t.Fatalf("init registers not written")
	}

	if err := clk.SetFrequency(ctx, BootHz); err != nil {
		t.Fatalf("set: %v", err)
	}
	if len(bus.Bursts(regPLLA)) != 1 || len(bus.Bursts(regMS0)) != 1 {
		t.Fatalf("expected one burst per block")
	}
	if bus.Get(regCLK0Control) != 0x0f || bus.Get(regPLLReset) != 0x20 {
		t.Fatalf("control %#x reset %#x", bus.Get(regCLK0Control), bus.Get(regPLLReset))
	}
	if bus.Get(regOutputEnable) != 0xfe {
		t.Fatalf("clk0 not enabled: %#x", bus.Get(regOutputEnable))
	}
	if clk.Frequency() != BootHz {
		t.Fatalf("frequency = %d", clk.Frequency())
	}
}

func TestSetFrequencyTransportError(t *testing.T) {
	bus := regbus.NewMock()
	bus.FailOn(regMS0, false, true)
	clk := New(bus, DefaultCrystalHz, nil)
	err := clk.SetFrequency(context.Background(), BootHz)
	if !regbus.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if clk.Frequency() != 0 {
		t.Fatalf("frequency recorded after failure")
	}
}
