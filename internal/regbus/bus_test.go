package regbus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMockScriptIsSticky(t *testing.T) {
	ctx := context.Background()
	m := NewMock()
	m.Script(0x0d, 0x00, 0x10, 0x8f)
	want := []byte{0x00, 0x10, 0x8f, 0x8f, 0x8f}
	for i, w := range want {
		got, err := m.Read(ctx, 0x0d)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if got != w {
			t.Fatalf("read %d = 0x%02x, want 0x%02x", i, got, w)
		}
	}
	if m.Reads(0x0d) != len(want) {
		t.Fatalf("reads = %d", m.Reads(0x0d))
	}
}

func TestUpdateTouchesOnlyMask(t *testing.T) {
	ctx := context.Background()
	m := NewMock()
	m.Set(0xa2, 0xff)
	if err := Update(ctx, m, 0xa2, 0x03, 0x01); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := m.Get(0xa2); got != 0xfd {
		t.Fatalf("0xa2 = 0x%02x, want 0xfd", got)
	}
	if err := ClearBits(ctx, m, 0xa2, 0x80); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := m.Get(0xa2); got != 0x7d {
		t.Fatalf("0xa2 = 0x%02x, want 0x7d", got)
	}
}

func TestInjectedFailureIsTransport(t *testing.T) {
	ctx := context.Background()
	m := NewMock()
	m.FailOn(0x10, true, false)
	_, err := m.Read(ctx, 0x10)
	if !IsTransport(err) || !errors.Is(err, ErrInjected) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if err := Update(ctx, m, 0x10, 0xff, 1); !IsTransport(err) {
		t.Fatalf("update should surface transport error, got %v", err)
	}
}

func TestGatedOpensRepeaterEveryAccess(t *testing.T) {
	ctx := context.Background()
	demod := NewMock()
	tuner := NewMock()
	g := NewGated(demod, tuner)
	if err := g.Write(ctx, 0x10, 0xfb); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := g.Read(ctx, 0x10); err != nil {
		t.Fatalf("read: %v", err)
	}
	gates := demod.Writes(GateReg)
	if len(gates) != 2 || gates[0] != GateOpen || gates[1] != GateOpen {
		t.Fatalf("gate writes = %v", gates)
	}
	if tuner.Get(0x10) != 0xfb {
		t.Fatalf("tuner not written")
	}
}

func TestGatedStopsWhenGateFails(t *testing.T) {
	ctx := context.Background()
	demod := NewMock()
	tuner := NewMock()
	demod.FailOn(GateReg, false, true)
	g := NewGated(demod, tuner)
	if err := g.Write(ctx, 0x10, 1); err == nil {
		t.Fatalf("expected error")
	}
	if len(tuner.Log()) != 0 {
		t.Fatalf("tuner touched despite closed gate")
	}
}

type fakeRunner struct {
	cmds []string
	out  map[string]string
	err  error
}

func (f *fakeRunner) Run(_ context.Context, cmd string) (string, error) {
	f.cmds = append(f.cmds, cmd)
	if f.err != nil {
		return "", f.err
	}
	return f.out[cmd], nil
}

func TestSSHBusCommands(t *testing.T) {
	ctx := context.Background()
	r := &fakeRunner{out: map[string]string{"i2cget -y 1 0x69 0xb9": "0x1f\n"}}
	b := NewSSHBusWithRunner(SSHConfig{I2CBus: 1, Chip: 0x69}, r)

	v, err := b.Read(ctx, 0xb9)
	if err != nil || v != 0x1f {
		t.Fatalf("read = 0x%02x, %v", v, err)
	}
	if err := b.Write(ctx, 0x03, 0x11); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := b.WriteBurst(ctx, 0xa3, []byte{0xe0, 0x10, 0x38}); err != nil {
		t.Fatalf("burst: %v", err)
	}
	want := []string{
		"i2cget -y 1 0x69 0xb9",
		"i2cset -y 1 0x69 0x03 0x11",
		"i2cset -y 1 0x69 0xa3 0xe0 0x10 0x38 i",
	}
	if strings.Join(r.cmds, "|") != strings.Join(want, "|") {
		t.Fatalf("commands = %v", r.cmds)
	}
}

func TestSSHBusErrors(t *testing.T) {
	ctx := context.Background()
	b := NewSSHBusWithRunner(SSHConfig{}, &fakeRunner{err: fmt.Errorf("boom")})
	if err := b.Write(ctx, 1, 2); !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	b = NewSSHBusWithRunner(SSHConfig{}, &fakeRunner{out: map[string]string{}})
	if _, err := b.Read(ctx, 1); !IsTransport(err) {
		t.Fatalf("empty output should fail to parse, got %v", err)
	}
}

func TestNewSSHBusRequiresHost(t *testing.T) {
	if _, err := NewSSHBus(SSHConfig{}); err == nil {
		t.Fatalf("expected host error")
	}
}

type fakeControl struct {
	regs   [256]byte
	calls  int
	closed bool
}

func (f *fakeControl) Control(rType, request uint8, val, idx uint16, data []byte) (int, error) {
	f.calls++
	if val != 0x69 {
		return 0, fmt.Errorf("wrong chip 0x%x", val)
	}
	switch rType {
	case requestTypeVendorIn:
		for i := range data {
			data[i] = f.regs[int(idx)+i]
		}
	case requestTypeVendorOut:
		for i, b := range data {
			f.regs[int(idx)+i] = b
		}
	}
	return len(data), nil
}

func (f *fakeControl) Close() error { f.closed = true; return nil }

func TestUSBBusControlTransfers(t *testing.T) {
	ctx := context.Background()
	dev := &fakeControl{}
	b := NewUSBBus(dev, 0x69)
	if err := b.WriteBurst(ctx, 0x70, []byte{0x90, 0xf0}); err != nil {
		t.Fatalf("burst: %v", err)
	}
	got, err := b.ReadBurst(ctx, 0x70, 2)
	if err != nil || got[0] != 0x90 || got[1] != 0xf0 {
		t.Fatalf("read back %v, %v", got, err)
	}
	if err := b.Close(); err != nil || !dev.closed {
		t.Fatalf("close: %v", err)
	}
	if _, err := b.Read(ctx, 0x70); !IsTransport(err) {
		t.Fatalf("read after close should fail, got %v", err)
	}
}

func TestUSBBusOnChipSharesBridge(t *testing.T) {
	ctx := context.Background()
	dev := &fakeControl{}
	b := NewUSBBus(dev, 0x2c)
	demod := b.OnChip(0x69)
	if err := demod.Write(ctx, 0x10, 0x5a); err != nil {
		t.Fatalf("write: %v", err)
	}
	if dev.regs[0x10] != 0x5a {
		t.Fatalf("write did not reach bridge")
	}
	if err := demod.Close(); err != nil || dev.closed {
		t.Fatalf("closing the shared bus must not close the bridge")
	}
	if _, err := b.Read(ctx, 0x10); err == nil {
		t.Fatalf("fake bridge only answers chip 0x69")
	}
}
