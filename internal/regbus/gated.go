package regbus

import (
	"context"
	"sync"
)

const (
	// GateReg is the demodulator register that opens the tuner repeater.
	GateReg byte = 0x03
	// GateOpen is written to GateReg before every tuner transaction.
	GateOpen byte = 0x11
)

// Gated routes tuner accesses through the demodulator's I2C repeater. The
// repeater closes after each transfer so it is reopened every time.
type Gated struct {
	mu    sync.Mutex
	demod Bus
	tuner Bus
}

// NewGated wraps tuner so each access first opens the gate on demod.
func NewGated(demod, tuner Bus) *Gated {
	return &Gated{demod: demod, tuner: tuner}
}

func (g *Gated) open(ctx context.Context) error {
	return g.demod.Write(ctx, GateReg, GateOpen)
}

func (g *Gated) Read(ctx context.Context, addr byte) (byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.open(ctx); err != nil {
		return 0, err
	}
	return g.tuner.Read(ctx, addr)
}

func (g *Gated) Write(ctx context.Context, addr, val byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.open(ctx); err != nil {
		return err
	}
	return g.tuner.Write(ctx, addr, val)
}

func (g *Gated) WriteBurst(ctx context.Context, addr byte, data []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.open(ctx); err != nil {
		return err
	}
	return g.tuner.WriteBurst(ctx, addr, data)
}

func (g *Gated) ReadBurst(ctx context.Context, addr byte, n int) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.open(ctx); err != nil {
		return nil, err
	}
	return g.tuner.ReadBurst(ctx, addr, n)
}
