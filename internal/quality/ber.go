package quality

import (
	"context"
	"fmt"

	"github.com/rjboer/GoDVB/internal/regbus"
	"github.com/rjboer/GoDVB/internal/tables"
)

const (
	// S1WindowBits is the bit count of one completed DVB-S measurement.
	S1WindowBits = 0x800000
	// S2MinFrames is the frame count a DVB-S2 window must exceed before it
	// is harvested.
	S2MinFrames = 4000
)

// BERCounter accumulates post-FEC bit errors across polls of one tuning
// session.
type BERCounter struct {
	Errors uint64
	Bits   uint64
	// Last is the error count of the most recent completed window.
	Last uint32
}

// Reset clears the accumulators.
func (c *BERCounter) Reset() {
	*c = BERCounter{}
}

// Ratio is Errors/Bits, or 0 before any window completed.
func (c *BERCounter) Ratio() float64 {
	if c.Bits == 0 {
		return 0
	}
	return float64(c.Errors) / float64(c.Bits)
}

// SampleS1 harvests a completed DVB-S window and restarts it. It reports
// whether a window was harvested.
func (c *BERCounter) SampleS1(ctx context.Context, demod regbus.Bus) (bool, error) {
	status, err := demod.Read(ctx, 0xd5)
	if err != nil {
		return false, fmt.Errorf("read ber: %w", err)
	}
	if status&0x10 != 0 {
		return false, nil
	}
	b, err := demod.ReadBurst(ctx, 0xd6, 2)
	if err != nil {
		return false, fmt.Errorf("read ber: %w", err)
	}
	errs := uint32(b[1])<<8 | uint32(b[0])
	c.Errors += uint64(errs)
	c.Bits += S1WindowBits
	c.Last = errs
	if err := demod.Write(ctx, 0xd5, 0x82); err != nil {
		return true, fmt.Errorf("restart ber: %w", err)
	}
	return true, nil
}

// SampleS2 harvests the DVB-S2 window once it holds more than S2MinFrames
// frames and restarts it.
func (c *BERCounter) SampleS2(ctx context.Context, demod regbus.Bus) (bool, error) {
	b, err := demod.ReadBurst(ctx, 0xd5, 3)
	if err != nil {
		return false, fmt.Errorf("read ber: %w", err)
	}
	frames := uint32(b[2])<<16 | uint32(b[1])<<8 | uint32(b[0])
	if frames <= S2MinFrames {
		return false, nil
	}
	e, err := demod.ReadBurst(ctx, 0xf7, 2)
	if err != nil {
		return false, fmt.Errorf("read ber: %w", err)
	}
	errs := uint32(e[1])<<8 | uint32(e[0])
	c.Errors += uint64(errs)
	c.Bits += 32 * uint64(frames)
	c.Last = errs
	err = regbus.WriteSeq(ctx, demod,
		[2]byte{0xd1, 0x01},
		[2]byte{0xf9, 0x01},
		[2]byte{0xf9, 0x00},
		[2]byte{0xd1, 0x00},
	)
	if err != nil {
		return true, fmt.Errorf("restart ber: %w", err)
	}
	return true, nil
}

// Sample dispatches on the delivery system.
func (c *BERCounter) Sample(ctx context.Context, demod regbus.Bus, sys tables.DeliverySystem) (bool, error) {
	switch sys {
	case tables.S1:
		return c.SampleS1(ctx, demod)
	case tables.S2, tables.S2X:
		return c.SampleS2(ctx, demod)
	default:
		return false, fmt.Errorf("%w: %v", ErrSystem, sys)
	}
}
