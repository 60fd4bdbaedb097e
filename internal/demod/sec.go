package demod

import (
	"context"
	"fmt"
	"time"

	"github.com/rjboer/GoDVB/internal/logging"
	"github.com/rjboer/GoDVB/internal/regbus"
)

// Voltage is the LNB supply selection.
type Voltage int

const (
	VoltageOff Voltage = iota
	Voltage13
	Voltage18
)

// Burst is a mini DiSEqC tone burst.
type Burst int

const (
	BurstA Burst = iota
	BurstB
)

const (
	diseqcByteTime   = 13500 * time.Microsecond
	diseqcCmdTimeout = 120 * time.Millisecond
	burstTime        = 12500 * time.Microsecond
	burstTimeout     = 40 * time.Millisecond
	secPollInterval  = time.Millisecond
)

// SetVoltage switches LNB power and polarisation voltage.
func (d *Demod) SetVoltage(ctx context.Context, v Voltage) error {
	var bits byte
	switch v {
	case Voltage18:
		bits = 0x03
	case Voltage13:
		bits = 0x02
	case VoltageOff:
	default:
		return &ParameterError{Field: "voltage", Value: v, Reason: "unknown"}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := regbus.Update(ctx, d.demod, 0xa2, 0x03, bits); err != nil {
		return fmt.Errorf("set voltage: %w", err)
	}
	return nil
}

func (d *Demod) envelope() byte {
	if d.cfg.EnvelopeMode {
		return 1 << 5
	}
	return 0
}

// SetTone enables or disables the continuous 22 kHz tone.
func (d *Demod) SetTone(ctx context.Context, on bool) error {
	tone, mask := byte(1), byte(0x00)
	if on {
		tone, mask = 0, 0x47
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := regbus.Update(ctx, d.demod, 0xa2, 0xe0, tone<<7|d.envelope()); err != nil {
		return fmt.Errorf("set tone: %w", err)
	}
	if err := regbus.Update(ctx, d.demod, 0xa1, mask, 0x04); err != nil {
		return fmt.Errorf("set tone: %w", err)
	}
	return nil
}

// SendDiSEqC transmits a 3 to 6 byte master command.
func (d *Demod) SendDiSEqC(ctx context.Context, msg []byte) error {
	if len(msg) < 3 || len(msg) > 6 {
		return &ParameterError{Field: "diseqc length", Value: len(msg), Reason: "must be 3..6"}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	deadline := d.clk.Now().Add(diseqcCmdTimeout)
	if err := regbus.Update(ctx, d.demod, 0xa2, 0xe0, d.envelope()); err != nil {
		return fmt.Errorf("diseqc: %w", err)
	}
	if err := d.demod.WriteBurst(ctx, 0xa3, msg); err != nil {
		return fmt.Errorf("diseqc: %w", err)
	}
	if err := d.demod.Write(ctx, 0xa1, byte(len(msg)-1)<<3|0x07); err != nil {
		return fmt.Errorf("diseqc: %w", err)
	}
	if err := d.sleep(ctx, time.Duration(len(msg))*diseqcByteTime); err != nil {
		return err
	}
	if err := d.finishSEC(ctx, deadline); err != nil {
		return fmt.Errorf("diseqc: %w", err)
	}
	d.logger.Debug("diseqc sent", logging.F("msg", fmt.Sprintf("% x", msg)))
	return nil
}

// SendBurst transmits a tone burst.
func (d *Demod) SendBurst(ctx context.Context, b Burst) error {
	var code byte
	switch b {
	case BurstA:
		code = 0x02
	case BurstB:
		code = 0x01
	default:
		return &ParameterError{Field: "burst", Value: b, Reason: "unknown"}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	deadline := d.clk.Now().Add(burstTimeout)
	if err := regbus.Update(ctx, d.demod, 0xa2, 0xe0, d.envelope()); err != nil {
		return fmt.Errorf("burst: %w", err)
	}
	if err := d.demod.Write(ctx, 0xa1, code); err != nil {
		return fmt.Errorf("burst: %w", err)
	}
	if err := d.sleep(ctx, burstTime); err != nil {
		return err
	}
	if err := d.finishSEC(ctx, deadline); err != nil {
		return fmt.Errorf("burst: %w", err)
	}
	return nil
}

// finishSEC waits for 0xa1 bit 6 to clear, aborts the transmitter on
// timeout and always releases the SEC output.
func (d *Demod) finishSEC(ctx context.Context, deadline time.Time) error {
	busy := true
	for busy && !d.clk.Now().After(deadline) {
		v, err := d.demod.Read(ctx, 0xa1)
		if err != nil {
			return err
		}
		busy = v&0x40 != 0
		if busy {
			if err := d.sleep(ctx, secPollInterval); err != nil {
				return err
			}
		}
	}
	if busy {
		if err := regbus.Update(ctx, d.demod, 0xa1, 0xc0, 0x40); err != nil {
			return err
		}
	}
	if err := regbus.Update(ctx, d.demod, 0xa2, 0xc0, 0x80); err != nil {
		return err
	}
	if busy {
		return ErrDiSEqCTimeout
	}
	return nil
}
