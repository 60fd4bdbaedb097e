package demod

import (
	"context"

	"github.com/rjboer/GoDVB/internal/quality"
	"github.com/rjboer/GoDVB/internal/synth"
)

// The methods below let a scan engine sweep the tuner and sample the
// equaliser output without a full tune.

// SetSymbolRate programs the demodulator symbol rate at the current master
// clock.
func (d *Demod) SetSymbolRate(ctx context.Context, srKSs uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ready {
		return ErrNotReady
	}
	return d.writeSymbolRate(ctx, srKSs)
}

// SetRF retunes only the LO and the baseband filter.
func (d *Demod) SetRF(ctx context.Context, freqKHz, bwKHz uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ready {
		return ErrNotReady
	}
	freqMHz := (freqKHz + 500) / 1000
	if err := synth.ComputePLL(freqMHz, d.cfg.CrystalKHz).Apply(ctx, d.tuner); err != nil {
		return err
	}
	d.freqKHz = freqMHz * 1000
	return d.tuner.Write(ctx, 0x40, synth.BandwidthRegister(bwKHz))
}

// NarrowbandPower estimates the in-band level in 0.001 dBm from the tuner
// AGC state.
func (d *Demod) NarrowbandPower(ctx context.Context) (int32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, err := quality.ReadGain(ctx, d.tuner, d.freqKHz/1000)
	if err != nil {
		return 0, err
	}
	return quality.StrengthFromGain(g.Gain).MilliDB, nil
}

// BeginIQ routes equaliser symbols to the sample port.
func (d *Demod) BeginIQ(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ready {
		return ErrNotReady
	}
	v, err := d.demod.Read(ctx, 0x36)
	if err != nil {
		return err
	}
	d.iqSaved = v
	if err := d.demod.Write(ctx, 0x36, v&^0x01); err != nil {
		return err
	}
	return d.demod.Write(ctx, 0x38, 0x53)
}

// SampleReady reports whether a symbol is latched.
func (d *Demod) SampleReady(ctx context.Context) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.demod.Read(ctx, 0x39)
	if err != nil {
		return false, err
	}
	return v&0x80 != 0, nil
}

// ReadIQ reads one latched symbol. Both components are 7-bit signed values
// scaled by two.
func (d *Demod) ReadIQ(ctx context.Context) (real, imag int8, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	q, err := d.demod.Read(ctx, 0x3b)
	if err != nil {
		return 0, 0, err
	}
	i, err := d.demod.Read(ctx, 0x3b)
	if err != nil {
		return 0, 0, err
	}
	return int8((i & 0x7f) << 1), int8((q & 0x7f) << 1), nil
}

// EndIQ restores the sample port.
func (d *Demod) EndIQ(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.demod.Write(ctx, 0x38, 0x50); err != nil {
		return err
	}
	return d.demod.Write(ctx, 0x36, d.iqSaved)
}
