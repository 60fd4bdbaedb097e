package demod

import (
	"context"
	"fmt"
	"time"

	"github.com/rjboer/GoDVB/internal/auxclk"
	"github.com/rjboer/GoDVB/internal/logging"
	"github.com/rjboer/GoDVB/internal/pls"
	"github.com/rjboer/GoDVB/internal/quality"
	"github.com/rjboer/GoDVB/internal/regbus"
	"github.com/rjboer/GoDVB/internal/synth"
	"github.com/rjboer/GoDVB/internal/tables"
)

// Status is one poll of the locked (or searching) demodulator.
type Status struct {
	Time     time.Time
	State    LockState
	Locked   bool
	LockByte byte
	System   tables.DeliverySystem

	Gain     quality.GainReport
	Strength quality.Strength

	// CNR fields are only valid while locked.
	CNRValid    bool
	CNRMilliDB  int32
	CNRRelative uint16

	BERErrors uint64
	BERBits   uint64
	BER       float64

	Info pls.ChannelInfo
}

// PollStatus reads lock, level, CNR and BER. The transport clock ratio is
// adjusted once after each new lock, and the CI clock once per new
// transponder.
func (d *Demod) PollStatus(ctx context.Context) (Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ready {
		return Status{}, ErrNotReady
	}
	st := Status{Time: d.clk.Now(), State: d.acq.State(), Info: d.info}

	gain, err := quality.ReadGain(ctx, d.tuner, d.req.FrequencyKHz/1000)
	if err != nil {
		return st, fmt.Errorf("poll status: %w", err)
	}
	st.Gain = gain
	st.Strength = quality.StrengthFromGain(gain.Gain)

	sys, err := d.statusSystem(ctx)
	if err != nil {
		return st, fmt.Errorf("poll status: %w", err)
	}
	st.System = sys

	lock, err := d.demod.Read(ctx, 0x0d)
	if err != nil {
		return st, fmt.Errorf("poll status: %w", err)
	}
	st.LockByte = lock
	st.Locked = IsLocked(sys, lock)
	if !st.Locked {
		return st, nil
	}

	if d.tsClockChecked {
		d.tsClockChecked = false
		if err := d.setClockRatio(ctx); err != nil {
			return st, fmt.Errorf("clock ratio: %w", err)
		}
		st.Info = d.info
	}
	if d.cfg.HasCI && d.newTP {
		d.programCIClock(ctx)
		d.newTP = false
	}

	cnr, err := quality.ReadCNR(ctx, d.demod, sys)
	if err != nil {
		return st, fmt.Errorf("poll status: %w", err)
	}
	st.CNRValid = true
	st.CNRMilliDB = cnr
	st.CNRRelative = quality.RelativeCNR(cnr)

	if _, err := d.ber.Sample(ctx, d.demod, sys); err != nil {
		return st, fmt.Errorf("poll status: %w", err)
	}
	st.BERErrors = d.ber.Errors
	st.BERBits = d.ber.Bits
	st.BER = d.ber.Ratio()
	return st, nil
}

// IsLocked applies the per-system lock mask to demod 0x0d.
func IsLocked(sys tables.DeliverySystem, lock byte) bool {
	if sys == tables.S1 {
		return lock&LockS1 == LockS1
	}
	return lock&LockS2 == LockS2
}

// statusSystem resolves the delivery system used for status decoding.
// Auto requests fall back to the decoded channel, then to demod 0x08.
func (d *Demod) statusSystem(ctx context.Context) (tables.DeliverySystem, error) {
	switch d.req.System {
	case tables.S1, tables.S2, tables.S2X:
		return d.req.System, nil
	}
	if d.info.System != tables.SystemUndefined {
		return d.info.System, nil
	}
	v, err := d.demod.Read(ctx, 0x08)
	if err != nil {
		return tables.SystemUndefined, err
	}
	if v&0x08 != 0 {
		return tables.S2, nil
	}
	return tables.S1, nil
}

// setClockRatio matches the transport output clock to the payload rate
// of the locked carrier.
func (d *Demod) setClockRatio(ctx context.Context) error {
	sr, err := d.lockedSymbolRate(ctx)
	if err != nil {
		return err
	}
	if err := regbus.SetBits(ctx, d.demod, 0x9d, 0x08); err != nil {
		return err
	}
	info, err := pls.ReadChannelInfo(ctx, d.demod)
	if err != nil {
		return err
	}
	d.info = info

	dataRate := synth.DataRate(info.System, info.Modulation, info.Rate, sr)
	mclk, err := synth.GetTSClock(ctx, d.tuner)
	if err != nil {
		return err
	}

	if d.cfg.TSMode == synth.TSSerial {
		reg16, err := d.tuner.Read(ctx, 0x16)
		if err != nil {
			return err
		}
		target := synth.SelectXM(d.freqKHz, sr, reg16, mclk)
		if target != mclk {
			if err := d.demod.Write(ctx, 0x06, 0xe0); err != nil {
				return err
			}
			if err := d.setTSClock(ctx, target); err != nil {
				return err
			}
			if err := d.demod.Write(ctx, 0x06, 0x00); err != nil {
				return err
			}
		}
		actual, err := synth.GetTSClock(ctx, d.tuner)
		if err != nil {
			return err
		}
		var fast byte
		if actual > synth.SerialFastClockKHz {
			fast = 0x01
		}
		d.logger.Debug("serial ts clock", logging.F("khz", actual), logging.F("data_rate", dataRate))
		return d.demod.Write(ctx, 0x0a, fast)
	}

	ratio := synth.DivideRatio(mclk, dataRate, d.cfg.TSMode, info.System != tables.S1)
	fe, ea := synth.DivideRegisters(ratio)
	if err := regbus.Update(ctx, d.demod, 0xfe, 0x0f, fe); err != nil {
		return err
	}
	d.logger.Debug("ts divide ratio", logging.F("mclk_khz", mclk), logging.F("data_rate", dataRate),
		logging.F("ratio", ratio))
	return d.demod.Write(ctx, 0xea, ea)
}

// programCIClock retunes the CI clock to the speed the CAM reports. A
// failure leaves the previous clock running.
func (d *Demod) programCIClock(ctx context.Context) {
	if d.aux == nil || d.speed == nil {
		return
	}
	if err := d.sleep(ctx, 50*time.Millisecond); err != nil {
		return
	}
	speed, err := d.speed.TransportSpeed(ctx)
	if err != nil {
		d.logger.Warn("ci speed unavailable", logging.F("error", err))
		return
	}
	hz := auxclk.CIClock(speed)
	if err := d.aux.SetFrequency(ctx, hz); err != nil {
		d.logger.Warn("ci clock not programmed", logging.F("hz", hz), logging.F("error", err))
		return
	}
	d.logger.Info("ci clock programmed", logging.F("speed", speed), logging.F("hz", hz))
}

// BER returns the accumulated error counters of the current session.
func (d *Demod) BER() quality.BERCounter {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ber
}
