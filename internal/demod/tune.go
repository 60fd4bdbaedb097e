package demod

import (
	"context"
	"fmt"
	"time"

	"github.com/rjboer/GoDVB/internal/gold"
	"github.com/rjboer/GoDVB/internal/logging"
	"github.com/rjboer/GoDVB/internal/pls"
	"github.com/rjboer/GoDVB/internal/regbus"
	"github.com/rjboer/GoDVB/internal/synth"
	"github.com/rjboer/GoDVB/internal/tables"
)

// maxISISlots is the number of stream ids the demodulator lists.
const maxISISlots = 16

// tsTargetKHz is the transport clock programmed before every lock.
const tsTargetKHz = 144000

// TuneResult is the outcome of one tuning attempt. A timeout is a result,
// not an error.
type TuneResult struct {
	State      LockState
	Iterations int
	LockByte   byte
	// Viterbi is the FEC bit of the last lock byte; a timed out attempt
	// with Viterbi set saw a carrier it could not fully lock.
	Viterbi bool

	// FrequencyKHz is the programmed LO frequency, including the low
	// symbol rate offset.
	FrequencyKHz  uint32
	LPFOffsetKHz  int32
	MasterClock   uint32
	Selection     PLSSelection
	ScramblingSeq [3]byte

	ISIs        []byte
	SelectedISI byte

	Info             pls.ChannelInfo
	CarrierOffsetKHz int32
	SymbolRateKSs    uint32
}

// Tune programs the tuner and demodulator for req and waits for lock.
func (d *Demod) Tune(ctx context.Context, req TuneRequest) (TuneResult, error) {
	if err := req.Validate(); err != nil {
		return TuneResult{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ready {
		return TuneResult{}, ErrNotReady
	}

	if err := d.acq.Begin(); err != nil {
		return TuneResult{}, err
	}
	d.req = req
	d.info = pls.ChannelInfo{}
	d.ber.Reset()

	res := TuneResult{}
	log := d.logger.With(logging.F("freq_khz", req.FrequencyKHz), logging.F("sr", req.SymbolRate))
	log.Info("tuning", logging.F("system", req.System), logging.F("stream", req.StreamID))

	if err := d.program(ctx, req, &res); err != nil {
		d.acq.Fail()
		res.State = d.acq.State()
		return res, fmt.Errorf("tune: %w", err)
	}
	if err := d.acq.StartPolling(); err != nil {
		d.acq.Fail()
		return res, err
	}
	if err := d.waitLock(ctx); err != nil {
		d.acq.Fail()
		res.State = d.acq.State()
		return res, fmt.Errorf("tune: %w", err)
	}
	res.State = d.acq.State()
	res.Iterations = d.acq.Iterations()
	res.LockByte = d.acq.LastByte()
	res.Viterbi = d.acq.Viterbi()

	if res.LockByte == LockS2 {
		if err := d.selectStream(ctx, res.Selection.ISI, &res); err != nil {
			d.acq.Fail()
			res.State = d.acq.State()
			return res, fmt.Errorf("tune: %w", err)
		}
	}

	d.tsClockChecked = true
	if d.cfg.HasCI {
		d.newTP = true
	}

	if res.State == Locked {
		if err := d.readSignalInfo(ctx, &res); err != nil {
			return res, fmt.Errorf("tune: %w", err)
		}
		log.Info("locked", logging.F("iterations", res.Iterations), logging.F("channel", res.Info),
			logging.F("offset_khz", res.CarrierOffsetKHz))
	} else {
		log.Warn("no lock", logging.F("iterations", res.Iterations), logging.Hex("lock", res.LockByte),
			logging.F("viterbi", res.Viterbi))
	}
	return res, nil
}

// program writes the full register sequence for req.
func (d *Demod) program(ctx context.Context, req TuneRequest, res *TuneResult) error {
	srKSs := req.SymbolRate / 1000
	realFreq := req.FrequencyKHz
	lpf := synth.LPFOffset(srKSs)
	if lpf != 0 {
		realFreq += uint32(lpf)
	}
	res.LPFOffsetKHz = lpf

	// reset pulse, issued twice
	for i := 0; i < 2; i++ {
		if err := regbus.WriteSeq(ctx, d.demod, [2]byte{0x07, 0x80}, [2]byte{0x07, 0x00}); err != nil {
			return err
		}
	}
	if err := d.sleep(ctx, 2*time.Millisecond); err != nil {
		return err
	}
	if err := d.demod.Write(ctx, 0xf5, 0x00); err != nil {
		return err
	}
	if err := d.sleep(ctx, 2*time.Millisecond); err != nil {
		return err
	}
	if err := d.leaveFirmwareMode(ctx); err != nil {
		return err
	}

	// master clock and transport clock with the demodulator held
	if err := d.demod.Write(ctx, 0x06, 0xe0); err != nil {
		return err
	}
	mc := synth.SelectMasterClock(realFreq/1000, srKSs)
	if err := synth.ApplyMasterClock(ctx, d.tuner, mc); err != nil {
		return err
	}
	if err := d.sleep(ctx, 5*time.Millisecond); err != nil {
		return err
	}
	d.mclk = mc.KHz
	res.MasterClock = mc.KHz
	if err := d.demod.Write(ctx, 0xa0, synth.ADCRegister(mc.KHz)); err != nil {
		return err
	}
	if err := d.setTSClock(ctx, tsTargetKHz); err != nil {
		return err
	}
	if err := d.demod.Write(ctx, 0x06, 0x00); err != nil {
		return err
	}
	if err := d.sleep(ctx, 10*time.Millisecond); err != nil {
		return err
	}

	// cautious AGC while the LO settles
	if err := regbus.WriteSeq(ctx, d.tuner, [2]byte{0x5b, 0x4c}, [2]byte{0x5c, 0x54}, [2]byte{0x60, 0x4b}); err != nil {
		return err
	}

	freqMHz := (realFreq + 500) / 1000
	d.freqKHz = freqMHz * 1000
	res.FrequencyKHz = d.freqKHz
	if err := synth.ComputePLL(freqMHz, d.cfg.CrystalKHz).Apply(ctx, d.tuner); err != nil {
		return err
	}
	if err := d.tuner.Write(ctx, 0x40, synth.BasebandRegister(srKSs, lpf)); err != nil {
		return err
	}
	if err := regbus.WriteSeq(ctx, d.tuner, [2]byte{0x00, 0x01}, [2]byte{0x00, 0x00}); err != nil {
		return err
	}

	// demodulator preset
	if err := regbus.WriteSeq(ctx, d.demod, [2]byte{0xb2, 0x01}, [2]byte{0x00, 0x00}); err != nil {
		return err
	}
	if err := d.writeTable(ctx, d.demod, tables.DemodPreset); err != nil {
		return err
	}
	if srKSs > 47100 && srKSs < 47500 {
		if err := regbus.WriteSeq(ctx, d.demod, [2]byte{0xe6, 0x00}, [2]byte{0xe7, 0x03}); err != nil {
			return err
		}
	}
	if err := regbus.ClearBits(ctx, d.demod, 0x4d, 0x02); err != nil {
		return err
	}
	if err := regbus.ClearBits(ctx, d.demod, 0x08, 0x80); err != nil {
		return err
	}
	if err := regbus.SetBits(ctx, d.demod, 0xc9, 0x08); err != nil {
		return err
	}
	if err := regbus.WriteSeq(ctx, d.demod,
		[2]byte{0xc3, 0x08},
		[2]byte{0xc8, timingLoopGain(srKSs)},
		[2]byte{0xc4, 0x08},
		[2]byte{0xc7, 0x00},
	); err != nil {
		return err
	}
	if err := d.writeSymbolRate(ctx, srKSs); err != nil {
		return err
	}
	if _, err := d.demod.Read(ctx, 0x76); err != nil {
		return err
	}
	if err := regbus.WriteSeq(ctx, d.demod,
		[2]byte{0x76, 0x30},
		[2]byte{0x22, 0x01},
		[2]byte{0x23, 0x00},
		[2]byte{0x24, 0x00},
	); err != nil {
		return err
	}
	if err := d.setDeliverySystem(ctx, req.System); err != nil {
		return err
	}
	off := synth.LPFOffsetRegister(lpf, d.mclk)
	if err := d.demod.WriteBurst(ctx, 0x5e, []byte{byte(off), byte(off >> 8)}); err != nil {
		return err
	}
	if err := regbus.WriteSeq(ctx, d.demod, [2]byte{0x00, 0x00}, [2]byte{0xb2, 0x00}); err != nil {
		return err
	}

	// stream selection
	sel := req.SelectPLS()
	res.Selection = sel
	seq := ScramblingBytes(sel)
	res.ScramblingSeq = seq
	if err := d.demod.WriteBurst(ctx, 0x22, seq[:]); err != nil {
		return err
	}
	d.logger.Debug("pls programmed", logging.F("mode", sel.Mode), logging.F("code", sel.Code),
		logging.F("bytes", fmt.Sprintf("% x", seq[:])))

	// normal AGC
	return regbus.WriteSeq(ctx, d.tuner, [2]byte{0x5b, 0xcc}, [2]byte{0x5c, 0xf4}, [2]byte{0x60, 0xcb})
}

// ScramblingBytes encodes a PLS selection for demod 0x22..0x24: gold mode
// expands the index into the LFSR state, root mode writes the code as is.
func ScramblingBytes(sel PLSSelection) [3]byte {
	if sel.Mode != 0 {
		return gold.Generate(sel.Code)
	}
	return [3]byte{byte(sel.Code), byte(sel.Code >> 8), byte(sel.Code>>16) & 0x03}
}

func timingLoopGain(srKSs uint32) byte {
	switch {
	case srKSs <= 3000:
		return 0x20
	case srKSs <= 10000:
		return 0x10
	default:
		return 0x06
	}
}

func (d *Demod) writeSymbolRate(ctx context.Context, srKSs uint32) error {
	v := synth.SymbolRateRegister(srKSs, d.mclk)
	return regbus.WriteSeq(ctx, d.demod, [2]byte{0x61, byte(v)}, [2]byte{0x62, byte(v >> 8)})
}

func (d *Demod) setDeliverySystem(ctx context.Context, sys tables.DeliverySystem) error {
	v, err := d.demod.Read(ctx, 0x08)
	if err != nil {
		return err
	}
	switch sys {
	case tables.S1:
		if err := d.demod.Write(ctx, 0x08, v&0xfb|0x40); err != nil {
			return err
		}
		return d.demod.Write(ctx, 0xe0, 0xf8)
	case tables.S2:
		return d.demod.Write(ctx, 0x08, v|0x44)
	default:
		if err := d.demod.Write(ctx, 0x08, v&0xbb); err != nil {
			return err
		}
		return d.demod.Write(ctx, 0xe0, 0xf8)
	}
}

func (d *Demod) setTSClock(ctx context.Context, targetKHz uint32) error {
	plan, err := synth.SetTSClock(ctx, d.tuner, targetKHz, d.cfg.TSMode)
	if err != nil {
		return err
	}
	d.logger.Debug("ts clock", logging.F("target_khz", targetKHz), logging.F("div", plan.Div),
		logging.F("stages", plan.Stages))
	return d.sleep(ctx, time.Millisecond)
}

// waitLock polls 0x08 and 0x0d until the acquisition reaches a terminal
// state.
func (d *Demod) waitLock(ctx context.Context) error {
	for {
		if _, err := d.demod.Read(ctx, 0x08); err != nil {
			return err
		}
		lock, err := d.demod.Read(ctx, 0x0d)
		if err != nil {
			return err
		}
		switch d.acq.Observe(lock) {
		case Locked:
			return nil
		case TimedOut:
			// the last miss still waits one interval
			return d.sleep(ctx, d.cfg.PollInterval)
		}
		if err := d.sleep(ctx, d.cfg.PollInterval); err != nil {
			return err
		}
	}
}

// selectStream corrects spectral inversion and picks the input stream
// after a DVB-S2 lock.
func (d *Demod) selectStream(ctx context.Context, isi uint8, res *TuneResult) error {
	inv, err := d.demod.Read(ctx, 0x89)
	if err != nil {
		return err
	}
	ca, err := d.demod.Read(ctx, 0xca)
	if err != nil {
		return err
	}
	if err := d.demod.Write(ctx, 0xca, ca&0xf7|(inv&0x80)>>4|0x02); err != nil {
		return err
	}
	if err := regbus.WriteSeq(ctx, d.demod, [2]byte{0xfa, 0x00}, [2]byte{0xf0, 0x00}, [2]byte{0xf0, 0x03}); err != nil {
		return err
	}
	if err := d.sleep(ctx, 20*time.Millisecond); err != nil {
		return err
	}
	cnt, err := d.demod.Read(ctx, 0xf1)
	if err != nil {
		return err
	}
	n := int(cnt & 0x1f)
	if n > maxISISlots {
		n = maxISISlots
	}
	ids := make([]byte, 0, n)
	for j := 0; j < n; j++ {
		if err := d.demod.Write(ctx, 0xf2, byte(j)); err != nil {
			return err
		}
		id, err := d.demod.Read(ctx, 0xf3)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	res.ISIs = ids
	if len(ids) == 0 {
		return nil
	}
	pick := ids[0]
	for _, id := range ids {
		if id == isi {
			pick = isi
			break
		}
	}
	res.SelectedISI = pick
	d.logger.Debug("isi selected", logging.F("count", len(ids)), logging.F("isi", pick))
	return d.demod.Write(ctx, 0xf5, pick)
}

// readSignalInfo collects the channel parameters, carrier offset and
// locked symbol rate.
func (d *Demod) readSignalInfo(ctx context.Context, res *TuneResult) error {
	info, err := pls.ReadChannelInfo(ctx, d.demod)
	if err != nil {
		return err
	}
	d.info = info
	res.Info = info
	off, err := d.carrierOffset(ctx)
	if err != nil {
		return err
	}
	res.CarrierOffsetKHz = off
	sr, err := d.lockedSymbolRate(ctx)
	if err != nil {
		return err
	}
	res.SymbolRateKSs = sr
	return nil
}

func (d *Demod) readPair(ctx context.Context, lo, hi byte) (uint16, error) {
	l, err := d.demod.Read(ctx, lo)
	if err != nil {
		return 0, err
	}
	h, err := d.demod.Read(ctx, hi)
	if err != nil {
		return 0, err
	}
	return uint16(h)<<8 | uint16(l), nil
}

func (d *Demod) carrierOffset(ctx context.Context) (int32, error) {
	v, err := d.demod.Read(ctx, 0x5d)
	if err != nil {
		return 0, err
	}
	v &= 0xf8
	if err := d.demod.Write(ctx, 0x5d, v); err != nil {
		return 0, err
	}
	raw1, err := d.readPair(ctx, 0x5e, 0x5f)
	if err != nil {
		return 0, err
	}
	if err := d.demod.Write(ctx, 0x5d, v|0x06); err != nil {
		return 0, err
	}
	raw2, err := d.readPair(ctx, 0x5e, 0x5f)
	if err != nil {
		return 0, err
	}
	return synth.CarrierOffsetKHz(raw1, raw2, d.mclk), nil
}

func (d *Demod) lockedSymbolRate(ctx context.Context) (uint32, error) {
	raw, err := d.readPair(ctx, 0x6d, 0x6e)
	if err != nil {
		return 0, err
	}
	return synth.SymbolRateFromRegister(raw, d.mclk), nil
}
