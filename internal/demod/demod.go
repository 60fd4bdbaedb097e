// Package demod drives the DVB-S/S2/S2X demodulator and its RF tuner:
// bring-up, tuning and lock acquisition, status polling and SEC control.
package demod

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rjboer/GoDVB/internal/auxclk"
	"github.com/rjboer/GoDVB/internal/clock"
	"github.com/rjboer/GoDVB/internal/logging"
	"github.com/rjboer/GoDVB/internal/pls"
	"github.com/rjboer/GoDVB/internal/quality"
	"github.com/rjboer/GoDVB/internal/regbus"
	"github.com/rjboer/GoDVB/internal/synth"
	"github.com/rjboer/GoDVB/internal/tables"
)

// FirmwareName is the image the demodulator expects.
const FirmwareName = "dvb-demod-m88rs6060.fw"

// FirmwareLoader supplies the firmware image.
type FirmwareLoader interface {
	Firmware(ctx context.Context) ([]byte, error)
}

// FirmwareBytes is an in-memory image.
type FirmwareBytes []byte

func (f FirmwareBytes) Firmware(context.Context) ([]byte, error) { return f, nil }

// FirmwareFile loads the image from disk.
type FirmwareFile string

func (f FirmwareFile) Firmware(context.Context) ([]byte, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, fmt.Errorf("load firmware: %w", err)
	}
	return data, nil
}

// AuxClock programs the CI clock generator.
type AuxClock interface {
	SetFrequency(ctx context.Context, hz uint32) error
}

// SpeedSource reports the transport speed negotiated by the CI module.
type SpeedSource interface {
	TransportSpeed(ctx context.Context) (uint32, error)
}

// Demod is one demodulator session. Operations are serialised; the tuner
// bus is expected to open the demodulator repeater itself (regbus.Gated).
type Demod struct {
	mu sync.Mutex

	demod  regbus.Bus
	tuner  regbus.Bus
	cfg    Config
	clk    clock.Clock
	logger logging.Logger

	aux   AuxClock
	speed SpeedSource

	ready    bool
	firmware byte

	mclk    uint32
	freqKHz uint32
	req     TuneRequest
	acq     *Acquisition
	info    pls.ChannelInfo
	ber     quality.BERCounter

	tsClockChecked bool
	newTP          bool
	iqSaved        byte
}

// New creates a session. A nil clock uses wall time and a nil logger the
// process default.
func New(demodBus, tunerBus regbus.Bus, cfg Config, clk clock.Clock, logger logging.Logger) *Demod {
	cfg.fillDefaults()
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Demod{
		demod:  demodBus,
		tuner:  tunerBus,
		cfg:    cfg,
		clk:    clk,
		logger: logger.With(logging.F("subsystem", "demod")),
		mclk:   tables.MasterClocks[0].KHz,
		acq:    NewAcquisition(cfg.PollAttempts),
	}
}

// SetAuxClock attaches the CI clock generator and its speed source.
func (d *Demod) SetAuxClock(aux AuxClock, speed SpeedSource) {
	d.mu.Lock()
	d.aux, d.speed = aux, speed
	d.mu.Unlock()
}

// Config returns the effective configuration.
func (d *Demod) Config() Config { return d.cfg }

// Ready reports whether Bringup completed.
func (d *Demod) Ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ready
}

// FirmwareVersion is the value of demod 0xb9 after bring-up.
func (d *Demod) FirmwareVersion() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.firmware
}

// MasterClockKHz is the ADC clock selected by the last tune.
func (d *Demod) MasterClockKHz() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mclk
}

func (d *Demod) sleep(ctx context.Context, dur time.Duration) error {
	return d.clk.Sleep(ctx, dur)
}

func (d *Demod) writeTable(ctx context.Context, bus regbus.Bus, table []tables.RegVal) error {
	for _, rv := range table {
		if err := bus.Write(ctx, rv.Reg, rv.Val); err != nil {
			return err
		}
	}
	return nil
}

func (d *Demod) tunerWakeup(ctx context.Context) error {
	err := regbus.WriteSeq(ctx, d.tuner, [2]byte{0x10, 0xfb}, [2]byte{0x11, 0x01}, [2]byte{0x07, 0x7d})
	if err != nil {
		return err
	}
	return d.sleep(ctx, 10*time.Millisecond)
}

func (d *Demod) tunerSleep(ctx context.Context) error {
	err := regbus.WriteSeq(ctx, d.tuner, [2]byte{0x07, 0x6d}, [2]byte{0x10, 0x00}, [2]byte{0x11, 0x7d})
	if err != nil {
		return err
	}
	return d.sleep(ctx, 10*time.Millisecond)
}

// leaveFirmwareMode drops the download window if it was left open.
func (d *Demod) leaveFirmwareMode(ctx context.Context) error {
	v, err := d.demod.Read(ctx, 0xb2)
	if err != nil {
		return err
	}
	if v != 0x01 {
		return nil
	}
	return regbus.WriteSeq(ctx, d.demod, [2]byte{0x00, 0x00}, [2]byte{0xb2, 0x00})
}

func (d *Demod) hardReset(ctx context.Context) error {
	if err := regbus.WriteSeq(ctx, d.tuner, [2]byte{0x04, 0x01}, [2]byte{0x04, 0x00}); err != nil {
		return err
	}
	if err := d.sleep(ctx, time.Millisecond); err != nil {
		return err
	}
	if err := d.tunerWakeup(ctx); err != nil {
		return err
	}
	if err := regbus.SetBits(ctx, d.demod, 0x08, 0x01); err != nil {
		return err
	}
	if err := regbus.SetBits(ctx, d.demod, 0x0b, 0x01); err != nil {
		return err
	}
	if err := d.leaveFirmwareMode(ctx); err != nil {
		return err
	}
	if err := regbus.WriteSeq(ctx, d.demod, [2]byte{0x07, 0x80}, [2]byte{0x07, 0x00}); err != nil {
		return err
	}
	if err := d.sleep(ctx, time.Millisecond); err != nil {
		return err
	}
	return regbus.SetBits(ctx, d.demod, 0x08, 0x01)
}

func (d *Demod) tunerInit(ctx context.Context) error {
	if err := regbus.WriteSeq(ctx, d.tuner, [2]byte{0x15, 0x6c}, [2]byte{0x2b, 0x1e}); err != nil {
		return err
	}
	if err := d.tunerWakeup(ctx); err != nil {
		return err
	}
	return d.writeTable(ctx, d.tuner, tables.TunerInit)
}

func (d *Demod) downloadFirmware(ctx context.Context, image []byte) error {
	if err := d.demod.Write(ctx, 0xb2, 0x01); err != nil {
		return err
	}
	chunk := d.cfg.I2CWriteMax - 1
	for off := 0; off < len(image); off += chunk {
		end := off + chunk
		if end > len(image) {
			end = len(image)
		}
		if err := d.demod.WriteBurst(ctx, 0xb0, image[off:end]); err != nil {
			return fmt.Errorf("firmware chunk at %d: %w", off, err)
		}
	}
	return d.demod.Write(ctx, 0xb2, 0x00)
}

// setTSMode configures the transport output interface.
func (d *Demod) setTSMode(ctx context.Context) error {
	if err := regbus.ClearBits(ctx, d.demod, 0x0b, 0x01); err != nil {
		return err
	}
	fd, err := d.demod.Read(ctx, 0xfd)
	if err != nil {
		return err
	}
	pulseF1 := true
	switch d.cfg.TSMode {
	case synth.TSSerial:
		fd &^= 0x01
		fd |= 0x04
		pulseF1 = false
	case synth.TSCommon:
		fd |= 0x01
		fd &^= 0x04
	default:
		fd &^= 0x01 | 0x04
	}
	if pulseF1 {
		if err := regbus.WriteSeq(ctx, d.demod, [2]byte{0xfa, 0x01}, [2]byte{0xf1, 0x60}, [2]byte{0xfa, 0x00}); err != nil {
			return err
		}
	}
	fd &^= 0xb8
	fd |= 0xc2
	if err := d.demod.Write(ctx, 0xfd, fd); err != nil {
		return err
	}

	var level byte
	if d.cfg.TSMode != synth.TSSerial {
		l := d.cfg.PinLevel
		level = l | l<<2 | l<<4 | l<<6
	}
	if err := d.demod.Write(ctx, 0x0a, level); err != nil {
		return err
	}

	var pin byte
	if d.cfg.TSPinSwitch {
		pin = 0x20
	}
	if err := regbus.Update(ctx, d.demod, 0x0b, 0x21, pin|0x01); err != nil {
		return err
	}
	c, err := d.demod.Read(ctx, 0x0c)
	if err != nil {
		return err
	}
	if err := d.demod.Write(ctx, 0xf4, 0x01); err != nil {
		return err
	}
	return d.demod.Write(ctx, 0x0c, c&^0x80)
}

// Bringup resets both chips, loads firmware and configures the transport
// output. The session is ready only if it returns nil.
func (d *Demod) Bringup(ctx context.Context, fw FirmwareLoader) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ready = false

	if err := d.hardReset(ctx); err != nil {
		return fmt.Errorf("hard reset: %w", err)
	}
	if err := d.tunerInit(ctx); err != nil {
		return fmt.Errorf("tuner init: %w", err)
	}
	if err := regbus.WriteSeq(ctx, d.demod, [2]byte{0x07, 0xe0}, [2]byte{0x07, 0x00}); err != nil {
		return fmt.Errorf("global reset: %w", err)
	}

	image, err := fw.Firmware(ctx)
	if err != nil {
		return err
	}
	d.logger.Info("downloading firmware", logging.F("bytes", len(image)))
	if err := d.downloadFirmware(ctx, image); err != nil {
		return fmt.Errorf("firmware download: %w", err)
	}
	version, err := d.demod.Read(ctx, 0xb9)
	if err != nil {
		return fmt.Errorf("firmware version: %w", err)
	}
	if version == 0 {
		return ErrFirmware
	}
	d.firmware = version
	d.logger.Info("firmware running", logging.Hex("version", version))

	if err := d.sleep(ctx, 5*time.Millisecond); err != nil {
		return err
	}
	if err := d.setTSMode(ctx); err != nil {
		return fmt.Errorf("ts mode: %w", err)
	}
	if err := regbus.ClearBits(ctx, d.demod, 0x4d, 0x02); err != nil {
		return fmt.Errorf("bring-up: %w", err)
	}

	if d.cfg.HasCI && d.aux != nil {
		if err := d.aux.SetFrequency(ctx, auxclk.BootHz); err != nil {
			d.logger.Warn("ci clock not programmed", logging.F("error", err))
		}
	}
	d.ready = true
	return nil
}

// Sleep powers the tuner down.
func (d *Demod) Sleep(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.tunerSleep(ctx); err != nil {
		return fmt.Errorf("sleep: %w", err)
	}
	return nil
}

// Wakeup powers the tuner up.
func (d *Demod) Wakeup(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.tunerWakeup(ctx); err != nil {
		return fmt.Errorf("wakeup: %w", err)
	}
	return nil
}
