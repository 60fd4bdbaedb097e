package demod

import (
	"time"

	"github.com/rjboer/GoDVB/internal/synth"
)

// Config holds board level settings for one demodulator.
type Config struct {
	// CrystalKHz is the tuner reference, 27000 or 24000.
	CrystalKHz uint32
	TSMode     synth.TSMode
	// TSPinSwitch swaps the transport output pins (demod 0x0b bit 5).
	TSPinSwitch bool
	// PinLevel is the 2-bit drive strength replicated across demod 0x0a
	// in parallel and common mode.
	PinLevel byte
	// I2CWriteMax bounds a single bus write including the register byte.
	// Firmware is downloaded in chunks of I2CWriteMax-1.
	I2CWriteMax int
	// EnvelopeMode selects DiSEqC envelope output instead of 22 kHz.
	EnvelopeMode bool
	// HasCI enables the auxiliary CI clock after each new lock.
	HasCI bool

	PollInterval time.Duration
	PollAttempts int
}

const (
	defaultCrystalKHz  = 27000
	defaultI2CWriteMax = 33
	defaultPoll        = 20 * time.Millisecond
	defaultAttempts    = 150
)

func (c *Config) fillDefaults() {
	if c.CrystalKHz == 0 {
		c.CrystalKHz = defaultCrystalKHz
	}
	if c.I2CWriteMax < 2 {
		c.I2CWriteMax = defaultI2CWriteMax
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPoll
	}
	if c.PollAttempts <= 0 {
		c.PollAttempts = defaultAttempts
	}
	c.PinLevel &= 0x03
}
