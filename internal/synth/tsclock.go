package synth

import (
	"context"

	"github.com/rjboer/GoDVB/internal/regbus"
)

// TSMode is the transport stream output interface.
type TSMode int

const (
	TSParallel TSMode = iota
	TSSerial
	TSCommon
)

func (m TSMode) String() string {
	switch m {
	case TSSerial:
		return "serial"
	case TSCommon:
		return "common"
	default:
		return "parallel"
	}
}

// ClockPlan is a transport clock divider programming.
type ClockPlan struct {
	TargetKHz   uint32
	FeedbackDiv uint32
	Div         uint32
	Stages      int
	Raw         [4]uint32
	Taps        [4]byte
}

// FeedbackDivider is the tuner PLL feedback count from 0x15 bit 0 and 0x16.
func FeedbackDivider(reg15, reg16 byte) uint32 {
	return uint32(reg15&0x01)<<8 + uint32(reg16) + 32
}

// Decompose splits div into 2, 3 or 4 taps by repeatedly dividing what is
// left by the remaining stage count. Serial mode never uses 3 stages.
// Values above 64 saturate at four taps of 16.
func Decompose(div uint32, serial bool) (int, [4]uint32) {
	var f [4]uint32
	switch {
	case div <= 32:
		f[1] = div / 2
		f[2] = div - f[1]
		return 2, f
	case div <= 48 && !serial:
		f[0] = div / 3
		f[1] = (div - f[0]) / 2
		f[2] = div - f[0] - f[1]
		return 3, f
	case div <= 64:
		f[0] = div / 4
		f[1] = (div - f[0]) / 3
		f[2] = (div - f[0] - f[1]) / 2
		f[3] = div - f[0] - f[1] - f[2]
		return 4, f
	default:
		return 4, [4]uint32{16, 16, 16, 16}
	}
}

// MinTap is the smallest nonzero tap the divider accepts.
func MinTap(serial bool) uint32 {
	if serial {
		return 8
	}
	return 9
}

// Snap encodes 16 as 0 and raises small nonzero taps to MinTap.
func Snap(raw [4]uint32, serial bool) [4]byte {
	var out [4]byte
	floor := MinTap(serial)
	for i, f := range raw {
		switch {
		case f == 16:
			f = 0
		case f != 0 && f < floor:
			f = floor
		}
		out[i] = byte(f)
	}
	return out
}

// PlanTSClock computes the divider for targetKHz given the tuner master
// clock registers. In parallel and common mode the target is rescaled to
// the actual ADC clock.
func PlanTSClock(targetKHz uint32, reg15, reg16 byte, mode TSMode) ClockPlan {
	serial := mode == TSSerial
	mclk := targetKHz
	if !serial {
		var actual uint32
		switch reg16 {
		case 92:
			actual = 93
		case 100:
			actual = 99
		default:
			actual = 96
		}
		mclk = mclk * actual / 96
	}
	fb := FeedbackDivider(reg15, reg16)
	var div uint32
	if mclk != 0 {
		div = 9000 * fb * 4 / mclk
	}
	stages, raw := Decompose(div, serial)
	return ClockPlan{
		TargetKHz:   targetKHz,
		FeedbackDiv: fb,
		Div:         div,
		Stages:      stages,
		Raw:         raw,
		Taps:        Snap(raw, serial),
	}
}

// Registers returns tuner 0x1d, 0x1e and 0x1f given the current 0x1d.
func (p ClockPlan) Registers(reg1D byte) (byte, byte, byte) {
	reg1D &^= 0x03
	reg1D |= byte(p.Stages-1) | 0x80
	t := p.Taps
	return reg1D, t[3]<<4 + t[2], t[1]<<4 + t[0]
}

// ReadTSClock reconstructs the transport clock in kHz from the tuner
// registers. Zero taps count as 16.
func ReadTSClock(reg15, reg16, reg1D, reg1E, reg1F byte) uint32 {
	tap := func(v byte) uint32 {
		if v == 0 {
			return 16
		}
		return uint32(v)
	}
	f3 := tap(reg1E >> 4 & 0x0f)
	f2 := tap(reg1E & 0x0f)
	f1 := tap(reg1F >> 4 & 0x0f)
	f0 := tap(reg1F & 0x0f)

	var n uint32
	switch reg1D & 0x03 {
	case 3:
		n = f3 + f2 + f1 + f0
	case 2:
		n = f2 + f1 + f0
	default:
		n = f2 + f1
	}
	return 9000 * FeedbackDivider(reg15, reg16) * 4 / n
}

// SetTSClock reads the master clock registers and programs the divider
// for targetKHz.
func SetTSClock(ctx context.Context, tuner regbus.Bus, targetKHz uint32, mode TSMode) (ClockPlan, error) {
	reg15, err := tuner.Read(ctx, 0x15)
	if err != nil {
		return ClockPlan{}, err
	}
	reg16, err := tuner.Read(ctx, 0x16)
	if err != nil {
		return ClockPlan{}, err
	}
	reg1D, err := tuner.Read(ctx, 0x1d)
	if err != nil {
		return ClockPlan{}, err
	}
	plan := PlanTSClock(targetKHz, reg15, reg16, mode)
	r1d, r1e, r1f := plan.Registers(reg1D)
	err = regbus.WriteSeq(ctx, tuner, [2]byte{0x1d, r1d}, [2]byte{0x1e, r1e}, [2]byte{0x1f, r1f})
	return plan, err
}

// GetTSClock reads the programmed transport clock back from the tuner.
func GetTSClock(ctx context.Context, tuner regbus.Bus) (uint32, error) {
	regs := make([]byte, 0, 5)
	for _, addr := range []byte{0x15, 0x16, 0x1d, 0x1e, 0x1f} {
		v, err := tuner.Read(ctx, addr)
		if err != nil {
			return 0, err
		}
		regs = append(regs, v)
	}
	return ReadTSClock(regs[0], regs[1], regs[2], regs[3], regs[4]), nil
}
