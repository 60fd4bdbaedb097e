// Package pls decodes the demodulator's physical layer signalling into
// channel parameters.
package pls

import (
	"context"
	"fmt"

	"github.com/rjboer/GoDVB/internal/regbus"
	"github.com/rjboer/GoDVB/internal/tables"
)

// Flags are the raw status fields the decoder works from.
type Flags struct {
	// S2 is demod 0x08 bit 3.
	S2 bool
	// Dummy is demod 0x17 bit 6.
	Dummy bool
	// ModulationRaw is demod 0x18 bits 7:5.
	ModulationRaw byte
	// VCM is demod 0x18 bits 4:0.
	VCM byte
	// Code is demod 0x19.
	Code uint8
	// RollOffRaw is demod 0x76 bits 1:0.
	RollOffRaw byte
	// S1RateRaw is demod 0xe6 bits 7:5.
	S1RateRaw byte
	Inverted  bool
}

// ChannelInfo describes the locked carrier.
type ChannelInfo struct {
	System     tables.DeliverySystem
	Modulation tables.Modulation
	Rate       tables.CodeRate
	Pilot      bool
	Dummy      bool
	Frame      tables.FrameLength
	RollOff    tables.RollOff
	Inverted   bool
	// VCM is the VCM cycle, -1 for DVB-S.
	VCM     int
	PLSCode uint8
}

func (c ChannelInfo) String() string {
	return fmt.Sprintf("%v %v %v pilot=%v frame=%v rolloff=%v", c.System, c.Modulation, c.Rate, c.Pilot, c.Frame, c.RollOff)
}

// HardwareModulation maps the 3-bit modulation field of 0x18.
func HardwareModulation(raw byte) tables.Modulation {
	switch raw & 0x07 {
	case 1:
		return tables.PSK8
	case 2:
		return tables.APSK16
	case 3:
		return tables.APSK32
	case 4:
		return tables.APSK64
	case 5:
		return tables.APSK128
	case 6, 7:
		return tables.APSK256
	default:
		return tables.QPSK
	}
}

// RollOff decodes the 2-bit roll-off field, whose meaning depends on the
// delivery system.
func RollOff(sys tables.DeliverySystem, raw byte) tables.RollOff {
	if sys == tables.S2X {
		switch raw & 0x03 {
		case 0:
			return tables.RollOff15
		case 1:
			return tables.RollOff10
		case 2:
			return tables.RollOff05
		}
		return tables.RollOffUndefined
	}
	switch raw & 0x03 {
	case 0:
		return tables.RollOff35
	case 1:
		return tables.RollOff25
	case 2:
		return tables.RollOff20
	}
	return tables.RollOffUndefined
}

// Decode resolves the channel parameters. Modulation and dummy flag are
// taken from the PLS table only when its entry defines them; otherwise the
// hardware values stand. Rate, pilot and frame length always come from the
// table.
func Decode(f Flags) ChannelInfo {
	if !f.S2 {
		return DecodeS1(f.S1RateRaw, f.Inverted)
	}
	info := ChannelInfo{
		Modulation: HardwareModulation(f.ModulationRaw),
		Dummy:      f.Dummy,
		VCM:        int(f.VCM & 0x1f),
		PLSCode:    f.Code,
		Inverted:   f.Inverted,
	}
	e := tables.PLS[f.Code]
	info.System = e.System
	if mod, ok := e.Modulation(); ok {
		info.Modulation = mod
	}
	if dummy, ok := e.Dummy(); ok {
		info.Dummy = dummy
	}
	info.Rate = e.Rate
	info.Pilot = e.Pilot
	info.Frame = e.Frame
	info.RollOff = RollOff(info.System, f.RollOffRaw)
	return info
}

// DecodeS1 builds the DVB-S description from the Viterbi rate field.
func DecodeS1(rateRaw byte, inverted bool) ChannelInfo {
	var rate tables.CodeRate
	switch rateRaw & 0x07 {
	case 0:
		rate = tables.Rate7_8
	case 1:
		rate = tables.Rate5_6
	case 2:
		rate = tables.Rate3_4
	case 3:
		rate = tables.Rate2_3
	case 4:
		rate = tables.Rate1_2
	default:
		rate = tables.RateUndefined
	}
	return ChannelInfo{
		System:     tables.S1,
		Modulation: tables.QPSK,
		Rate:       rate,
		RollOff:    tables.RollOff35,
		Inverted:   inverted,
		VCM:        -1,
	}
}

// ReadFlags collects the status fields from the demodulator.
func ReadFlags(ctx context.Context, bus regbus.Bus) (Flags, error) {
	var f Flags
	v08, err := bus.Read(ctx, 0x08)
	if err != nil {
		return f, err
	}
	if v08&0x08 == 0 {
		e6, err := bus.Read(ctx, 0xe6)
		if err != nil {
			return f, err
		}
		e0, err := bus.Read(ctx, 0xe0)
		if err != nil {
			return f, err
		}
		f.S1RateRaw = e6 >> 5
		f.Inverted = e0&0x40 != 0
		return f, nil
	}

	f.S2 = true
	if err := bus.Write(ctx, 0x8a, 0x01); err != nil {
		return f, err
	}
	v17, err := bus.Read(ctx, 0x17)
	if err != nil {
		return f, err
	}
	v18, err := bus.Read(ctx, 0x18)
	if err != nil {
		return f, err
	}
	code, err := bus.Read(ctx, 0x19)
	if err != nil {
		return f, err
	}
	v89, err := bus.Read(ctx, 0x89)
	if err != nil {
		return f, err
	}
	v76, err := bus.Read(ctx, 0x76)
	if err != nil {
		return f, err
	}
	f.Dummy = v17&0x40 != 0
	f.ModulationRaw = v18 >> 5
	f.VCM = v18 & 0x1f
	f.Code = code
	f.Inverted = v89&0x80 != 0
	f.RollOffRaw = v76 & 0x03
	return f, nil
}

// ReadChannelInfo reads and decodes the current channel parameters.
func ReadChannelInfo(ctx context.Context, bus regbus.Bus) (ChannelInfo, error) {
	f, err := ReadFlags(ctx, bus)
	if err != nil {
		return ChannelInfo{}, fmt.Errorf("read channel info: %w", err)
	}
	return Decode(f), nil
}
