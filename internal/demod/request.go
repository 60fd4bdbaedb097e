package demod

import (
	"fmt"

	"github.com/rjboer/GoDVB/internal/tables"
)

// Frontend limits.
const (
	MinFrequencyKHz = 950000
	MaxFrequencyKHz = 2150000
	MinSymbolRate   = 100000
	MaxSymbolRate   = 48000000

	// DefaultSymbolRate is used when a request leaves the rate at zero.
	DefaultSymbolRate = 27500000

	// NoStreamFilter disables ISI and PLS selection.
	NoStreamFilter uint32 = 0xffffffff
)

// StreamID packs an input stream identifier with PLS selection: ISI in
// bits 7:0, PLS code in bits 25:8 and PLS mode in bits 27:26.
type StreamID uint32

// NewStreamID builds a stream id from its parts.
func NewStreamID(isi uint8, plsMode uint8, plsCode uint32) StreamID {
	return StreamID(uint32(isi) | (plsCode&0x3ffff)<<8 | uint32(plsMode&0x03)<<26)
}

func (s StreamID) ISI() uint8      { return uint8(s) }
func (s StreamID) PLSCode() uint32 { return uint32(s) >> 8 & 0x3ffff }
func (s StreamID) PLSMode() uint8  { return uint8(uint32(s) >> 26 & 0x03) }
func (s StreamID) Filtered() bool  { return uint32(s) != NoStreamFilter }
func (s StreamID) String() string {
	if !s.Filtered() {
		return "none"
	}
	return fmt.Sprintf("isi=%d pls_mode=%d pls_code=%d", s.ISI(), s.PLSMode(), s.PLSCode())
}

// TuneRequest describes one tuning attempt.
type TuneRequest struct {
	FrequencyKHz uint32
	// SymbolRate is in symbols per second.
	SymbolRate uint32
	System     tables.DeliverySystem
	Modulation tables.Modulation
	StreamID   StreamID
	// ScramblingIndex overrides the PLS code with a gold index when
	// nonzero.
	ScramblingIndex uint32
}

// Validate applies defaults and checks the frontend limits.
func (r *TuneRequest) Validate() error {
	if r.SymbolRate == 0 {
		r.SymbolRate = DefaultSymbolRate
	}
	if r.System == tables.SystemUndefined {
		r.System = tables.Auto
	}
	if r.System < tables.S1 || r.System > tables.Auto {
		return &ParameterError{Field: "system", Value: int(r.System), Reason: "unknown delivery system"}
	}
	if r.Modulation < tables.ModulationUndefined || r.Modulation > tables.APSK256L {
		return &ParameterError{Field: "modulation", Value: int(r.Modulation), Reason: "unknown modulation"}
	}
	if r.System == tables.S1 && r.Modulation > tables.QPSK {
		return &ParameterError{Field: "modulation", Value: r.Modulation, Reason: "DVB-S carries QPSK only"}
	}
	if r.FrequencyKHz < MinFrequencyKHz || r.FrequencyKHz > MaxFrequencyKHz {
		return &ParameterError{Field: "frequency", Value: r.FrequencyKHz, Reason: "outside 950-2150 MHz"}
	}
	if r.SymbolRate < MinSymbolRate || r.SymbolRate > MaxSymbolRate {
		return &ParameterError{Field: "symbol rate", Value: r.SymbolRate, Reason: "outside 0.1-48 MS/s"}
	}
	if r.ScramblingIndex > 0x3ffff {
		return &ParameterError{Field: "scrambling index", Value: r.ScramblingIndex, Reason: "exceeds 18 bits"}
	}
	return nil
}

// PLSSelection is the ISI and scrambling programming derived from a
// request.
type PLSSelection struct {
	ISI  uint8
	Mode uint8
	Code uint32
}

// SelectPLS resolves ISI, PLS mode and code. Without a filter the root
// code 1 is used; an explicit scrambling index forces gold mode.
func (r TuneRequest) SelectPLS() PLSSelection {
	sel := PLSSelection{Code: 1}
	if r.StreamID.Filtered() {
		sel.ISI = r.StreamID.ISI()
		sel.Mode = r.StreamID.PLSMode()
		sel.Code = r.StreamID.PLSCode()
		if sel.Mode == 0 && sel.Code == 0 {
			sel.Code = 1
		}
	}
	if r.ScramblingIndex != 0 {
		sel.Mode = 1
		sel.Code = r.ScramblingIndex
	}
	return sel
}
