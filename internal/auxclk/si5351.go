// Package auxclk drives the Si5351 clock generator that feeds the common
// interface on CI-equipped boards.
package auxclk

import (
	"context"
	"errors"
	"fmt"

	"github.com/rjboer/GoDVB/internal/logging"
	"github.com/rjboer/GoDVB/internal/regbus"
)

const (
	regOutputEnable = 3
	regCLK0Control  = 16
	regPLLA         = 26
	regMS0          = 42
	regPLLReset     = 177
	regXtalLoad     = 183

	// DefaultCrystalHz is the reference fitted on CI boards.
	DefaultCrystalHz = 25000000
	// PLLMultiplier keeps PLL A at 36x the crystal, 900 MHz for 25 MHz.
	PLLMultiplier = 36

	denominator = 1048575

	// MinOutputHz and MaxOutputHz bound CLK0 without the R divider. Above
	// maxFractionalHz the MultiSynth runs as an integer 6 or 4 and PLL A
	// becomes fractional instead.
	MinOutputHz     = 1000000
	MaxOutputHz     = 200000000
	maxFractionalHz = 112500000
	maxDiv6Hz       = 150000000

	// BootHz is programmed on CLK0 right after bring-up.
	BootHz = 62500000
)

// ErrRange is returned for output frequencies the MultiSynth cannot reach.
var ErrRange = errors.New("auxclk: frequency out of range")

// Params is one packed synthesizer divider (a + b/c).
type Params struct {
	P1, P2, P3 uint32
}

// Pack computes the register parameters for the divider a + b/c.
func Pack(a, b, c uint32) Params {
	f := uint32(uint64(128) * uint64(b) / uint64(c))
	return Params{
		P1: 128*a + f - 512,
		P2: 128*b - c*f,
		P3: c,
	}
}

// Bytes renders p in the eight-register layout shared by the PLL and
// MultiSynth blocks.
func (p Params) Bytes() []byte {
	return []byte{
		byte(p.P3 >> 8),
		byte(p.P3),
		byte(p.P1>>16) & 0x03,
		byte(p.P1 >> 8),
		byte(p.P1),
		byte(p.P3>>12)&0xf0 | byte(p.P2>>16)&0x0f,
		byte(p.P2 >> 8),
		byte(p.P2),
	}
}

// Plan is the PLL A and MultiSynth 0 programming for one output.
type Plan struct {
	PLLHz     uint64
	PLL       Params
	MS        Params
	MSInteger uint32
	// Integer selects MultiSynth integer mode (CLK0 control bit 6).
	Integer bool
	// DivBy4 sets the MultiSynth 0 divide-by-4 bits.
	DivBy4 bool
}

// MSBytes is the MultiSynth 0 register block including the divide-by-4
// bits.
func (p Plan) MSBytes() []byte {
	b := p.MS.Bytes()
	if p.DivBy4 {
		b[2] |= 0x0c
	}
	return b
}

// Control is the CLK0 control register: powered, PLL A, MultiSynth 0
// source, 8 mA drive.
func (p Plan) Control() byte {
	if p.Integer {
		return 0x4f
	}
	return 0x0f
}

// PlanFrequency derives the synthesizer chain for hz.
func PlanFrequency(crystalHz, hz uint32) (Plan, error) {
	if hz < MinOutputHz || hz > MaxOutputHz {
		return Plan{}, fmt.Errorf("%w: %d Hz", ErrRange, hz)
	}
	if crystalHz == 0 {
		crystalHz = DefaultCrystalHz
	}
	if hz > maxFractionalHz {
		div := uint32(6)
		if hz > maxDiv6Hz {
			div = 4
		}
		pll := uint64(hz) * uint64(div)
		a := pll / uint64(crystalHz)
		b := (pll % uint64(crystalHz)) * denominator / uint64(crystalHz)
		plan := Plan{
			PLLHz:     pll,
			PLL:       Pack(uint32(a), uint32(b), denominator),
			MS:        Pack(div, 0, 1),
			MSInteger: div,
			Integer:   true,
		}
		if div == 4 {
			plan.MS = Params{P3: 1}
			plan.DivBy4 = true
		}
		return plan, nil
	}
	pll := uint64(crystalHz) * PLLMultiplier
	a := pll / uint64(hz)
	b := (pll % uint64(hz)) * denominator / uint64(hz)
	return Plan{
		PLLHz:     pll,
		PLL:       Pack(PLLMultiplier, 0, 1),
		MS:        Pack(uint32(a), uint32(b), denominator),
		MSInteger: uint32(a),
	}, nil
}

// Si5351 is the generator on its own I2C address.
type Si5351 struct {
	bus       regbus.Bus
	crystalHz uint32
	logger    logging.Logger
	lastHz    uint32
}

// New wraps bus. A zero crystal means DefaultCrystalHz.
func New(bus regbus.Bus, crystalHz uint32, logger logging.Logger) *Si5351 {
	if logger == nil {
		logger = logging.Default()
	}
	if crystalHz == 0 {
		crystalHz = DefaultCrystalHz
	}
	return &Si5351{bus: bus, crystalHz: crystalHz, logger: logger}
}

// Init disables all outputs, powers down the output drivers and sets the
// 10 pF crystal load.
func (s *Si5351) Init(ctx context.Context) error {
	if err := s.bus.Write(ctx, regOutputEnable, 0xff); err != nil {
		return fmt.Errorf("si5351 init: %w", err)
	}
	for r := byte(regCLK0Control); r < regCLK0Control+8; r++ {
		if err := s.bus.Write(ctx, r, 0x80); err != nil {
			return fmt.Errorf("si5351 init: %w", err)
		}
	}
	if err := s.bus.Write(ctx, regXtalLoad, 0xc0); err != nil {
		return fmt.Errorf("si5351 init: %w", err)
	}
	return nil
}

// SetFrequency programs CLK0 to hz from PLL A and enables it.
func (s *Si5351) SetFrequency(ctx context.Context, hz uint32) error {
	plan, err := PlanFrequency(s.crystalHz, hz)
	if err != nil {
		return err
	}
	if err := s.bus.WriteBurst(ctx, regPLLA, plan.PLL.Bytes()); err != nil {
		return fmt.Errorf("si5351 pll: %w", err)
	}
	if err := s.bus.WriteBurst(ctx, regMS0, plan.MSBytes()); err != nil {
		return fmt.Errorf("si5351 multisynth: %w", err)
	}
	err = regbus.WriteSeq(ctx, s.bus,
		[2]byte{regCLK0Control, plan.Control()},
		[2]byte{regPLLReset, 0x20},
	)
	if err != nil {
		return fmt.Errorf("si5351 clk0: %w", err)
	}
	if err := regbus.ClearBits(ctx, s.bus, regOutputEnable, 0x01); err != nil {
		return fmt.Errorf("si5351 enable: %w", err)
	}
	s.lastHz = hz
	s.logger.Debug("si5351 clk0 set", logging.F("hz", hz), logging.F("div", plan.MSInteger))
	return nil
}

// Frequency is the last programmed CLK0 frequency, 0 before the first
// SetFrequency.
func (s *Si5351) Frequency() uint32 { return s.lastHz }

// CIClock converts the CI transport speed reported by the CAM interface
// into the CLK0 frequency in Hz.
func CIClock(speed uint32) uint32 {
	clock := speed*4*204*8/1024 + 500
	if clock < 42000 {
		clock = 42000
	}
	return clock/8*204/188*25000/6 + 500
}
