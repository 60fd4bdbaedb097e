// Package scan runs spectrum sweeps and constellation captures on a
// demodulator that is not tuned to a carrier.
package scan

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rjboer/GoDVB/internal/clock"
	"github.com/rjboer/GoDVB/internal/dsp"
	"github.com/rjboer/GoDVB/internal/logging"
)

const (
	// DefaultResolutionKHz is used when a sweep leaves the step at zero.
	DefaultResolutionKHz = 500
	// MaxSpectrumPoints bounds a single sweep.
	MaxSpectrumPoints = 65536
	// MaxConstellationPoints bounds a single capture.
	MaxConstellationPoints = 1024

	settleTime     = 5 * time.Millisecond
	samplePoll     = 5 * time.Millisecond
	samplePolls    = 20
	stopCheckEvery = 20
)

// Tuner retunes the RF front end for a sweep.
type Tuner interface {
	SetSymbolRate(ctx context.Context, srKSs uint32) error
	SetRF(ctx context.Context, freqKHz, bwKHz uint32) error
	// NarrowbandPower is the in-band level in 0.001 dB.
	NarrowbandPower(ctx context.Context) (int32, error)
}

// SampleSource exposes the equaliser symbol port.
type SampleSource interface {
	BeginIQ(ctx context.Context) error
	SampleReady(ctx context.Context) (bool, error)
	ReadIQ(ctx context.Context) (real, imag int8, err error)
	EndIQ(ctx context.Context) error
}

// Handle identifies a scan session.
type Handle uint64

// Range is a sweep interval [StartKHz, EndKHz).
type Range struct {
	StartKHz uint32
	EndKHz   uint32
}

// Points is the number of bins a sweep at resKHz produces.
func (r Range) Points(resKHz uint32) int {
	if resKHz == 0 || r.EndKHz <= r.StartKHz {
		return 0
	}
	return int((r.EndKHz - r.StartKHz + resKHz - 1) / resKHz)
}

// SpectrumBuffer holds a sweep. Only the first Valid entries were
// measured; the rest are zero.
type SpectrumBuffer struct {
	Freqs []uint32
	Power []int32
	Valid int
}

// Point is one equaliser symbol.
type Point struct {
	Real int8
	Imag int8
}

// ConstellationBuffer holds a capture of Valid points.
type ConstellationBuffer struct {
	Points []Point
	Valid  int
}

type kind int

const (
	kindSpectrum kind = iota + 1
	kindConstellation
)

type session struct {
	handle  Handle
	kind    kind
	stop    atomic.Bool
	running bool
	// done is closed once the scan loop has returned.
	done chan struct{}

	spectrum      SpectrumBuffer
	constellation ConstellationBuffer
}

// Engine owns the single scan session of one demodulator.
type Engine struct {
	tuner  Tuner
	source SampleSource
	clk    clock.Clock
	logger logging.Logger

	mu     sync.Mutex
	next   Handle
	active *session
}

// NewEngine binds a scan engine to a tuner and sample source.
func NewEngine(tuner Tuner, source SampleSource, clk clock.Clock, logger logging.Logger) *Engine {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		tuner:  tuner,
		source: source,
		clk:    clk,
		logger: logger.With(logging.F("subsystem", "scan")),
	}
}

// open replaces any finished session with a new one.
func (e *Engine) open(k kind) (*session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active != nil && e.active.running {
		return nil, ErrBusy
	}
	e.next++
	s := &session{handle: e.next, kind: k, running: true, done: make(chan struct{})}
	e.active = s
	return s, nil
}

func (e *Engine) finish(s *session, keep bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s.running = false
	close(s.done)
	if (!keep || s.stop.Load()) && e.active == s {
		e.active = nil
	}
}

func (e *Engine) shouldStop(ctx context.Context, s *session) bool {
	return s.stop.Load() || ctx.Err() != nil
}

// StartSpectrum sweeps r at resKHz and keeps the buffer for ReadSpectrum.
// A cancelled or stopped sweep is not an error; the buffer reports how
// many bins were measured.
func (e *Engine) StartSpectrum(ctx context.Context, r Range, resKHz uint32) (Handle, error) {
	if resKHz == 0 {
		resKHz = DefaultResolutionKHz
	}
	n := r.Points(resKHz)
	if n <= 0 || n > MaxSpectrumPoints {
		return 0, fmt.Errorf("%w: %d spectrum points", ErrAllocation, n)
	}
	s, err := e.open(kindSpectrum)
	if err != nil {
		return 0, err
	}
	buf := SpectrumBuffer{Freqs: make([]uint32, n), Power: make([]int32, n)}
	log := e.logger.With(logging.F("handle", s.handle))
	log.Info("spectrum scan", logging.F("start_khz", r.StartKHz), logging.F("end_khz", r.EndKHz),
		logging.F("res_khz", resKHz), logging.F("points", n))

	if err := e.sweep(ctx, s, r.StartKHz, resKHz, &buf); err != nil {
		e.finish(s, false)
		return 0, err
	}
	copy(buf.Power, dsp.Smooth3(buf.Power[:buf.Valid]))

	e.mu.Lock()
	s.spectrum = buf
	e.mu.Unlock()
	e.finish(s, true)
	log.Info("spectrum scan done", logging.F("valid", buf.Valid))
	return s.handle, nil
}

func (e *Engine) sweep(ctx context.Context, s *session, startKHz, resKHz uint32, buf *SpectrumBuffer) error {
	bw := 2 * resKHz
	if err := e.tuner.SetSymbolRate(ctx, resKHz); err != nil {
		return fmt.Errorf("spectrum scan: %w", err)
	}
	for i := range buf.Freqs {
		if i%stopCheckEvery == stopCheckEvery-1 && e.shouldStop(ctx, s) {
			e.logger.Debug("spectrum scan stopped", logging.F("at", i))
			return nil
		}
		f := startKHz + uint32(i)*resKHz
		if err := e.tuner.SetRF(ctx, f, bw); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("spectrum scan at %d kHz: %w", f, err)
		}
		if err := e.clk.Sleep(ctx, settleTime); err != nil {
			return nil
		}
		p, err := e.tuner.NarrowbandPower(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("spectrum scan at %d kHz: %w", f, err)
		}
		buf.Freqs[i] = f
		buf.Power[i] = p
		buf.Valid = i + 1
	}
	return nil
}

// MaxConstellation is the capture ceiling for a carrier at symbolRate S/s.
func MaxConstellation(symbolRate uint32) int {
	n := int(symbolRate / 5)
	if n > MaxConstellationPoints {
		n = MaxConstellationPoints
	}
	return n
}

// StartConstellation captures up to count symbols, capped by limit. The
// capture ends early when a symbol does not become ready in time.
func (e *Engine) StartConstellation(ctx context.Context, count, limit int) (Handle, error) {
	if limit <= 0 || limit > MaxConstellationPoints {
		limit = MaxConstellationPoints
	}
	if count > limit {
		count = limit
	}
	if count <= 0 {
		return 0, fmt.Errorf("%w: %d constellation points", ErrAllocation, count)
	}
	s, err := e.open(kindConstellation)
	if err != nil {
		return 0, err
	}
	buf := ConstellationBuffer{Points: make([]Point, count)}

	if err := e.source.BeginIQ(ctx); err != nil {
		e.finish(s, false)
		return 0, fmt.Errorf("constellation: %w", err)
	}
	capErr := e.capture(ctx, s, &buf)
	if err := e.source.EndIQ(context.WithoutCancel(ctx)); err != nil && capErr == nil {
		capErr = err
	}
	if capErr != nil {
		e.finish(s, false)
		return 0, fmt.Errorf("constellation: %w", capErr)
	}

	e.mu.Lock()
	s.constellation = buf
	e.mu.Unlock()
	e.finish(s, true)
	e.logger.Info("constellation captured", logging.F("handle", s.handle), logging.F("valid", buf.Valid),
		logging.F("requested", count))
	return s.handle, nil
}

func (e *Engine) capture(ctx context.Context, s *session, buf *ConstellationBuffer) error {
	for i := range buf.Points {
		if i%stopCheckEvery == stopCheckEvery-1 && e.shouldStop(ctx, s) {
			return nil
		}
		ready := false
		for poll := 0; poll < samplePolls; poll++ {
			ok, err := e.source.SampleReady(ctx)
			if err != nil {
				e.logger.Warn("sample port failed", logging.F("at", i), logging.F("error", err))
				return nil
			}
			if ok {
				ready = true
				break
			}
			if err := e.clk.Sleep(ctx, samplePoll); err != nil {
				return nil
			}
		}
		if !ready {
			e.logger.Debug("giving up on sample", logging.F("at", i))
			return nil
		}
		re, im, err := e.source.ReadIQ(ctx)
		if err != nil {
			e.logger.Warn("sample read failed", logging.F("at", i), logging.F("error", err))
			return nil
		}
		buf.Points[i] = Point{Real: re, Imag: im}
		buf.Valid = i + 1
	}
	return nil
}

func (e *Engine) lookup(h Handle, k kind) (*session, error) {
	if e.active == nil || e.active.handle != h || e.active.kind != k || e.active.running {
		return nil, ErrUnknownHandle
	}
	return e.active, nil
}

// ReadSpectrum returns a copy of a finished sweep.
func (e *Engine) ReadSpectrum(h Handle) (SpectrumBuffer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.lookup(h, kindSpectrum)
	if err != nil {
		return SpectrumBuffer{}, err
	}
	return SpectrumBuffer{
		Freqs: append([]uint32(nil), s.spectrum.Freqs...),
		Power: append([]int32(nil), s.spectrum.Power...),
		Valid: s.spectrum.Valid,
	}, nil
}

// ReadConstellation returns a copy of a finished capture.
func (e *Engine) ReadConstellation(h Handle) (ConstellationBuffer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.lookup(h, kindConstellation)
	if err != nil {
		return ConstellationBuffer{}, err
	}
	return ConstellationBuffer{
		Points: append([]Point(nil), s.constellation.Points...),
		Valid:  s.constellation.Valid,
	}, nil
}

// Stop ends a session. A running scan stops at its next check point and
// its buffer is discarded; a finished one is released. Stop waits for a
// running scan to exit, so it must not be called from the scan goroutine.
func (e *Engine) Stop(h Handle) error {
	e.mu.Lock()
	if e.active == nil || e.active.handle != h {
		e.mu.Unlock()
		return ErrUnknownHandle
	}
	e.halt()
	return nil
}

// StopActive ends whatever session exists and waits for a running scan to
// exit. It is called before a tune.
func (e *Engine) StopActive() {
	e.mu.Lock()
	if e.active == nil {
		e.mu.Unlock()
		return
	}
	e.halt()
}

// halt flags the active session and releases e.mu. A running session is
// removed by finish once its loop returns.
func (e *Engine) halt() {
	s := e.active
	s.stop.Store(true)
	if !s.running {
		e.active = nil
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	<-s.done
}

// Active reports the current session handle, if any.
func (e *Engine) Active() (Handle, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return 0, false
	}
	return e.active.handle, true
}
