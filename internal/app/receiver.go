// Package app ties a demodulator session to the scan engine and the
// telemetry reporters.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rjboer/GoDVB/internal/clock"
	"github.com/rjboer/GoDVB/internal/demod"
	"github.com/rjboer/GoDVB/internal/dsp"
	"github.com/rjboer/GoDVB/internal/logging"
	"github.com/rjboer/GoDVB/internal/scan"
	"github.com/rjboer/GoDVB/internal/telemetry"
)

// Frontend is the demodulator surface the receiver drives. *demod.Demod
// satisfies it.
type Frontend interface {
	scan.Tuner
	scan.SampleSource
	Bringup(ctx context.Context, fw demod.FirmwareLoader) error
	Tune(ctx context.Context, req demod.TuneRequest) (demod.TuneResult, error)
	PollStatus(ctx context.Context) (demod.Status, error)
	SetVoltage(ctx context.Context, v demod.Voltage) error
	SetTone(ctx context.Context, on bool) error
	SendDiSEqC(ctx context.Context, msg []byte) error
}

// SpectrumSink receives completed sweeps. telemetry.Hub implements it.
type SpectrumSink interface {
	UpdateSpectrum(at time.Time, buf scan.SpectrumBuffer)
}

// Config captures application level configuration.
type Config struct {
	Firmware demod.FirmwareLoader
	Request  demod.TuneRequest

	Voltage demod.Voltage
	Tone    bool
	// DiSEqC is sent once after the LNB is powered, before tuning.
	DiSEqC []byte

	PollInterval time.Duration
	// MaxPolls ends Run after that many polls; zero polls until cancelled.
	MaxPolls int

	// CandidateThresholdDB is the level above the noise floor a sweep bin
	// needs to count as a carrier.
	CandidateThresholdDB float64
}

const (
	defaultPollInterval = time.Second
	defaultThresholdDB  = 3
)

// Receiver runs bring-up, tuning and the status loop for one frontend.
type Receiver struct {
	dev      Frontend
	engine   *scan.Engine
	reporter telemetry.Reporter
	logger   logging.Logger
	clk      clock.Clock
	cfg      Config

	last   demod.TuneResult
	locked bool
}

// NewReceiver builds a receiver. A nil clock uses wall time.
func NewReceiver(dev Frontend, reporter telemetry.Reporter, logger logging.Logger, clk clock.Clock, cfg Config) *Receiver {
	if logger == nil {
		logger = logging.Default()
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &Receiver{
		dev:      dev,
		engine:   scan.NewEngine(dev, dev, clk, logger),
		reporter: reporter,
		logger:   logger.With(logging.F("subsystem", "receiver")),
		clk:      clk,
		cfg:      cfg,
	}
}

// Engine exposes the scan engine bound to the frontend.
func (r *Receiver) Engine() *scan.Engine { return r.engine }

// LastTune is the result of the most recent tune.
func (r *Receiver) LastTune() demod.TuneResult { return r.last }

// Init brings the frontend up and configures the LNB. It tunes when a
// frequency is configured.
func (r *Receiver) Init(ctx context.Context) error {
	if r.cfg.PollInterval <= 0 {
		r.cfg.PollInterval = defaultPollInterval
	}
	if r.cfg.CandidateThresholdDB == 0 {
		r.cfg.CandidateThresholdDB = defaultThresholdDB
	}
	if r.cfg.Firmware == nil {
		return errors.New("init receiver: no firmware configured")
	}
	if err := r.dev.Bringup(ctx, r.cfg.Firmware); err != nil {
		return fmt.Errorf("init receiver: %w", err)
	}
	if err := r.dev.SetVoltage(ctx, r.cfg.Voltage); err != nil {
		return fmt.Errorf("init receiver: %w", err)
	}
	if err := r.dev.SetTone(ctx, r.cfg.Tone); err != nil {
		return fmt.Errorf("init receiver: %w", err)
	}
	if len(r.cfg.DiSEqC) > 0 {
		if err := r.dev.SendDiSEqC(ctx, r.cfg.DiSEqC); err != nil {
			return fmt.Errorf("init receiver: %w", err)
		}
	}
	if r.cfg.Request.FrequencyKHz == 0 {
		return nil
	}
	_, err := r.Tune(ctx, r.cfg.Request)
	return err
}

// Tune stops any scan and runs one tuning attempt.
func (r *Receiver) Tune(ctx context.Context, req demod.TuneRequest) (demod.TuneResult, error) {
	r.engine.StopActive()
	res, err := r.dev.Tune(ctx, req)
	if err != nil {
		return res, fmt.Errorf("tune: %w", err)
	}
	r.cfg.Request = req
	r.last = res
	return res, nil
}

// Run polls status at the configured interval and reports every poll.
// It returns the context error when cancelled.
func (r *Receiver) Run(ctx context.Context) error {
	if r.cfg.PollInterval <= 0 {
		r.cfg.PollInterval = defaultPollInterval
	}
	ticker := r.clk.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	polls := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
		}

		st, err := r.dev.PollStatus(ctx)
		if err != nil {
			return fmt.Errorf("poll status: %w", err)
		}
		r.updateLock(st)
		if r.reporter != nil {
			r.reporter.Report(st)
		}
		polls++
		if r.cfg.MaxPolls > 0 && polls >= r.cfg.MaxPolls {
			return nil
		}
	}
}

func (r *Receiver) updateLock(st demod.Status) {
	if st.Locked == r.locked {
		return
	}
	r.locked = st.Locked
	if st.Locked {
		r.logger.Info("lock acquired", logging.F("channel", st.Info))
		return
	}
	r.logger.Warn("lock lost", logging.Hex("lock", st.LockByte))
}

// Scan sweeps rng and returns the spectrum with detected carriers.
func (r *Receiver) Scan(ctx context.Context, rng scan.Range, resKHz uint32) (scan.SpectrumBuffer, []dsp.Candidate, error) {
	h, err := r.engine.StartSpectrum(ctx, rng, resKHz)
	if err != nil {
		return scan.SpectrumBuffer{}, nil, err
	}
	buf, err := r.engine.ReadSpectrum(h)
	if err != nil {
		return scan.SpectrumBuffer{}, nil, err
	}
	cands := dsp.Candidates(buf.Freqs[:buf.Valid], buf.Power[:buf.Valid], r.threshold())
	if sink, ok := r.reporter.(SpectrumSink); ok {
		sink.UpdateSpectrum(r.clk.Now(), buf)
	}
	r.logger.Info("sweep complete", logging.F("points", buf.Valid), logging.F("candidates", len(cands)))
	return buf, cands, nil
}

// Constellation captures up to count symbols of the tuned carrier.
func (r *Receiver) Constellation(ctx context.Context, count int) (scan.ConstellationBuffer, dsp.IQStats, error) {
	sr := r.cfg.Request.SymbolRate
	if sr == 0 {
		sr = demod.DefaultSymbolRate
	}
	h, err := r.engine.StartConstellation(ctx, count, scan.MaxConstellation(sr))
	if err != nil {
		return scan.ConstellationBuffer{}, dsp.IQStats{}, err
	}
	buf, err := r.engine.ReadConstellation(h)
	if err != nil {
		return scan.ConstellationBuffer{}, dsp.IQStats{}, err
	}
	re := make([]float64, buf.Valid)
	im := make([]float64, buf.Valid)
	for i, p := range buf.Points[:buf.Valid] {
		re[i], im[i] = float64(p.Real), float64(p.Imag)
	}
	return buf, dsp.Analyze(re, im), nil
}

func (r *Receiver) threshold() float64 {
	if r.cfg.CandidateThresholdDB == 0 {
		return defaultThresholdDB
	}
	return r.cfg.CandidateThresholdDB
}
