package telemetry

import (
	"fmt"
	"sync"
	"time"

	"github.com/rjboer/GoDVB/internal/demod"
	"github.com/rjboer/GoDVB/internal/logging"
	"github.com/rjboer/GoDVB/internal/scan"
)

// Config bounds what the hub retains.
type Config struct {
	HistoryLimit int `json:"historyLimit"`
	// SubscriberBuffer is the channel depth handed to each subscriber.
	SubscriberBuffer int `json:"subscriberBuffer"`
}

const (
	minHistoryLimit = 1
	maxHistoryLimit = 10_000
	maxSubscriber   = 1024
)

func defaultConfig() Config {
	return Config{
		HistoryLimit:     500,
		SubscriberBuffer: 16,
	}
}

func validateConfig(cfg Config) (Config, error) {
	def := defaultConfig()
	if cfg.HistoryLimit == 0 {
		cfg.HistoryLimit = def.HistoryLimit
	}
	if cfg.SubscriberBuffer == 0 {
		cfg.SubscriberBuffer = def.SubscriberBuffer
	}
	if cfg.HistoryLimit < minHistoryLimit || cfg.HistoryLimit > maxHistoryLimit {
		return Config{}, fmt.Errorf("history limit must be between %d and %d", minHistoryLimit, maxHistoryLimit)
	}
	if cfg.SubscriberBuffer < 1 || cfg.SubscriberBuffer > maxSubscriber {
		return Config{}, fmt.Errorf("subscriber buffer must be between 1 and %d", maxSubscriber)
	}
	return cfg, nil
}

// Sample is one reported status in a flat, serialisable form.
type Sample struct {
	Timestamp   time.Time `json:"timestamp"`
	State       string    `json:"state"`
	Locked      bool      `json:"locked"`
	System      string    `json:"system"`
	Channel     string    `json:"channel,omitempty"`
	StrengthDBm float64   `json:"strengthDbm"`
	CNRDB       float64   `json:"cnrDb,omitempty"`
	BER         float64   `json:"ber"`
}

// SampleFromStatus flattens a demodulator status.
func SampleFromStatus(st demod.Status) Sample {
	s := Sample{
		Timestamp:   st.Time,
		State:       st.State.String(),
		Locked:      st.Locked,
		System:      st.System.String(),
		StrengthDBm: float64(st.Strength.MilliDB) / 1000,
		BER:         st.BER,
	}
	if st.Locked {
		s.Channel = st.Info.String()
	}
	if st.CNRValid {
		s.CNRDB = float64(st.CNRMilliDB) / 1000
	}
	return s
}

// SpectrumSnapshot is the last completed sweep.
type SpectrumSnapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Freqs     []uint32  `json:"freqsKhz"`
	Power     []int32   `json:"powerMdb"`
}

// Hub collects history and fans status updates out to subscribers.
type Hub struct {
	mu          sync.RWMutex
	history     []Sample
	config      Config
	subscribers map[chan Sample]struct{}
	spectrum    SpectrumSnapshot
	dropped     uint64
	logger      logging.Logger
}

// NewHub builds a hub keeping at most historyLimit samples.
func NewHub(historyLimit int, logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	cfg, err := validateConfig(Config{HistoryLimit: historyLimit})
	if err != nil {
		logger.Warn("telemetry config rejected, using defaults", logging.F("error", err))
		cfg = defaultConfig()
	}
	return &Hub{
		config:      cfg,
		subscribers: make(map[chan Sample]struct{}),
		logger:      logger.With(logging.F("subsystem", "telemetry")),
	}
}

// Report implements Reporter.
func (h *Hub) Report(st demod.Status) {
	sample := SampleFromStatus(st)

	h.mu.Lock()
	h.history = append(h.history, sample)
	if len(h.history) > h.config.HistoryLimit {
		h.history = h.history[len(h.history)-h.config.HistoryLimit:]
	}
	for ch := range h.subscribers {
		select {
		case ch <- sample:
		default:
			h.dropped++
		}
	}
	h.mu.Unlock()
}

// History returns a copy of the stored samples.
func (h *Hub) History() []Sample {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Sample, len(h.history))
	copy(out, h.history)
	return out
}

// Dropped counts samples a slow subscriber missed.
func (h *Hub) Dropped() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// ConfigSnapshot returns the active configuration.
func (h *Hub) ConfigSnapshot() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.config
}

// SetConfig validates and applies cfg, trimming history if needed.
func (h *Hub) SetConfig(cfg Config) error {
	cfg, err := validateConfig(cfg)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.config = cfg
	if len(h.history) > cfg.HistoryLimit {
		h.history = h.history[len(h.history)-cfg.HistoryLimit:]
	}
	h.mu.Unlock()
	return nil
}

// Subscribe registers a listener for live updates.
func (h *Hub) Subscribe() (<-chan Sample, func()) {
	h.mu.Lock()
	ch := make(chan Sample, h.config.SubscriberBuffer)
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, ch)
			close(ch)
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// UpdateSpectrum records the valid part of a sweep.
func (h *Hub) UpdateSpectrum(at time.Time, buf scan.SpectrumBuffer) {
	snap := SpectrumSnapshot{
		Timestamp: at,
		Freqs:     append([]uint32(nil), buf.Freqs[:buf.Valid]...),
		Power:     append([]int32(nil), buf.Power[:buf.Valid]...),
	}
	h.mu.Lock()
	h.spectrum = snap
	h.mu.Unlock()
	h.logger.Debug("spectrum snapshot", logging.F("points", buf.Valid))
}

// Spectrum returns the last recorded sweep.
func (h *Hub) Spectrum() SpectrumSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.spectrum
}
