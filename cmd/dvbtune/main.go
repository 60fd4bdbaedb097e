package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/rjboer/GoDVB/internal/app"
	"github.com/rjboer/GoDVB/internal/auxclk"
	"github.com/rjboer/GoDVB/internal/clock"
	"github.com/rjboer/GoDVB/internal/demod"
	"github.com/rjboer/GoDVB/internal/logging"
	"github.com/rjboer/GoDVB/internal/mdns"
	"github.com/rjboer/GoDVB/internal/regbus"
	"github.com/rjboer/GoDVB/internal/scan"
	"github.com/rjboer/GoDVB/internal/synth"
	"github.com/rjboer/GoDVB/internal/tables"
	"github.com/rjboer/GoDVB/internal/telemetry"
)

func main() {
	const configPath = "dvbtune.json"

	persistentCfg, err := loadOrCreateConfig(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	cfg, err := parseConfig(os.Args[1:], os.LookupEnv, persistentCfg)
	if err != nil {
		log.Fatalf("parse config: %v", err)
	}
	if err := saveConfig(configPath, persistentFromCLI(cfg)); err != nil {
		log.Fatalf("save config: %v", err)
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	logging.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("%s: %v", cfg.mode, err)
	}
}

func run(ctx context.Context, cfg cliConfig, logger logging.Logger) error {
	settings, err := cfg.receiverConfig()
	if err != nil {
		return err
	}
	b, err := selectBackend(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("select backend: %w", err)
	}
	defer b.Close()

	dev := demod.New(b.demod, b.tuner, demod.Config{
		CrystalKHz:   uint32(cfg.crystalKHz),
		TSMode:       parseTSMode(cfg.tsMode),
		PinLevel:     byte(cfg.pinLevel),
		EnvelopeMode: cfg.envelope,
		HasCI:        b.aux != nil,
	}, clock.Real{}, logger)
	if b.aux != nil {
		gen := auxclk.New(b.aux, auxclk.DefaultCrystalHz, logger)
		if err := gen.Init(ctx); err != nil {
			return fmt.Errorf("ci clock: %w", err)
		}
		var speed demod.SpeedSource
		if cfg.ciSpeed > 0 {
			speed = fixedSpeed(cfg.ciSpeed)
		}
		dev.SetAuxClock(gen, speed)
	}

	hub := telemetry.NewHub(cfg.historyLimit, logger)
	reporters := telemetry.MultiReporter{hub}
	if !cfg.quiet {
		reporters = append(reporters, telemetry.NewStdoutReporter(logger))
	}
	rx := app.NewReceiver(dev, reporters, logger, clock.Real{}, settings)
	if err := rx.Init(ctx); err != nil {
		return err
	}

	switch cfg.mode {
	case "tune":
		res := rx.LastTune()
		logger.Info("tune finished",
			logging.F("state", res.State),
			logging.F("iterations", res.Iterations),
			logging.F("channel", res.Info))
		return nil
	case "status":
		return rx.Run(ctx)
	case "spectrum":
		return runSpectrum(ctx, rx, cfg, logger)
	case "constellation":
		return runConstellation(ctx, rx, cfg, logger)
	default:
		return fmt.Errorf("unknown mode %q", cfg.mode)
	}
}

func runSpectrum(ctx context.Context, rx *app.Receiver, cfg cliConfig, logger logging.Logger) error {
	rng := scan.Range{StartKHz: uint32(cfg.startKHz), EndKHz: uint32(cfg.endKHz)}
	buf, cands, err := rx.Scan(ctx, rng, uint32(cfg.resolutionKHz))
	if err != nil {
		return err
	}
	for i := 0; i < buf.Valid; i++ {
		fmt.Printf("%d\t%.3f\n", buf.Freqs[i], float64(buf.Power[i])/1000)
	}
	for _, c := range cands {
		logger.Info("carrier",
			logging.F("frequency_khz", c.FrequencyKHz),
			logging.F("bandwidth_khz", c.BandwidthKHz),
			logging.F("peak_db", c.PeakDB),
			logging.F("snr_db", c.SNRDB))
	}
	return nil
}

func runConstellation(ctx context.Context, rx *app.Receiver, cfg cliConfig, logger logging.Logger) error {
	buf, stats, err := rx.Constellation(ctx, cfg.points)
	if err != nil {
		return err
	}
	for _, p := range buf.Points[:buf.Valid] {
		fmt.Printf("%d\t%d\n", p.Real, p.Imag)
	}
	logger.Info("constellation",
		logging.F("points", stats.Count),
		logging.F("amplitude", stats.Amplitude),
		logging.F("mer_db", stats.MERDB))
	return nil
}

type cliConfig struct {
	mode    string
	backend string

	i2cDevice string
	demodAddr int
	tunerAddr int
	ciAddr    int
	ci        bool
	ciSpeed   int

	sshHost     string
	sshUser     string
	sshKey      string
	sshPassword string
	sshBus      int
	mdnsService string
	mdnsTimeout time.Duration

	usbVID int
	usbPID int

	firmware   string
	crystalKHz int
	tsMode     string
	pinLevel   int
	envelope   bool

	frequencyKHz int
	symbolRate   int
	system       string
	streamID     int64
	goldIndex    int
	voltage      string
	tone         bool
	diseqc       string

	pollInterval time.Duration
	polls        int

	startKHz      int
	endKHz        int
	resolutionKHz int
	thresholdDB   float64
	points        int

	historyLimit int
	logLevel     string
	logFormat    string
	quiet        bool
}

type persistentConfig struct {
	Mode          string  `json:"mode"`
	Backend       string  `json:"backend"`
	I2CDevice     string  `json:"i2c_device"`
	DemodAddr     int     `json:"demod_addr"`
	TunerAddr     int     `json:"tuner_addr"`
	CIAddr        int     `json:"ci_addr"`
	CI            bool    `json:"ci"`
	CISpeed       int     `json:"ci_speed"`
	SSHHost       string  `json:"ssh_host"`
	SSHUser       string  `json:"ssh_user"`
	SSHKey        string  `json:"ssh_key"`
	SSHBus        int     `json:"ssh_i2c_bus"`
	MDNSService   string  `json:"mdns_service"`
	MDNSTimeoutMS int     `json:"mdns_timeout_ms"`
	USBVID        int     `json:"usb_vid"`
	USBPID        int     `json:"usb_pid"`
	Firmware      string  `json:"firmware"`
	CrystalKHz    int     `json:"crystal_khz"`
	TSMode        string  `json:"ts_mode"`
	PinLevel      int     `json:"pin_level"`
	Envelope      bool    `json:"envelope"`
	FrequencyKHz  int     `json:"frequency_khz"`
	SymbolRate    int     `json:"symbol_rate"`
	System        string  `json:"system"`
	StreamID      int64   `json:"stream_id"`
	GoldIndex     int     `json:"gold_index"`
	Voltage       string  `json:"voltage"`
	Tone          bool    `json:"tone"`
	DiSEqC        string  `json:"diseqc"`
	PollMS        int     `json:"poll_ms"`
	Polls         int     `json:"polls"`
	StartKHz      int     `json:"start_khz"`
	EndKHz        int     `json:"end_khz"`
	ResolutionKHz int     `json:"resolution_khz"`
	ThresholdDB   float64 `json:"threshold_db"`
	Points        int     `json:"points"`
	HistoryLimit  int     `json:"history_limit"`
	LogLevel      string  `json:"log_level"`
	LogFormat     string  `json:"log_format"`
}

func parseConfig(args []string, lookup func(string) (string, bool), defaults persistentConfig) (cliConfig, error) {
	cfg := cliConfig{}
	var pollMS, mdnsMS int
	fs := flag.NewFlagSet("dvbtune", flag.ContinueOnError)
	fs.StringVar(&cfg.mode, "mode", envString(lookup, "DVB_MODE", defaults.Mode), "Operation (tune|status|spectrum|constellation)")
	fs.StringVar(&cfg.backend, "backend", envString(lookup, "DVB_BACKEND", defaults.Backend), "Register backend (mock|i2c|ssh|usb)")
	fs.StringVar(&cfg.i2cDevice, "i2c-device", envString(lookup, "DVB_I2C_DEVICE", defaults.I2CDevice), "Local I2C adapter")
	fs.IntVar(&cfg.demodAddr, "demod-addr", envInt(lookup, "DVB_DEMOD_ADDR", defaults.DemodAddr), "Demodulator I2C address")
	fs.IntVar(&cfg.tunerAddr, "tuner-addr", envInt(lookup, "DVB_TUNER_ADDR", defaults.TunerAddr), "Tuner I2C address")
	fs.IntVar(&cfg.ciAddr, "ci-addr", envInt(lookup, "DVB_CI_ADDR", defaults.CIAddr), "Si5351 I2C address")
	fs.BoolVar(&cfg.ci, "ci", envBool(lookup, "DVB_CI", defaults.CI), "Board has a CI clock generator")
	fs.IntVar(&cfg.ciSpeed, "ci-speed", envInt(lookup, "DVB_CI_SPEED", defaults.CISpeed), "CAM transport speed; 0 keeps the boot clock")
	fs.StringVar(&cfg.sshHost, "ssh-host", envString(lookup, "DVB_SSH_HOST", defaults.SSHHost), "SSH register host (host or host:port, empty to discover)")
	fs.StringVar(&cfg.sshUser, "ssh-user", envString(lookup, "DVB_SSH_USER", defaults.SSHUser), "SSH user")
	fs.StringVar(&cfg.sshKey, "ssh-key", envString(lookup, "DVB_SSH_KEY", defaults.SSHKey), "SSH private key path")
	fs.StringVar(&cfg.sshPassword, "ssh-password", envString(lookup, "DVB_SSH_PASSWORD", ""), "SSH password (not persisted)")
	fs.IntVar(&cfg.sshBus, "ssh-i2c-bus", envInt(lookup, "DVB_SSH_I2C_BUS", defaults.SSHBus), "Remote /dev/i2c-N")
	fs.StringVar(&cfg.mdnsService, "mdns-service", envString(lookup, "DVB_MDNS_SERVICE", defaults.MDNSService), "mDNS service browsed for register hosts")
	fs.IntVar(&mdnsMS, "mdns-timeout-ms", envInt(lookup, "DVB_MDNS_TIMEOUT_MS", defaults.MDNSTimeoutMS), "mDNS browse time")
	fs.IntVar(&cfg.usbVID, "usb-vid", envInt(lookup, "DVB_USB_VID", defaults.USBVID), "USB bridge vendor id")
	fs.IntVar(&cfg.usbPID, "usb-pid", envInt(lookup, "DVB_USB_PID", defaults.USBPID), "USB bridge product id")
	fs.StringVar(&cfg.firmware, "firmware", envString(lookup, "DVB_FIRMWARE", defaults.Firmware), "Demodulator firmware image")
	fs.IntVar(&cfg.crystalKHz, "crystal-khz", envInt(lookup, "DVB_CRYSTAL_KHZ", defaults.CrystalKHz), "Tuner crystal (27000|24000)")
	fs.StringVar(&cfg.tsMode, "ts-mode", envString(lookup, "DVB_TS_MODE", defaults.TSMode), "Transport output (parallel|serial|common)")
	fs.IntVar(&cfg.pinLevel, "pin-level", envInt(lookup, "DVB_PIN_LEVEL", defaults.PinLevel), "Transport pin drive level (0-3)")
	fs.BoolVar(&cfg.envelope, "envelope", envBool(lookup, "DVB_ENVELOPE", defaults.Envelope), "DiSEqC envelope output")
	fs.IntVar(&cfg.frequencyKHz, "frequency-khz", envInt(lookup, "DVB_FREQUENCY_KHZ", defaults.FrequencyKHz), "L-band frequency in kHz")
	fs.IntVar(&cfg.symbolRate, "symbol-rate", envInt(lookup, "DVB_SYMBOL_RATE", defaults.SymbolRate), "Symbol rate in symbols/s")
	fs.StringVar(&cfg.system, "system", envString(lookup, "DVB_SYSTEM", defaults.System), "Delivery system (dvbs|dvbs2|dvbs2x|auto)")
	fs.Int64Var(&cfg.streamID, "stream-id", envInt64(lookup, "DVB_STREAM_ID", defaults.StreamID), "Packed stream id, -1 for no filter")
	fs.IntVar(&cfg.goldIndex, "gold-index", envInt(lookup, "DVB_GOLD_INDEX", defaults.GoldIndex), "Scrambling gold index, 0 to use the stream id")
	fs.StringVar(&cfg.voltage, "voltage", envString(lookup, "DVB_VOLTAGE", defaults.Voltage), "LNB voltage (off|13|18)")
	fs.BoolVar(&cfg.tone, "tone", envBool(lookup, "DVB_TONE", defaults.Tone), "22 kHz tone")
	fs.StringVar(&cfg.diseqc, "diseqc", envString(lookup, "DVB_DISEQC", defaults.DiSEqC), "DiSEqC command as hex, sent before tuning")
	fs.IntVar(&pollMS, "poll-ms", envInt(lookup, "DVB_POLL_MS", defaults.PollMS), "Status poll interval")
	fs.IntVar(&cfg.polls, "polls", envInt(lookup, "DVB_POLLS", defaults.Polls), "Status polls before exit, 0 to run until interrupted")
	fs.IntVar(&cfg.startKHz, "start-khz", envInt(lookup, "DVB_START_KHZ", defaults.StartKHz), "Spectrum start in kHz")
	fs.IntVar(&cfg.endKHz, "end-khz", envInt(lookup, "DVB_END_KHZ", defaults.EndKHz), "Spectrum end in kHz")
	fs.IntVar(&cfg.resolutionKHz, "resolution-khz", envInt(lookup, "DVB_RESOLUTION_KHZ", defaults.ResolutionKHz), "Spectrum step in kHz")
	fs.Float64Var(&cfg.thresholdDB, "threshold-db", envFloat(lookup, "DVB_THRESHOLD_DB", defaults.ThresholdDB), "Carrier threshold above the noise floor")
	fs.IntVar(&cfg.points, "points", envInt(lookup, "DVB_POINTS", defaults.Points), "Constellation points to capture")
	fs.IntVar(&cfg.historyLimit, "history-limit", envInt(lookup, "DVB_HISTORY_LIMIT", defaults.HistoryLimit), "Maximum samples to keep in telemetry history")
	fs.StringVar(&cfg.logLevel, "log-level", envString(lookup, "DVB_LOG_LEVEL", defaults.LogLevel), "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.logFormat, "log-format", envString(lookup, "DVB_LOG_FORMAT", defaults.LogFormat), "Log format (text|json)")
	fs.BoolVar(&cfg.quiet, "quiet", envBool(lookup, "DVB_QUIET", false), "Do not log every status poll")

	if err := fs.Parse(args); err != nil {
		return cliConfig{}, err
	}
	cfg.pollInterval = time.Duration(pollMS) * time.Millisecond
	cfg.mdnsTimeout = time.Duration(mdnsMS) * time.Millisecond
	return cfg, nil
}

// receiverConfig converts the flat CLI settings into the receiver's view.
func (c cliConfig) receiverConfig() (app.Config, error) {
	sys, err := parseSystem(c.system)
	if err != nil {
		return app.Config{}, err
	}
	volt, err := parseVoltage(c.voltage)
	if err != nil {
		return app.Config{}, err
	}
	var cmd []byte
	if c.diseqc != "" {
		cmd, err = hex.DecodeString(strings.ReplaceAll(c.diseqc, " ", ""))
		if err != nil {
			return app.Config{}, fmt.Errorf("diseqc: %w", err)
		}
	}
	sid := demod.StreamID(demod.NoStreamFilter)
	if c.streamID >= 0 {
		sid = demod.StreamID(uint32(c.streamID))
	}
	if c.firmware == "" && c.backend != "mock" {
		return app.Config{}, errors.New("no firmware image configured")
	}
	var fw demod.FirmwareLoader = demod.FirmwareFile(c.firmware)
	if c.backend == "mock" && c.firmware == "" {
		fw = demod.FirmwareBytes(make([]byte, 64))
	}
	return app.Config{
		Firmware: fw,
		Request: demod.TuneRequest{
			FrequencyKHz:    uint32(c.frequencyKHz),
			SymbolRate:      uint32(c.symbolRate),
			System:          sys,
			StreamID:        sid,
			ScramblingIndex: uint32(c.goldIndex),
		},
		Voltage:              volt,
		Tone:                 c.tone,
		DiSEqC:               cmd,
		PollInterval:         c.pollInterval,
		MaxPolls:             c.polls,
		CandidateThresholdDB: c.thresholdDB,
	}, nil
}

func persistentFromCLI(cfg cliConfig) persistentConfig {
	return persistentConfig{
		Mode:          cfg.mode,
		Backend:       cfg.backend,
		I2CDevice:     cfg.i2cDevice,
		DemodAddr:     cfg.demodAddr,
		TunerAddr:     cfg.tunerAddr,
		CIAddr:        cfg.ciAddr,
		CI:            cfg.ci,
		CISpeed:       cfg.ciSpeed,
		SSHHost:       cfg.sshHost,
		SSHUser:       cfg.sshUser,
		SSHKey:        cfg.sshKey,
		SSHBus:        cfg.sshBus,
		MDNSService:   cfg.mdnsService,
		MDNSTimeoutMS: int(cfg.mdnsTimeout / time.Millisecond),
		USBVID:        cfg.usbVID,
		USBPID:        cfg.usbPID,
		Firmware:      cfg.firmware,
		CrystalKHz:    cfg.crystalKHz,
		TSMode:        cfg.tsMode,
		PinLevel:      cfg.pinLevel,
		Envelope:      cfg.envelope,
		FrequencyKHz:  cfg.frequencyKHz,
		SymbolRate:    cfg.symbolRate,
		System:        cfg.system,
		StreamID:      cfg.streamID,
		GoldIndex:     cfg.goldIndex,
		Voltage:       cfg.voltage,
		Tone:          cfg.tone,
		DiSEqC:        cfg.diseqc,
		PollMS:        int(cfg.pollInterval / time.Millisecond),
		Polls:         cfg.polls,
		StartKHz:      cfg.startKHz,
		EndKHz:        cfg.endKHz,
		ResolutionKHz: cfg.resolutionKHz,
		ThresholdDB:   cfg.thresholdDB,
		Points:        cfg.points,
		HistoryLimit:  cfg.historyLimit,
		LogLevel:      cfg.logLevel,
		LogFormat:     cfg.logFormat,
	}
}

func loadOrCreateConfig(path string) (persistentConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := defaultPersistentConfig()
			if saveErr := saveConfig(path, cfg); saveErr != nil {
				return persistentConfig{}, saveErr
			}
			return cfg, nil
		}
		return persistentConfig{}, err
	}
	defer f.Close()

	cfg := defaultPersistentConfig()
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return persistentConfig{}, err
	}
	return cfg, nil
}

func saveConfig(path string, cfg persistentConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func defaultPersistentConfig() persistentConfig {
	return persistentConfig{
		Mode:          "status",
		Backend:       "mock",
		I2CDevice:     "/dev/i2c-0",
		DemodAddr:     0x69,
		TunerAddr:     0x2c,
		CIAddr:        0x60,
		SSHUser:       "root",
		SSHBus:        0,
		MDNSService:   mdns.DefaultService,
		MDNSTimeoutMS: 3000,
		USBVID:        0x04b4,
		USBPID:        0x1004,
		CrystalKHz:    27000,
		TSMode:        "parallel",
		FrequencyKHz:  1200000,
		SymbolRate:    27500000,
		System:        "auto",
		StreamID:      -1,
		Voltage:       "13",
		PollMS:        1000,
		StartKHz:      950000,
		EndKHz:        2150000,
		ResolutionKHz: scan.DefaultResolutionKHz,
		ThresholdDB:   3,
		Points:        scan.MaxConstellationPoints,
		HistoryLimit:  500,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

func envFloat(lookup func(string) (string, bool), key string, def float64) float64 {
	if val, ok := lookup(key); ok {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return def
}

func envInt(lookup func(string) (string, bool), key string, def int) int {
	if val, ok := lookup(key); ok {
		if parsed, err := strconv.ParseInt(val, 0, 0); err == nil {
			return int(parsed)
		}
	}
	return def
}

func envInt64(lookup func(string) (string, bool), key string, def int64) int64 {
	if val, ok := lookup(key); ok {
		if parsed, err := strconv.ParseInt(val, 0, 64); err == nil {
			return parsed
		}
	}
	return def
}

func envBool(lookup func(string) (string, bool), key string, def bool) bool {
	if val, ok := lookup(key); ok {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return def
}

func envString(lookup func(string) (string, bool), key, def string) string {
	if val, ok := lookup(key); ok {
		return val
	}
	return def
}

func newLogger(cfg cliConfig, out io.Writer) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.logLevel)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.logFormat)
	if err != nil {
		return nil, err
	}
	return logging.New(level, format, out), nil
}

func parseSystem(s string) (tables.DeliverySystem, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dvbs", "dvb-s", "s1":
		return tables.S1, nil
	case "dvbs2", "dvb-s2", "s2":
		return tables.S2, nil
	case "dvbs2x", "dvb-s2x", "s2x":
		return tables.S2X, nil
	case "auto", "":
		return tables.Auto, nil
	default:
		return tables.SystemUndefined, fmt.Errorf("unknown delivery system %q", s)
	}
}

func parseVoltage(s string) (demod.Voltage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "":
		return demod.VoltageOff, nil
	case "13":
		return demod.Voltage13, nil
	case "18":
		return demod.Voltage18, nil
	default:
		return demod.VoltageOff, fmt.Errorf("unknown lnb voltage %q", s)
	}
}

func parseTSMode(s string) synth.TSMode {
	switch strings.ToLower(s) {
	case "serial":
		return synth.TSSerial
	case "common":
		return synth.TSCommon
	default:
		return synth.TSParallel
	}
}

// fixedSpeed reports a configured CAM transport speed.
type fixedSpeed uint32

func (s fixedSpeed) TransportSpeed(context.Context) (uint32, error) { return uint32(s), nil }

// backend is the set of register buses for one board.
type backend struct {
	demod regbus.Bus
	tuner regbus.Bus
	// aux is nil on boards without a CI clock generator.
	aux     regbus.Bus
	closers []io.Closer
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i].Close()
	}
}

func selectBackend(ctx context.Context, cfg cliConfig, logger logging.Logger) (*backend, error) {
	switch cfg.backend {
	case "mock":
		return mockBackend(cfg), nil
	case "i2c":
		return i2cBackend(cfg)
	case "ssh":
		return sshBackend(ctx, cfg, logger)
	case "usb":
		return usbBackend(cfg)
	default:
		return nil, fmt.Errorf("unknown backend %s", cfg.backend)
	}
}

// mockBackend simulates a board holding lock on a DVB-S2 carrier.
func mockBackend(cfg cliConfig) *backend {
	dm := regbus.NewMock()
	dm.Port(0xb0)
	dm.Set(0xb9, 0x01)
	dm.Set(0x0d, demod.LockS2)
	dm.Set(0x39, 0x80)
	dm.OnWrite(0x08, func(v byte) byte { return v | 0x08 })
	b := &backend{demod: dm, tuner: regbus.NewGated(dm, regbus.NewMock())}
	if cfg.ci {
		b.aux = regbus.NewMock()
	}
	return b
}

func i2cBackend(cfg cliConfig) (*backend, error) {
	b := &backend{}
	dm, err := regbus.OpenI2C(cfg.i2cDevice, uint8(cfg.demodAddr))
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, dm)
	tn, err := regbus.OpenI2C(cfg.i2cDevice, uint8(cfg.tunerAddr))
	if err != nil {
		b.Close()
		return nil, err
	}
	b.closers = append(b.closers, tn)
	b.demod, b.tuner = dm, regbus.NewGated(dm, tn)
	if cfg.ci {
		aux, err := regbus.OpenI2C(cfg.i2cDevice, uint8(cfg.ciAddr))
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, aux)
		b.aux = aux
	}
	return b, nil
}

func sshBackend(ctx context.Context, cfg cliConfig, logger logging.Logger) (*backend, error) {
	base := regbus.SSHConfig{
		Host:     cfg.sshHost,
		User:     cfg.sshUser,
		Password: cfg.sshPassword,
		KeyPath:  cfg.sshKey,
		I2CBus:   cfg.sshBus,
	}
	if base.Host == "" {
		host, err := discoverHost(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("using discovered host", logging.F("instance", host.Instance), logging.F("addr", host.Addr()))
		base.Host = host.Addr()
		if v, ok := host.TXTValue("i2c_bus"); ok {
			if n, err := strconv.Atoi(v); err == nil {
				base.I2CBus = n
			}
		}
	}
	if h, p, err := net.SplitHostPort(base.Host); err == nil {
		base.Host = h
		if n, err := strconv.Atoi(p); err == nil {
			base.Port = n
		}
	}

	b := &backend{}
	open := func(chip int) (*regbus.SSHBus, error) {
		c := base
		c.Chip = uint8(chip)
		bus, err := regbus.NewSSHBus(c)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, bus)
		return bus, nil
	}
	dm, err := open(cfg.demodAddr)
	if err != nil {
		return nil, err
	}
	tn, err := open(cfg.tunerAddr)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.demod, b.tuner = dm, regbus.NewGated(dm, tn)
	if cfg.ci {
		aux, err := open(cfg.ciAddr)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.aux = aux
	}
	return b, nil
}

func discoverHost(ctx context.Context, cfg cliConfig) (mdns.Host, error) {
	timeout := cfg.mdnsTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	hosts, err := mdns.DiscoverTuners(dctx, cfg.mdnsService)
	if err != nil {
		return mdns.Host{}, fmt.Errorf("discover tuners: %w", err)
	}
	if len(hosts) == 0 {
		return mdns.Host{}, fmt.Errorf("no %s hosts found", cfg.mdnsService)
	}
	return hosts[0], nil
}

func usbBackend(cfg cliConfig) (*backend, error) {
	dm, err := regbus.OpenUSB(uint16(cfg.usbVID), uint16(cfg.usbPID), uint8(cfg.demodAddr))
	if err != nil {
		return nil, err
	}
	b := &backend{closers: []io.Closer{dm}}
	b.demod, b.tuner = dm, regbus.NewGated(dm, dm.OnChip(uint8(cfg.tunerAddr)))
	if cfg.ci {
		b.aux = dm.OnChip(uint8(cfg.ciAddr))
	}
	return b, nil
}
