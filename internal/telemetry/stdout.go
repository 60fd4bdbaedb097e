package telemetry

import (
	"time"

	"github.com/rjboer/GoDVB/internal/demod"
	"github.com/rjboer/GoDVB/internal/logging"
	"github.com/rjboer/GoDVB/internal/scan"
)

// Reporter receives status polls.
type Reporter interface {
	Report(st demod.Status)
}

// StdoutReporter logs every status.
type StdoutReporter struct {
	logger logging.Logger
}

// NewStdoutReporter builds a reporter on logger.
func NewStdoutReporter(logger logging.Logger) StdoutReporter {
	if logger == nil {
		logger = logging.Default()
	}
	return StdoutReporter{logger: logger}
}

func (r StdoutReporter) Report(st demod.Status) {
	fields := []logging.Field{
		{Key: "subsystem", Value: "telemetry"},
		{Key: "state", Value: st.State},
		{Key: "locked", Value: st.Locked},
		{Key: "system", Value: st.System},
		{Key: "strength_dbm", Value: float64(st.Strength.MilliDB) / 1000},
		logging.Hex("lock", st.LockByte),
	}
	if st.CNRValid {
		fields = append(fields, logging.Field{Key: "cnr_db", Value: float64(st.CNRMilliDB) / 1000})
	}
	if st.BERBits != 0 {
		fields = append(fields,
			logging.Field{Key: "ber", Value: st.BER},
			logging.Field{Key: "ber_bits", Value: st.BERBits},
		)
	}
	if st.Locked {
		fields = append(fields, logging.Field{Key: "channel", Value: st.Info})
	}
	r.logger.Info("status", fields...)
}

// MultiReporter fans a status out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) Report(st demod.Status) {
	for _, r := range m {
		if r != nil {
			r.Report(st)
		}
	}
}

// UpdateSpectrum forwards a sweep to every reporter that keeps spectra.
func (m MultiReporter) UpdateSpectrum(at time.Time, buf scan.SpectrumBuffer) {
	for _, r := range m {
		if s, ok := r.(interface {
			UpdateSpectrum(time.Time, scan.SpectrumBuffer)
		}); ok {
			s.UpdateSpectrum(at, buf)
		}
	}
}
