package quality

import (
	"context"
	"errors"
	"fmt"

	"github.com/rjboer/GoDVB/internal/regbus"
	"github.com/rjboer/GoDVB/internal/tables"
)

// Samples is the number of readings averaged per CNR estimate.
const Samples = 10

// ErrSystem is returned for delivery systems without a quality model.
var ErrSystem = errors.New("quality: unsupported delivery system")

// S2Sample is one 0x8c..0x8e burst.
type S2Sample [3]byte

// Noise is bits 13:2 of the noise power register pair.
func (s S2Sample) Noise() uint32 {
	n := uint32(s[1])<<6 | uint32(s[0]&0x3f)
	return n >> 2
}

// Signal is half the squared amplitude.
func (s S2Sample) Signal() uint32 {
	return uint32(s[2]) * uint32(s[2]) >> 1
}

// CNRS1 estimates DVB-S CNR in 0.001 dB from 0xff readings.
func CNRS1(samples []byte) int32 {
	var sum uint32
	for _, v := range samples {
		sum += uint32(v)
	}
	temp := sum / 80
	if temp > 32 {
		temp = 32
	}
	if temp <= 1 {
		return 0
	}
	return int32(tables.Ln[temp-1]) * 10 / 23
}

// CNRS2 estimates DVB-S2 CNR in 0.001 dB. A noise floor above the signal
// reports the same magnitude as the inverse ratio.
func CNRS2(samples []S2Sample) int32 {
	if len(samples) == 0 {
		return 0
	}
	var noiseTot, signalTot uint32
	for _, s := range samples {
		noiseTot += s.Noise()
		signalTot += s.Signal()
	}
	noise := noiseTot / uint32(len(samples))
	signal := signalTot / uint32(len(samples))
	switch {
	case signal == 0:
		return 0
	case noise == 0:
		return 19
	case signal > noise:
		return int32(tables.Log10[log10Index(signal/noise)])
	case signal < noise:
		return int32(tables.Log10[log10Index(noise/signal)])
	default:
		return 0
	}
}

// log10Index maps a ratio of at least 1 into the Log10 table.
func log10Index(ratio uint32) int {
	if ratio > uint32(len(tables.Log10)) {
		ratio = uint32(len(tables.Log10))
	}
	if ratio < 1 {
		ratio = 1
	}
	return int(ratio - 1)
}

// RelativeCNR scales a CNR in 0.001 dB to the 16-bit relative range.
func RelativeCNR(milliDB int32) uint16 {
	if milliDB <= 0 {
		return 0
	}
	v := uint32(milliDB/100) * 328
	if v > 0xffff {
		v = 0xffff
	}
	return uint16(v)
}

// ReadCNR samples the demodulator and returns CNR in 0.001 dB. S2X shares
// the DVB-S2 estimator.
func ReadCNR(ctx context.Context, demod regbus.Bus, sys tables.DeliverySystem) (int32, error) {
	switch sys {
	case tables.S1:
		samples := make([]byte, Samples)
		for i := range samples {
			v, err := demod.Read(ctx, 0xff)
			if err != nil {
				return 0, fmt.Errorf("read cnr: %w", err)
			}
			samples[i] = v
		}
		return CNRS1(samples), nil
	case tables.S2, tables.S2X:
		samples := make([]S2Sample, Samples)
		for i := range samples {
			b, err := demod.ReadBurst(ctx, 0x8c, 3)
			if err != nil {
				return 0, fmt.Errorf("read cnr: %w", err)
			}
			copy(samples[i][:], b)
		}
		return CNRS2(samples), nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrSystem, sys)
	}
}
