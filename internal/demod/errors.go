package demod

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned before a successful Bringup.
	ErrNotReady = errors.New("demod: not ready")
	// ErrFirmware is returned when the firmware does not report a version.
	ErrFirmware = errors.New("demod: firmware did not run")
	// ErrDiSEqCTimeout is returned when the SEC transmitter stays busy.
	ErrDiSEqCTimeout = errors.New("demod: diseqc transmit timeout")
)

// ParameterError rejects a request before any register is written.
type ParameterError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("demod: invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// IsParameter reports whether err is a *ParameterError.
func IsParameter(err error) bool {
	var pe *ParameterError
	return errors.As(err, &pe)
}
