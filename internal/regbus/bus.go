// Package regbus provides byte-wide register access to the demodulator and
// the tuner sitting behind its I2C repeater.
package regbus

import (
	"context"
	"errors"
	"fmt"
)

// Bus reads and writes 8-bit registers on one device.
type Bus interface {
	Read(ctx context.Context, addr byte) (byte, error)
	Write(ctx context.Context, addr, val byte) error
	// WriteBurst writes data to consecutive transfers starting at addr.
	WriteBurst(ctx context.Context, addr byte, data []byte) error
	ReadBurst(ctx context.Context, addr byte, n int) ([]byte, error)
}

// TransportError wraps a failed bus transaction.
type TransportError struct {
	Op   string
	Addr byte
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("regbus %s 0x%02x: %v", e.Op, e.Addr, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err originated on the bus.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Update performs a read-modify-write of the bits selected by mask.
func Update(ctx context.Context, b Bus, addr, mask, val byte) error {
	cur, err := b.Read(ctx, addr)
	if err != nil {
		return err
	}
	next := (cur &^ mask) | (val & mask)
	return b.Write(ctx, addr, next)
}

// SetBits ORs bits into addr.
func SetBits(ctx context.Context, b Bus, addr, bits byte) error {
	return Update(ctx, b, addr, bits, bits)
}

// ClearBits clears bits in addr.
func ClearBits(ctx context.Context, b Bus, addr, bits byte) error {
	return Update(ctx, b, addr, bits, 0)
}

// WriteSeq writes pairs in order and stops at the first failure.
func WriteSeq(ctx context.Context, b Bus, pairs ...[2]byte) error {
	for _, p := range pairs {
		if err := b.Write(ctx, p[0], p[1]); err != nil {
			return err
		}
	}
	return nil
}
