//go:build !linux

package regbus

import (
	"context"
	"errors"
)

var errNoI2CDev = errors.New("i2c-dev is only available on linux")

// I2CDev is unavailable off linux.
type I2CDev struct{}

func OpenI2C(path string, addr uint8) (*I2CDev, error) { return nil, errNoI2CDev }

func (d *I2CDev) Close() error { return nil }

func (d *I2CDev) Read(context.Context, byte) (byte, error) { return 0, errNoI2CDev }

func (d *I2CDev) Write(context.Context, byte, byte) error { return errNoI2CDev }

func (d *I2CDev) WriteBurst(context.Context, byte, []byte) error { return errNoI2CDev }

func (d *I2CDev) ReadBurst(context.Context, byte, int) ([]byte, error) { return nil, errNoI2CDev }
