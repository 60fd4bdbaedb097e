//go:build linux

package regbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// i2cSlave is the I2C_SLAVE ioctl from linux/i2c-dev.h.
const i2cSlave = 0x0703

// I2CDev talks to a chip through /dev/i2c-N.
type I2CDev struct {
	mu   sync.Mutex
	fd   int
	path string
	addr uint8
}

// OpenI2C opens path and binds the file descriptor to the 7-bit address.
func OpenI2C(path string, addr uint8) (*I2CDev, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := unix.IoctlSetInt(fd, i2cSlave, int(addr)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind i2c address 0x%02x: %w", addr, err)
	}
	return &I2CDev{fd: fd, path: path, addr: addr}, nil
}

// Close releases the descriptor.
func (d *I2CDev) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}

func (d *I2CDev) xfer(op string, addr byte, out []byte, in []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fd < 0 {
		return &TransportError{Op: op, Addr: addr, Err: errors.New("device closed")}
	}
	if _, err := unix.Write(d.fd, out); err != nil {
		return &TransportError{Op: op, Addr: addr, Err: err}
	}
	if len(in) == 0 {
		return nil
	}
	n, err := unix.Read(d.fd, in)
	if err != nil {
		return &TransportError{Op: op, Addr: addr, Err: err}
	}
	if n != len(in) {
		return &TransportError{Op: op, Addr: addr, Err: fmt.Errorf("short read %d/%d", n, len(in))}
	}
	return nil
}

func (d *I2CDev) Read(ctx context.Context, addr byte) (byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	buf := make([]byte, 1)
	if err := d.xfer("read", addr, []byte{addr}, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (d *I2CDev) Write(ctx context.Context, addr, val byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.xfer("write", addr, []byte{addr, val}, nil)
}

func (d *I2CDev) WriteBurst(ctx context.Context, addr byte, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := make([]byte, 0, len(data)+1)
	msg = append(msg, addr)
	msg = append(msg, data...)
	return d.xfer("burst", addr, msg, nil)
}

func (d *I2CDev) ReadBurst(ctx context.Context, addr byte, n int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if err := d.xfer("read", addr, []byte{addr}, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
