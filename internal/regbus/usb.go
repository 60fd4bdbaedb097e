package regbus

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/gousb"
)

const (
	requestTypeVendorIn  = 0xC0
	requestTypeVendorOut = 0x40

	// Vendor requests understood by USB-I2C bridge firmware.
	usbReqI2CRead  = 0x01
	usbReqI2CWrite = 0x02
)

// ControlDevice is the subset of *gousb.Device used by USBBus.
type ControlDevice interface {
	Control(rType, request uint8, val, idx uint16, data []byte) (int, error)
	Close() error
}

// USBBus reaches the chip through a USB bridge using vendor control
// transfers. wValue carries the I2C address and wIndex the register.
type USBBus struct {
	mu   sync.Mutex
	dev  ControlDevice
	usb  *gousb.Context
	chip uint8
}

// OpenUSB opens the first bridge matching vid:pid.
func OpenUSB(vid, pid uint16, chip uint8) (*USBBus, error) {
	ctx := gousb.NewContext()
	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("open usb bridge %04x:%04x: %w", vid, pid, err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("usb bridge %04x:%04x not found", vid, pid)
	}
	if err := dev.SetAutoDetach(true); err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("enable auto-detach: %w", err)
	}
	return &USBBus{dev: dev, usb: ctx, chip: chip}, nil
}

// NewUSBBus wraps an already-open control device.
func NewUSBBus(dev ControlDevice, chip uint8) *USBBus {
	return &USBBus{dev: dev, chip: chip}
}

// OnChip returns a bus on the same bridge addressing another chip. Closing
// it leaves the bridge open.
func (u *USBBus) OnChip(chip uint8) *USBBus {
	u.mu.Lock()
	defer u.mu.Unlock()
	return &USBBus{dev: sharedDevice{u.dev}, chip: chip}
}

type sharedDevice struct{ ControlDevice }

func (sharedDevice) Close() error { return nil }

// Close releases the device and its USB context.
func (u *USBBus) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	var err error
	if u.dev != nil {
		err = u.dev.Close()
		u.dev = nil
	}
	if u.usb != nil {
		if cerr := u.usb.Close(); err == nil {
			err = cerr
		}
		u.usb = nil
	}
	return err
}

func (u *USBBus) control(op string, rType, req uint8, addr byte, data []byte) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.dev == nil {
		return &TransportError{Op: op, Addr: addr, Err: fmt.Errorf("device closed")}
	}
	n, err := u.dev.Control(rType, req, uint16(u.chip), uint16(addr), data)
	if err != nil {
		return &TransportError{Op: op, Addr: addr, Err: err}
	}
	if n != len(data) {
		return &TransportError{Op: op, Addr: addr, Err: fmt.Errorf("short transfer %d/%d", n, len(data))}
	}
	return nil
}

func (u *USBBus) Read(ctx context.Context, addr byte) (byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	buf := make([]byte, 1)
	if err := u.control("read", requestTypeVendorIn, usbReqI2CRead, addr, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (u *USBBus) Write(ctx context.Context, addr, val byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return u.control("write", requestTypeVendorOut, usbReqI2CWrite, addr, []byte{val})
}

func (u *USBBus) WriteBurst(ctx context.Context, addr byte, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return u.control("burst", requestTypeVendorOut, usbReqI2CWrite, addr, append([]byte(nil), data...))
}

func (u *USBBus) ReadBurst(ctx context.Context, addr byte, n int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if err := u.control("read", requestTypeVendorIn, usbReqI2CRead, addr, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
