package regbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Access is one recorded register transaction.
type Access struct {
	Write bool
	Addr  byte
	Val   byte
}

func (a Access) String() string {
	op := "R"
	if a.Write {
		op = "W"
	}
	return fmt.Sprintf("%s %02x=%02x", op, a.Addr, a.Val)
}

// ErrInjected is returned by Mock for addresses armed with FailOn.
var ErrInjected = errors.New("injected bus failure")

// Mock is an in-memory register file. Reads can be scripted per address;
// the last scripted value keeps being returned once the queue drains.
type Mock struct {
	mu     sync.Mutex
	regs   [256]byte
	script map[byte][]byte
	hooks  map[byte]func(byte) byte
	failW  map[byte]bool
	failR  map[byte]bool
	log    []Access
	bursts map[byte][][]byte
	ports  map[byte]bool
}

// NewMock returns an empty register file.
func NewMock() *Mock {
	return &Mock{
		script: make(map[byte][]byte),
		hooks:  make(map[byte]func(byte) byte),
		failW:  make(map[byte]bool),
		failR:  make(map[byte]bool),
		bursts: make(map[byte][][]byte),
		ports:  make(map[byte]bool),
	}
}

// Port marks addr as a FIFO: bursts to it do not auto-increment.
func (m *Mock) Port(addr byte) {
	m.mu.Lock()
	m.ports[addr] = true
	m.mu.Unlock()
}

// Set preloads a register without logging.
func (m *Mock) Set(addr, val byte) {
	m.mu.Lock()
	m.regs[addr] = val
	m.mu.Unlock()
}

// Get returns the stored value without logging.
func (m *Mock) Get(addr byte) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regs[addr]
}

// Script queues values to be returned by successive reads of addr.
func (m *Mock) Script(addr byte, vals ...byte) {
	m.mu.Lock()
	m.script[addr] = append(m.script[addr], vals...)
	m.mu.Unlock()
}

// OnWrite installs a hook that maps a written value to the stored value.
func (m *Mock) OnWrite(addr byte, fn func(byte) byte) {
	m.mu.Lock()
	m.hooks[addr] = fn
	m.mu.Unlock()
}

// FailOn makes reads and/or writes of addr return ErrInjected.
func (m *Mock) FailOn(addr byte, read, write bool) {
	m.mu.Lock()
	m.failR[addr] = read
	m.failW[addr] = write
	m.mu.Unlock()
}

// Log returns a copy of the access log.
func (m *Mock) Log() []Access {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Access(nil), m.log...)
}

// Writes returns the values written to addr in order.
func (m *Mock) Writes(addr byte) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []byte
	for _, a := range m.log {
		if a.Write && a.Addr == addr {
			out = append(out, a.Val)
		}
	}
	return out
}

// Reads counts reads of addr.
func (m *Mock) Reads(addr byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.log {
		if !a.Write && a.Addr == addr {
			n++
		}
	}
	return n
}

// Bursts returns the payloads passed to WriteBurst for addr.
func (m *Mock) Bursts(addr byte) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.bursts[addr]...)
}

// ResetLog clears the access log.
func (m *Mock) ResetLog() {
	m.mu.Lock()
	m.log = nil
	m.bursts = make(map[byte][][]byte)
	m.mu.Unlock()
}

func (m *Mock) Read(ctx context.Context, addr byte) (byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failR[addr] {
		return 0, &TransportError{Op: "read", Addr: addr, Err: ErrInjected}
	}
	if q := m.script[addr]; len(q) > 0 {
		m.regs[addr] = q[0]
		if len(q) > 1 {
			m.script[addr] = q[1:]
		}
	}
	v := m.regs[addr]
	m.log = append(m.log, Access{Addr: addr, Val: v})
	return v, nil
}

func (m *Mock) Write(ctx context.Context, addr, val byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeLocked(addr, val)
}

func (m *Mock) writeLocked(addr, val byte) error {
	if m.failW[addr] {
		return &TransportError{Op: "write", Addr: addr, Err: ErrInjected}
	}
	m.log = append(m.log, Access{Write: true, Addr: addr, Val: val})
	if fn := m.hooks[addr]; fn != nil {
		val = fn(val)
	}
	m.regs[addr] = val
	return nil
}

func (m *Mock) WriteBurst(ctx context.Context, addr byte, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failW[addr] {
		return &TransportError{Op: "burst", Addr: addr, Err: ErrInjected}
	}
	m.bursts[addr] = append(m.bursts[addr], append([]byte(nil), data...))
	for i, b := range data {
		a := addr + byte(i)
		if m.ports[addr] {
			a = addr
		}
		m.log = append(m.log, Access{Write: true, Addr: a, Val: b})
		m.regs[a] = b
	}
	return nil
}

func (m *Mock) ReadBurst(ctx context.Context, addr byte, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := range out {
		v, err := m.Read(ctx, addr+byte(i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
