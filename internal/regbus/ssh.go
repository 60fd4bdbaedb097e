package regbus

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"golang.org/x/crypto/ssh"
)

// SSHConfig describes a remote host that exposes the chip through i2c-tools.
type SSHConfig struct {
	Host     string
	User     string
	Password string
	KeyPath  string
	Port     int
	// I2CBus is the N in /dev/i2c-N on the remote side.
	I2CBus int
	// Chip is the 7-bit I2C address.
	Chip uint8
	// DialRetries bounds reconnect attempts.
	DialRetries uint64
}

// Runner executes a shell command remotely and returns its stdout.
type Runner interface {
	Run(ctx context.Context, cmd string) (string, error)
}

// SSHBus drives i2cget/i2cset over an SSH session per transaction.
type SSHBus struct {
	cfg    SSHConfig
	runner Runner
}

// NewSSHBus validates configuration and prepares a bus using a real SSH
// connection.
func NewSSHBus(cfg SSHConfig) (*SSHBus, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("ssh host is required")
	}
	if cfg.User == "" {
		cfg.User = "root"
	}
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.DialRetries == 0 {
		cfg.DialRetries = 3
	}
	return &SSHBus{cfg: cfg, runner: &sshRunner{cfg: cfg}}, nil
}

// NewSSHBusWithRunner is used when the command transport is provided by the
// caller.
func NewSSHBusWithRunner(cfg SSHConfig, r Runner) *SSHBus {
	return &SSHBus{cfg: cfg, runner: r}
}

func (b *SSHBus) Read(ctx context.Context, addr byte) (byte, error) {
	cmd := fmt.Sprintf("i2cget -y %d 0x%02x 0x%02x", b.cfg.I2CBus, b.cfg.Chip, addr)
	out, err := b.runner.Run(ctx, cmd)
	if err != nil {
		return 0, &TransportError{Op: "read", Addr: addr, Err: err}
	}
	v, err := strconv.ParseUint(strings.TrimSpace(out), 0, 8)
	if err != nil {
		return 0, &TransportError{Op: "read", Addr: addr, Err: fmt.Errorf("parse %q: %w", out, err)}
	}
	return byte(v), nil
}

func (b *SSHBus) Write(ctx context.Context, addr, val byte) error {
	cmd := fmt.Sprintf("i2cset -y %d 0x%02x 0x%02x 0x%02x", b.cfg.I2CBus, b.cfg.Chip, addr, val)
	if _, err := b.runner.Run(ctx, cmd); err != nil {
		return &TransportError{Op: "write", Addr: addr, Err: err}
	}
	return nil
}

func (b *SSHBus) WriteBurst(ctx context.Context, addr byte, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "i2cset -y %d 0x%02x 0x%02x", b.cfg.I2CBus, b.cfg.Chip, addr)
	for _, v := range data {
		fmt.Fprintf(&sb, " 0x%02x", v)
	}
	sb.WriteString(" i")
	if _, err := b.runner.Run(ctx, sb.String()); err != nil {
		return &TransportError{Op: "burst", Addr: addr, Err: err}
	}
	return nil
}

func (b *SSHBus) ReadBurst(ctx context.Context, addr byte, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := range out {
		v, err := b.Read(ctx, addr+byte(i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Close drops the cached SSH client if one was opened.
func (b *SSHBus) Close() error {
	if r, ok := b.runner.(*sshRunner); ok {
		return r.close()
	}
	return nil
}

type sshRunner struct {
	mu     sync.Mutex
	cfg    SSHConfig
	client *ssh.Client
}

func (r *sshRunner) Run(ctx context.Context, cmd string) (string, error) {
	client, err := r.dial(ctx)
	if err != nil {
		return "", err
	}
	session, err := client.NewSession()
	if err != nil {
		r.drop()
		return "", fmt.Errorf("create ssh session: %w", err)
	}
	defer session.Close()

	out, err := session.Output(cmd)
	if err != nil {
		return "", fmt.Errorf("run %q: %w", cmd, err)
	}
	return string(out), nil
}

func (r *sshRunner) drop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		r.client.Close()
		r.client = nil
	}
}

func (r *sshRunner) close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

func (r *sshRunner) dial(ctx context.Context) (*ssh.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		return r.client, nil
	}

	auth := []ssh.AuthMethod{}
	if r.cfg.Password != "" {
		auth = append(auth, ssh.Password(r.cfg.Password))
	}
	if r.cfg.KeyPath != "" {
		key, err := os.ReadFile(r.cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("read ssh key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse ssh key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if len(auth) == 0 {
		return nil, fmt.Errorf("no ssh password or key configured")
	}

	config := &ssh.ClientConfig{
		User:            r.cfg.User,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	}
	addr := net.JoinHostPort(r.cfg.Host, strconv.Itoa(r.cfg.Port))

	var client *ssh.Client
	connect := func() error {
		dialer := net.Dialer{}
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return fmt.Errorf("dial ssh: %w", err)
		}
		clientConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
		if err != nil {
			conn.Close()
			return fmt.Errorf("create ssh client: %w", err)
		}
		client = ssh.NewClient(clientConn, chans, reqs)
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), r.cfg.DialRetries), ctx)
	if err := backoff.Retry(connect, policy); err != nil {
		return nil, err
	}
	r.client = client
	return r.client, nil
}
