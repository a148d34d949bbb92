package robot

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
)

// DefaultInitDelay is how long the controller needs after the port opens
// before it accepts frames.
const DefaultInitDelay = 1500 * time.Millisecond

// LinkConfig holds configuration for the serial command link.
type LinkConfig struct {
	Port         string
	BaudRate     int
	InitDelay    time.Duration // 0 uses DefaultInitDelay, negative skips the wait
	WriteRetries int           // extra attempts for a failed write
}

// port is the subset of serial.Port the link needs.
type port interface {
	io.WriteCloser
	Drain() error
}

// Link is the write side of the serial connection to the motor controller.
type Link struct {
	mu      sync.Mutex
	port    port
	name    string
	retries int
}

// OpenLink opens and configures the serial port, then waits for the
// controller to initialise.
func OpenLink(ctx context.Context, cfg LinkConfig) (*Link, error) {
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = DefaultBaudRate
	}

	p, err := serial.Open(cfg.Port, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, &ConfigurationError{Port: cfg.Port, Err: err}
	}

	delay := cfg.InitDelay
	if delay == 0 {
		delay = DefaultInitDelay
	}
	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			p.Close()
			return nil, &ConfigurationError{Port: cfg.Port, Err: ctx.Err()}
		case <-t.C:
		}
	}

	return newLink(p, cfg.Port, cfg.WriteRetries), nil
}

func newLink(p port, name string, retries int) *Link {
	if retries < 0 {
		retries = 0
	}
	return &Link{port: p, name: name, retries: retries}
}

// Name returns the port path.
func (l *Link) Name() string {
	return l.name
}

// Write sends b, retrying the unsent remainder up to the configured number
// of extra attempts.
func (l *Link) Write(b []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var written int
	var lastErr error
	for attempt := 0; attempt <= l.retries; attempt++ {
		n, err := l.port.Write(b[written:])
		written += n
		if err == nil && written == len(b) {
			return written, nil
		}
		if err == nil {
			err = io.ErrShortWrite
		}
		lastErr = err
	}
	return written, &TransportError{Op: "write", Err: fmt.Errorf("%s: %w", l.name, lastErr)}
}

// Flush blocks until the written bytes have been transmitted.
func (l *Link) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.port.Drain(); err != nil {
		return &TransportError{Op: "flush", Err: fmt.Errorf("%s: %w", l.name, err)}
	}
	return nil
}

// Close closes the port.
func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.port.Close()
}
