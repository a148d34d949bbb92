package robot

import (
	"errors"
	"fmt"
)

// TransportError reports a failed write or flush on the command link.
// The session keeps running after one.
type TransportError struct {
	Op  string // "write" or "flush"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// WrapTransport wraps err as a TransportError unless it already is one.
func WrapTransport(op string, err error) error {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}

// ConfigurationError reports that the link could not be opened. A session
// never starts after one.
type ConfigurationError struct {
	Port string
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Port, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
