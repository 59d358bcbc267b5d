package transport

import (
	"errors"
	"fmt"
)

// Reason classifies why a transport could not be opened
type Reason int

const (
	// ReasonIO indicates an I/O failure while opening the device
	ReasonIO Reason = iota
	// ReasonDeviceBusy indicates the device is held by another process
	ReasonDeviceBusy
	// ReasonUnsupported indicates the requested port settings are not supported
	ReasonUnsupported
	// ReasonNotFound indicates the device path or address does not exist
	ReasonNotFound
	// ReasonInvalidDevice indicates the device is not a serial port
	ReasonInvalidDevice
)

// String returns a human-readable name for the reason
func (r Reason) String() string {
	switch r {
	case ReasonIO:
		return "I/O failure"
	case ReasonDeviceBusy:
		return "device busy"
	case ReasonUnsupported:
		return "unsupported configuration"
	case ReasonNotFound:
		return "device not found"
	case ReasonInvalidDevice:
		return "invalid device type"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// ConnectionError reports that a transport is unavailable
type ConnectionError struct {
	Reason Reason // Why the connection failed
	Device string // Device path or network address
	Err    error  // Underlying error (if any)
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot open %s: %s (caused by: %v)", e.Device, e.Reason, e.Err)
	}
	return fmt.Sprintf("cannot open %s: %s", e.Device, e.Reason)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsConnectionError reports whether err carries a *ConnectionError
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// ErrNotConnected is returned when reading or writing a closed transport
var ErrNotConnected = errors.New("transport not connected")
