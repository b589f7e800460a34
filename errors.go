package rfcomm

import (
	"strconv"
	"syscall"

	"github.com/pkg/errors"
)

var (
	// ErrNoRFCOMMService is returned when the SDP exchange succeeded but none
	// of the returned service records carries an RFCOMM channel.
	ErrNoRFCOMMService = errors.New("rfcomm: no RFCOMM service record on remote device")

	// ErrMalformed is returned (wrapped with details) when SDP bytes cannot be
	// decoded.
	ErrMalformed = errors.New("rfcomm: malformed SDP data")

	// ErrNotSupported is returned on platforms without a native Bluetooth
	// implementation.
	ErrNotSupported = errors.New("rfcomm: not supported on this platform")
)

// NativeError is an error reported by an operating system call. It keeps the
// name of the failing operation and the errno.
type NativeError struct {
	Op    string
	Errno syscall.Errno
}

func (e *NativeError) Error() string {
	return "rfcomm: " + e.Op + ": " + e.Errno.Error() + " (errno " + strconv.Itoa(int(e.Errno)) + ")"
}

// Unwrap returns the errno, so errors.Is(err, syscall.ECONNREFUSED) works.
func (e *NativeError) Unwrap() error {
	return e.Errno
}

// Code returns the numeric errno.
func (e *NativeError) Code() int {
	return int(e.Errno)
}

// nativeError attaches op to an error returned by a system call.
func nativeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var nerr *NativeError
	if errors.As(err, &nerr) {
		return err
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return &NativeError{Op: op, Errno: errno}
	}
	return errors.Wrap(err, "rfcomm: "+op)
}

// ProtocolError is an error code sent by the remote SDP server in an
// ErrorResponse PDU.
type ProtocolError uint16

// SDP error codes.
const (
	ErrInvalidVersion           ProtocolError = 0x0001
	ErrInvalidRecordHandle      ProtocolError = 0x0002
	ErrInvalidSyntax            ProtocolError = 0x0003
	ErrInvalidPDUSize           ProtocolError = 0x0004
	ErrInvalidContinuationState ProtocolError = 0x0005
	ErrInsufficientResources    ProtocolError = 0x0006
)

func (e ProtocolError) Error() string {
	switch e {
	case ErrInvalidVersion:
		return "rfcomm: SDP error: invalid/unsupported SDP version"
	case ErrInvalidRecordHandle:
		return "rfcomm: SDP error: invalid service record handle"
	case ErrInvalidSyntax:
		return "rfcomm: SDP error: invalid request syntax"
	case ErrInvalidPDUSize:
		return "rfcomm: SDP error: invalid PDU size"
	case ErrInvalidContinuationState:
		return "rfcomm: SDP error: invalid continuation state"
	case ErrInsufficientResources:
		return "rfcomm: SDP error: insufficient resources to satisfy request"
	default:
		return "rfcomm: SDP error: code 0x" + strconv.FormatUint(uint64(e), 16)
	}
}
