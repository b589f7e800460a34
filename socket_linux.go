//go:build linux

package rfcomm

import (
	"io"

	"golang.org/x/sys/unix"
)

// Socket is a nonblocking RFCOMM stream socket. It implements RawSocket and
// io.ReadWriteCloser. Read and Write return EAGAIN instead of blocking.
type Socket struct {
	fd int
}

// NewSocket creates an unconnected, nonblocking RFCOMM socket.
func NewSocket() (*Socket, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		return nil, nativeError("socket", err)
	}
	return &Socket{fd: fd}, nil
}

// Fd returns the file descriptor of the socket, for use with a readiness
// loop.
func (s *Socket) Fd() int {
	return s.fd
}

// RawConnect starts a connect to sa. It does not wait for the connect to
// finish and normally returns EINPROGRESS.
func (s *Socket) RawConnect(sa *SockaddrRFCOMM) error {
	return unix.Connect(s.fd, &unix.SockaddrRFCOMM{
		Addr:    [6]uint8(sa.Addr),
		Channel: sa.Channel,
	})
}

// PeerAddress returns the address of the connected peer.
func (s *Socket) PeerAddress() (*SockaddrRFCOMM, error) {
	sa, err := unix.Getpeername(s.fd)
	if err != nil {
		return nil, err
	}
	rc, ok := sa.(*unix.SockaddrRFCOMM)
	if !ok {
		return nil, unix.EAFNOSUPPORT
	}
	return &SockaddrRFCOMM{
		Family:  afBluetooth,
		Addr:    MAC(rc.Addr),
		Channel: rc.Channel,
	}, nil
}

// Read reads from the socket. A read into an empty buffer returns the pending
// socket error, if there is one.
func (s *Socket) Read(p []byte) (int, error) {
	if len(p) == 0 {
		if err := socketError(s.fd); err != nil {
			return 0, err
		}
	}
	n, err := unix.Read(s.fd, p)
	if n < 0 {
		n = 0
	}
	if n == 0 && err == nil && len(p) > 0 {
		return 0, io.EOF
	}
	return n, err
}

// Write writes to the socket.
func (s *Socket) Write(p []byte) (int, error) {
	n, err := unix.Write(s.fd, p)
	if n < 0 {
		n = 0
	}
	return n, err
}

// Close closes the socket.
func (s *Socket) Close() error {
	return unix.Close(s.fd)
}
