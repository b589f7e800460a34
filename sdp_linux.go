//go:build linux

package rfcomm

import (
	"golang.org/x/sys/unix"
)

// psmSDP is the L2CAP PSM of the SDP server.
const psmSDP = 0x0001

// l2capConn is a nonblocking L2CAP SEQPACKET socket.
type l2capConn struct {
	fd int
}

// dialSession opens a nonblocking SDP session over L2CAP. The connect is
// usually still in progress when it returns; the socket becomes writable once
// it finished.
func dialSession(local, remote Address) (sdpSession, error) {
	conn, err := dialL2CAP(local, remote, psmSDP)
	if err != nil {
		return nil, err
	}
	return newSession(conn, remote), nil
}

func dialL2CAP(local, remote Address, psm uint16) (*l2capConn, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_SEQPACKET|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.BTPROTO_L2CAP)
	if err != nil {
		return nil, nativeError("socket", err)
	}
	// unix.SockaddrL2 takes addresses in wire order and converts them to
	// bdaddr_t itself, so they are passed unconverted.
	if !local.IsAny() {
		if err := unix.Bind(fd, &unix.SockaddrL2{Addr: [6]uint8(local)}); err != nil {
			unix.Close(fd)
			return nil, nativeError("bind", err)
		}
	}
	err = unix.Connect(fd, &unix.SockaddrL2{PSM: psm, Addr: [6]uint8(remote)})
	if err != nil && err != unix.EINPROGRESS && err != unix.EAGAIN {
		unix.Close(fd)
		return nil, nativeError("sdp_connect", err)
	}
	return &l2capConn{fd: fd}, nil
}

func (c *l2capConn) Fd() int {
	return c.fd
}

func (c *l2capConn) Read(p []byte) (int, error) {
	return unix.Read(c.fd, p)
}

func (c *l2capConn) Write(p []byte) (int, error) {
	return unix.Write(c.fd, p)
}

func (c *l2capConn) SocketError() error {
	return socketError(c.fd)
}

func (c *l2capConn) Close() error {
	return unix.Close(c.fd)
}

// socketError returns and clears the pending error of a socket (SO_ERROR).
func socketError(fd int) error {
	errno, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return err
	}
	if errno != 0 {
		return unix.Errno(errno)
	}
	return nil
}
