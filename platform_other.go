//go:build !linux

package rfcomm

import (
	"context"
)

func dialSession(local, remote Address) (sdpSession, error) {
	return nil, ErrNotSupported
}

// Socket is an RFCOMM socket. It is only available on Linux.
type Socket struct{}

// NewSocket returns ErrNotSupported on this platform.
func NewSocket() (*Socket, error) {
	return nil, ErrNotSupported
}

func (s *Socket) Fd() int { return -1 }

func (s *Socket) RawConnect(sa *SockaddrRFCOMM) error { return ErrNotSupported }

func (s *Socket) PeerAddress() (*SockaddrRFCOMM, error) { return nil, ErrNotSupported }

func (s *Socket) Read(p []byte) (int, error) { return 0, ErrNotSupported }

func (s *Socket) Write(p []byte) (int, error) { return 0, ErrNotSupported }

func (s *Socket) Close() error { return ErrNotSupported }

// Dial returns ErrNotSupported on this platform.
func (s *Socket) Dial(ctx context.Context, addr Address, opts ...DiscoveryOption) error {
	return ErrNotSupported
}

// Wait returns ErrNotSupported on this platform.
func Wait(ctx context.Context, st Status) error {
	return ErrNotSupported
}

// DefaultAdapterAddress returns ErrNotSupported on this platform.
func DefaultAdapterAddress() (Address, error) {
	return Address{}, ErrNotSupported
}

// KnownDevices returns ErrNotSupported on this platform.
func KnownDevices(class UUID) ([]Device, error) {
	return nil, ErrNotSupported
}

// LookupDevice returns ErrNotSupported on this platform.
func LookupDevice(addr Address) (Device, error) {
	return Device{}, ErrNotSupported
}
