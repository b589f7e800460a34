package rfcomm

import (
	"strconv"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ConnectorState is the state of a Connector.
type ConnectorState uint8

const (
	// ConnectorDiscoveringChannel: the embedded ChannelDiscovery is running.
	ConnectorDiscoveringChannel ConnectorState = iota
	// ConnectorConnecting: the RFCOMM connect was issued and is in progress.
	ConnectorConnecting
	// ConnectorDone: connected, or failed.
	ConnectorDone
)

func (s ConnectorState) String() string {
	switch s {
	case ConnectorDiscoveringChannel:
		return "discovering-channel"
	case ConnectorConnecting:
		return "connecting"
	case ConnectorDone:
		return "done"
	}
	return "ConnectorState(" + strconv.Itoa(int(s)) + ")"
}

// RawSocket is the part of an RFCOMM socket a Connector drives. The socket
// must be nonblocking. *Socket implements it on Linux.
type RawSocket interface {
	Fd() int

	// RawConnect starts connecting to sa. A nonblocking socket is expected
	// to return EINPROGRESS.
	RawConnect(sa *SockaddrRFCOMM) error

	// PeerAddress returns the address of the connected peer, or ENOTCONN if
	// the socket is not connected.
	PeerAddress() (*SockaddrRFCOMM, error)

	// Read with an empty buffer reports the pending socket error, if any.
	Read(p []byte) (int, error)
}

// Connector connects a caller owned RFCOMM socket to the Serial Port service
// of a remote device. It first discovers the channel with a ChannelDiscovery
// and then connects to it, without ever blocking. It is driven by Step.
//
// The socket stays owned by the caller: the Connector never closes it, not
// even on failure or Close.
type Connector struct {
	sock      RawSocket
	addr      Address
	state     ConnectorState
	discovery *ChannelDiscovery
	channel   uint8
}

// NewConnector returns a Connector that connects sock to the device at addr.
// The options configure the embedded channel discovery. Callers must Close the
// Connector once they stop stepping it, so that an SDP session still open is
// released.
func NewConnector(sock RawSocket, addr Address, opts ...DiscoveryOption) *Connector {
	return &Connector{
		sock:      sock,
		addr:      addr,
		discovery: NewChannelDiscovery(addr, opts...),
	}
}

// State returns the current state.
func (c *Connector) State() ConnectorState {
	return c.state
}

// Channel returns the RFCOMM channel that was connected to. It is only valid
// once the channel discovery finished.
func (c *Connector) Channel() uint8 {
	return c.channel
}

// Step advances the connection attempt by one step. See Status for the
// meaning of the result. An error is terminal. Calling Step after the
// Connector finished panics.
func (c *Connector) Step() (Status, error) {
	switch c.state {
	case ConnectorDiscoveringChannel:
		st, err := c.discovery.Step()
		if err != nil {
			c.setState(ConnectorDone)
			return Status{}, err
		}
		if !st.Done {
			return st, nil
		}
		c.channel = c.discovery.Channel()
		return c.connect()

	case ConnectorConnecting:
		peer, err := c.sock.PeerAddress()
		if err == nil {
			c.setState(ConnectorDone)
			log.WithFields(logrus.Fields{
				"addr":    peer.Addr.Address(),
				"channel": peer.Channel,
			}).Debug("rfcomm: connected")
			return statusDone, nil
		}
		c.setState(ConnectorDone)
		if errors.Is(err, syscall.ENOTCONN) {
			// The connect failed. A zero-byte read returns the reason.
			var buf [0]byte
			if _, rerr := c.sock.Read(buf[:]); rerr != nil {
				return Status{}, nativeError("read", rerr)
			}
		}
		return Status{}, nativeError("getpeername", err)

	case ConnectorDone:
		panic("rfcomm: Step called on a finished connector")
	}
	panic("rfcomm: invalid connector state " + c.state.String())
}

func (c *Connector) connect() (Status, error) {
	sa := NewSockaddrRFCOMM(c.addr, c.channel)
	log.WithFields(logrus.Fields{
		"addr":    c.addr,
		"channel": c.channel,
		"fd":      c.sock.Fd(),
	}).Debug("rfcomm: connecting")
	err := c.sock.RawConnect(sa)
	switch {
	case err == nil:
		c.setState(ConnectorDone)
		return statusDone, nil
	case errors.Is(err, syscall.EINPROGRESS), errors.Is(err, syscall.EAGAIN):
		c.setState(ConnectorConnecting)
		return waitFor(c.sock.Fd(), Writable), nil
	default:
		c.setState(ConnectorDone)
		return Status{}, nativeError("connect", err)
	}
}

// Close abandons the connection attempt and releases the SDP session if
// discovery is still running. The socket is left untouched.
func (c *Connector) Close() error {
	if c.state != ConnectorDone {
		c.setState(ConnectorDone)
	}
	return c.discovery.Close()
}

func (c *Connector) setState(s ConnectorState) {
	log.WithFields(logrus.Fields{
		"addr":  c.addr,
		"from":  c.state,
		"state": s,
	}).Debug("rfcomm: connector state")
	c.state = s
}
