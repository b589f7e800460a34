package rfcomm

import (
	"strconv"

	"github.com/sirupsen/logrus"
)

// DiscoveryState is the state of a ChannelDiscovery. States only move
// forward.
type DiscoveryState uint8

const (
	// DiscoveryNew: no session is open yet.
	DiscoveryNew DiscoveryState = iota
	// DiscoveryConnecting: the SDP session is being connected.
	DiscoveryConnecting
	// DiscoveryAwaitingResponse: the search request was sent.
	DiscoveryAwaitingResponse
	// DiscoveryDone: finished, successfully or not. The session is released.
	DiscoveryDone
)

func (s DiscoveryState) String() string {
	switch s {
	case DiscoveryNew:
		return "new"
	case DiscoveryConnecting:
		return "connecting"
	case DiscoveryAwaitingResponse:
		return "awaiting-response"
	case DiscoveryDone:
		return "done"
	}
	return "DiscoveryState(" + strconv.Itoa(int(s)) + ")"
}

// DiscoveryOption configures a ChannelDiscovery.
type DiscoveryOption func(*ChannelDiscovery)

// WithServiceClass searches for the given service class instead of the
// Serial Port service.
func WithServiceClass(class UUID) DiscoveryOption {
	return func(d *ChannelDiscovery) {
		d.class = class
	}
}

func withSessionDialer(dial sessionDialer) DiscoveryOption {
	return func(d *ChannelDiscovery) {
		d.dial = dial
	}
}

// ChannelDiscovery looks up the RFCOMM channel of a service on a remote
// device with SDP. It is driven by Step and never blocks.
//
// A ChannelDiscovery owns its SDP session. The session is released when the
// discovery finishes or fails, or when Close is called. A discovery abandoned
// midway must be closed, or the session leaks.
type ChannelDiscovery struct {
	addr    Address
	class   UUID
	dial    sessionDialer
	state   DiscoveryState
	session sdpSession
	channel uint8
}

// NewChannelDiscovery returns a discovery for the Serial Port service of the
// device at addr. Callers must Close the discovery once they stop stepping it,
// whatever the outcome.
func NewChannelDiscovery(addr Address, opts ...DiscoveryOption) *ChannelDiscovery {
	d := &ChannelDiscovery{
		addr:  addr,
		class: ServiceClassSerialPort,
		dial:  dialSession,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current state.
func (d *ChannelDiscovery) State() DiscoveryState {
	return d.state
}

// Channel returns the discovered channel. It is only valid after Step
// reported Done without error.
func (d *ChannelDiscovery) Channel() uint8 {
	return d.channel
}

// Step advances the discovery by one step. See Status for the meaning of the
// result. An error is terminal. Calling Step after the discovery finished
// panics.
func (d *ChannelDiscovery) Step() (Status, error) {
	switch d.state {
	case DiscoveryNew:
		session, err := d.dial(AddressAny, d.addr)
		if err != nil {
			d.setState(DiscoveryDone)
			return Status{}, nativeError("sdp_connect", err)
		}
		d.session = session
		d.setState(DiscoveryConnecting)
		return waitFor(session.Fd(), Writable), nil

	case DiscoveryConnecting:
		if err := d.session.Search(d.class); err != nil {
			return d.fail(err)
		}
		d.setState(DiscoveryAwaitingResponse)
		return waitFor(d.session.Fd(), Readable), nil

	case DiscoveryAwaitingResponse:
		done, records, err := d.session.Process()
		if err != nil {
			return d.fail(err)
		}
		if !done {
			return waitFor(d.session.Fd(), Readable), nil
		}
		channel, err := ParseChannel(records)
		if err != nil {
			return d.fail(err)
		}
		if err := d.release(); err != nil {
			d.setState(DiscoveryDone)
			return Status{}, err
		}
		d.channel = channel
		d.setState(DiscoveryDone)
		log.WithFields(logrus.Fields{
			"addr":    d.addr,
			"channel": channel,
		}).Debug("rfcomm: discovered RFCOMM channel")
		return statusDone, nil

	case DiscoveryDone:
		panic("rfcomm: Step called on a finished channel discovery")
	}
	panic("rfcomm: invalid discovery state " + d.state.String())
}

// Close releases the SDP session if it is still open. The discovery can not
// be stepped afterwards.
func (d *ChannelDiscovery) Close() error {
	if d.state != DiscoveryDone {
		d.setState(DiscoveryDone)
	}
	return d.release()
}

func (d *ChannelDiscovery) fail(err error) (Status, error) {
	d.setState(DiscoveryDone)
	if cerr := d.release(); cerr != nil {
		log.WithField("addr", d.addr).Debugf("rfcomm: closing SDP session: %v", cerr)
	}
	return Status{}, err
}

// release closes the session exactly once.
func (d *ChannelDiscovery) release() error {
	if d.session == nil {
		return nil
	}
	session := d.session
	d.session = nil
	return session.Close()
}

func (d *ChannelDiscovery) setState(s DiscoveryState) {
	log.WithFields(logrus.Fields{
		"addr":  d.addr,
		"from":  d.state,
		"state": s,
	}).Debug("rfcomm: discovery state")
	d.state = s
}
