package rfcomm

import (
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// sdpSession is an open SDP session toward one remote device. It performs a
// single ServiceSearchAttribute transaction without ever blocking.
type sdpSession interface {
	// Fd returns the descriptor to wait on between calls.
	Fd() int

	// Search submits the request for all attributes of records matching
	// class. It must only be called once the session is writable.
	Search(class UUID) error

	// Process handles at most one incoming PDU. It reports done once the
	// transaction finished, together with the body of the AttributeLists
	// sequence. A non-nil error ends the transaction.
	Process() (done bool, records []byte, err error)

	// Close releases the session. It may be called more than once.
	Close() error
}

// sessionDialer opens a nonblocking SDP session from local to remote. The
// connect handshake may still be in progress when it returns.
type sessionDialer func(local, remote Address) (sdpSession, error)

// packetConn is a nonblocking, message oriented connection, such as an L2CAP
// SEQPACKET socket.
type packetConn interface {
	Fd() int
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	// SocketError returns and clears the pending socket error.
	SocketError() error
	Close() error
}

// sdpResponseBufferSize is large enough for any SDP PDU.
const sdpResponseBufferSize = 65535

// session implements sdpSession on top of a packetConn.
type session struct {
	conn   packetConn
	remote Address
	class  UUID
	tid    uint16
	buf    []byte
	lists  []byte
	closed bool
}

func newSession(conn packetConn, remote Address) *session {
	return &session{
		conn:   conn,
		remote: remote,
	}
}

func (s *session) Fd() int {
	return s.conn.Fd()
}

func (s *session) Search(class UUID) error {
	if s.closed {
		return errors.New("rfcomm: search on closed SDP session")
	}
	// The session becomes writable once the L2CAP connect finished, with or
	// without success.
	if err := s.conn.SocketError(); err != nil {
		return nativeError("sdp_connect", err)
	}
	s.class = class
	s.lists = s.lists[:0]
	return s.send(nil)
}

func (s *session) send(cont []byte) error {
	s.tid++
	req := appendSearchAttributeRequest(nil, s.tid, s.class, cont)
	log.WithFields(logrus.Fields{
		"addr": s.remote,
		"tid":  s.tid,
		"size": len(req),
	}).Debug("rfcomm: sending ServiceSearchAttributeRequest")
	n, err := s.conn.Write(req)
	if err != nil {
		return nativeError("sdp_service_search_attr_async", err)
	}
	if n != len(req) {
		return &NativeError{Op: "sdp_service_search_attr_async", Errno: syscall.EMSGSIZE}
	}
	return nil
}

func (s *session) Process() (bool, []byte, error) {
	if s.closed {
		return false, nil, errors.New("rfcomm: process on closed SDP session")
	}
	if s.buf == nil {
		s.buf = make([]byte, sdpResponseBufferSize)
	}
	n, err := s.conn.Read(s.buf)
	switch {
	case err == syscall.EAGAIN || err == syscall.EWOULDBLOCK || err == syscall.EINTR:
		return false, nil, nil
	case err != nil:
		return false, nil, nativeError("sdp_process", err)
	case n == 0:
		return false, nil, &NativeError{Op: "sdp_process", Errno: syscall.ECONNRESET}
	}

	p, err := parsePDU(s.buf[:n])
	if err != nil {
		return false, nil, err
	}
	if p.tid != s.tid {
		return false, nil, errors.Wrapf(ErrMalformed, "transaction ID %d, expected %d", p.tid, s.tid)
	}

	switch p.id {
	case pduErrorResponse:
		return false, nil, parseErrorResponse(p.params)
	case pduServiceSearchAttributeResponse:
		lists, cont, err := parseSearchAttributeResponse(p.params)
		if err != nil {
			return false, nil, err
		}
		s.lists = append(s.lists, lists...)
		log.WithFields(logrus.Fields{
			"addr":         s.remote,
			"tid":          p.tid,
			"bytes":        len(lists),
			"continuation": len(cont),
		}).Debug("rfcomm: received ServiceSearchAttributeResponse")
		if len(cont) != 0 {
			return false, nil, s.send(cont)
		}
		if len(s.lists) == 0 {
			return true, nil, nil
		}
		records, err := unwrapSequence(s.lists)
		if err != nil {
			return false, nil, err
		}
		return true, records, nil
	default:
		return false, nil, errors.Wrapf(ErrMalformed, "unexpected PDU 0x%02x", p.id)
	}
}

func (s *session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return nativeError("sdp_close", s.conn.Close())
}
