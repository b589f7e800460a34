package rfcomm

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSocket is a scripted RawSocket.
type fakeSocket struct {
	fd         int
	connectErr error
	peerErrs   []error
	readErr    error
	connected  []*SockaddrRFCOMM
	reads      []int
}

func (s *fakeSocket) Fd() int { return s.fd }

func (s *fakeSocket) RawConnect(sa *SockaddrRFCOMM) error {
	s.connected = append(s.connected, sa)
	return s.connectErr
}

func (s *fakeSocket) PeerAddress() (*SockaddrRFCOMM, error) {
	if len(s.peerErrs) > 0 {
		err := s.peerErrs[0]
		s.peerErrs = s.peerErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if len(s.connected) == 0 {
		return nil, syscall.ENOTCONN
	}
	return s.connected[len(s.connected)-1], nil
}

func (s *fakeSocket) Read(p []byte) (int, error) {
	s.reads = append(s.reads, len(p))
	return 0, s.readErr
}

// newTestConnector returns a Connector whose discovery finds channel on the
// first response.
func newTestConnector(sock RawSocket, channel uint8) (*Connector, *fakeSession) {
	session := &fakeSession{fd: 4, results: []processResult{
		{done: true, records: serialPortRecord(channel)},
	}}
	dialer := &fakeDialer{session: session}
	return NewConnector(sock, testAddress, withSessionDialer(dialer.dial)), session
}

// discover steps c through the channel discovery and returns the status of
// the step that issued the connect.
func discover(t *testing.T, c *Connector) (Status, error) {
	t.Helper()
	st, err := c.Step()
	require.NoError(t, err)
	assert.Equal(t, Status{Fd: 4, Dir: Writable}, st)
	st, err = c.Step()
	require.NoError(t, err)
	assert.Equal(t, Status{Fd: 4, Dir: Readable}, st)
	assert.Equal(t, ConnectorDiscoveringChannel, c.State())
	return c.Step()
}

func TestConnector(t *testing.T) {
	sock := &fakeSocket{fd: 9, connectErr: syscall.EINPROGRESS}
	c, session := newTestConnector(sock, 6)

	st, err := discover(t, c)
	require.NoError(t, err)
	assert.Equal(t, Status{Fd: 9, Dir: Writable}, st)
	assert.Equal(t, ConnectorConnecting, c.State())
	assert.Equal(t, uint8(6), c.Channel())
	assert.Equal(t, 1, session.closed)

	require.Len(t, sock.connected, 1)
	sa := sock.connected[0]
	assert.Equal(t, uint16(afBluetooth), sa.Family)
	assert.Equal(t, testAddress.MAC(), sa.Addr)
	assert.Equal(t, uint8(6), sa.Channel)

	st, err = c.Step()
	require.NoError(t, err)
	assert.True(t, st.Done)
	assert.Equal(t, ConnectorDone, c.State())
	assert.Empty(t, sock.reads)
	assert.Panics(t, func() { c.Step() })
}

func TestConnectorImmediate(t *testing.T) {
	sock := &fakeSocket{fd: 9}
	c, _ := newTestConnector(sock, 1)
	st, err := discover(t, c)
	require.NoError(t, err)
	assert.True(t, st.Done)
	assert.Equal(t, ConnectorDone, c.State())
}

func TestConnectorRefused(t *testing.T) {
	sock := &fakeSocket{
		fd:         9,
		connectErr: syscall.EINPROGRESS,
		peerErrs:   []error{syscall.ENOTCONN},
		readErr:    syscall.Errno(111),
	}
	c, _ := newTestConnector(sock, 3)
	st, err := discover(t, c)
	require.NoError(t, err)
	assert.Equal(t, Status{Fd: 9, Dir: Writable}, st)

	_, err = c.Step()
	var nerr *NativeError
	require.True(t, errors.As(err, &nerr), "got %v", err)
	assert.Equal(t, 111, nerr.Code())
	assert.Equal(t, "read", nerr.Op)
	assert.True(t, errors.Is(err, syscall.ECONNREFUSED))
	assert.Equal(t, []int{0}, sock.reads)
	assert.Equal(t, ConnectorDone, c.State())
	assert.Panics(t, func() { c.Step() })
}

func TestConnectorErrors(t *testing.T) {
	t.Run("ConnectFailed", func(t *testing.T) {
		sock := &fakeSocket{fd: 9, connectErr: syscall.EHOSTUNREACH}
		c, _ := newTestConnector(sock, 3)
		_, err := discover(t, c)
		var nerr *NativeError
		require.True(t, errors.As(err, &nerr), "got %v", err)
		assert.Equal(t, "connect", nerr.Op)
		assert.Equal(t, syscall.EHOSTUNREACH, nerr.Errno)
		assert.Equal(t, ConnectorDone, c.State())
	})

	t.Run("NotConnectedWithoutReason", func(t *testing.T) {
		sock := &fakeSocket{fd: 9, connectErr: syscall.EAGAIN, peerErrs: []error{syscall.ENOTCONN}}
		c, _ := newTestConnector(sock, 3)
		_, err := discover(t, c)
		require.NoError(t, err)
		_, err = c.Step()
		var nerr *NativeError
		require.True(t, errors.As(err, &nerr), "got %v", err)
		assert.Equal(t, "getpeername", nerr.Op)
		assert.Equal(t, syscall.ENOTCONN, nerr.Errno)
	})

	t.Run("PeerAddressFailed", func(t *testing.T) {
		sock := &fakeSocket{fd: 9, connectErr: syscall.EINPROGRESS, peerErrs: []error{syscall.EBADF}}
		c, _ := newTestConnector(sock, 3)
		_, err := discover(t, c)
		require.NoError(t, err)
		_, err = c.Step()
		assert.True(t, errors.Is(err, syscall.EBADF), "got %v", err)
		assert.Empty(t, sock.reads)
	})

	t.Run("DiscoveryFailed", func(t *testing.T) {
		sock := &fakeSocket{fd: 9}
		session := &fakeSession{fd: 4, results: []processResult{{err: ErrInvalidContinuationState}}}
		dialer := &fakeDialer{session: session}
		c := NewConnector(sock, testAddress, withSessionDialer(dialer.dial))
		_, err := discover(t, c)
		assert.Equal(t, ErrInvalidContinuationState, err)
		assert.Equal(t, ConnectorDone, c.State())
		assert.Empty(t, sock.connected)
		assert.Equal(t, 1, session.closed)
	})

	t.Run("NoService", func(t *testing.T) {
		sock := &fakeSocket{fd: 9}
		session := &fakeSession{fd: 4, results: []processResult{{done: true}}}
		dialer := &fakeDialer{session: session}
		c := NewConnector(sock, testAddress, withSessionDialer(dialer.dial))
		_, err := discover(t, c)
		assert.Equal(t, ErrNoRFCOMMService, err)
		assert.Empty(t, sock.connected)
	})
}

func TestConnectorClose(t *testing.T) {
	sock := &fakeSocket{fd: 9}
	c, session := newTestConnector(sock, 3)
	_, err := c.Step()
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, session.closed)
	assert.Equal(t, ConnectorDone, c.State())
	assert.Empty(t, sock.connected)
	assert.Empty(t, sock.reads)
	assert.Panics(t, func() { c.Step() })
}

func TestConnectorServiceClass(t *testing.T) {
	class := New16BitUUID(0x1112)
	session := &fakeSession{results: []processResult{{done: true, records: serialPortRecord(8)}}}
	dialer := &fakeDialer{session: session}
	sock := &fakeSocket{fd: 9}
	c := NewConnector(sock, testAddress, WithServiceClass(class), withSessionDialer(dialer.dial))
	for {
		st, err := c.Step()
		require.NoError(t, err)
		if st.Done {
			break
		}
	}
	assert.Equal(t, []UUID{class}, session.searched)
	require.Len(t, sock.connected, 1)
	assert.Equal(t, uint8(8), sock.connected[0].Channel)
}
