//go:build linux

package rfcomm

import (
	"context"
	"time"

	"golang.org/x/sys/unix"
)

// pollInterval bounds how long a single poll waits, so that context
// cancellation is noticed.
const pollInterval = 100 * time.Millisecond

// Dial connects the socket to the Serial Port service of the device at addr.
// It drives a Connector and blocks until the connection is established, it
// failed, or ctx is done. Channel discovery and the connect together may take
// several seconds.
func (s *Socket) Dial(ctx context.Context, addr Address, opts ...DiscoveryOption) error {
	c := NewConnector(s, addr, opts...)
	defer c.Close()
	for {
		st, err := c.Step()
		if err != nil {
			return err
		}
		if st.Done {
			return nil
		}
		if err := Wait(ctx, st); err != nil {
			return err
		}
	}
}

// Wait blocks until the descriptor of st is ready for its direction or ctx is
// done. Error and hangup conditions count as ready: the next Step reports
// them.
func Wait(ctx context.Context, st Status) error {
	var events int16 = unix.POLLIN
	if st.Dir == Writable {
		events = unix.POLLOUT
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fds := []unix.PollFd{{Fd: int32(st.Fd), Events: events}}
		n, err := unix.Poll(fds, pollTimeout(ctx))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nativeError("poll", err)
		}
		if n > 0 {
			return nil
		}
	}
}

// pollTimeout returns the poll timeout in milliseconds: pollInterval, or less
// if the deadline of ctx is closer. Partial milliseconds are rounded up.
func pollTimeout(ctx context.Context) int {
	timeout := pollInterval
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	return ceilMillis(timeout)
}

func ceilMillis(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Millisecond - 1) / time.Millisecond)
}
