//go:build linux

package rfcomm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestPollTimeout(t *testing.T) {
	assert.Equal(t, 100, pollTimeout(context.Background()))

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	assert.Equal(t, 0, pollTimeout(ctx))

	ctx, cancel = context.WithTimeout(context.Background(), time.Hour)
	defer cancel()
	assert.Equal(t, 100, pollTimeout(ctx))
}

func TestCeilMillis(t *testing.T) {
	for d, want := range map[time.Duration]int{
		-time.Second:                       0,
		0:                                  0,
		time.Nanosecond:                    1,
		500 * time.Microsecond:             1,
		time.Millisecond:                   1,
		time.Millisecond + time.Nanosecond: 2,
		100 * time.Millisecond:             100,
	} {
		assert.Equal(t, want, ceilMillis(d), "%v", d)
	}
}

func TestWait(t *testing.T) {
	var p [2]int
	require.NoError(t, unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC))
	defer unix.Close(p[0])
	defer unix.Close(p[1])

	// An empty pipe is writable but not readable.
	require.NoError(t, Wait(context.Background(), Status{Fd: p[1], Dir: Writable}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Equal(t, context.DeadlineExceeded, Wait(ctx, Status{Fd: p[0], Dir: Readable}))

	_, err := unix.Write(p[1], []byte{1})
	require.NoError(t, err)
	require.NoError(t, Wait(context.Background(), Status{Fd: p[0], Dir: Readable}))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, Wait(cancelled, Status{Fd: p[0], Dir: Readable}))
}
