package scan

import (
	"context"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConn struct{}

func (stubConn) Read(b []byte) (int, error)         { return 0, nil }
func (stubConn) Write(b []byte) (int, error)        { return len(b), nil }
func (stubConn) Close() error                       { return nil }
func (stubConn) LocalAddr() net.Addr                { return &net.TCPAddr{} }
func (stubConn) RemoteAddr() net.Addr               { return &net.TCPAddr{} }
func (stubConn) SetDeadline(t time.Time) error      { return nil }
func (stubConn) SetReadDeadline(t time.Time) error  { return nil }
func (stubConn) SetWriteDeadline(t time.Time) error { return nil }

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// stubDialer fakes the transport. Ports in open connect, everything else
// fails with dialErr (connection refused unless overridden). It tracks
// every dialled port and the peak number of simultaneous dials.
type stubDialer struct {
	open     map[int]bool
	dialErr  error
	holdFor  time.Duration
	holdPort map[int]time.Duration

	mu       sync.Mutex
	dialed   []int
	inFlight int32
	maxSeen  int32
}

func (d *stubDialer) DialTimeout(network, address string, timeout time.Duration) (net.Conn, error) {
	current := atomic.AddInt32(&d.inFlight, 1)
	defer atomic.AddInt32(&d.inFlight, -1)

	for {
		max := atomic.LoadInt32(&d.maxSeen)
		if current <= max || atomic.CompareAndSwapInt32(&d.maxSeen, max, current) {
			break
		}
	}

	_, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.dialed = append(d.dialed, port)
	d.mu.Unlock()

	if hold, ok := d.holdPort[port]; ok {
		time.Sleep(hold)
	} else if d.holdFor > 0 {
		time.Sleep(d.holdFor)
	}

	if d.open[port] {
		return stubConn{}, nil
	}
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return nil, &net.OpError{Op: "dial", Net: network, Err: syscall.ECONNREFUSED}
}

func (d *stubDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.dialed)
}

func TestSweepRefusesForbiddenHost(t *testing.T) {
	dialer := &stubDialer{}
	sweeper := &Sweeper{Host: "example.com", Workers: 5, Dialer: dialer}

	outcome, err := sweeper.Sweep(context.Background(), []int{22, 80})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbiddenTarget)
	assert.Nil(t, outcome)
	assert.Zero(t, dialer.dialCount(), "a forbidden target must never reach the transport")
}

func TestSweepReportsOpenAndClosedPorts(t *testing.T) {
	dialer := &stubDialer{open: map[int]bool{22: true, 80: true}}
	sweeper := &Sweeper{Host: "127.0.0.1", Workers: 3, Dialer: dialer}

	outcome, err := sweeper.Sweep(context.Background(), []int{22, 80, 81})
	require.NoError(t, err)

	assert.Equal(t, []int{22, 80}, outcome.Open)
	assert.Len(t, outcome.Results, 3)
	assert.Equal(t, 3, dialer.dialCount())
}

func TestSweepOpenPortsSortedRegardlessOfCompletionOrder(t *testing.T) {
	dialer := &stubDialer{
		open: map[int]bool{3: true, 10: true, 500: true},
		holdPort: map[int]time.Duration{
			3:   30 * time.Millisecond,
			10:  20 * time.Millisecond,
			500: time.Millisecond,
		},
	}
	sweeper := &Sweeper{Host: "localhost", Workers: 3, Dialer: dialer}

	outcome, err := sweeper.Sweep(context.Background(), []int{3, 10, 500})
	require.NoError(t, err)

	assert.Equal(t, []int{3, 10, 500}, outcome.Open)
}

func TestSweepRespectsWorkerCap(t *testing.T) {
	ports := make([]int, 100)
	for i := range ports {
		ports[i] = i + 1
	}

	dialer := &stubDialer{holdFor: 2 * time.Millisecond}
	sweeper := &Sweeper{Host: "127.0.0.1", Workers: 5, Dialer: dialer}

	outcome, err := sweeper.Sweep(context.Background(), ports)
	require.NoError(t, err)

	assert.Len(t, outcome.Results, 100)
	assert.LessOrEqual(t, atomic.LoadInt32(&dialer.maxSeen), int32(5))
}

func TestSweepTimeoutDowngradesToClosed(t *testing.T) {
	dialer := &stubDialer{dialErr: timeoutError{}}
	sweeper := &Sweeper{Host: "127.0.0.1", Workers: 1, Dialer: dialer}

	outcome, err := sweeper.Sweep(context.Background(), []int{9999})
	require.NoError(t, err)

	require.Len(t, outcome.Results, 1)
	assert.False(t, outcome.Results[0].Open)
	assert.Empty(t, outcome.Open)
}

func TestSweepPacingDelayBoundsElapsedTime(t *testing.T) {
	dialer := &stubDialer{}
	sweeper := &Sweeper{Host: "127.0.0.1", Workers: 50, Delay: 10 * time.Millisecond, Dialer: dialer}

	outcome, err := sweeper.Sweep(context.Background(), []int{1, 2, 3, 4, 5})
	require.NoError(t, err)

	// four pauses between five submissions, even with idle workers
	assert.GreaterOrEqual(t, outcome.Elapsed, 40*time.Millisecond)
}

func TestSweepCancelledContextSkipsDialling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dialer := &stubDialer{open: map[int]bool{22: true}}
	sweeper := &Sweeper{Host: "127.0.0.1", Workers: 2, Dialer: dialer}

	outcome, err := sweeper.Sweep(ctx, []int{22, 80})
	require.NoError(t, err)

	assert.Len(t, outcome.Results, 2)
	assert.Empty(t, outcome.Open)
	assert.Zero(t, dialer.dialCount())
}

func TestSweepIsIdempotent(t *testing.T) {
	dialer := &stubDialer{open: map[int]bool{22: true, 443: true}}
	sweeper := &Sweeper{Host: "127.0.0.1", Workers: 4, Dialer: dialer}

	first, err := sweeper.Sweep(context.Background(), []int{22, 80, 443})
	require.NoError(t, err)

	second, err := sweeper.Sweep(context.Background(), []int{22, 80, 443})
	require.NoError(t, err)

	assert.Equal(t, first.Open, second.Open)
}
