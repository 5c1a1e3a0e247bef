package scan

import (
	"context"
	"errors"
	"net"
	"sort"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper probes every port in a selection against a single allow-listed
// host. Workers caps the number of in-flight probes; Delay paces task
// submission and bounds the outbound attempt rate independently of the
// worker cap, so total wall time is at least Delay*(ports-1) even when
// workers sit idle. Both knobs are deliberately separate.
type Sweeper struct {
	Host    string
	Workers int
	Timeout time.Duration
	Delay   time.Duration
	Dialer  Dialer
}

func NewSweeper(host string, workers int, timeout time.Duration, delay time.Duration) *Sweeper {
	return &Sweeper{
		Host:    host,
		Workers: workers,
		Timeout: timeout,
		Delay:   delay,
		Dialer:  NetDialer{},
	}
}

// Sweep probes every given port and returns the aggregated outcome. The
// only possible errors are the pre-flight allow-list check; once probing
// starts the sweep always runs to completion. Individual probe faults are
// downgraded to closed results. Cancelling ctx makes the remaining probes
// report closed without dialling; the outcome still covers every port.
func (s *Sweeper) Sweep(ctx context.Context, ports []int) (*Outcome, error) {

	if err := CheckTarget(s.Host); err != nil {
		return nil, err
	}

	workers := s.Workers
	if workers < 1 {
		workers = 1
	}

	dialer := s.Dialer
	if dialer == nil {
		dialer = NetDialer{}
	}

	startTime := time.Now()
	outcome := &Outcome{Host: s.Host}

	jobChan := make(chan int, workers)
	resultChan := make(chan ProbeResult)
	doneChan := make(chan struct{})

	go func() {
		for result := range resultChan {
			state := "closed"
			if result.Open {
				state = "OPEN"
			}
			logrus.Infof("Port %d: %s", result.Port, state)

			outcome.Results = append(outcome.Results, result)
			if result.Open {
				outcome.Open = append(outcome.Open, result.Port)
			}
		}
		close(doneChan)
	}()

	wg := &sync.WaitGroup{}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for port := range jobChan {
				resultChan <- s.probe(ctx, dialer, port)
			}
		}()
	}

	for i, port := range ports {
		if i > 0 && s.Delay > 0 {
			time.Sleep(s.Delay)
		}
		jobChan <- port
	}
	close(jobChan)

	wg.Wait()
	close(resultChan)
	<-doneChan

	sort.Ints(outcome.Open)
	outcome.Elapsed = time.Since(startTime)

	return outcome, nil
}

func (s *Sweeper) probe(ctx context.Context, dialer Dialer, port int) ProbeResult {

	select {
	case <-ctx.Done():
		return ProbeResult{Port: port}
	default:
	}

	address := net.JoinHostPort(s.Host, strconv.Itoa(port))

	conn, err := dialer.DialTimeout("tcp", address, s.Timeout)
	if err != nil {
		logrus.Debugf("Probe of %s failed: %s", address, describeDialError(err))
		return ProbeResult{Port: port}
	}
	conn.Close()

	return ProbeResult{Port: port, Open: true}
}

// describeDialError classifies a failed connect for debug output. Every
// fault collapses to a closed result either way.
func describeDialError(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out"
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return "connection refused"
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return "connection reset"
	}
	return err.Error()
}
