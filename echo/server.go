package echo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultMaxClients caps concurrently handled connections so a
	// connection flood cannot spawn goroutines without bound. Excess
	// connections queue in the accept loop until a slot frees up.
	DefaultMaxClients = 256

	// DefaultDrainTimeout bounds how long shutdown waits for in-flight
	// handlers after the listener closes.
	DefaultDrainTimeout = 5 * time.Second
)

// Server accepts TCP connections and echoes back whatever each client
// sends, wrapped in a short acknowledgement line.
type Server struct {
	Addr         string
	MaxClients   int64
	DrainTimeout time.Duration
}

func NewServer(addr string) *Server {
	return &Server{
		Addr:         addr,
		MaxClients:   DefaultMaxClients,
		DrainTimeout: DefaultDrainTimeout,
	}
}

// ListenAndServe runs the accept loop until ctx is cancelled, then closes
// the listener and waits for in-flight handlers up to DrainTimeout.
func (s *Server) ListenAndServe(ctx context.Context) error {

	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr, err)
	}

	logrus.Infof("Listening on %s", listener.Addr())

	go func() {
		<-ctx.Done()
		logrus.Info("Shutting down server socket")
		listener.Close()
	}()

	maxClients := s.MaxClients
	if maxClients < 1 {
		maxClients = DefaultMaxClients
	}
	sem := semaphore.NewWeighted(maxClients)

	wg := &sync.WaitGroup{}

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			logrus.Errorf("Failed to accept connection: %s", err)
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			conn.Close()
			break
		}

		wg.Add(1)
		go func(conn net.Conn) {
			defer wg.Done()
			defer sem.Release(1)
			s.handle(conn)
		}(conn)
	}

	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()

	drainTimeout := s.DrainTimeout
	if drainTimeout <= 0 {
		drainTimeout = DefaultDrainTimeout
	}

	select {
	case <-drained:
	case <-time.After(drainTimeout):
		logrus.Warn("Gave up waiting for in-flight handlers")
	}

	return nil
}

func (s *Server) handle(conn net.Conn) {

	peer := conn.RemoteAddr().String()
	logrus.Infof("Client connected: %s", peer)

	defer conn.Close()
	defer logrus.Infof("Handler finished for %s", peer)

	buf := make([]byte, 2048)

	for {
		n, err := conn.Read(buf)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				logrus.Infof("Client %s disconnected", peer)
			case errors.Is(err, syscall.ECONNRESET):
				logrus.Warnf("Connection reset by peer: %s", peer)
			default:
				logrus.Warnf("Failed to read from %s: %s", peer, err)
			}
			return
		}

		text := strings.TrimRight(string(buf[:n]), " \r\n")
		logrus.Infof("Received from %s: %s", peer, text)

		reply := fmt.Sprintf("Server: received '%s'\n", text)
		if _, err := conn.Write([]byte(reply)); err != nil {
			if errors.Is(err, syscall.EPIPE) {
				logrus.Warnf("Broken pipe when sending to %s", peer)
			} else {
				logrus.Warnf("Failed to write to %s: %s", peer, err)
			}
			return
		}
	}
}
