package echo

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// Client drives an interactive session against an echo server.
type Client struct {
	Addr    string
	Timeout time.Duration
}

func NewClient(addr string, timeout time.Duration) *Client {
	return &Client{
		Addr:    addr,
		Timeout: timeout,
	}
}

// Run connects to the server and loops over line-oriented input from in,
// sending each line verbatim and logging the reply. Typing "quit" or
// "exit" disconnects, as does end-of-input or the server closing the
// connection. The ctx check is best-effort between lines; a read blocked
// on in is not interrupted.
func (c *Client) Run(ctx context.Context, in io.Reader, out io.Writer) error {

	logrus.Infof("Attempting to connect to %s...", c.Addr)

	conn, err := net.DialTimeout("tcp", c.Addr, c.Timeout)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return fmt.Errorf("connection attempt to %s timed out", c.Addr)
		}
		if errors.Is(err, syscall.ECONNREFUSED) {
			return fmt.Errorf("connection to %s refused: is the server running?", c.Addr)
		}
		return fmt.Errorf("failed to connect to %s: %w", c.Addr, err)
	}
	defer conn.Close()

	logrus.Infof("Connected to %s", c.Addr)

	scanner := bufio.NewScanner(in)
	reply := make([]byte, 4096)

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Interrupted, disconnecting")
			return nil
		default:
		}

		fmt.Fprint(out, "Enter message (type 'quit' to disconnect): ")

		if !scanner.Scan() {
			logrus.Info("Input closed, disconnecting")
			break
		}

		msg := strings.TrimSpace(scanner.Text())
		if msg == "" {
			continue
		}

		if strings.EqualFold(msg, "quit") || strings.EqualFold(msg, "exit") {
			logrus.Info("Requested disconnect")
			break
		}

		if _, err := conn.Write([]byte(msg)); err != nil {
			logrus.Warnf("Server closed connection: %s", err)
			break
		}

		n, err := conn.Read(reply)
		if err != nil {
			if errors.Is(err, io.EOF) {
				logrus.Info("Server closed connection")
			} else {
				logrus.Warnf("Failed to read reply: %s", err)
			}
			break
		}

		logrus.Infof("Received: %s", strings.TrimRight(string(reply[:n]), "\r\n"))
	}

	return scanner.Err()
}
