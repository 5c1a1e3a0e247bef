package scan

import (
	"net"
	"time"
)

// Dialer abstracts the TCP connect attempt so sweeps can run against a stub
// transport in tests.
type Dialer interface {
	DialTimeout(network, address string, timeout time.Duration) (net.Conn, error)
}

// NetDialer probes over the real network stack.
type NetDialer struct{}

func (NetDialer) DialTimeout(network, address string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout(network, address, timeout)
}
