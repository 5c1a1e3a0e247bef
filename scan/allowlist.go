package scan

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrForbiddenTarget is returned when a sweep is requested against a host
// outside the allow list. It always fires before any socket is created.
var ErrForbiddenTarget = errors.New("host is not an allowed target")

// AllowedHosts is the fixed set of hosts this tool will ever probe.
var AllowedHosts = map[string]struct{}{
	"127.0.0.1":       {},
	"localhost":       {},
	"scanme.nmap.org": {},
}

// CheckTarget verifies that host is a member of AllowedHosts.
func CheckTarget(host string) error {
	if _, ok := AllowedHosts[host]; !ok {
		return fmt.Errorf("refusing to scan '%s' (allowed targets: %s): %w", host, describeAllowedHosts(), ErrForbiddenTarget)
	}
	return nil
}

func describeAllowedHosts() string {
	hosts := make([]string, 0, len(AllowedHosts))
	for host := range AllowedHosts {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return strings.Join(hosts, ", ")
}
