package scan

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PortSpecError describes a malformed token in a port selection string.
type PortSpecError struct {
	Token  string
	Reason string
}

func (e *PortSpecError) Error() string {
	return fmt.Sprintf("invalid port specification '%s': %s", e.Token, e.Reason)
}

// ParsePorts parses a selection such as "22,80,8000-8010" into an ascending,
// deduplicated list of ports. Blank segments are skipped. Range bounds are
// inclusive and every port must fall within 1-65535.
func ParsePorts(selection string) ([]int, error) {
	seen := map[int]struct{}{}

	for _, segment := range strings.Split(selection, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		if strings.Contains(segment, "-") {
			parts := strings.SplitN(segment, "-", 2)

			p1, err := strconv.Atoi(strings.TrimSpace(parts[0]))
			if err != nil {
				return nil, &PortSpecError{Token: segment, Reason: "range bounds must be numbers"}
			}

			p2, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err != nil {
				return nil, &PortSpecError{Token: segment, Reason: "range bounds must be numbers"}
			}

			if p1 < 1 || p2 > 65535 {
				return nil, &PortSpecError{Token: segment, Reason: "ports must be within 1-65535"}
			}

			if p1 > p2 {
				return nil, &PortSpecError{Token: segment, Reason: "range start is greater than range end"}
			}

			for port := p1; port <= p2; port++ {
				seen[port] = struct{}{}
			}

		} else {
			port, err := strconv.Atoi(segment)
			if err != nil {
				return nil, &PortSpecError{Token: segment, Reason: "not a number"}
			}

			if port < 1 || port > 65535 {
				return nil, &PortSpecError{Token: segment, Reason: "ports must be within 1-65535"}
			}

			seen[port] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil, &PortSpecError{Token: selection, Reason: "no ports selected"}
	}

	ports := make([]int, 0, len(seen))
	for port := range seen {
		ports = append(ports, port)
	}
	sort.Ints(ports)

	return ports, nil
}
