package scan

import (
	"fmt"
	"time"
)

// ProbeResult is the terminal outcome of a single connect attempt.
type ProbeResult struct {
	Port int
	Open bool
}

// Outcome aggregates a completed sweep. Results holds every probe in
// completion order; Open is always sorted ascending.
type Outcome struct {
	Host    string
	Results []ProbeResult
	Open    []int
	Elapsed time.Duration
}

func (o *Outcome) String() string {

	text := fmt.Sprintf("Scan results for host %s\n", o.Host)

	if len(o.Open) == 0 {
		return fmt.Sprintf("%s\tNo open ports\n", text)
	}

	text = fmt.Sprintf(
		"%s\t%s\t%s\n",
		text,
		"PORT",
		"STATE",
	)

	for _, port := range o.Open {
		text = fmt.Sprintf(
			"%s\t%s\t%s\n",
			text,
			pad(fmt.Sprintf("%d/tcp", port), 10),
			pad("OPEN", 10),
		)
	}

	return text
}

func pad(input string, length int) string {
	for len(input) < length {
		input += " "
	}
	return input
}
