package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeStringListsOpenPorts(t *testing.T) {
	outcome := &Outcome{
		Host:    "127.0.0.1",
		Open:    []int{22, 80},
		Elapsed: time.Second,
	}

	text := outcome.String()
	assert.Contains(t, text, "127.0.0.1")
	assert.Contains(t, text, "22/tcp")
	assert.Contains(t, text, "80/tcp")
	assert.Contains(t, text, "OPEN")
}

func TestOutcomeStringWithoutOpenPorts(t *testing.T) {
	outcome := &Outcome{Host: "localhost"}

	text := outcome.String()
	assert.Contains(t, text, "No open ports")
	assert.NotContains(t, text, "/tcp")
}
