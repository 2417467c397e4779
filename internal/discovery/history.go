package discovery

import (
	"fmt"
	"sync"

	"github.com/muurk/lanscan/internal/probe"
)

// Policy decides what a non-numeric sample does to a stored latency.
type Policy string

const (
	// PolicyOverwrite stores every sample, sentinels included, so a single
	// timeout clears the baseline for the next comparison.
	PolicyOverwrite Policy = "overwrite"

	// PolicyRetainNumeric keeps the last numeric sample until a newer
	// numeric sample replaces it.
	PolicyRetainNumeric Policy = "retain-numeric"
)

// ParsePolicy validates a policy name. An empty name selects PolicyOverwrite.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyOverwrite:
		return PolicyOverwrite, nil
	case PolicyRetainNumeric:
		return PolicyRetainNumeric, nil
	default:
		return "", fmt.Errorf("unknown history policy %q (want %q or %q)", s, PolicyOverwrite, PolicyRetainNumeric)
	}
}

// Regression reports a latency increase between two scans.
type Regression struct {
	Address  string        `json:"address"`
	Previous probe.Latency `json:"previous"`
	Current  probe.Latency `json:"current"`
}

// History remembers the last latency seen per address for the lifetime of
// the process.
type History struct {
	policy Policy

	mu      sync.RWMutex
	entries map[string]probe.Latency
}

// NewHistory creates an empty History.
func NewHistory(policy Policy) *History {
	if policy == "" {
		policy = PolicyOverwrite
	}
	return &History{
		policy:  policy,
		entries: make(map[string]probe.Latency),
	}
}

// Policy returns the update policy in effect.
func (h *History) Policy() Policy {
	return h.policy
}

// Observe records a new sample for addr. It reports a Regression when both
// the stored and the new sample are numeric and the new one is strictly
// greater.
func (h *History) Observe(addr string, current probe.Latency) (Regression, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	previous, seen := h.entries[addr]

	var (
		reg       Regression
		regressed bool
	)
	if seen {
		prevMs, prevOK := previous.Milliseconds()
		curMs, curOK := current.Milliseconds()
		if prevOK && curOK && curMs > prevMs {
			reg = Regression{Address: addr, Previous: previous, Current: current}
			regressed = true
		}
	}

	_, numeric := current.Milliseconds()
	if h.policy == PolicyOverwrite || numeric || !seen {
		h.entries[addr] = current
	}

	return reg, regressed
}

// Get returns the stored latency for addr.
func (h *History) Get(addr string) (probe.Latency, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	l, ok := h.entries[addr]
	return l, ok
}

// Len returns the number of addresses with a stored latency.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}
