package probe

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LatencyState classifies a latency sample.
type LatencyState int

const (
	// Measured means at least one echo reply arrived.
	Measured LatencyState = iota
	// TimedOut means no echo reply arrived within the timeout.
	TimedOut
	// Failed means the probing mechanism itself returned an error.
	Failed
)

const (
	timedOutText = "Request timed out"
	errorPrefix  = "Error: "
	msSuffix     = " ms"
)

// Latency is the outcome of a latency sample.
type Latency struct {
	State LatencyState
	// Value is the mean round trip, truncated to whole milliseconds.
	// Only meaningful when State is Measured.
	Value time.Duration
	// Detail carries the error message when State is Failed.
	Detail string
}

// MeasuredLatency returns a Measured latency truncated to milliseconds.
func MeasuredLatency(d time.Duration) Latency {
	return Latency{State: Measured, Value: d.Truncate(time.Millisecond)}
}

// TimedOutLatency returns a TimedOut latency.
func TimedOutLatency() Latency {
	return Latency{State: TimedOut}
}

// FailedLatency returns a Failed latency carrying msg.
func FailedLatency(msg string) Latency {
	return Latency{State: Failed, Detail: msg}
}

// Milliseconds returns the whole-millisecond value and whether the latency
// is numeric at all.
func (l Latency) Milliseconds() (int64, bool) {
	if l.State != Measured {
		return 0, false
	}
	return l.Value.Milliseconds(), true
}

func (l Latency) String() string {
	switch l.State {
	case Measured:
		return strconv.FormatInt(l.Value.Milliseconds(), 10) + msSuffix
	case TimedOut:
		return timedOutText
	default:
		return errorPrefix + l.Detail
	}
}

// ParseLatency reverses String.
func ParseLatency(s string) (Latency, error) {
	switch {
	case s == timedOutText:
		return TimedOutLatency(), nil
	case strings.HasPrefix(s, errorPrefix):
		return FailedLatency(strings.TrimPrefix(s, errorPrefix)), nil
	case strings.HasSuffix(s, msSuffix):
		n, err := strconv.ParseInt(strings.TrimSuffix(s, msSuffix), 10, 64)
		if err != nil || n < 0 {
			return Latency{}, fmt.Errorf("invalid latency %q", s)
		}
		return MeasuredLatency(time.Duration(n) * time.Millisecond), nil
	default:
		return Latency{}, fmt.Errorf("invalid latency %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so latencies serialise as
// their display text in JSON and YAML.
func (l Latency) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Latency) UnmarshalText(text []byte) error {
	parsed, err := ParseLatency(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
