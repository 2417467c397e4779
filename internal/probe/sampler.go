package probe

import (
	"context"
	"errors"
	"time"
)

// Sampler defaults.
const (
	DefaultSampleCount    = 5
	DefaultSampleTimeout  = time.Second
	DefaultSampleInterval = 100 * time.Millisecond
)

// Sampler measures latency to one address with a fixed number of
// sequential echo requests.
type Sampler struct {
	Pinger Pinger
	// Count is the number of echoes per sample. Default: 5
	Count int
	// Timeout bounds each echo. Default: 1s
	Timeout time.Duration
	// Interval is the pause between consecutive echoes. Default: 100ms
	Interval time.Duration
}

func (s *Sampler) count() int {
	if s.Count <= 0 {
		return DefaultSampleCount
	}
	return s.Count
}

func (s *Sampler) timeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultSampleTimeout
	}
	return s.Timeout
}

func (s *Sampler) interval() time.Duration {
	if s.Interval < 0 {
		return 0
	}
	if s.Interval == 0 {
		return DefaultSampleInterval
	}
	return s.Interval
}

// Sample sends Count echoes to addr and reduces them to a Latency. The first
// error that is not ErrNoReply aborts the sample and is returned as Failed.
// Cancelling ctx also yields Failed with the context error as detail.
func (s *Sampler) Sample(ctx context.Context, addr string) Latency {
	var (
		total   time.Duration
		replies int
	)

	n := s.count()
	for i := 0; i < n; i++ {
		if i > 0 {
			if err := sleep(ctx, s.interval()); err != nil {
				return FailedLatency(err.Error())
			}
		}

		rtt, err := s.Pinger.Ping(ctx, addr, s.timeout())
		switch {
		case err == nil:
			total += rtt
			replies++
		case errors.Is(err, ErrNoReply):
		default:
			return FailedLatency(err.Error())
		}
	}

	if replies == 0 {
		return TimedOutLatency()
	}
	return MeasuredLatency(total / time.Duration(replies))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
