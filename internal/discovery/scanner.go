package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/muurk/lanscan/internal/hwaddr"
	"github.com/muurk/lanscan/internal/logging"
	"github.com/muurk/lanscan/internal/netinfo"
	"github.com/muurk/lanscan/internal/probe"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrNoGateway means the host has no IPv4 default gateway.
	ErrNoGateway = errors.New("no default gateway found")

	// ErrNoLocalAddress means no up, non-loopback interface has an IPv4 address.
	ErrNoLocalAddress = errors.New("no local IPv4 address found")

	// ErrNoSubnet means the gateway address does not yield a /24 prefix.
	ErrNoSubnet = errors.New("cannot derive subnet from gateway address")

	// ErrScanInProgress is returned when Scan is called while another scan
	// on the same Scanner is running.
	ErrScanInProgress = errors.New("scan already in progress")
)

const (
	// DefaultWorkers bounds concurrent per-address units.
	DefaultWorkers = 64

	// MaxWorkers is one unit per non-primary candidate.
	MaxWorkers = netinfo.HostCount - 1
)

// State is a step of the sweep coordinator.
type State int32

const (
	StateIdle State = iota
	StateEnumerating
	StateProbingPrimary
	StateSweepingRemainder
	StateMerged
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEnumerating:
		return "enumerating"
	case StateProbingPrimary:
		return "probing-primary"
	case StateSweepingRemainder:
		return "sweeping-remainder"
	case StateMerged:
		return "merged"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Enumerator reports the local side of the network.
type Enumerator interface {
	Enumerate(ctx context.Context) netinfo.Info
}

// LivenessProber answers whether an address responds at all.
type LivenessProber interface {
	Alive(ctx context.Context, addr string) bool
}

// LatencySampler measures latency to an address.
type LatencySampler interface {
	Sample(ctx context.Context, addr string) probe.Latency
}

// NameResolver resolves a host name, falling back to identity.Unknown.
type NameResolver interface {
	Resolve(ctx context.Context, addr string) string
}

// HardwareResolver resolves a MAC, falling back to a sentinel.
type HardwareResolver interface {
	Resolve(ctx context.Context, target string, local hwaddr.Local) string
}

// Components are the collaborators a Scanner drives.
type Components struct {
	Enumerator Enumerator
	Prober     LivenessProber
	Sampler    LatencySampler
	Names      NameResolver
	Hardware   HardwareResolver
}

// Config controls sweep behavior.
type Config struct {
	// Workers bounds concurrent per-address units.
	// Defaults to 64 if <= 0, capped at 253.
	Workers int

	// HistoryPolicy selects how non-numeric samples update the history.
	// Defaults to PolicyOverwrite.
	HistoryPolicy Policy

	// OnProgress is called by the collector after each unit finishes.
	OnProgress func(done, total int)

	// OnRegression is called by the collector for every latency regression.
	OnRegression func(Regression)

	// OnStateChange is called on every state transition, from the goroutine
	// running Scan.
	OnStateChange func(from, to State)
}

func applyDefaults(cfg Config) Config {
	out := cfg
	if out.Workers <= 0 {
		out.Workers = DefaultWorkers
	}
	if out.Workers > MaxWorkers {
		out.Workers = MaxWorkers
	}
	if out.HistoryPolicy == "" {
		out.HistoryPolicy = PolicyOverwrite
	}
	return out
}

// Scanner coordinates one sweep at a time over the local /24 and keeps a
// latency history across sweeps.
type Scanner struct {
	c       Components
	cfg     Config
	history *History

	state   atomic.Int32
	running sync.Mutex

	now    func() time.Time
	logger *zap.Logger
}

// New creates a Scanner.
func New(c Components, cfg Config, logger *zap.Logger) *Scanner {
	cfg = applyDefaults(cfg)
	if logger == nil {
		logger = logging.Named("discovery")
	}
	return &Scanner{
		c:       c,
		cfg:     cfg,
		history: NewHistory(cfg.HistoryPolicy),
		now:     time.Now,
		logger:  logger,
	}
}

// State returns the coordinator's current step.
func (s *Scanner) State() State {
	return State(s.state.Load())
}

// History returns the latency history shared by all scans of this Scanner.
func (s *Scanner) History() *History {
	return s.history
}

func (s *Scanner) setState(to State) {
	from := State(s.state.Swap(int32(to)))
	logging.LogScanState(from.String(), to.String())
	if s.cfg.OnStateChange != nil {
		s.cfg.OnStateChange(from, to)
	}
}

type unitResult struct {
	device Device
	alive  bool
}

// Scan profiles the gateway and the local host, then sweeps the remaining
// addresses of the gateway's /24.
//
// Enumeration failures return a nil result and one of ErrNoGateway,
// ErrNoLocalAddress or ErrNoSubnet. When ctx is cancelled mid-sweep no new
// units start, running units finish, and the partial result is returned
// together with ctx.Err().
func (s *Scanner) Scan(ctx context.Context) (*ScanResult, error) {
	if !s.running.TryLock() {
		return nil, ErrScanInProgress
	}
	defer s.running.Unlock()

	started := s.now()

	s.setState(StateEnumerating)
	info := s.c.Enumerator.Enumerate(ctx)
	if info.Gateway == "" {
		s.setState(StateFailed)
		return nil, fmt.Errorf("enumerate interfaces: %w", ErrNoGateway)
	}
	if info.Local == "" {
		s.setState(StateFailed)
		return nil, fmt.Errorf("enumerate interfaces: %w", ErrNoLocalAddress)
	}
	prefix, ok := netinfo.SubnetPrefix(info.Gateway)
	if !ok {
		s.setState(StateFailed)
		return nil, fmt.Errorf("gateway %q: %w", info.Gateway, ErrNoSubnet)
	}

	local := hwaddr.Local{Address: info.Local, HardwareAddr: info.HardwareHex()}
	result := &ScanResult{
		Gateway:   info.Gateway,
		Local:     info.Local,
		Subnet:    netinfo.CIDR(prefix),
		StartedAt: started,
	}

	s.setState(StateProbingPrimary)
	result.Devices = append(result.Devices,
		s.profile(ctx, info.Gateway, RoleGateway, local),
		s.profile(ctx, info.Local, RoleLocal, local),
	)

	s.setState(StateSweepingRemainder)
	hosts := s.sweep(ctx, remainder(prefix, info), local)

	s.setState(StateMerged)
	slices.SortFunc(hosts, func(a, b Device) int {
		return compareAddr(a.Address, b.Address)
	})
	result.Devices = append(result.Devices, hosts...)
	result.Duration = s.now().Sub(started)

	err := ctx.Err()
	result.Partial = err != nil

	s.setState(StateDone)
	logging.LogScanSummary(result.Subnet, len(result.Devices), result.Duration, result.Partial)
	return result, err
}

// remainder lists the candidates other than the gateway and the local host.
func remainder(prefix string, info netinfo.Info) []string {
	all := netinfo.Candidates(prefix)
	out := make([]string, 0, len(all))
	for _, addr := range all {
		if addr == info.Gateway || addr == info.Local {
			continue
		}
		out = append(out, addr)
	}
	return out
}

// sweep runs one unit per target under the worker bound. Units hand their
// devices to a single collector goroutine, which alone owns the host slice
// and updates the history.
func (s *Scanner) sweep(ctx context.Context, targets []string, local hwaddr.Local) []Device {
	results := make(chan unitResult, s.cfg.Workers)
	collected := make(chan []Device)

	go func() {
		var hosts []Device
		done := 0
		for r := range results {
			done++
			if r.alive {
				hosts = append(hosts, r.device)
				s.observe(r.device)
			}
			if s.cfg.OnProgress != nil {
				s.cfg.OnProgress(done, len(targets))
			}
		}
		collected <- hosts
	}()

	sem := semaphore.NewWeighted(int64(s.cfg.Workers))
	var wg sync.WaitGroup

	for _, addr := range targets {
		if err := sem.Acquire(ctx, 1); err != nil {
			s.logger.Debug("sweep cancelled, draining running units", zap.Error(err))
			break
		}

		wg.Add(1)
		go func(addr string) {
			defer wg.Done()
			defer sem.Release(1)
			results <- s.unit(ctx, addr, local)
		}(addr)
	}

	wg.Wait()
	close(results)
	return <-collected
}

func (s *Scanner) unit(ctx context.Context, addr string, local hwaddr.Local) unitResult {
	if !s.c.Prober.Alive(ctx, addr) {
		return unitResult{}
	}
	return unitResult{device: s.profile(ctx, addr, RoleHost, local), alive: true}
}

func (s *Scanner) profile(ctx context.Context, addr string, role Role, local hwaddr.Local) Device {
	d := Device{
		Address: addr,
		Role:    role,
	}
	d.Latency = s.c.Sampler.Sample(ctx, addr)
	d.Name = s.c.Names.Resolve(ctx, addr)
	d.HardwareAddress = s.c.Hardware.Resolve(ctx, addr, local)
	d.ScannedAt = s.now()
	return d
}

func (s *Scanner) observe(d Device) {
	reg, regressed := s.history.Observe(d.Address, d.Latency)
	if !regressed {
		return
	}

	prev, _ := reg.Previous.Milliseconds()
	cur, _ := reg.Current.Milliseconds()
	logging.LogRegression(reg.Address, prev, cur)

	if s.cfg.OnRegression != nil {
		s.cfg.OnRegression(reg)
	}
}

// compareAddr orders IPv4 addresses numerically.
func compareAddr(a, b string) int {
	pa, errA := netip.ParseAddr(a)
	pb, errB := netip.ParseAddr(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return pa.Compare(pb)
}
