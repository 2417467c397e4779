package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/muurk/lanscan/internal/logging"
	"go.uber.org/zap"
)

const (
	// ServiceDomain is the mDNS domain browsed for services.
	ServiceDomain = "local."

	// DefaultBrowseWindow is how long one browse round listens for answers.
	DefaultBrowseWindow = 2 * time.Second

	// DefaultCacheTTL is how long a browse round's answers are reused.
	DefaultCacheTTL = 30 * time.Second
)

// DefaultServiceTypes are the DNS-SD types commonly advertised by
// workstations, printers and NAS boxes.
var DefaultServiceTypes = []string{
	"_workstation._tcp",
	"_device-info._tcp",
	"_http._tcp",
	"_ipp._tcp",
	"_smb._tcp",
}

// BrowseFunc streams service entries for one service type until ctx ends.
type BrowseFunc func(ctx context.Context, service string, entries chan<- *zeroconf.ServiceEntry) error

// MDNSSource resolves names from an mDNS browse cache.
type MDNSSource struct {
	// Services lists the DNS-SD service types to browse.
	Services []string
	// Window bounds one browse round.
	Window time.Duration
	// TTL is how long cached answers are reused before browsing again.
	TTL time.Duration
	// Browse performs the browse. Default: a zeroconf resolver
	Browse BrowseFunc

	mu        sync.Mutex
	names     map[string]string
	refreshed time.Time
	now       func() time.Time
	logger    *zap.Logger
}

// NewMDNSSource creates an MDNSSource backed by github.com/grandcat/zeroconf.
func NewMDNSSource(window, ttl time.Duration, logger *zap.Logger) *MDNSSource {
	if window <= 0 {
		window = DefaultBrowseWindow
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = logging.Named("mdns")
	}
	return &MDNSSource{
		Services: DefaultServiceTypes,
		Window:   window,
		TTL:      ttl,
		Browse:   zeroconfBrowse,
		names:    make(map[string]string),
		now:      time.Now,
		logger:   logger,
	}
}

func zeroconfBrowse(ctx context.Context, service string, entries chan<- *zeroconf.ServiceEntry) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}
	if err := resolver.Browse(ctx, service, ServiceDomain, entries); err != nil {
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}
	return nil
}

// LookupName implements NameSource. The cache is refreshed under the lock,
// so concurrent lookups share a single browse round.
func (s *MDNSSource) LookupName(ctx context.Context, addr string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refreshed.IsZero() || s.now().Sub(s.refreshed) > s.TTL {
		names, err := s.browseAll(ctx)
		if err != nil {
			return "", err
		}
		s.names = names
		s.refreshed = s.now()
	}

	if name, ok := s.names[addr]; ok {
		return name, nil
	}
	return "", ErrNoName
}

func (s *MDNSSource) browseAll(ctx context.Context) (map[string]string, error) {
	names := make(map[string]string)
	var firstErr error

	for _, service := range s.Services {
		found, err := s.browse(ctx, service)
		if err != nil {
			s.logger.Debug("mDNS browse failed", zap.String("service", service), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for addr, name := range found {
			if _, seen := names[addr]; !seen {
				names[addr] = name
			}
		}
	}

	if len(names) == 0 && firstErr != nil {
		return nil, firstErr
	}
	s.logger.Debug("mDNS cache refreshed", zap.Int("hosts", len(names)))
	return names, nil
}

func (s *MDNSSource) browse(ctx context.Context, service string) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Window)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	collected := make(chan struct{})

	var (
		mu    sync.Mutex
		found = make(map[string]string)
	)

	go func() {
		defer close(collected)
		for {
			var entry *zeroconf.ServiceEntry
			select {
			case <-ctx.Done():
				return
			case e, open := <-entries:
				if !open {
					return
				}
				entry = e
			}

			addr, name, ok := parseServiceEntry(entry)
			if !ok {
				continue
			}
			mu.Lock()
			if _, seen := found[addr]; !seen {
				found[addr] = name
			}
			mu.Unlock()
		}
	}()

	if err := s.Browse(ctx, service, entries); err != nil {
		return nil, err
	}

	// The zeroconf resolver keeps the channel open until ctx ends.
	select {
	case <-collected:
	case <-ctx.Done():
	}

	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]string, len(found))
	for k, v := range found {
		out[k] = v
	}
	return out, nil
}

// parseServiceEntry maps an entry to its first IPv4 address and host name
// without the ".local." suffix.
func parseServiceEntry(entry *zeroconf.ServiceEntry) (string, string, bool) {
	if entry == nil || entry.HostName == "" || len(entry.AddrIPv4) == 0 {
		return "", "", false
	}

	name := strings.TrimSuffix(entry.HostName, ".")
	name = strings.TrimSuffix(name, ".local")
	if name == "" {
		return "", "", false
	}

	ip := entry.AddrIPv4[0].To4()
	if ip == nil {
		return "", "", false
	}
	return ip.String(), name, true
}
