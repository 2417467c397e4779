package identity

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/muurk/lanscan/internal/logging"
	"go.uber.org/zap"
)

// Unknown is the name reported when no source could resolve an address.
const Unknown = "Unknown"

// ErrNoName is returned by a NameSource that ran successfully but found no
// usable name.
var ErrNoName = errors.New("no name found")

// NameSource resolves a host name for an IPv4 address.
type NameSource interface {
	LookupName(ctx context.Context, addr string) (string, error)
}

// ReverseSource resolves names through PTR records.
type ReverseSource struct {
	// Lookup performs the reverse query. Default: net.DefaultResolver.LookupAddr
	Lookup func(ctx context.Context, addr string) ([]string, error)
}

// NewReverseSource creates a ReverseSource using the system resolver.
func NewReverseSource() *ReverseSource {
	return &ReverseSource{Lookup: net.DefaultResolver.LookupAddr}
}

// LookupName implements NameSource. The trailing root dot is removed.
func (s *ReverseSource) LookupName(ctx context.Context, addr string) (string, error) {
	names, err := s.Lookup(ctx, addr)
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if name = strings.TrimSuffix(strings.TrimSpace(name), "."); name != "" {
			return name, nil
		}
	}
	return "", ErrNoName
}

// Resolver combines a reverse lookup with fallback sources.
type Resolver struct {
	Reverse   NameSource
	Fallbacks []NameSource

	logger *zap.Logger
}

// NewResolver creates a Resolver. A nil reverse source skips step one.
func NewResolver(reverse NameSource, fallbacks []NameSource, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = logging.Named("identity")
	}
	return &Resolver{
		Reverse:   reverse,
		Fallbacks: fallbacks,
		logger:    logger,
	}
}

// Resolve returns the best-known name for addr, or Unknown. Every source is
// consulted at most once.
func (r *Resolver) Resolve(ctx context.Context, addr string) string {
	if r.Reverse != nil {
		name, err := r.Reverse.LookupName(ctx, addr)
		if err == nil {
			return name
		}
		r.logger.Debug("reverse lookup failed", zap.String("addr", addr), zap.Error(err))
	}

	for _, src := range r.Fallbacks {
		if ctx.Err() != nil {
			break
		}
		name, err := src.LookupName(ctx, addr)
		if err == nil && name != "" {
			return name
		}
		r.logger.Debug("fallback lookup failed", zap.String("addr", addr), zap.Error(err))
	}

	return Unknown
}
