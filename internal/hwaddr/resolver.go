package hwaddr

import (
	"context"
	"errors"

	"github.com/muurk/lanscan/internal/logging"
	"go.uber.org/zap"
)

// NotFound is reported when no source knows the address.
const NotFound = "not found"

// errorPrefix starts the sentinel reported when a lookup mechanism fails.
const errorPrefix = "Error: "

// ErrNotFound is returned by a Source that ran successfully but has no
// entry for the address.
var ErrNotFound = errors.New("hardware address not found")

// Source looks up the normalized MAC of a neighbor.
type Source interface {
	LookupHardware(ctx context.Context, addr string) (string, error)
}

// Local identifies the scanning host.
type Local struct {
	Address string
	// HardwareAddr is the normalized MAC of the local interface.
	HardwareAddr string
}

// Resolver answers hardware address questions for a sweep.
type Resolver struct {
	// Table is the neighbor table source.
	Table Source
	// Active, when set, is consulted only if Table has no entry.
	Active Source

	logger *zap.Logger
}

// NewResolver creates a Resolver. active may be nil.
func NewResolver(table, active Source, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = logging.Named("hwaddr")
	}
	return &Resolver{Table: table, Active: active, logger: logger}
}

// Resolve returns the MAC of target, NotFound, or an "Error: " sentinel.
func (r *Resolver) Resolve(ctx context.Context, target string, local Local) string {
	if target == local.Address {
		if local.HardwareAddr == "" {
			return NotFound
		}
		return local.HardwareAddr
	}

	mac, err := r.Table.LookupHardware(ctx, target)
	if err == nil {
		return mac
	}
	if !errors.Is(err, ErrNotFound) {
		r.logger.Debug("neighbor table lookup failed", zap.String("addr", target), zap.Error(err))
		return errorPrefix + err.Error()
	}

	if r.Active != nil {
		mac, err := r.Active.LookupHardware(ctx, target)
		if err == nil {
			return mac
		}
		r.logger.Debug("active ARP failed", zap.String("addr", target), zap.Error(err))
	}

	return NotFound
}
