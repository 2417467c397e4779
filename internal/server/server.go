package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/lanscan/internal/discovery"
	"github.com/muurk/lanscan/internal/logging"
)

const (
	// DefaultAddr is the default listen address
	DefaultAddr = "127.0.0.1:8080"

	// DefaultInterval is the default time between automatic scans
	DefaultInterval = 30 * time.Second

	// shutdownTimeout bounds a graceful shutdown
	shutdownTimeout = 10 * time.Second
)

// Config holds the server configuration
type Config struct {
	Addr     string
	Interval time.Duration
	CertPath string // Path to certificate file (optional)
	KeyPath  string // Path to private key file (optional)
}

// ScanFunc runs one scan
type ScanFunc func(ctx context.Context) (*discovery.ScanResult, error)

// Server runs scans on an interval and serves the latest result over HTTP
// and a websocket live feed.
type Server struct {
	config    Config
	scan      ScanFunc
	hub       *Hub
	tlsConfig *tls.Config
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	httpServer *http.Server
	listener   net.Listener
	wg         sync.WaitGroup
	running    atomic.Bool

	mu      sync.RWMutex
	latest  *discovery.ScanResult
	lastErr error
}

// New creates a new Server. hub should be the one whose OnRegression hook
// the scanner was built with; nil creates a fresh hub.
func New(config Config, scan ScanFunc, hub *Hub, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Addr == "" {
		config.Addr = DefaultAddr
	}
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if hub == nil {
		hub = NewHub(logger)
	}

	var tlsConfig *tls.Config
	if config.CertPath != "" || config.KeyPath != "" {
		var err error
		tlsConfig, err = NewTLSConfig(config.CertPath, config.KeyPath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		config:    config,
		scan:      scan,
		hub:       hub,
		tlsConfig: tlsConfig,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Hub returns the server's websocket hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// Addr returns the bound listen address once Start has begun listening
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// Latest returns the most recent scan result and the last scan error
func (s *Server) Latest() (*discovery.ScanResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.lastErr
}

// Trigger starts a scan in the background. It returns false when a scan
// is already running.
func (s *Server) Trigger() bool {
	if s.running.Load() || s.ctx.Err() != nil {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runScan(s.ctx)
	}()
	return true
}

// runScan performs one scan, stores the result and broadcasts it.
// Overlapping calls return immediately.
func (s *Server) runScan(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Debug("Scan already running, trigger ignored")
		return
	}
	defer s.running.Store(false)

	result, err := s.scan(ctx)

	s.mu.Lock()
	s.lastErr = err
	if result != nil {
		s.latest = result
	}
	s.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("Scan failed", zap.Error(err))
	}
	if result != nil {
		s.hub.Broadcast(Event{Type: EventScan, Scan: result})
	}
}

// scanLoop scans immediately and then on every interval
func (s *Server) scanLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.runScan(s.ctx)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runScan(s.ctx)
		}
	}
}

// Start starts the server and blocks until ctx is done or serving fails
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	if s.tlsConfig != nil {
		listener = tls.NewListener(listener, s.tlsConfig)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Info("Starting lanscan live feed",
		zap.String("addr", listener.Addr().String()),
		zap.Bool("tls", s.tlsConfig != nil),
		zap.Duration("interval", s.config.Interval),
	)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpServer.Serve(listener)
	}()

	s.wg.Add(1)
	go s.scanLoop()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown signal received, stopping server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		_ = s.Shutdown(context.Background())
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown stops scanning, closes client connections and waits for
// in-flight work
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	// Cancel any running scan; it returns a partial result
	s.cancel()

	var err error
	if s.httpServer != nil {
		if err = s.httpServer.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("Error shutting down HTTP server", zap.Error(err))
		}
	}

	// Hijacked websocket connections are not closed by http.Server
	s.hub.Close()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("All scans and connections stopped")
	case <-ctx.Done():
		s.logger.Warn("Shutdown timeout, forcing close")
	case <-time.After(shutdownTimeout):
		s.logger.Warn("Shutdown timeout after 10 seconds, forcing close")
	}

	logging.Sync()
	return err
}
