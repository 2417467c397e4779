package config

import (
	"fmt"
	"time"

	"github.com/muurk/lanscan/internal/discovery"
	"github.com/muurk/lanscan/internal/identity"
)

// Version is the only configuration schema version understood.
const Version = 1

// Config is the root configuration structure stored in YAML.
type Config struct {
	Version  int            `yaml:"version"`
	Scan     ScanConfig     `yaml:"scan"`
	Names    NamesConfig    `yaml:"names"`
	Hardware HardwareConfig `yaml:"hardware"`
	History  HistoryConfig  `yaml:"history"`
	Watch    WatchConfig    `yaml:"watch"`
	Serve    ServeConfig    `yaml:"serve"`
	LogLevel string         `yaml:"log_level,omitempty"` // debug, info, warn, error; empty means silent
}

// ScanConfig controls probing.
type ScanConfig struct {
	Workers        int           `yaml:"workers"`         // Concurrent per-address units (1-253)
	ProbeTimeout   time.Duration `yaml:"probe_timeout"`   // Timeout of each ICMP echo
	Samples        int           `yaml:"samples"`         // Echoes per latency sample
	SampleInterval time.Duration `yaml:"sample_interval"` // Pause between echoes of one sample
	ProbeRate      float64       `yaml:"probe_rate"`      // Echoes per second across the sweep, 0 = unlimited
	Privileged     bool          `yaml:"privileged"`      // Use raw ICMP sockets instead of datagram sockets
}

// NamesConfig controls host name resolution.
type NamesConfig struct {
	NetBIOS        bool          `yaml:"netbios"`                   // Fall back to a NetBIOS node-status query
	NetBIOSCommand string        `yaml:"netbios_command,omitempty"` // Override nbtstat/nmblookup
	CommandTimeout time.Duration `yaml:"command_timeout"`           // Timeout for external commands
	MDNS           bool          `yaml:"mdns"`                      // Fall back to an mDNS browse cache
	MDNSTimeout    time.Duration `yaml:"mdns_timeout"`              // Length of one mDNS browse round
	MDNSServices   []string      `yaml:"mdns_services,omitempty"`   // DNS-SD service types to browse
}

// HardwareConfig controls MAC resolution.
type HardwareConfig struct {
	ARPTable   string        `yaml:"arp_table,omitempty"` // Neighbor table file in /proc/net/arp format
	ActiveARP  bool          `yaml:"active_arp"`          // Send an ARP request when the table has no entry
	ARPTimeout time.Duration `yaml:"arp_timeout"`         // Timeout of one ARP request
}

// HistoryConfig controls latency regression tracking.
type HistoryConfig struct {
	Policy string `yaml:"policy"` // overwrite or retain-numeric
}

// WatchConfig controls the interactive dashboard.
type WatchConfig struct {
	Interval time.Duration `yaml:"interval"` // Time between automatic scans
}

// ServeConfig controls the live feed server.
type ServeConfig struct {
	Addr     string        `yaml:"addr"`                // Listen address
	Interval time.Duration `yaml:"interval"`            // Time between automatic scans
	CertFile string        `yaml:"cert_file,omitempty"` // TLS certificate (PEM); empty serves plain HTTP
	KeyFile  string        `yaml:"key_file,omitempty"`  // TLS private key (PEM)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: Version,
		Scan: ScanConfig{
			Workers:        discovery.DefaultWorkers,
			ProbeTimeout:   time.Second,
			Samples:        5,
			SampleInterval: 100 * time.Millisecond,
			ProbeRate:      200,
		},
		Names: NamesConfig{
			NetBIOS:        true,
			CommandTimeout: 5 * time.Second,
			MDNSTimeout:    identity.DefaultBrowseWindow,
			MDNSServices:   append([]string(nil), identity.DefaultServiceTypes...),
		},
		Hardware: HardwareConfig{
			ARPTimeout: 500 * time.Millisecond,
		},
		History: HistoryConfig{
			Policy: string(discovery.PolicyOverwrite),
		},
		Watch: WatchConfig{
			Interval: 6 * time.Second,
		},
		Serve: ServeConfig{
			Addr:     "127.0.0.1:8080",
			Interval: 30 * time.Second,
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Version != Version {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, Version)
	}
	if c.Scan.Workers < 1 || c.Scan.Workers > discovery.MaxWorkers {
		return fmt.Errorf("scan.workers must be between 1 and %d, got %d", discovery.MaxWorkers, c.Scan.Workers)
	}
	if c.Scan.ProbeTimeout <= 0 {
		return fmt.Errorf("scan.probe_timeout must be positive, got %s", c.Scan.ProbeTimeout)
	}
	if c.Scan.Samples < 1 {
		return fmt.Errorf("scan.samples must be at least 1, got %d", c.Scan.Samples)
	}
	if c.Scan.SampleInterval < 0 {
		return fmt.Errorf("scan.sample_interval must not be negative, got %s", c.Scan.SampleInterval)
	}
	if c.Scan.ProbeRate < 0 {
		return fmt.Errorf("scan.probe_rate must not be negative, got %g", c.Scan.ProbeRate)
	}
	if c.Names.CommandTimeout <= 0 {
		return fmt.Errorf("names.command_timeout must be positive, got %s", c.Names.CommandTimeout)
	}
	if c.Names.MDNS && c.Names.MDNSTimeout <= 0 {
		return fmt.Errorf("names.mdns_timeout must be positive when mdns is enabled")
	}
	if c.Hardware.ActiveARP && c.Hardware.ARPTimeout <= 0 {
		return fmt.Errorf("hardware.arp_timeout must be positive when active_arp is enabled")
	}
	if _, err := discovery.ParsePolicy(c.History.Policy); err != nil {
		return fmt.Errorf("history.policy: %w", err)
	}
	if c.Watch.Interval < time.Second {
		return fmt.Errorf("watch.interval must be at least 1s, got %s", c.Watch.Interval)
	}
	if c.Serve.Addr == "" {
		return fmt.Errorf("serve.addr must not be empty")
	}
	if c.Serve.Interval < time.Second {
		return fmt.Errorf("serve.interval must be at least 1s, got %s", c.Serve.Interval)
	}
	if (c.Serve.CertFile == "") != (c.Serve.KeyFile == "") {
		return fmt.Errorf("serve.cert_file and serve.key_file must be set together")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}
