package main

import (
	"fmt"

	"github.com/muurk/lanscan/internal/config"
	"github.com/muurk/lanscan/internal/discovery"
	"github.com/muurk/lanscan/internal/hwaddr"
	"github.com/muurk/lanscan/internal/identity"
	"github.com/muurk/lanscan/internal/logging"
	"github.com/muurk/lanscan/internal/netinfo"
	"github.com/muurk/lanscan/internal/probe"
	"github.com/muurk/lanscan/internal/sysexec"
)

// Hooks are the scanner callbacks a command wants
type Hooks struct {
	OnProgress    func(done, total int)
	OnRegression  func(discovery.Regression)
	OnStateChange func(from, to discovery.State)
}

// buildComponents wires the scanner's collaborators from configuration
func buildComponents(cfg *config.Config) discovery.Components {
	runner := sysexec.NewExecRunner(cfg.Names.CommandTimeout, logging.Named("sysexec"))
	pinger := probe.NewICMPPinger(cfg.Scan.Privileged, cfg.Scan.ProbeRate, logging.Named("probe"))

	// 0 in the file means no pause; the sampler treats 0 as its default
	interval := cfg.Scan.SampleInterval
	if interval == 0 {
		interval = -1
	}

	var fallbacks []identity.NameSource
	if cfg.Names.NetBIOS {
		nb := identity.NewNetBIOSSource(runner)
		nb.Command = cfg.Names.NetBIOSCommand
		fallbacks = append(fallbacks, nb)
	}
	if cfg.Names.MDNS {
		md := identity.NewMDNSSource(cfg.Names.MDNSTimeout, identity.DefaultCacheTTL, logging.Named("mdns"))
		if len(cfg.Names.MDNSServices) > 0 {
			md.Services = cfg.Names.MDNSServices
		}
		fallbacks = append(fallbacks, md)
	}

	var table hwaddr.Source = hwaddr.NewTableSource(runner)
	if cfg.Hardware.ARPTable != "" {
		table = hwaddr.NewFileTableSource(cfg.Hardware.ARPTable)
	}
	var active hwaddr.Source
	if cfg.Hardware.ActiveARP {
		active = hwaddr.NewArpingSource("", cfg.Hardware.ARPTimeout)
	}

	return discovery.Components{
		Enumerator: netinfo.NewEnumerator(logging.Named("netinfo")),
		Prober:     &probe.Prober{Pinger: pinger, Timeout: cfg.Scan.ProbeTimeout},
		Sampler: &probe.Sampler{
			Pinger:   pinger,
			Count:    cfg.Scan.Samples,
			Timeout:  cfg.Scan.ProbeTimeout,
			Interval: interval,
		},
		Names:    identity.NewResolver(identity.NewReverseSource(), fallbacks, logging.Named("identity")),
		Hardware: hwaddr.NewResolver(table, active, logging.Named("hwaddr")),
	}
}

// buildScanner creates a scanner from configuration
func buildScanner(cfg *config.Config, hooks Hooks) (*discovery.Scanner, error) {
	policy, err := discovery.ParsePolicy(cfg.History.Policy)
	if err != nil {
		return nil, fmt.Errorf("history.policy: %w", err)
	}

	return discovery.New(buildComponents(cfg), discovery.Config{
		Workers:       cfg.Scan.Workers,
		HistoryPolicy: policy,
		OnProgress:    hooks.OnProgress,
		OnRegression:  hooks.OnRegression,
		OnStateChange: hooks.OnStateChange,
	}, logging.Named("discovery")), nil
}
