package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/muurk/lanscan/internal/client"
	"github.com/muurk/lanscan/internal/config"
	"github.com/muurk/lanscan/internal/discovery"
	"github.com/muurk/lanscan/internal/logging"
	"github.com/muurk/lanscan/internal/server"
	"github.com/muurk/lanscan/internal/tui"
	"github.com/muurk/lanscan/internal/ui"
)

// Command flags
var (
	outputFormat  string
	watchInterval time.Duration
	serveAddr     string
	serveInterval time.Duration
	forceInit     bool
	remoteServer  string
	remoteTrigger bool
	remoteFollow  bool
	remoteFormat  string
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(remoteCmd)
	rootCmd.AddCommand(configCmd)

	scanCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format (table, json)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Time between scans (default from config, 6s)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, "+server.DefaultAddr+")")
	serveCmd.Flags().DurationVar(&serveInterval, "interval", 0, "Time between scans (default from config, 30s)")

	remoteCmd.Flags().StringVar(&remoteServer, "server", "", "Server URL (default http://<serve.addr>)")
	remoteCmd.Flags().BoolVar(&remoteTrigger, "trigger", false, "Ask the server to scan now before fetching")
	remoteCmd.Flags().BoolVarP(&remoteFollow, "follow", "f", false, "Stream results and regressions until interrupted")
	remoteCmd.Flags().StringVar(&remoteFormat, "format", "table", "Output format (table, json)")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file without asking")
}

// scanCmd runs a single sweep
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the local subnet once",
	Long: `Scan the local /24 subnet once and print every responding device.

The gateway and this machine are always listed first, followed by the
other hosts in ascending address order. Latency is the average of five
echo requests; hosts that answered the liveness probe but none of the
samples show "Request timed out".`,
	Example: `  # Styled table
  lanscan scan

  # JSON for scripting
  lanscan scan --format json

  # Raw ICMP sockets and fewer concurrent probes
  sudo lanscan scan --privileged --workers 16`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	switch outputFormat {
	case "json":
		scanner, err := buildScanner(cfg, Hooks{})
		if err != nil {
			return err
		}
		result, err := scanner.Scan(cmd.Context())
		if result != nil {
			if perr := ui.NewPrinter(cmd.OutOrStdout()).PrintJSON(result); perr != nil {
				return perr
			}
		}
		return err

	case "table", "":
		runner := ui.NewScanRunner(ui.ScanRunnerConfig{
			Title:   "LAN Scan",
			Command: cmd.CommandPath(),
			Params: []ui.Param{
				{Key: "Workers", Value: strconv.Itoa(cfg.Scan.Workers)},
				{Key: "Samples", Value: fmt.Sprintf("%d × %s", cfg.Scan.Samples, cfg.Scan.ProbeTimeout)},
				{Key: "ICMP", Value: icmpMode(cfg.Scan.Privileged)},
			},
			Live:   ui.IsTerminal(),
			Output: cmd.OutOrStdout(),
		})

		scanner, err := buildScanner(cfg, Hooks{
			OnProgress:    runner.OnProgress,
			OnRegression:  runner.OnRegression,
			OnStateChange: runner.OnStateChange,
		})
		if err != nil {
			return err
		}

		result, err := runner.Run(cmd.Context(), scanner.Scan)
		if result != nil {
			logging.LogScanSummary(result.Subnet, len(result.Devices), result.Duration, result.Partial)
		}
		if err != nil {
			return &reportedError{err: err}
		}
		return nil

	default:
		return fmt.Errorf("unknown format %q (want table or json)", outputFormat)
	}
}

func icmpMode(privileged bool) string {
	if privileged {
		return "raw socket"
	}
	return "datagram socket"
}

// watchCmd opens the live dashboard
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rescan continuously and show a live device table",
	Long: `Open a full-screen view that rescans the subnet on an interval.

Hosts whose latency increased since the previous scan are listed beside
the table. Press r to rescan immediately and q to quit.`,
	Example: `  # Rescan every 6 seconds (default)
  lanscan watch

  # Slower refresh
  lanscan watch --interval 30s`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	interval := cfg.Watch.Interval
	if cmd.Flags().Changed("interval") {
		interval = watchInterval
	}

	feed := tui.NewFeed()
	scanner, err := buildScanner(cfg, Hooks{
		OnProgress:    feed.OnProgress,
		OnRegression:  feed.OnRegression,
		OnStateChange: feed.OnStateChange,
	})
	if err != nil {
		return err
	}

	model := tui.New(cmd.Context(), scanner.Scan, feed, interval)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("watch screen: %w", err)
	}
	return nil
}

// serveCmd runs the live feed server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve scan results over HTTP and WebSocket",
	Long: `Scan on an interval and serve the latest result.

Endpoints:
  GET  /api/scan   latest result as JSON (503 until the first scan completes)
  POST /api/scan   start a scan now
  GET  /ws         WebSocket feed of scan results and latency regressions

Set serve.cert_file and serve.key_file in the config file to serve TLS.`,
	Example: `  # Listen on localhost:8080 (default)
  lanscan serve

  # Listen on all interfaces, scan every minute
  lanscan serve --addr :8080 --interval 1m`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	addr, interval := cfg.Serve.Addr, cfg.Serve.Interval
	if cmd.Flags().Changed("addr") {
		addr = serveAddr
	}
	if cmd.Flags().Changed("interval") {
		interval = serveInterval
	}

	hub := server.NewHub(logging.Named("server"))
	scanner, err := buildScanner(cfg, Hooks{OnRegression: hub.OnRegression})
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Addr:     addr,
		Interval: interval,
		CertPath: cfg.Serve.CertFile,
		KeyPath:  cfg.Serve.KeyFile,
	}, scanner.Scan, hub, logging.Named("server"))
	if err != nil {
		return err
	}

	scheme := "http"
	if cfg.Serve.CertFile != "" {
		scheme = "https"
	}
	ui.NewPrinter(cmd.OutOrStdout()).PrintHeader("Live Feed", cmd.CommandPath(),
		ui.Param{Key: "Listen", Value: scheme + "://" + addr},
		ui.Param{Key: "Interval", Value: interval.String()},
		ui.Param{Key: "Workers", Value: strconv.Itoa(cfg.Scan.Workers)},
	)

	return srv.Start(cmd.Context())
}

// remoteCmd reads results from a running server
var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Show results from a running lanscan server",
	Long: `Fetch the latest scan result from a "lanscan serve" instance.

Requests are retried with backoff while the server is unreachable or has
not finished its first scan. With --follow the command stays connected
to the WebSocket feed and prints every new result and regression.`,
	Example: `  # Latest result from the configured serve address
  lanscan remote

  # Scan now on another machine and follow the feed
  lanscan remote --server http://nas.lan:8080 --trigger --follow`,
	RunE: runRemote,
}

func runRemote(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if remoteFormat != "table" && remoteFormat != "json" {
		return fmt.Errorf("unknown format %q (want table or json)", remoteFormat)
	}

	base := remoteServer
	if base == "" {
		base = cfg.Serve.Addr
		if cfg.Serve.CertFile != "" {
			base = "https://" + base
		}
	}
	c := client.NewClient(base)
	printer := ui.NewPrinter(cmd.OutOrStdout())
	ctx := cmd.Context()

	fail := func(title string, err error) error {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		printer.PrintError(title, err, client.TroubleshootingHints(err))
		return &reportedError{err: err}
	}

	if remoteTrigger {
		status, err := c.Trigger(ctx)
		if err != nil {
			return fail("Trigger failed", err)
		}
		logging.Debug("Remote scan triggered", zap.String("server", c.BaseURL), zap.String("status", status))
	}

	if remoteFollow {
		err := c.Follow(ctx, func(ev server.Event) error {
			return printEvent(printer, ev)
		})
		if err != nil {
			return fail("Feed disconnected", err)
		}
		return nil
	}

	result, err := c.Latest(ctx)
	if err != nil {
		return fail("Could not fetch result", err)
	}
	if remoteFormat == "json" {
		return printer.PrintJSON(result)
	}
	return printEvent(printer, server.Event{Type: server.EventScan, Scan: result})
}

func printEvent(p *ui.Printer, ev server.Event) error {
	if remoteFormat == "json" {
		return p.PrintJSON(ev)
	}
	switch {
	case ev.Scan != nil:
		p.PrintDevices(ev.Scan)
		p.PrintSummary(ev.Scan)
	case ev.Regression != nil:
		p.PrintRegressions([]discovery.Regression{*ev.Regression})
	}
	return nil
}

// configCmd groups config file helpers
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}

		force := forceInit
		if _, statErr := os.Stat(path); statErr == nil && !force {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return fmt.Errorf("%s: %w (use --force to overwrite)", path, config.ErrConfigExists)
			}
			if !ui.ConfirmOverwrite(cmd.InOrStdin(), cmd.OutOrStdout(), path) {
				return nil
			}
			force = true
		}

		if err := config.Init(path, force); err != nil {
			return err
		}

		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Configuration written",
			ui.Param{Key: "Path", Value: path},
		)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		data, err := cfg.Marshal(path)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}
