// Lanscan discovers and profiles the devices on the local IPv4 /24.
//
// It finds the default gateway and the local address, probes every other
// address in the subnet, and reports each responding host with its name,
// round-trip latency and hardware address. Repeated scans flag hosts whose
// latency increased.
//
// Usage:
//
//	lanscan [command] [flags]
//
// Running without arguments opens the live watch screen on a terminal and
// performs a single scan otherwise.
// See 'lanscan --help' for available commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/lanscan/internal/config"
	"github.com/muurk/lanscan/internal/logging"
	"github.com/muurk/lanscan/internal/ui"
	"github.com/muurk/lanscan/internal/version"
)

// reportedError marks an error the command already rendered for the user
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	logLevel   string
	workers    int
	privileged bool
)

var rootCmd = &cobra.Command{
	Use:   "lanscan",
	Short: "Local network discovery and profiling",
	Long: `Discover the devices on your local network.

lanscan finds the default gateway and this machine's address, sweeps the
remaining addresses of the /24 subnet, and lists every responding device
with its host name, average round-trip latency and hardware (MAC) address.

If no command is specified, the live watch screen opens on a terminal and a
single scan runs otherwise.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ui.IsTerminal() {
			return runWatch(cmd, args)
		}
		return runScan(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: "+defaultConfigHint()+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); empty is silent")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Concurrent probes (1-253)")
	rootCmd.PersistentFlags().BoolVar(&privileged, "privileged", false, "Use raw ICMP sockets (requires root or CAP_NET_RAW)")

	rootCmd.AddCommand(versionCmd)
}

func defaultConfigHint() string {
	if path, err := config.GetConfigPath(); err == nil {
		return path
	}
	return "~/.config/lanscan/config.yaml"
}

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionJSON {
			return ui.NewPrinter(cmd.OutOrStdout()).PrintJSON(version.Info())
		}
		info := version.Info()
		fmt.Fprintf(cmd.OutOrStdout(), "lanscan %s (%s, %s)\n", version.Full(), info.GoVersion, info.Platform)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print version information as JSON")
}

// loadConfig reads the config file and applies command-line overrides
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path = configPath
		err  error
	)
	if path == "" {
		cfg, path, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, path, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("workers") {
		cfg.Scan.Workers = workers
	}
	if flags.Changed("privileged") {
		cfg.Scan.Privileged = privileged
	}

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	if err := logging.Initialize(cfg.LogLevel); err != nil {
		return nil, path, err
	}

	return cfg, path, nil
}
