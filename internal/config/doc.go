// Package config provides user configuration management for lanscan.
//
// This package manages a YAML configuration file holding scan tuning, name
// and hardware resolution options, the latency history policy, and the
// watch and serve intervals. The configuration follows OS-specific
// conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/lanscan/config.yaml or $HOME/.config/lanscan/config.yaml
//   - macOS: $HOME/.config/lanscan/config.yaml
//   - Windows: %LOCALAPPDATA%\lanscan\config.yaml
//
// # Defaults
//
// Load starts from Default() and overlays whatever the file sets, so a file
// only needs the values it changes. A missing file is not an error.
// Durations use Go syntax ("1s", "100ms").
//
// # Usage Example
//
//	cfg, path, err := config.LoadDefault()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg.Scan.Workers = 32
//	if err := cfg.Save(path); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// File writes are protected by a mutex and go through a temporary file and
// rename, so a crash never leaves a truncated configuration behind.
package config
