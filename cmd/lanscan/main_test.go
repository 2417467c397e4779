package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/muurk/lanscan/internal/config"
	"github.com/muurk/lanscan/internal/hwaddr"
	"github.com/muurk/lanscan/internal/identity"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		configPath, logLevel, workers, privileged = "", "", 0, false
		forceInit, versionJSON = false, false
		remoteServer, remoteTrigger, remoteFollow, remoteFormat = "", false, false, "table"
		resetChanged(rootCmd)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetChanged clears pflag's Changed markers, which survive between
// Execute calls on the shared command tree
func resetChanged(cmd *cobra.Command) {
	unset := func(f *pflag.Flag) { f.Changed = false }
	cmd.Flags().VisitAll(unset)
	cmd.PersistentFlags().VisitAll(unset)
	for _, sub := range cmd.Commands() {
		resetChanged(sub)
	}
}

func TestBuildScanner(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"defaults", func(*config.Config) {}, false},
		{"retain numeric", func(c *config.Config) { c.History.Policy = "retain-numeric" }, false},
		{"bad policy", func(c *config.Config) { c.History.Policy = "forever" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			scanner, err := buildScanner(cfg, Hooks{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildScanner() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && scanner == nil {
				t.Error("buildScanner() returned nil scanner")
			}
		})
	}
}

func TestBuildComponents(t *testing.T) {
	cfg := config.Default()
	cfg.Names.NetBIOS = true
	cfg.Names.NetBIOSCommand = "nmblookup"
	cfg.Names.MDNS = true
	cfg.Names.MDNSServices = []string{"_printer._tcp"}
	cfg.Hardware.ActiveARP = true
	cfg.Hardware.ARPTable = filepath.Join(t.TempDir(), "arp")

	c := buildComponents(cfg)

	names, ok := c.Names.(*identity.Resolver)
	if !ok {
		t.Fatalf("Names is %T, want *identity.Resolver", c.Names)
	}
	if len(names.Fallbacks) != 2 {
		t.Fatalf("fallbacks = %d, want 2", len(names.Fallbacks))
	}
	if nb, ok := names.Fallbacks[0].(*identity.NetBIOSSource); !ok || nb.Command != "nmblookup" {
		t.Errorf("first fallback = %#v, want NetBIOS with command override", names.Fallbacks[0])
	}
	if md, ok := names.Fallbacks[1].(*identity.MDNSSource); !ok || md.Services[0] != "_printer._tcp" {
		t.Errorf("second fallback = %#v, want mDNS with configured services", names.Fallbacks[1])
	}

	hw, ok := c.Hardware.(*hwaddr.Resolver)
	if !ok {
		t.Fatalf("Hardware is %T, want *hwaddr.Resolver", c.Hardware)
	}
	if hw.Active == nil {
		t.Error("Active source not set with active_arp enabled")
	}

	cfg.Hardware.ActiveARP = false
	cfg.Names.NetBIOS, cfg.Names.MDNS = false, false
	c = buildComponents(cfg)
	if hw := c.Hardware.(*hwaddr.Resolver); hw.Active != nil {
		t.Errorf("Active = %#v, want nil interface", hw.Active)
	}
	if names := c.Names.(*identity.Resolver); len(names.Fallbacks) != 0 {
		t.Errorf("fallbacks = %d, want 0", len(names.Fallbacks))
	}
}

func TestConfigShow_FlagOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := config.Init(path, false); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	out, err := execute(t, "config", "show", "--config", path, "--workers", "8", "--privileged")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	for _, want := range []string{"workers: 8", "privileged: true", path} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestConfigShow_InvalidOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := execute(t, "config", "show", "--config", path, "--workers", "300"); err == nil {
		t.Error("config show with --workers 300 succeeded, want validation error")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lanscan", "config.yaml")

	if _, err := execute(t, "config", "init", "--config", path); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if _, err := execute(t, "config", "init", "--config", path, "--force"); err != nil {
		t.Errorf("config init --force error = %v", err)
	}
}

func TestConfigPath(t *testing.T) {
	out, err := execute(t, "config", "path", "--config", "/tmp/x.yaml")
	if err != nil {
		t.Fatalf("config path error = %v", err)
	}
	if strings.TrimSpace(out) != "/tmp/x.yaml" {
		t.Errorf("config path = %q", out)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--json")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, `"go_version"`) {
		t.Errorf("version --json = %s", out)
	}
}

const remoteResult = `{"devices":[{"address":"192.168.1.1","name":"router.lan","latency":"2 ms","hardware_address":"AABBCCDDEEFF","role":"gateway"},{"address":"192.168.1.30","name":"printer.lan","latency":"Request timed out","hardware_address":"Not Found","role":"host"}],"gateway":"192.168.1.1","local":"192.168.1.42","subnet":"192.168.1.0/24","partial":false}`

func TestRemote(t *testing.T) {
	var triggered bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			triggered = true
			w.WriteHeader(http.StatusAccepted)
			fmt.Fprint(w, `{"status":"started"}`)
		default:
			fmt.Fprint(w, remoteResult)
		}
	}))
	defer ts.Close()

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	tests := []struct {
		name          string
		args          []string
		want          []string
		wantTriggered bool
	}{
		{"table", nil, []string{"192.168.1.30", "printer.lan", "Request timed out"}, false},
		{"json", []string{"--format", "json"}, []string{`"subnet": "192.168.1.0/24"`}, false},
		{"trigger", []string{"--trigger"}, []string{"router.lan"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			triggered = false
			args := append([]string{"remote", "--config", cfgPath, "--server", ts.URL}, tt.args...)
			out, err := execute(t, args...)
			if err != nil {
				t.Fatalf("remote error = %v\n%s", err, out)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q\n%s", want, out)
				}
			}
			if triggered != tt.wantTriggered {
				t.Errorf("triggered = %v, want %v", triggered, tt.wantTriggered)
			}
		})
	}
}

func TestRemote_BadFormat(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := execute(t, "remote", "--config", cfgPath, "--format", "xml"); err == nil {
		t.Error("remote --format xml succeeded, want error")
	}
}
