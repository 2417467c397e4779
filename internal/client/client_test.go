package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/lanscan/internal/discovery"
	"github.com/muurk/lanscan/internal/probe"
	"github.com/muurk/lanscan/internal/server"
)

const resultJSON = `{"devices":[{"address":"192.168.1.1","name":"router.lan","latency":"2 ms","hardware_address":"AABBCCDDEEFF","role":"gateway"}],"gateway":"192.168.1.1","local":"192.168.1.42","subnet":"192.168.1.0/24","partial":false}`

func testClient(url string) *Client {
	c := NewClient(url)
	c.SetRetry(2, time.Millisecond)
	return c
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"127.0.0.1:8080", "http://127.0.0.1:8080"},
		{"http://host:8080/", "http://host:8080"},
		{"https://host", "https://host"},
	}
	for _, tt := range tests {
		if got := NewClient(tt.in).BaseURL; got != tt.want {
			t.Errorf("NewClient(%q).BaseURL = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWebsocketURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://127.0.0.1:8080", "ws://127.0.0.1:8080/ws"},
		{"https://scanner.lan", "wss://scanner.lan/ws"},
		{"http://host/prefix/", "ws://host/prefix/ws"},
	}
	for _, tt := range tests {
		got, err := NewClient(tt.base).websocketURL()
		if err != nil {
			t.Fatalf("websocketURL(%q) error = %v", tt.base, err)
		}
		if got != tt.want {
			t.Errorf("websocketURL(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestLatest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/scan" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, resultJSON)
	}))
	defer ts.Close()

	result, err := testClient(ts.URL).Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if result.Subnet != "192.168.1.0/24" || len(result.Devices) != 1 {
		t.Fatalf("Latest() = %+v", result)
	}
	if result.Devices[0].Role != discovery.RoleGateway {
		t.Errorf("Role = %q, want gateway", result.Devices[0].Role)
	}
}

func TestLatestRetriesUntilReady(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"error":"no scan has completed yet"}`)
			return
		}
		fmt.Fprint(w, resultJSON)
	}))
	defer ts.Close()

	if _, err := testClient(ts.URL).Latest(context.Background()); err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestLatestErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantType  ErrorType
		wantCalls int32
		wantMsg   string
	}{
		{"not ready exhausts retries", http.StatusServiceUnavailable, `{"error":"no scan has completed yet"}`, ErrTypeNotReady, 3, "no scan has completed yet"},
		{"server error retried", http.StatusInternalServerError, ``, ErrTypeHTTP, 3, "unexpected status code: 500"},
		{"client error not retried", http.StatusNotFound, ``, ErrTypeHTTP, 1, "unexpected status code: 404"},
		{"bad body not retried", http.StatusOK, `not json`, ErrTypeParse, 1, "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			_, err := testClient(ts.URL).Latest(context.Background())
			var fe *FeedError
			if !errors.As(err, &fe) {
				t.Fatalf("Latest() error = %v, want *FeedError", err)
			}
			if fe.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", fe.Type, tt.wantType)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
			if !strings.Contains(fe.Error(), tt.wantMsg) {
				t.Errorf("Error() = %q, want it to contain %q", fe.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLatestConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := testClient(url)
	c.SetRetry(0, time.Millisecond)
	_, err := c.Latest(context.Background())

	var fe *FeedError
	if !errors.As(err, &fe) || fe.Type != ErrTypeConnectionRefused {
		t.Fatalf("Latest() error = %v, want connection refused", err)
	}
	if hints := TroubleshootingHints(err); len(hints) == 0 || hints[1] != "Start the server with: lanscan serve" {
		t.Errorf("TroubleshootingHints() = %v", hints)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	c.SetRetry(5, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := c.Latest(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Latest() error = %v, want deadline exceeded", err)
	}
}

func TestTrigger(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{"started", http.StatusAccepted, `{"status":"started"}`, "started", false},
		{"already running", http.StatusAccepted, `{"status":"already running"}`, "already running", false},
		{"wrong method", http.StatusMethodNotAllowed, ``, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("method = %s, want POST", r.Method)
				}
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			got, err := testClient(ts.URL).Trigger(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Trigger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Trigger() = %q, want %q", got, tt.want)
			}
		})
	}
}

var errDone = errors.New("done")

func TestFollow(t *testing.T) {
	result := &discovery.ScanResult{
		Subnet:  "192.168.1.0/24",
		Devices: []discovery.Device{{Address: "192.168.1.30", Latency: probe.MeasuredLatency(40 * time.Millisecond)}},
	}
	srv, err := server.New(server.Config{Interval: time.Hour}, func(ctx context.Context) (*discovery.ScanResult, error) {
		return result, nil
	}, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("server.New() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	defer func() { _ = srv.Shutdown(context.Background()) }()

	connected := make(chan struct{})
	go func() {
		for srv.Hub().Clients() == 0 {
			time.Sleep(5 * time.Millisecond)
		}
		close(connected)
		srv.Hub().OnRegression(discovery.Regression{
			Address:  "192.168.1.30",
			Previous: probe.MeasuredLatency(5 * time.Millisecond),
			Current:  probe.MeasuredLatency(40 * time.Millisecond),
		})
		srv.Hub().Broadcast(server.Event{Type: server.EventScan, Scan: result})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var events []server.Event
	err = testClient(ts.URL).Follow(ctx, func(ev server.Event) error {
		events = append(events, ev)
		if len(events) == 2 {
			return errDone
		}
		return nil
	})
	if !errors.Is(err, errDone) {
		t.Fatalf("Follow() error = %v, want errDone", err)
	}
	<-connected

	if events[0].Type != server.EventRegression || events[0].Regression.Address != "192.168.1.30" {
		t.Errorf("events[0] = %+v, want regression for 192.168.1.30", events[0])
	}
	if events[1].Type != server.EventScan || events[1].Scan.Subnet != "192.168.1.0/24" {
		t.Errorf("events[1] = %+v, want scan", events[1])
	}
}

func TestFollowCancel(t *testing.T) {
	srv, err := server.New(server.Config{Interval: time.Hour}, func(ctx context.Context) (*discovery.ScanResult, error) {
		return nil, nil
	}, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("server.New() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	defer func() { _ = srv.Shutdown(context.Background()) }()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for srv.Hub().Clients() == 0 {
			time.Sleep(5 * time.Millisecond)
		}
		cancel()
	}()

	err = testClient(ts.URL).Follow(ctx, func(server.Event) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Follow() error = %v, want context.Canceled", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"not ready", NewHTTPError(503, "x"), true},
		{"bad gateway", NewHTTPError(502, "x"), true},
		{"not found", NewHTTPError(404, "x"), false},
		{"parse", NewParseError("x", nil), false},
		{"wrapped", fmt.Errorf("outer: %w", NewHTTPError(500, "x")), true},
		{"plain", errors.New("x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}
