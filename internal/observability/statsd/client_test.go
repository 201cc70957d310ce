package statsd

import (
	"net"
	"strings"
	"testing"
	"time"
)

func TestSanitizePrefix(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"  vista.ui  ": "vista.ui",
		"..foo..":      "foo",
		".":            "",
		"":             "",
	}

	for input, want := range tests {
		if got := sanitizePrefix(input); got != want {
			t.Fatalf("sanitizePrefix(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeMetricName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		" session/login ": "session_login",
		"foo..bar":        "foo.bar",
		"multi  space":    "multi__space",
		"api:request|x":   "api_request_x",
	}

	for input, want := range tests {
		if got := normalizeMetricName(input); got != want {
			t.Fatalf("normalizeMetricName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFormatTags(t *testing.T) {
	t.Parallel()

	global := map[string]string{
		"env":       "prod",
		" service ": " vista ",
	}
	local := map[string]string{
		"result": " success ",
		"":       "ignored",
		"env":    "stage",
	}

	got := formatTags(global, local)
	want := "|#env:stage,result:success,service:vista"
	if got != want {
		t.Fatalf("formatTags = %q, want %q", got, want)
	}
	if formatTags(nil, nil) != "" {
		t.Fatal("expected no tag suffix without tags")
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{Enabled: true, Address: "  "})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.Enabled() {
		t.Fatal("client without address must be disabled")
	}
	c.Count("x", 1, nil)
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var nilClient *Client
	nilClient.Timing("x", time.Second, nil)
	if nilClient.Enabled() || nilClient.Dropped() != 0 {
		t.Fatal("nil client must be inert")
	}
}

func TestClientPacksLinesIntoDatagrams(t *testing.T) {
	t.Parallel()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer pc.Close()

	c, err := NewClient(Config{
		Enabled:       true,
		Address:       pc.LocalAddr().String(),
		Prefix:        "vista.",
		GlobalTags:    map[string]string{"env": "test"},
		FlushInterval: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	c.Count("session.operation", 1, map[string]string{"operation": "login"})
	c.Gauge("session.registry.size", 3, nil)
	c.Timing("api.request", 1500*time.Microsecond, nil)
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	buf := make([]byte, 2048)
	_ = pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(string(buf[:n]), "\n")
	want := []string{
		"vista.session.operation:1|c|#env:test,operation:login",
		"vista.session.registry.size:3|g|#env:test",
		"vista.api.request:1.5|ms|#env:test",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines %q, want %d", len(lines), lines, len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder
	r.Count("a", 2, map[string]string{"k": "v"})
	r.Timing("b", 2*time.Millisecond, nil)

	if got := r.Named("a"); len(got) != 1 || got[0].Value != 2 || got[0].Tags["k"] != "v" {
		t.Fatalf("unexpected samples %+v", got)
	}
	if got := r.Named("b"); len(got) != 1 || got[0].Kind != "timing" || got[0].Value != 2 {
		t.Fatalf("unexpected timing %+v", got)
	}
}
