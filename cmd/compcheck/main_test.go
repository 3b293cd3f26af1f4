package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/compcheck/internal/discovery"
	"github.com/danmuck/compcheck/internal/testutil/testlog"
	"github.com/danmuck/compcheck/internal/testutil/wltest"
	"gopkg.in/yaml.v3"
)

func startPair(t *testing.T) string {
	t.Helper()
	dir := wltest.ShortTempDir(t)
	wltest.StartCompositor(t, dir, "wayland-0", wltest.Script{Events: wltest.Concat(
		wltest.GlobalFrame(1, "wl_compositor", 6),
		wltest.GlobalFrame(2, "wl_seat", 7),
		wltest.GlobalFrame(3, "xdg_wm_base", 5),
		wltest.DoneFrame(1),
	)})
	wltest.StartCompositor(t, dir, "wayland-1", wltest.Script{Events: wltest.Concat(
		wltest.GlobalFrame(1, "wl_compositor", 6),
		wltest.GlobalFrame(2, "wl_seat", 9),
		wltest.DoneFrame(1),
	)})
	return dir
}

func TestRunSingleEndpointPrintsTable(t *testing.T) {
	testlog.Start(t)
	dir := startPair(t)
	var stdout, stderr bytes.Buffer
	code := run([]string{"--runtime-dir", dir, "wayland-0"}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("exit=%d stderr=%s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "Connecting to "+filepath.Join(dir, "wayland-0")) {
		t.Fatalf("missing connect banner:\n%s", out)
	}
	if !strings.Contains(out, "Connected to ") {
		t.Fatalf("missing peer banner:\n%s", out)
	}
	for _, name := range []string{"wl_compositor", "wl_seat", "xdg_wm_base"} {
		if !strings.Contains(out, "  "+name+" ") {
			t.Fatalf("missing %s:\n%s", name, out)
		}
	}
}

// flakyWriter fails its first write and accepts the rest.
type flakyWriter struct {
	bytes.Buffer
	failed bool
}

func (w *flakyWriter) Write(p []byte) (int, error) {
	if !w.failed {
		w.failed = true
		return 0, errors.New("stdout closed")
	}
	return w.Buffer.Write(p)
}

func TestRunBannerWriteErrorFailsRun(t *testing.T) {
	testlog.Start(t)
	dir := startPair(t)
	var stdout flakyWriter
	var stderr bytes.Buffer
	code := run([]string{"--runtime-dir", dir, "wayland-0"}, &stdout, &stderr)
	if code != exitSetupFailed {
		t.Fatalf("exit=%d want %d", code, exitSetupFailed)
	}
	if !strings.Contains(stderr.String(), "stdout closed") {
		t.Fatalf("banner error not reported: %s", stderr.String())
	}
	if !strings.Contains(stdout.String(), "wl_compositor") {
		t.Fatalf("report still expected after banner failure:\n%s", stdout.String())
	}
}

func TestRunDiscoversAndDiffs(t *testing.T) {
	testlog.Start(t)
	dir := startPair(t)
	t.Setenv(discovery.EnvRuntimeDir, dir)
	var stdout, stderr bytes.Buffer
	code := run(nil, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("exit=%d stderr=%s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "@ wayland-0") || !strings.Contains(out, "(has version 7)") {
		t.Fatalf("wayland-0 should miss wl_seat 9:\n%s", out)
	}
	if !strings.Contains(out, "@ wayland-1") || !strings.Contains(out, "xdg_wm_base") {
		t.Fatalf("wayland-1 should miss xdg_wm_base:\n%s", out)
	}
}

func TestRunYAMLWithConfigAndMetrics(t *testing.T) {
	testlog.Start(t)
	dir := startPair(t)
	metrics := filepath.Join(t.TempDir(), "compcheck.prom")
	cfgPath := filepath.Join(t.TempDir(), "compcheck.toml")
	body := "runtime_dir = \"" + dir + "\"\nsockets = [\"wayland-0\", \"wayland-1\", \"wayland-7\"]\nformat = \"yaml\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"-c", cfgPath, "--metrics-file", metrics}, &stdout, &stderr)
	if code != exitEndpointFailed {
		t.Fatalf("expected endpoint failure exit, got %d stderr=%s", code, stderr.String())
	}

	var doc struct {
		Endpoints []struct {
			Label string `yaml:"label"`
			State string `yaml:"state"`
			Error string `yaml:"error"`
		} `yaml:"endpoints"`
	}
	if err := yaml.Unmarshal(stdout.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, stdout.String())
	}
	if len(doc.Endpoints) != 3 || doc.Endpoints[2].Label != "wayland-7" || doc.Endpoints[2].Error == "" {
		t.Fatalf("unexpected endpoints: %+v", doc.Endpoints)
	}
	if doc.Endpoints[0].State != "done" {
		t.Fatalf("unexpected state: %+v", doc.Endpoints[0])
	}
	b, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	if !strings.Contains(string(b), `compcheck_endpoint_probes_total{endpoint="wayland-7",outcome="failed"}`) {
		t.Fatalf("unexpected metrics:\n%s", b)
	}
}

func TestRunSetupErrors(t *testing.T) {
	testlog.Start(t)
	t.Setenv(discovery.EnvRuntimeDir, "")
	cases := [][]string{
		{"wayland-0"},
		{},
		{"--format", "xml", "/tmp/wayland-0"},
		{"--no-such-flag"},
		{"--runtime-dir", t.TempDir()},
	}
	for _, argv := range cases {
		var stdout, stderr bytes.Buffer
		if code := run(argv, &stdout, &stderr); code != exitSetupFailed {
			t.Fatalf("argv=%v: exit=%d stderr=%s", argv, code, stderr.String())
		}
	}
}

func TestRunHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--help"}, &stdout, &stderr); code != exitOK {
		t.Fatalf("exit=%d", code)
	}
	if !strings.Contains(stderr.String(), "Usage: compcheck") {
		t.Fatalf("missing usage:\n%s", stderr.String())
	}
}
