package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/compcheck/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsIsIdempotent(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()
}

func TestRecordProbeAndWriteTextfile(t *testing.T) {
	testlog.Start(t)
	RecordProbe(ProbeRecord{
		Endpoint:     "wayland-test",
		Outcome:      OutcomeDone,
		Messages:     12,
		Globals:      10,
		Unrecognized: 1,
		Interfaces:   9,
		Duration:     3 * time.Millisecond,
	})

	if got := testutil.ToFloat64(registryGlobals.WithLabelValues("wayland-test")); got != 10 {
		t.Fatalf("globals counter=%v", got)
	}
	if got := testutil.ToFloat64(endpointInterfaces.WithLabelValues("wayland-test")); got != 9 {
		t.Fatalf("interfaces gauge=%v", got)
	}
	if got := testutil.ToFloat64(endpointProbes.WithLabelValues("wayland-test", OutcomeDone)); got != 1 {
		t.Fatalf("probe counter=%v", got)
	}

	path := filepath.Join(t.TempDir(), "compcheck.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(b), `compcheck_registry_globals_total{endpoint="wayland-test"} 10`) {
		t.Fatalf("unexpected textfile:\n%s", b)
	}
}
