package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var testCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "yudl_metrics_test_total",
	Help: "Counter used by the metrics package tests",
})

func TestRegistry(t *testing.T) {
	if Registry == nil {
		t.Error("Registry should not be nil")
	}

	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

func TestWriteTextfile(t *testing.T) {
	testCounter.Inc()

	path := filepath.Join(t.TempDir(), "yudl.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "yudl_metrics_test_total") {
		t.Errorf("textfile does not contain test counter:\n%s", data)
	}
}

func TestWriteTextfile_EmptyPath(t *testing.T) {
	if err := WriteTextfile(""); err != nil {
		t.Errorf("WriteTextfile(\"\") error = %v, want nil", err)
	}
}
