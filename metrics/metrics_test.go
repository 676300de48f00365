package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	// None of these may panic.
	m.Event("message")
	m.Invocation("message", "ping")
	m.Failure("message", "ping")
	m.Panic("message", "ping")
	if got := m.Collectors(); got != nil {
		t.Errorf("nil metrics has collectors: %v", got)
	}
}

func TestCounterVec(t *testing.T) {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "x_total"}, []string{"kind", "command"})
	m := &Metrics{Invocations: NewPromCounterVec(vec)}
	m.Invocation("message", "ping")
	m.Invocation("message", "ping")
	m.Invocation("reaction_add", "skip")
	if got := testutil.ToFloat64(vec.WithLabelValues("message", "ping")); got != 2 {
		t.Errorf("wrong ping count: want 2, got %v", got)
	}
	if got := testutil.ToFloat64(vec.WithLabelValues("reaction_add", "skip")); got != 1 {
		t.Errorf("wrong skip count: want 1, got %v", got)
	}
	// Observers that were never set are skipped.
	m.Failure("message", "ping")
}

func TestHandler(t *testing.T) {
	m := New("herald_test")
	m.Event("message")
	srv := httptest.NewServer(Handler(m.Collectors()...))
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `herald_test_gateway_events_total{kind="message"} 1`) {
		t.Errorf("metrics output lacks event counter:\n%s", b)
	}
}
