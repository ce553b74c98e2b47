package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/eugenenazirov/humidifier-sizer/internal/calculator"
)

func TestObserveCalculation(t *testing.T) {
	m := New()

	m.ObserveCalculation(calculator.Explain(calculator.NewInput(50, 50, 20)))
	m.ObserveCalculation(calculator.Explain(calculator.NewInput(50, 50, 20, calculator.WithInitialHumidity(50))))
	m.ObserveCalculation(calculator.Explain(calculator.NewInput(50, 50, 20, calculator.WithInitialHumidity(50))))

	if got := testutil.ToFloat64(m.calculations.WithLabelValues("deficit")); got != 1 {
		t.Fatalf("expected 1 deficit calculation, got %v", got)
	}
	if got := testutil.ToFloat64(m.calculations.WithLabelValues("ventilation")); got != 2 {
		t.Fatalf("expected 2 ventilation calculations, got %v", got)
	}
	if got := testutil.CollectAndCount(m.capacity); got != 1 {
		t.Fatalf("expected capacity histogram to be collected, got %d", got)
	}
}

func TestObserveValidationFailure(t *testing.T) {
	m := New()
	m.ObserveValidationFailure()
	m.ObserveValidationFailure()

	if got := testutil.ToFloat64(m.validationFailures); got != 2 {
		t.Fatalf("expected 2 failures, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveCalculation(calculator.Breakdown{})
	m.ObserveValidationFailure()
	m.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodPost, "POST /api/calculate", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`humidifier_sizer_http_requests_total{method="POST",route="POST /api/calculate",status="200"} 1`,
		"humidifier_sizer_http_request_duration_seconds_bucket",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected metrics output to contain %q", want)
		}
	}
}
