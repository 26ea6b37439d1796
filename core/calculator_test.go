package core

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/signalsfoundry/horizon/internal/observability"
	"github.com/signalsfoundry/horizon/model"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type recordedCalc struct {
	outcome       string
	ground, slant float64
}

type fakeRecorder struct {
	calls []recordedCalc
}

func (f *fakeRecorder) ObserveCalculation(outcome string, ground, slant float64) {
	f.calls = append(f.calls, recordedCalc{outcome: outcome, ground: ground, slant: slant})
}

func TestCalculate_HorizonFromCruisingAltitude(t *testing.T) {
	rec := &fakeRecorder{}
	calc := NewCalculator(WithMetricsRecorder(rec))

	r, err := calc.Calculate(context.Background(), model.HeightInput{Observer: 30000})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	want := "Ground distance:\n\n341136 m\n211.97 mi\n341.14 km\n\nSlant range:\n\n341462 m\n"
	if got := FormatReport(r); got != want {
		t.Fatalf("report =\n%q\nwant\n%q", got, want)
	}
	if !approxEqual(r.CentralAngleDegrees, 3.0679061351, 1e-9) {
		t.Errorf("central angle = %v deg, want ~3.0679", r.CentralAngleDegrees)
	}

	if len(rec.calls) != 1 {
		t.Fatalf("recorder calls = %d, want 1", len(rec.calls))
	}
	if rec.calls[0].outcome != observability.OutcomeOK {
		t.Errorf("outcome = %q, want %q", rec.calls[0].outcome, observability.OutcomeOK)
	}
	if rec.calls[0].ground != r.GroundDistanceMeters || rec.calls[0].slant != r.SlantRangeMeters {
		t.Errorf("recorded distances = %+v, want %v/%v", rec.calls[0], r.GroundDistanceMeters, r.SlantRangeMeters)
	}
}

func TestCalculate_MetricSubject(t *testing.T) {
	calc := NewCalculator()
	r, err := calc.Calculate(context.Background(), model.HeightInput{Observer: 600, Subject: ptr(400), Units: model.Metric})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	want := "Ground distance:\n\n112873 m\n70.14 mi\n112.87 km\n\nSlant range:\n\n112885 m\n"
	if got := FormatReport(r); got != want {
		t.Fatalf("report =\n%q\nwant\n%q", got, want)
	}
}

func TestCalculate_InvalidInputSkipsComputation(t *testing.T) {
	rec := &fakeRecorder{}
	calc := NewCalculator(WithMetricsRecorder(rec))

	r, err := calc.Calculate(context.Background(), model.HeightInput{Observer: 0})
	var oe *ObserverHeightError
	if !errors.As(err, &oe) {
		t.Fatalf("Calculate error = %v, want *ObserverHeightError", err)
	}
	if r != (model.Report{}) {
		t.Fatalf("expected zero report on error, got %+v", r)
	}
	if len(rec.calls) != 1 || rec.calls[0].outcome != observability.OutcomeInvalidInput {
		t.Fatalf("recorder calls = %+v, want one invalid_input", rec.calls)
	}
}

func TestCalculate_InfiniteObserverIsDomainError(t *testing.T) {
	rec := &fakeRecorder{}
	calc := NewCalculator(WithMetricsRecorder(rec))

	_, err := calc.Calculate(context.Background(), model.HeightInput{Observer: math.Inf(1)})
	if !errors.Is(err, ErrOutsideDomain) {
		t.Fatalf("Calculate error = %v, want ErrOutsideDomain", err)
	}
	if len(rec.calls) != 1 || rec.calls[0].outcome != observability.OutcomeDomainError {
		t.Fatalf("recorder calls = %+v, want one domain_error", rec.calls)
	}
}

func TestCalculate_RecordsStageSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	calc := NewCalculator(WithTracerProvider(tp))

	if _, err := calc.Calculate(context.Background(), model.HeightInput{Observer: 100}); err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	names := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range sr.Ended() {
		names[s.Name()] = s
	}
	for _, want := range []string{"horizon.Calculate", "horizon.validate", "horizon.normalize", "horizon.solve"} {
		if _, ok := names[want]; !ok {
			t.Errorf("missing span %q; got %v", want, names)
		}
	}

	root := names["horizon.Calculate"]
	for _, child := range []string{"horizon.validate", "horizon.normalize", "horizon.solve"} {
		s, ok := names[child]
		if !ok {
			continue
		}
		if s.Parent().SpanID() != root.SpanContext().SpanID() {
			t.Errorf("span %q parent = %v, want root %v", child, s.Parent().SpanID(), root.SpanContext().SpanID())
		}
	}
}

func TestCalculate_ValidationFailureStopsBeforeSolve(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	calc := NewCalculator(WithTracerProvider(tp))

	if _, err := calc.Calculate(context.Background(), model.HeightInput{Observer: 100, Subject: ptr(-5)}); err == nil {
		t.Fatalf("expected subject height error")
	}
	for _, s := range sr.Ended() {
		if s.Name() == "horizon.normalize" || s.Name() == "horizon.solve" {
			t.Fatalf("unexpected span %q after validation failure", s.Name())
		}
	}
}

func TestCalculate_UpdatesPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := observability.NewHorizonCollector(reg)
	if err != nil {
		t.Fatalf("NewHorizonCollector: %v", err)
	}
	calc := NewCalculator(WithMetricsRecorder(collector))

	r, err := calc.Calculate(context.Background(), model.HeightInput{Observer: 6})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	_, _ = calc.Calculate(context.Background(), model.HeightInput{Observer: -6})

	if got := testutil.ToFloat64(collector.Calculations.WithLabelValues(observability.OutcomeOK)); got != 1 {
		t.Errorf("ok calculations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.Calculations.WithLabelValues(observability.OutcomeInvalidInput)); got != 1 {
		t.Errorf("invalid_input calculations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.GroundDistanceMeters); got != r.GroundDistanceMeters {
		t.Errorf("ground gauge = %v, want %v", got, r.GroundDistanceMeters)
	}
}
