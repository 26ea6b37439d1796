package core

import (
	"context"
	"errors"

	"github.com/signalsfoundry/horizon/internal/logging"
	"github.com/signalsfoundry/horizon/internal/observability"
	"github.com/signalsfoundry/horizon/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/signalsfoundry/horizon/core"

// MetricsRecorder receives the outcome of every calculation.
type MetricsRecorder interface {
	ObserveCalculation(outcome string, groundMeters, slantMeters float64)
}

// Calculator runs the horizon pipeline: validate, normalise, solve and
// convert. It holds no per-calculation state.
type Calculator struct {
	log     logging.Logger
	metrics MetricsRecorder
	tracer  trace.Tracer
}

// CalculatorOption configures optional Calculator dependencies.
type CalculatorOption func(*Calculator)

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) CalculatorOption {
	return func(c *Calculator) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetricsRecorder attaches an optional metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) CalculatorOption {
	return func(c *Calculator) {
		c.metrics = m
	}
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) CalculatorOption {
	return func(c *Calculator) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewCalculator builds a Calculator. Without options it logs nothing,
// records no metrics and uses the global tracer provider.
func NewCalculator(opts ...CalculatorOption) *Calculator {
	c := &Calculator{
		log:    logging.Noop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate validates in, solves the horizon geometry and returns the
// result converted into every display unit. Invalid heights are rejected
// before any computation with *ObserverHeightError or *SubjectHeightError.
func (c *Calculator) Calculate(ctx context.Context, in model.HeightInput) (model.Report, error) {
	ctx, span := c.tracer.Start(ctx, "horizon.Calculate", trace.WithAttributes(
		attribute.Float64("horizon.observer_height", in.Observer),
		attribute.Float64("horizon.subject_height", in.SubjectHeight()),
		attribute.Bool("horizon.subject_given", in.Subject != nil),
		attribute.String("horizon.units", in.Units.String()),
	))
	defer span.End()

	if err := c.validate(ctx, in); err != nil {
		return model.Report{}, c.fail(ctx, span, err)
	}

	effective := c.normalize(ctx, in)

	geom, err := c.solve(ctx, effective)
	if err != nil {
		return model.Report{}, c.fail(ctx, span, err)
	}

	report := NewReport(geom)
	span.SetAttributes(
		attribute.Float64("horizon.ground_distance_m", report.GroundDistanceMeters),
		attribute.Float64("horizon.slant_range_m", report.SlantRangeMeters),
	)
	c.log.Debug(ctx, "horizon calculated",
		logging.Float("ground_distance_m", report.GroundDistanceMeters),
		logging.Float("ground_distance_mi", report.GroundDistanceMiles),
		logging.Float("ground_distance_km", report.GroundDistanceKilometers),
		logging.Float("slant_range_m", report.SlantRangeMeters),
		logging.Float("central_angle_deg", report.CentralAngleDegrees),
	)
	if c.metrics != nil {
		c.metrics.ObserveCalculation(observability.OutcomeOK, report.GroundDistanceMeters, report.SlantRangeMeters)
	}
	return report, nil
}

func (c *Calculator) validate(ctx context.Context, in model.HeightInput) error {
	_, span := c.tracer.Start(ctx, "horizon.validate")
	defer span.End()

	err := ValidateHeights(in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		for _, msg := range DescribeValidation(in) {
			c.log.Debug(ctx, "height rejected", logging.String("reason", msg))
		}
	}
	return err
}

func (c *Calculator) normalize(ctx context.Context, in model.HeightInput) float64 {
	_, span := c.tracer.Start(ctx, "horizon.normalize")
	defer span.End()

	effective := EffectiveObserverHeight(in)
	span.SetAttributes(attribute.Float64("horizon.effective_height_m", effective))
	c.log.Debug(ctx, "heights normalised",
		logging.String("units", in.Units.String()),
		logging.Float("effective_height_m", effective),
	)
	return effective
}

func (c *Calculator) solve(ctx context.Context, effective float64) (model.GeometryResult, error) {
	_, span := c.tracer.Start(ctx, "horizon.solve")
	defer span.End()

	geom, err := Solve(effective)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return geom, err
	}
	span.SetAttributes(attribute.Float64("horizon.central_angle_rad", geom.CentralAngle.Radians()))
	return geom, nil
}

func (c *Calculator) fail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	outcome := observability.OutcomeDomainError
	if errors.Is(err, ErrInvalidHeight) {
		outcome = observability.OutcomeInvalidInput
	}
	c.log.Debug(ctx, "horizon calculation failed", logging.String("outcome", outcome), logging.Err(err))
	if c.metrics != nil {
		c.metrics.ObserveCalculation(outcome, 0, 0)
	}
	return err
}
