package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for horizon_calculations_total.
const (
	OutcomeOK           = "ok"
	OutcomeInvalidInput = "invalid_input"
	OutcomeDomainError  = "domain_error"
)

// HorizonCollector bundles Prometheus metrics for horizon calculations.
type HorizonCollector struct {
	gatherer prometheus.Gatherer

	Calculations *prometheus.CounterVec

	GroundDistanceMeters prometheus.Gauge
	SlantRangeMeters     prometheus.Gauge
}

// NewHorizonCollector registers horizon metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewHorizonCollector(reg prometheus.Registerer) (*HorizonCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	calcs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "horizon_calculations_total",
		Help: "Total number of horizon calculations, labeled by outcome.",
	}, []string{"outcome"})
	calcs, err := registerCounterVec(reg, calcs, "horizon_calculations_total")
	if err != nil {
		return nil, err
	}

	ground, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "horizon_ground_distance_meters",
		Help: "Ground distance to the horizon from the last successful calculation.",
	}), "horizon_ground_distance_meters")
	if err != nil {
		return nil, err
	}
	slant, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "horizon_slant_range_meters",
		Help: "Slant range to the horizon from the last successful calculation.",
	}), "horizon_slant_range_meters")
	if err != nil {
		return nil, err
	}

	return &HorizonCollector{
		gatherer:             gatherer,
		Calculations:         calcs,
		GroundDistanceMeters: ground,
		SlantRangeMeters:     slant,
	}, nil
}

// ObserveCalculation satisfies core.MetricsRecorder. The distance gauges are
// only updated for successful calculations.
func (c *HorizonCollector) ObserveCalculation(outcome string, groundMeters, slantMeters float64) {
	if c == nil {
		return
	}
	if c.Calculations != nil {
		c.Calculations.WithLabelValues(outcome).Inc()
	}
	if outcome != OutcomeOK {
		return
	}
	if c.GroundDistanceMeters != nil {
		c.GroundDistanceMeters.Set(groundMeters)
	}
	if c.SlantRangeMeters != nil {
		c.SlantRangeMeters.Set(slantMeters)
	}
}

// WriteTextfile dumps the gathered metrics in the text exposition format to
// path, suitable for the node_exporter textfile collector.
func (c *HorizonCollector) WriteTextfile(path string) error {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("write metrics textfile %q: %w", path, err)
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
