package core

import (
	"fmt"
	"io"

	"github.com/signalsfoundry/horizon/model"
)

// NewReport converts a solved geometry into every display unit. Kilometres
// and miles are plain multiples of the ground distance in metres.
func NewReport(g model.GeometryResult) model.Report {
	return model.Report{
		GroundDistanceMeters:     g.GroundDistanceMeters,
		GroundDistanceMiles:      g.GroundDistanceMeters * MilesPerMeter,
		GroundDistanceKilometers: g.GroundDistanceMeters * KilometersPerMeter,
		SlantRangeMeters:         g.SlantRangeMeters,
		CentralAngleDegrees:      g.CentralAngle.Degrees(),
	}
}

// FormatReport renders the report in the fixed text layout printed by the
// CLI.
func FormatReport(r model.Report) string {
	return fmt.Sprintf("Ground distance:\n\n%.0f m\n%.2f mi\n%.2f km\n\nSlant range:\n\n%.0f m\n",
		r.GroundDistanceMeters,
		r.GroundDistanceMiles,
		r.GroundDistanceKilometers,
		r.SlantRangeMeters,
	)
}

// WriteReport writes the formatted report to w in a single write.
func WriteReport(w io.Writer, r model.Report) error {
	_, err := io.WriteString(w, FormatReport(r))
	return err
}
