package model

import (
	"fmt"

	"github.com/golang/geo/s1"
)

// UnitMode selects how raw height arguments are interpreted.
type UnitMode int

const (
	Imperial UnitMode = iota // heights in feet (default)
	Metric                   // heights in metres
)

func (m UnitMode) String() string {
	switch m {
	case Imperial:
		return "imperial"
	case Metric:
		return "metric"
	default:
		return fmt.Sprintf("UnitMode(%d)", int(m))
	}
}

// HeightInput holds the raw heights supplied on the command line. Both
// heights share the unit selected by Units.
type HeightInput struct {
	Observer float64  `validate:"gt=0"`
	Subject  *float64 `validate:"omitempty,gt=0"` // nil means "the horizon"
	Units    UnitMode
}

// SubjectHeight returns the subject height, treating an absent value as 0.
func (in HeightInput) SubjectHeight() float64 {
	if in.Subject == nil {
		return 0
	}
	return *in.Subject
}

// GeometryResult is the solved sphere-tangent triangle, in metres.
type GeometryResult struct {
	CentralAngle         s1.Angle
	GroundDistanceMeters float64
	SlantRangeMeters     float64
}

// Report is a GeometryResult converted into every display unit.
type Report struct {
	GroundDistanceMeters     float64
	GroundDistanceMiles      float64
	GroundDistanceKilometers float64
	SlantRangeMeters         float64
	CentralAngleDegrees      float64
}
