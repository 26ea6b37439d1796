package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/s1"
	"github.com/signalsfoundry/horizon/model"
)

// ErrOutsideDomain is returned when the effective observer height places the
// observer below the Earth's surface or is not a finite number.
var ErrOutsideDomain = errors.New("effective observer height outside solver domain")

// Solve works the right triangle formed by the Earth's centre, the horizon
// tangent point and the observer. effectiveHeight is the hypotenuse
// (centre to observer, metres); the Earth radius is the adjacent leg.
//
// The central angle is arccos(R / h), the slant range is the tangent leg
// sqrt(h² - R²), and the ground distance is the arc length R·alpha.
func Solve(effectiveHeight float64) (model.GeometryResult, error) {
	if math.IsNaN(effectiveHeight) || math.IsInf(effectiveHeight, 0) || effectiveHeight < EarthRadiusMeters {
		return model.GeometryResult{}, fmt.Errorf("%w: %v m", ErrOutsideDomain, effectiveHeight)
	}

	alpha := s1.Angle(math.Acos(EarthRadiusMeters / effectiveHeight))
	slant := math.Sqrt(effectiveHeight*effectiveHeight - EarthRadiusMeters*EarthRadiusMeters)

	return model.GeometryResult{
		CentralAngle:         alpha,
		GroundDistanceMeters: alpha.Radians() * EarthRadiusMeters,
		SlantRangeMeters:     slant,
	}, nil
}
