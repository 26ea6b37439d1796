package core

import "github.com/signalsfoundry/horizon/model"

// EffectiveObserverHeight returns the distance from the Earth's centre to
// the observer in metres: observer plus subject height, converted from feet
// when the input is imperial, plus the Earth radius. Inputs are assumed to
// have passed ValidateHeights.
func EffectiveObserverHeight(in model.HeightInput) float64 {
	height := in.Observer + in.SubjectHeight()
	if in.Units == model.Metric {
		return height + EarthRadiusMeters
	}
	return height*MetersPerFoot + EarthRadiusMeters
}
