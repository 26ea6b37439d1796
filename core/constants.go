package core

// EarthRadiusMeters is the mean Earth radius used by the horizon solver
// (metres).
const EarthRadiusMeters = 6371009.0

// Unit conversion factors. These are fixed values, not derived from a
// conversion table, so results stay reproducible across builds.
const (
	MetersPerFoot      = 1.0 / 3.28084
	MilesPerMeter      = 0.00062137
	KilometersPerMeter = 1.0 / 1000.0
)
