// Package units provides physical constants, angle helpers and length unit
// conversion for the propagation packages.
//
// Internal lengths are centimetres, fields are Tesla and momenta GeV/c.
package units

import "math"

// BFac converts B[T]·(q/pT)[c/GeV] into curvature in 1/cm.
const BFac = 0.00299792458

// TwoPi is 2π.
const TwoPi = 2 * math.Pi

// Length unit constants
const (
	CM = "cm"
	MM = "mm"
	M  = "m"
)

// ValidUnits contains all valid length unit values
var ValidUnits = []string{CM, MM, M}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "cm, mm, m"
}

// ConvertLength converts a length from centimetres to the target units.
func ConvertLength(lengthCM float64, targetUnits string) float64 {
	switch targetUnits {
	case MM:
		return lengthCM * 10
	case M:
		return lengthCM / 100
	default:
		return lengthCM
	}
}

// Curvature returns the signed transverse curvature κ = BFac·B·q/pT in 1/cm.
func Curvature(bfield, qpt float64) float64 {
	return BFac * bfield * qpt
}

// Fmod1 returns x reduced into [0, y).
func Fmod1(x, y float64) float64 {
	r := math.Mod(x, y)
	if r < 0 {
		r += y
	}
	if r >= y {
		r = 0
	}
	return r
}

// Fmod2 returns x reduced into [-y/2, y/2).
func Fmod2(x, y float64) float64 {
	return Fmod1(x+y/2, y) - y/2
}

// NormPhi maps an azimuth into [0, 2π).
func NormPhi(phi float64) float64 {
	return Fmod1(phi, TwoPi)
}

// NormAngle maps an angle difference into [-π, π).
func NormAngle(a float64) float64 {
	return Fmod2(a, TwoPi)
}
