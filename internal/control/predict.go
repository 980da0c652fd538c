package control

import "math"

// Predictor estimates the apogee the vehicle would reach from the current
// altitude and vertical velocity with no further control action.
type Predictor func(altitude, velocity float64) float64

// Ballistic predicts apogee from a drag-free coast: h + v^2 / (2g).
func Ballistic(gravity float64) Predictor {
	return func(altitude, velocity float64) float64 {
		if velocity <= 0 {
			return altitude
		}
		return altitude + velocity*velocity/(2*gravity)
	}
}

// BallisticDrag predicts apogee from a coast under quadratic drag with
// constant drag parameter k = rho*Cd*A/(2m) [1/m]:
//
//	h + ln(1 + k*v^2/g) / (2k)
//
// It degrades to the pure ballistic estimate as k approaches zero.
func BallisticDrag(gravity, k float64) Predictor {
	if k <= 1e-12 {
		return Ballistic(gravity)
	}
	return func(altitude, velocity float64) float64 {
		if velocity <= 0 {
			return altitude
		}
		return altitude + math.Log(1+k*velocity*velocity/gravity)/(2*k)
	}
}
