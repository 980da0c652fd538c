package control

// Lowpass applies one step of exponential smoothing:
//
//	filtered = alpha*raw + (1-alpha)*prev
//
// alpha in (0,1]; alpha == 1 disables smoothing. Pure function, all filter
// state lives in the caller's State.
func Lowpass(prev, raw, alpha float64) float64 {
	return alpha*raw + (1-alpha)*prev
}
