package anim

// Step counts are fixed per animated quantity; wall-clock spacing between
// steps is duration/steps.
const (
	FoVSteps      = 20
	PositionSteps = 30
	OpacitySteps  = 30
)

// Camera is the viewer state the pipeline interpolates.
type Camera struct {
	RA  float64 // degrees
	Dec float64 // degrees
	FoV float64 // degrees
}

// Ease applies the symmetric quadratic ease-in/ease-out curve.
func Ease(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	if p < 0.5 {
		return 2 * p * p
	}
	q := 1 - p
	return 1 - 2*q*q
}

// Lerp interpolates between a and b. The endpoints are returned exactly so a
// finished animation never leaves a rounding residue.
func Lerp(a, b, t float64) float64 {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return a + (b-a)*t
}

// InterpolateCamera blends two camera states by the eased progress t.
func InterpolateCamera(from, to Camera, t float64) Camera {
	return Camera{
		RA:  Lerp(from.RA, to.RA, t),
		Dec: Lerp(from.Dec, to.Dec, t),
		FoV: Lerp(from.FoV, to.FoV, t),
	}
}
