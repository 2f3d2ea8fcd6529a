package celestial

import "time"

// DefaultCurveSamples gives one point every 15 minutes over a day
const DefaultCurveSamples = 96

// AltitudePoint is one sample of an altitude graph
type AltitudePoint struct {
	Time time.Time `json:"time"`
	Horizontal
}

// AltitudeCurve samples body over the 24 hours centred on center.
// A non-positive n uses DefaultCurveSamples.
func AltitudeCurve(body Body, obs Observer, center time.Time, n int) []AltitudePoint {
	if n <= 0 {
		n = DefaultCurveSamples
	}
	step := 24 * time.Hour / time.Duration(n)
	start := center.Add(-12 * time.Hour)

	out := make([]AltitudePoint, n)
	for i := range out {
		t := start.Add(time.Duration(i) * step)
		out[i] = AltitudePoint{Time: t, Horizontal: body.Horizontal(t, obs)}
	}
	return out
}

// Culmination returns the highest sample of a curve
func Culmination(curve []AltitudePoint) (AltitudePoint, bool) {
	if len(curve) == 0 {
		return AltitudePoint{}, false
	}
	best := curve[0]
	for _, p := range curve[1:] {
		if p.Altitude > best.Altitude {
			best = p
		}
	}
	return best, true
}
