package celestial

import "math"

// Point2D is a position on a chart plane. Y grows downwards (south).
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vector3 is a position in a right-handed 3D scene
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ProjectToTangentPlane places target on a flat chart centred on center.
// The RA difference is wrapped to [-180,180] and shrunk by cos(center.Dec);
// scale converts degrees to chart units.
func ProjectToTangentPlane(target, center Equatorial, scale float64) Point2D {
	dra := wrap180(target.RA - center.RA)
	ddec := target.Dec - center.Dec
	return Point2D{
		X: dra * math.Cos(center.Dec*deg2rad) * scale,
		Y: -ddec * scale,
	}
}

// Orientation is a caller-chosen rotation followed by an optional horizontal mirror
type Orientation struct {
	Mirrored    bool    `json:"mirrored"`
	RotationDeg float64 `json:"rotation_deg"`
}

// Apply rotates p about the origin and then mirrors it
func (o Orientation) Apply(p Point2D) Point2D {
	if o.RotationDeg != 0 {
		s, c := math.Sincos(o.RotationDeg * deg2rad)
		p = Point2D{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c}
	}
	if o.Mirrored {
		p.X = -p.X
	}
	return p
}

// TangentPlaneProjector maps a circular field of view onto a square chart
type TangentPlaneProjector struct {
	Center      Equatorial
	RadiusDeg   float64
	Scale       float64
	Orientation Orientation
}

// NewTangentPlaneProjector fits radiusDeg around center into widthPx
func NewTangentPlaneProjector(center Equatorial, radiusDeg, widthPx float64) TangentPlaneProjector {
	scale := 0.0
	if radiusDeg > 0 {
		scale = widthPx / (2 * radiusDeg)
	}
	return TangentPlaneProjector{Center: center, RadiusDeg: radiusDeg, Scale: scale}
}

// InView reports whether target lies within the projector radius
func (p TangentPlaneProjector) InView(target Equatorial) bool {
	return AngularDistance(p.Center, target) <= p.RadiusDeg
}

// Project places target on the chart with the orientation applied
func (p TangentPlaneProjector) Project(target Equatorial) Point2D {
	return p.Orientation.Apply(ProjectToTangentPlane(target, p.Center, p.Scale))
}

// ProjectToUnitSphere converts RA/Dec to a point on a sphere of the given radius.
// RA 90 lies on +X, the celestial pole on +Y.
func ProjectToUnitSphere(ra, dec, radius float64) Vector3 {
	theta := (ra - 90) * deg2rad
	d := dec * deg2rad
	return Vector3{
		X: radius * math.Cos(d) * math.Cos(theta),
		Y: radius * math.Sin(d),
		Z: -radius * math.Cos(d) * math.Sin(theta),
	}
}

// AngularDistance returns the great-circle separation of a and b in degrees
func AngularDistance(a, b Equatorial) float64 {
	phi1 := a.Dec * deg2rad
	phi2 := b.Dec * deg2rad
	dphi := (b.Dec - a.Dec) * deg2rad
	dlambda := (b.RA - a.RA) * deg2rad

	h := math.Pow(math.Sin(dphi/2), 2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Pow(math.Sin(dlambda/2), 2)
	h = math.Max(0, math.Min(1, h))

	return 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h)) * rad2deg
}
