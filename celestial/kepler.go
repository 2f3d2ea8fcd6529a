package celestial

import (
	"math"
	"time"
)

// obliquityJ2000 is the mean obliquity of the ecliptic at J2000.0, degrees
const obliquityJ2000 = 23.43928

// orbitalElements are Keplerian elements at J2000.0 with their rates per Julian century
// (JPL approximate positions, 1800-2050). Angles in degrees, distance in AU.
type orbitalElements struct {
	A, E, I, L, LP, N       float64
	dA, dE, dI, dL, dLP, dN float64
}

var earthElements = orbitalElements{
	A: 1.00000261, E: 0.01671123, I: -0.00001531, L: 100.46457166, LP: 102.93768193, N: 0,
	dA: 0.00000562, dE: -0.00004392, dI: -0.01294668, dL: 35999.37306329, dLP: 0.32327364, dN: 0,
}

var planetElements = map[string]orbitalElements{
	"Mercury": {
		A: 0.38709843, E: 0.20563661, I: 7.00559432, L: 252.25166724, LP: 77.45771895, N: 48.33961819,
		dA: 0, dE: 0.00002123, dI: -0.00590158, dL: 149472.67486623, dLP: 0.15940013, dN: -0.12214182,
	},
	"Venus": {
		A: 0.72333566, E: 0.00677672, I: 3.39467605, L: 181.97970850, LP: 131.76755713, N: 76.67984255,
		dA: 0.00000390, dE: -0.00004107, dI: -0.00078890, dL: 58517.81538729, dLP: 0.05679648, dN: -0.27769418,
	},
	"Mars": {
		A: 1.52371034, E: 0.09339410, I: 1.84969142, L: -4.55343205, LP: -23.94362959, N: 49.55953891,
		dA: 0.00001847, dE: 0.00007882, dI: -0.00813131, dL: 19140.30268499, dLP: 0.44441088, dN: -0.29257343,
	},
	"Jupiter": {
		A: 5.20288700, E: 0.04838624, I: 1.30439695, L: 34.39644051, LP: 14.72847983, N: 100.47390909,
		dA: -0.00011607, dE: -0.00013253, dI: -0.00183714, dL: 3034.74612775, dLP: 0.21252668, dN: 0.20469106,
	},
	"Saturn": {
		A: 9.53667594, E: 0.05386179, I: 2.48599187, L: 49.95424423, LP: 92.59887831, N: 113.66242448,
		dA: -0.00125060, dE: -0.00050991, dI: 0.00193609, dL: 1222.49362201, dLP: -0.41897216, dN: -0.28867794,
	},
	"Uranus": {
		A: 19.18916464, E: 0.04725744, I: 0.77263783, L: 313.23810451, LP: 170.95427630, N: 74.01692503,
		dA: -0.00196176, dE: -0.00004397, dI: -0.00242939, dL: 428.48202785, dLP: 0.40805281, dN: 0.04240589,
	},
	"Neptune": {
		A: 30.06992276, E: 0.00859048, I: 1.77004347, L: -55.12002969, LP: 44.96476227, N: 131.78422574,
		dA: 0.00026291, dE: 0.00005105, dI: 0.00035372, dL: 218.45945325, dLP: -0.32241464, dN: -0.00508664,
	},
}

// planetOrder is the display order of the planets
var planetOrder = []string{"Mercury", "Venus", "Mars", "Jupiter", "Saturn", "Uranus", "Neptune"}

type vec3 struct{ x, y, z float64 }

// solveKepler returns the eccentric anomaly for mean anomaly m (radians)
func solveKepler(m, e float64) float64 {
	E := m + e*math.Sin(m)*(1+e*math.Cos(m))
	for i := 0; i < 15; i++ {
		delta := (E - e*math.Sin(E) - m) / (1 - e*math.Cos(E))
		E -= delta
		if math.Abs(delta) < 1e-12 {
			break
		}
	}
	return E
}

// heliocentric returns the ecliptic J2000 position in AU at T Julian centuries
func (el orbitalElements) heliocentric(T float64) vec3 {
	a := el.A + T*el.dA
	e := el.E + T*el.dE
	i := (el.I + T*el.dI) * deg2rad
	L := normalizeDegrees(el.L+T*el.dL) * deg2rad
	wbar := normalizeDegrees(el.LP+T*el.dLP) * deg2rad
	node := normalizeDegrees(el.N+T*el.dN) * deg2rad

	w := wbar - node
	M := math.Remainder(L-wbar, 2*math.Pi)
	E := solveKepler(M, e)

	// orbital plane
	xo := a * (math.Cos(E) - e)
	yo := a * math.Sqrt(1-e*e) * math.Sin(E)

	cw, sw := math.Cos(w), math.Sin(w)
	cn, sn := math.Cos(node), math.Sin(node)
	ci, si := math.Cos(i), math.Sin(i)

	return vec3{
		x: (cw*cn-sw*sn*ci)*xo + (-sw*cn-cw*sn*ci)*yo,
		y: (cw*sn+sw*cn*ci)*xo + (-sw*sn+cw*cn*ci)*yo,
		z: (sw*si)*xo + (cw*si)*yo,
	}
}

// geocentricEquatorial returns the geocentric RA/Dec of a planet, ignoring light time and parallax
func geocentricEquatorial(el orbitalElements, t time.Time) Equatorial {
	T := centuriesSinceJ2000(t)
	p := el.heliocentric(T)
	earth := earthElements.heliocentric(T)

	x, y, z := p.x-earth.x, p.y-earth.y, p.z-earth.z

	eps := obliquityJ2000 * deg2rad
	ye := y*math.Cos(eps) - z*math.Sin(eps)
	ze := y*math.Sin(eps) + z*math.Cos(eps)

	return Equatorial{
		RA:  normalizeDegrees(math.Atan2(ye, x) * rad2deg),
		Dec: math.Atan2(ze, math.Hypot(x, ye)) * rad2deg,
	}
}
