/*
Package celestial converts catalog coordinates into what an observer sees.

It parses sexagesimal right ascension and declination, transforms equatorial
coordinates into refracted altitude and azimuth for an observer, searches
rise and set instants for the Sun, the Moon, the planets and fixed catalog
targets, and projects sky positions onto a tangent plane or a sphere for
chart rendering.

All functions are pure. Inputs that are malformed but plausible degrade to
zero; non-finite observer or target coordinates are caller bugs and panic.

Basic usage:

	obs := celestial.Observer{Latitude: 56.95, Longitude: 24.11}
	m42 := celestial.Equatorial{RA: celestial.ParseRA("05:35:17"), Dec: celestial.ParseDec("-05:23:28")}
	h := celestial.HorizontalCoordinates(m42, obs, time.Now())
	fmt.Printf("alt %.1f az %.1f\n", h.Altitude, h.Azimuth)

	win := celestial.RiseSet(celestial.Sun(), obs, time.Now())
	if win.Rise != nil {
		fmt.Println("sunrise", win.Rise.Format(time.Kitchen))
	}
*/
package celestial
