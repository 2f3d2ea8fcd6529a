package celestial

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseRA converts "HH:MM:SS" right ascension into degrees.
// Anything that is not three numeric fields yields 0.
func ParseRA(s string) float64 {
	h, m, sec, ok := splitSexagesimal(strings.TrimSpace(s))
	if !ok {
		return 0
	}
	return (h + m/60 + sec/3600) * 15
}

// ParseDec converts "±DD:MM:SS" declination into degrees. Unsigned values are positive.
func ParseDec(s string) float64 {
	s = strings.TrimSpace(s)
	sign := 1.0
	switch {
	case strings.HasPrefix(s, "-"):
		sign = -1
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	d, m, sec, ok := splitSexagesimal(s)
	if !ok {
		return 0
	}
	return sign * (d + m/60 + sec/3600)
}

func splitSexagesimal(s string) (a, b, c float64, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}

	var vals [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0, 0, 0, false
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], true
}

// FormatRA renders degrees of right ascension as "HH:MM:SS.s"
func FormatRA(deg float64) string {
	h, m, s := toSexagesimal(normalizeDegrees(deg) / 15)
	return fmt.Sprintf("%02d:%02d:%04.1f", h, m, s)
}

// FormatDec renders degrees of declination as "±DD:MM:SS"
func FormatDec(deg float64) string {
	sign := "+"
	if deg < 0 {
		sign = "-"
	}
	d, m, s := toSexagesimal(math.Abs(deg))
	return fmt.Sprintf("%s%02d:%02d:%02.0f", sign, d, m, math.Floor(s))
}

func toSexagesimal(v float64) (int, int, float64) {
	whole := math.Floor(v)
	minutes := (v - whole) * 60
	m := math.Floor(minutes)
	return int(whole), int(m), (minutes - m) * 60
}
