// Package main prints rise and set times for the Sun, Moon and planets.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/sixdouglas/suncalc"

	"github.com/devskill-org/stargazing/celestial"
)

func main() {
	lat := flag.Float64("lat", 56.9496, "observer latitude")
	lon := flag.Float64("lon", 24.1052, "observer longitude")
	tz := flag.String("tz", "Europe/Riga", "IANA timezone for the printed times")
	date := flag.String("date", "", "date as YYYY-MM-DD, today when empty")
	flag.Parse()

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		log.Fatalf("Invalid timezone: %v", err)
	}

	day := time.Now().In(loc)
	if *date != "" {
		day, err = time.ParseInLocation("2006-01-02", *date, loc)
		if err != nil {
			log.Fatalf("Invalid date: %v", err)
		}
	}

	obs := celestial.Observer{Latitude: *lat, Longitude: *lon}
	if err := obs.Validate(); err != nil {
		log.Fatalf("Invalid observer: %v", err)
	}

	// Get sun position (azimuth and altitude) straight from suncalc
	pos := suncalc.GetPosition(day, *lat, *lon)
	fmt.Printf("suncalc sun: azimuth %.2f°, altitude %.2f°\n",
		pos.Azimuth*180/math.Pi,
		pos.Altitude*180/math.Pi)

	times := suncalc.GetTimes(day, *lat, *lon)
	fmt.Println("suncalc sunrise:", times["sunrise"])
	fmt.Println("suncalc sunset:", times["sunset"])
	fmt.Println()

	format := func(t *time.Time) string {
		if t == nil {
			return "--:--"
		}
		return t.In(loc).Format("15:04")
	}

	windows := append([]celestial.VisibilityWindow{
		celestial.Visibility(celestial.Sun(), obs, day),
		celestial.Visibility(celestial.Moon(), obs, day),
	}, celestial.PlanetVisibility(obs, day)...)

	fmt.Printf("%s at %.4f, %.4f\n", day.Format("2006-01-02"), *lat, *lon)
	for _, w := range windows {
		body, ok := celestial.BodyByName(w.Body)
		if !ok {
			continue
		}
		h := body.Horizontal(day, obs)
		fmt.Printf("%-8s rise %s  set %s  alt %6.2f°  az %6.2f°\n",
			w.Body, format(w.Rise), format(w.Set), h.Altitude, h.Azimuth)
	}
}
