// Package main prints tonight's observing scores computed from the MET Norway forecast.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/devskill-org/stargazing/forecast"
	"github.com/devskill-org/stargazing/meteo"
	"github.com/devskill-org/stargazing/scoring"
)

func main() {
	lat := flag.Float64("lat", 56.9496, "observer latitude")
	lon := flag.Float64("lon", 24.1052, "observer longitude")
	tz := flag.String("tz", "Europe/Riga", "IANA timezone used for night hours")
	ua := flag.String("user-agent", "stargazing-example/1.0 (username@example.com)", "User-Agent sent to MET Norway")
	flag.Parse()

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		log.Fatalf("Invalid timezone: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := meteo.NewClient(*ua)
	fc, err := client.GetComplete(ctx, meteo.QueryParams{
		Location: meteo.Location{Latitude: *lat, Longitude: *lon},
	})
	if err != nil {
		var apiErr *meteo.APIError
		if errors.As(err, &apiErr) {
			log.Fatalf("API error %d: %s", apiErr.StatusCode, apiErr.Message)
		}
		log.Fatalf("Failed to fetch forecast: %v", err)
	}

	now := time.Now()
	steps := fc.Hourly(now.Add(-time.Hour), 36*time.Hour)
	records := scoring.ScoreAll(forecast.Normalize(meteo.StepSamples(steps), forecast.SourceMetNorway, now))

	weather := make(map[time.Time]meteo.TimeStep, len(steps))
	for _, step := range steps {
		weather[step.Time.UTC()] = step
	}

	fmt.Printf("Forecast updated: %s\n\n", fc.Properties.Meta.UpdatedAt.Format("2006-01-02 15:04 UTC"))
	for _, r := range records {
		if !scoring.IsNight(r.Time, loc) {
			continue
		}
		step := weather[r.Time]
		symbol, ok := step.SymbolCode()
		if !ok {
			symbol = "-"
		}
		rain := ""
		if step.HasPrecipitation() {
			rain = " (precipitation)"
		}
		fmt.Printf("%s | score %3d | %-14s | seeing %d | transparency %d | %s%s\n",
			r.Time.In(loc).Format("Mon 15:04"), r.Score, r.CloudLabel, r.Seeing, r.Transparency, symbol, rain)
	}

	best := scoring.FindBestTwoHours(records, loc)
	if !best.Found {
		fmt.Println("\nNo two consecutive night hours in the forecast")
		return
	}
	fmt.Printf("\nBest window: %s - %s (average %d)\n",
		best.From.In(loc).Format("Mon 15:04"), best.To.In(loc).Format("15:04"), best.AverageScore)
}
