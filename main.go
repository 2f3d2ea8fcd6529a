// Package main provides the stargazing conditions service entry point and CLI interface.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/devskill-org/stargazing/catalog"
	"github.com/devskill-org/stargazing/celestial"
	"github.com/devskill-org/stargazing/logger"
	"github.com/devskill-org/stargazing/scheduler"
)

func main() {
	// Command line flags
	var (
		configFile = flag.String("config", "config.json", "Configuration file path")
		envFile    = flag.String("env", ".env", "Optional .env file with secrets")
		help       = flag.Bool("help", false, "Show help message")
		serverOnly = flag.Bool("serverOnly", false, "Run only web server without periodic refreshes")
		once       = flag.Bool("once", false, "Refresh the forecasts once and print the scores")
		sky        = flag.Bool("sky", false, "Print tonight's rise/set times and visible deep-sky objects")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	if err := scheduler.LoadDotEnv(*envFile); err != nil {
		fmt.Println("Error loading environment:", err)
		os.Exit(1)
	}

	config, err := scheduler.LoadConfig(*configFile)
	if err != nil {
		fmt.Println("Error loading configuration:", err)
		os.Exit(1)
	}

	log, err := logger.New(config.LogLevel, config.LogFormat)
	if err != nil {
		fmt.Println("Error creating logger:", err)
		os.Exit(1)
	}
	logger.SetGlobal(log)
	defer logger.Close()

	skyData, err := catalog.LoadDefault()
	if err != nil {
		log.Fatalw("failed to load catalogs", "error", err)
	}

	if *sky {
		printSky(config, skyData)
		return
	}

	if *once {
		runOnce(config, log)
		return
	}

	log.Infow("starting stargazing conditions service",
		"latitude", config.Latitude,
		"longitude", config.Longitude,
		"timezone", config.Timezone,
		"refresh_interval", config.RefreshInterval,
		"met_norway", config.EnableMetNorway,
		"http_port", config.HTTPPort,
		"database", logger.MaskConnString(config.PostgresConnString),
		"dry_run", config.DryRun,
	)

	forecastScheduler := scheduler.NewForecastSchedulerWithWebServer(config, log)
	forecastScheduler.SetSky(skyData)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := forecastScheduler.Start(ctx, *serverOnly); err != nil && !errors.Is(err, context.Canceled) {
			log.Errorw("scheduler error", "error", err)
		}
	}()

	log.Info("scheduler started, press Ctrl+C to stop")

	<-sigChan
	log.Info("shutdown signal received, stopping scheduler")

	cancel()
	forecastScheduler.Stop()

	log.Info("scheduler stopped")
}

func runOnce(config *scheduler.Config, log *zap.SugaredLogger) {
	config.DryRun = true
	s := scheduler.NewForecastScheduler(config, log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*config.APITimeout)
	defer cancel()

	if err := s.RefreshForecast(ctx); err != nil {
		log.Warnw("refresh incomplete", "error", err)
	}

	loc := config.TimeLocation()
	for _, source := range s.Sources() {
		entry, ok := s.GetForecast(source)
		if !ok {
			fmt.Printf("\n%s: no forecast\n", source)
			continue
		}
		printForecast(entry, loc)
	}
}

func printForecast(entry scheduler.CachedForecast, loc *time.Location) {
	fmt.Println("\n========================================")
	fmt.Printf("%s (run %s)\n", entry.Source, entry.RunID)
	fmt.Println("========================================")
	fmt.Println("┌──────────────────┬───────┬────────────────┬───────┬────────┬───────┬──────────┐")
	fmt.Println("│       Time       │ Score │     Cloud      │ Cloud │ Seeing │ Trans │ Temp(°C) │")
	fmt.Println("├──────────────────┼───────┼────────────────┼───────┼────────┼───────┼──────────┤")
	for _, r := range entry.Records {
		temp := "    -"
		if r.Temperature != nil {
			temp = fmt.Sprintf("%5.1f", *r.Temperature)
		}
		fmt.Printf("│ %16s │  %3d  │ %-14s │   %d   │   %d    │   %d   │  %s   │\n",
			r.Time.In(loc).Format("Mon 02 Jan 15:04"),
			r.Score,
			r.CloudLabel,
			r.CloudCover,
			r.Seeing,
			r.Transparency,
			temp,
		)
	}
	fmt.Println("└──────────────────┴───────┴────────────────┴───────┴────────┴───────┴──────────┘")

	if entry.BestWindow.Found {
		fmt.Printf("Best window: %s - %s, average score %d\n",
			entry.BestWindow.From.In(loc).Format("Mon 15:04"),
			entry.BestWindow.To.In(loc).Format("15:04"),
			entry.BestWindow.AverageScore)
	} else {
		fmt.Println("Best window: none")
	}
	fmt.Printf("Alert slots: %d\n", len(entry.Alerts))
}

func printSky(config *scheduler.Config, sky *catalog.Sky) {
	loc := config.TimeLocation()
	now := time.Now().In(loc)
	obs := celestial.Observer{Latitude: config.Latitude, Longitude: config.Longitude, Elevation: config.Elevation}

	formatEvent := func(t *time.Time) string {
		if t == nil {
			return "  -  "
		}
		return t.In(loc).Format("15:04")
	}

	fmt.Printf("Sky for %s at %.4f, %.4f\n\n", now.Format("2006-01-02"), obs.Latitude, obs.Longitude)
	windows := append([]celestial.VisibilityWindow{
		celestial.Visibility(celestial.Sun(), obs, now),
		celestial.Visibility(celestial.Moon(), obs, now),
	}, celestial.PlanetVisibility(obs, now)...)
	for _, w := range windows {
		fmt.Printf("  %-8s rise %s  set %s  up now: %v\n", w.Body, formatEvent(w.Rise), formatEvent(w.Set), w.AboveHorizon)
	}

	fmt.Println("\nDeep-sky objects above the horizon now:")
	for _, t := range sky.Messier.Visible(obs, now, catalog.Filter{}) {
		fmt.Printf("  %-5s %-22s %-14s alt %5.1f  az %5.1f\n", t.ID(), t.Name, t.Constellation, t.Altitude, t.Azimuth)
	}

	if star, ok := sky.Stars.FindStar("Polaris"); ok {
		h := celestial.HorizontalCoordinates(star.Equatorial(), obs, now.UTC())
		fmt.Printf("\nPolaris: alt %.1f az %.1f (%s %s)\n", h.Altitude, h.Azimuth,
			celestial.FormatRA(star.Equatorial().RA), celestial.FormatDec(star.Equatorial().Dec))
	}
}

func showHelp() {
	fmt.Println("Stargazing conditions service - score observing conditions from weather forecasts")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Fetches hourly forecasts from Open-Meteo, 7Timer and optionally MET Norway,")
	fmt.Println("  normalizes them onto common cloud, seeing and transparency scales and scores")
	fmt.Println("  every hour for astronomical observing. A web API serves the scores, the best")
	fmt.Println("  two-hour night window, planet rise/set times and visible deep-sky objects.")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  stargazing [OPTIONS]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Run the service with a custom configuration")
	fmt.Println("  stargazing --config=config.json")
	fmt.Println()
	fmt.Println("  # Serve persisted scores only, without fetching")
	fmt.Println("  stargazing -serverOnly")
	fmt.Println()
	fmt.Println("  # Fetch once and print the scored forecasts")
	fmt.Println("  stargazing -once")
	fmt.Println()
	fmt.Println("  # Show tonight's sky")
	fmt.Println("  stargazing -sky")
	fmt.Println()
	fmt.Println("  # Show this help")
	fmt.Println("  stargazing -help")
}
