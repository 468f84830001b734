package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"nosh/cmd"
	"nosh/internal/db"
	"nosh/internal/feed"
	"nosh/internal/logging"
	"nosh/internal/match"
	"nosh/internal/search"
	"nosh/internal/ui"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse CLI flags
	config, err := cmd.ParseFlags(version)
	if err != nil {
		return err
	}
	if config.ShowVersion {
		return nil
	}

	log, err := logging.New(config.LogLevel, config.LogFile)
	if err != nil {
		return err
	}
	defer log.Sync()

	lock, err := cmd.AcquireLock(config.ConfigDir)
	if err != nil {
		if errors.Is(err, cmd.ErrAlreadyRunning) {
			log.Warn("second instance refused", map[string]interface{}{"config_dir": config.ConfigDir})
		}
		return err
	}
	defer lock.Unlock()

	// Open database
	database, err := db.Open(config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	matcher := match.NewParallel()
	if config.SynonymsPath != "" {
		if matcher.Synonyms, err = match.LoadSynonyms(config.SynonymsPath); err != nil {
			return err
		}
	}

	yelpClient := search.NewYelpClient(config.YelpAPIKey, search.WithLogger(log.With(map[string]interface{}{"component": "yelp"})))
	svc := feed.New(yelpClient, db.NewStore(database), feed.Options{
		Matcher:  matcher,
		PageSize: config.PageSize,
		Logger:   log.With(map[string]interface{}{"component": "feed"}),
	})
	if err := svc.Load(); err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	home := feed.Request{
		Location:  config.Location,
		Latitude:  config.Latitude,
		Longitude: config.Longitude,
	}
	log.Info("starting", map[string]interface{}{
		"version":  version,
		"db":       config.DBPath,
		"location": config.Location,
	})

	// Create and run Bubble Tea app
	app := ui.New(ui.Options{
		DB:       database,
		Feed:     svc,
		Client:   yelpClient,
		Logger:   log.With(map[string]interface{}{"component": "ui"}),
		Home:     home,
		TermCaps: ui.DetectTerminalCapabilities(),
	})
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}

	stats := svc.Stats()
	log.Info("exiting", map[string]interface{}{"cache_hits": stats.Hits, "cache_misses": stats.Misses})
	return nil
}
