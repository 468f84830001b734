package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned when no Yelp key could be found anywhere.
var ErrMissingAPIKey = errors.New("no Yelp API key: pass -yelp-key, set YELP_API_KEY, or run nosh in a terminal to set one up")

// Config holds CLI configuration.
type Config struct {
	ConfigDir    string
	DBPath       string
	YelpAPIKey   string
	Location     string
	Latitude     *float64
	Longitude    *float64
	PageSize     int
	LogLevel     string
	LogFile      string
	SynonymsPath string
	ShowVersion  bool
}

// HasCoordinates reports whether both -lat and -lon were given.
func (c *Config) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// ParseFlags parses command-line flags and returns configuration.
func ParseFlags(version string) (*Config, error) {
	// Load .env files first so they feed the environment layer.
	loadDotEnv(".env", ".env.local")

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	configDir := filepath.Join(home, ".nosh")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	settings, err := loadOnboardingSettings(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load onboarding settings: %w", err)
	}

	config, err := loadConfig(os.Args[1:], configDir, settings)
	if err != nil {
		return nil, err
	}
	if config.ShowVersion {
		fmt.Printf("nosh %s\n", version)
		return config, nil
	}

	if config.YelpAPIKey == "" {
		secureKey, err := loadSecureYelpAPIKey(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load secure Yelp API key: %w", err)
		}
		config.YelpAPIKey = secureKey
	}

	if shouldRunOnboarding(settings, config.YelpAPIKey != "") {
		settings, err = runOnboarding(configDir, config.YelpAPIKey, config.Location)
		if err != nil {
			return nil, fmt.Errorf("failed to run onboarding: %w", err)
		}
		if config.YelpAPIKey == "" {
			if config.YelpAPIKey, err = loadSecureYelpAPIKey(configDir); err != nil {
				return nil, fmt.Errorf("failed to load secure Yelp API key: %w", err)
			}
		}
		if config.Location == "" && !config.HasCoordinates() {
			config.Location = settings.Location
		}
	}

	if config.YelpAPIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return config, nil
}

// loadConfig layers flags over NOSH_* environment over config.yaml in
// configDir over defaults.
func loadConfig(args []string, configDir string, settings OnboardingSettings) (*Config, error) {
	fs := flag.NewFlagSet("nosh", flag.ContinueOnError)
	fs.String("db", "", "Path to SQLite database file (default: ~/.nosh/nosh.db)")
	fs.String("yelp-key", "", "Yelp Fusion API key (or set YELP_API_KEY env var)")
	fs.String("location", "", "Where to look, e.g. \"Mission District, San Francisco\"")
	fs.String("lat", "", "Latitude, used with -lon instead of -location")
	fs.String("lon", "", "Longitude, used with -lat instead of -location")
	fs.Int("page-size", 0, "Results per page")
	fs.String("log-level", "", "Log level: debug, info, warn, error")
	fs.String("log-file", "", "Log file path (default: ~/.nosh/nosh.log)")
	fs.String("synonyms", "", "YAML file of extra dietary category synonyms")
	showVersion := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("NOSH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("yelp_key", "NOSH_YELP_KEY", "YELP_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	v.SetDefault("db", filepath.Join(configDir, "nosh.db"))
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", filepath.Join(configDir, "nosh.log"))
	v.SetDefault("location", settings.Location)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Only flags the user actually passed override the lower layers.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "version" {
			return
		}
		v.Set(strings.ReplaceAll(f.Name, "-", "_"), f.Value.String())
	})

	config := &Config{
		ConfigDir:    configDir,
		DBPath:       v.GetString("db"),
		YelpAPIKey:   strings.TrimSpace(v.GetString("yelp_key")),
		Location:     strings.TrimSpace(v.GetString("location")),
		PageSize:     v.GetInt("page_size"),
		LogLevel:     v.GetString("log_level"),
		LogFile:      v.GetString("log_file"),
		SynonymsPath: v.GetString("synonyms"),
		ShowVersion:  *showVersion,
	}

	var err error
	if config.Latitude, err = parseCoordinate(v.GetString("lat"), "lat", 90); err != nil {
		return nil, err
	}
	if config.Longitude, err = parseCoordinate(v.GetString("lon"), "lon", 180); err != nil {
		return nil, err
	}
	if (config.Latitude == nil) != (config.Longitude == nil) {
		return nil, errors.New("-lat and -lon must be given together")
	}
	if config.PageSize < 0 {
		return nil, fmt.Errorf("page size must not be negative, got %d", config.PageSize)
	}

	return config, nil
}

func parseCoordinate(s, name string, limit float64) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	if f < -limit || f > limit {
		return nil, fmt.Errorf("%s %v out of range", name, f)
	}
	return &f, nil
}

// loadDotEnv loads each file that exists. Variables already set win.
func loadDotEnv(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_ = godotenv.Load(path)
	}
}
