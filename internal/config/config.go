package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/owm-current-weather/owm"
)

type AppConfig struct {
	OpenWeatherAPIKey string `validate:"required"`
	BaseURL           string `validate:"required,url"`

	// BreakerEnabled wraps the upstream transport in a circuit breaker.
	BreakerEnabled bool
	HTTPTimeout    time.Duration

	// Server-side defaults applied when a request does not set them.
	DefaultUnits    string
	DefaultLanguage string

	// Watch lists the locations polled by the scheduler every WatchInterval.
	Watch         []owm.ByName
	WatchInterval time.Duration

	// GeocoderAPIKey enables address lookups when set.
	GeocoderAPIKey string

	Port     string `validate:"required,numeric"`
	AppEnv   string `validate:"oneof=dev prod"`
	LogLevel slog.Level
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("config: no .env file loaded", "error", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.BaseURL = getenvDefault("OPENWEATHER_BASE_URL", owm.DefaultBaseURL)
	cfg.BreakerEnabled = getenvBool("OPENWEATHER_BREAKER", false)

	timeout, err := getenvDuration("HTTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	cfg.DefaultUnits = os.Getenv("WEATHER_UNITS")
	cfg.DefaultLanguage = os.Getenv("WEATHER_LANG")

	// Watch interval: default 15 minutes.
	interval, err := getenvDuration("WATCH_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.WatchInterval = interval

	watch, err := loadWatchLocations()
	if err != nil {
		return nil, err
	}
	cfg.Watch = watch

	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.AppEnv = strings.ToLower(getenvDefault("APP_ENV", "dev"))

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadWatchLocations pairs WEATHER_LOCATION_CITY with
// WEATHER_LOCATION_COUNTRY, both comma separated. An empty country entry
// leaves the city unqualified.
func loadWatchLocations() ([]owm.ByName, error) {
	city := strings.TrimSpace(os.Getenv("WEATHER_LOCATION_CITY"))
	if city == "" {
		return nil, nil
	}
	country := os.Getenv("WEATHER_LOCATION_COUNTRY")

	cities := strings.Split(city, ",")
	countries := make([]string, len(cities))
	if strings.TrimSpace(country) != "" {
		countries = strings.Split(country, ",")
	}
	if len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}

	var locs []owm.ByName
	for i := range cities {
		locs = append(locs, owm.ByName{
			City:    strings.TrimSpace(cities[i]),
			Country: strings.TrimSpace(countries[i]),
		})
	}
	return locs, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
