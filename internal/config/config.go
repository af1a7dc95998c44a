package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
)

// DefaultFeedURL is the USGS summary feed of all earthquakes in the past week.
const DefaultFeedURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_week.geojson"

// Config holds all service settings, populated from environment variables.
type Config struct {
	FeedURL             string `env:"FEED_URL" validate:"required,url"`
	FeedTimeout         time.Duration
	FeedMaxRetries      int `env:"FEED_MAX_RETRIES" validate:"gte=0,lte=10"`
	FeedRefreshInterval time.Duration

	// Mapbox tile configuration.
	MapboxToken    string
	MapboxValidate bool
	MapboxTimeout  time.Duration

	MapCenterLat float64 `env:"MAP_CENTER" validate:"gte=-90,lte=90"`
	MapCenterLon float64 `env:"MAP_CENTER" validate:"gte=-180,lte=180"`
	MapZoom      int     `env:"MAP_ZOOM" validate:"gte=0,lte=18"`
	DisplayTZ    *time.Location

	// Optional event sink. Publishing is disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string `env:"KAFKA_TOPIC" validate:"required_with=KafkaBrokers"`

	HTTPAddr        string `env:"HTTP_ADDR" validate:"required"`
	LogLevel        string `env:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`
	LogFormat       string `env:"LOG_FORMAT" validate:"oneof=json text"`
	ShutdownTimeout time.Duration
}

// KafkaEnabled reports whether newly observed earthquakes should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	feedTimeout, err := parseDuration("FEED_TIMEOUT", "10s", false)
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseDuration("FEED_REFRESH_INTERVAL", "5m", true)
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parseDuration("MAPBOX_TIMEOUT", "5s", false)
	if err != nil {
		return nil, err
	}

	maxRetries, err := parseInt("FEED_MAX_RETRIES", "3")
	if err != nil {
		return nil, err
	}
	zoom, err := parseInt("MAP_ZOOM", "5")
	if err != nil {
		return nil, err
	}
	lat, lon, err := parseCenter(sharedcfg.EnvOrDefault("MAP_CENTER", "37.09,-95.71"))
	if err != nil {
		return nil, err
	}

	tzName := sharedcfg.EnvOrDefault("DISPLAY_TZ", "UTC")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TZ %q: %w", tzName, err)
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxValidate := mapboxToken != ""
	if v := os.Getenv("MAPBOX_VALIDATE"); v != "" {
		mapboxValidate, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MAPBOX_VALIDATE %q: %w", v, err)
		}
	}

	var brokers []string
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		FeedURL:             sharedcfg.EnvOrDefault("FEED_URL", DefaultFeedURL),
		FeedTimeout:         feedTimeout,
		FeedMaxRetries:      maxRetries,
		FeedRefreshInterval: refreshInterval,

		MapboxToken:    mapboxToken,
		MapboxValidate: mapboxValidate,
		MapboxTimeout:  mapboxTimeout,

		MapCenterLat: lat,
		MapCenterLon: lon,
		MapZoom:      zoom,
		DisplayTZ:    loc,

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "earthquake-events"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "json")),
		ShutdownTimeout: shutdownTimeout,
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, describe(err)
	}
	if cfg.MapboxValidate && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_VALIDATE is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

// describe turns validator output into an error naming the first offending variable.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return fmt.Errorf("invalid %s: must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Errorf("invalid %s: %s", fe.Field(), fe.Tag())
}

func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func parseInt(key, def string) (int, error) {
	s := sharedcfg.EnvOrDefault(key, def)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func parseCenter(s string) (lat, lon float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid MAP_CENTER %q: want \"lat,lon\"", s)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid MAP_CENTER latitude: %w", err)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid MAP_CENTER longitude: %w", err)
	}
	return lat, lon, nil
}
