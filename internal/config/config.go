package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/MHamoud95/Berlin-weather-pipeline/internal/weather"
	"github.com/MHamoud95/Berlin-weather-pipeline/internal/weather/providers"
)

// Defaults for Berlin. The API host default lives with the Open-Meteo client.
const (
	DefaultLatitude  = "52.5200"
	DefaultLongitude = "13.4050"
	DefaultSchedule  = "@daily"
)

type AppConfig struct {
	// Location observed on every run.
	Location weather.Location `yaml:"location"`

	// APIBaseURL is the resolved host of the forecast API.
	APIBaseURL  string        `yaml:"api_base_url" validate:"required,url"`
	HTTPTimeout time.Duration `yaml:"http_timeout" validate:"gt=0"`

	// DatabaseURL points at PostgreSQL; empty selects the in-memory store.
	DatabaseURL string `yaml:"database_url"`

	// Schedule is a standard cron expression or descriptor such as @daily.
	Schedule   string        `yaml:"schedule" validate:"required"`
	RunTimeout time.Duration `yaml:"run_timeout" validate:"gt=0"`

	// In-memory store retention (0 = unlimited).
	StoreMaxHistory int `yaml:"store_max_history" validate:"gte=0"`

	Port     string `yaml:"port" validate:"required,numeric"`
	LogLevel string `yaml:"log_level" validate:"required,oneof=trace debug info warn warning error fatal panic"`
}

var validate = validator.New()

// Load builds the configuration from defaults, an optional YAML file named
// by CONFIG_FILE, and environment variables, in that order of precedence.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Location: weather.Location{
			Latitude:  DefaultLatitude,
			Longitude: DefaultLongitude,
		},
		APIBaseURL:  providers.DefaultOpenMeteoBaseURL,
		HTTPTimeout: 10 * time.Second,
		Schedule:    DefaultSchedule,
		RunTimeout:  60 * time.Second,
		Port:        "8080",
		LogLevel:    "info",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := loadEnv(cfg); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, errors.Wrapf(err, "invalid SCHEDULE %q", cfg.Schedule)
	}

	return cfg, nil
}

func loadFile(cfg *AppConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "error reading config file")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "error parsing config file %s", path)
	}
	return nil
}

func loadEnv(cfg *AppConfig) error {
	cfg.Location.Latitude = getenvDefault("WEATHER_LATITUDE", cfg.Location.Latitude)
	cfg.Location.Longitude = getenvDefault("WEATHER_LONGITUDE", cfg.Location.Longitude)
	cfg.APIBaseURL = getenvDefault("WEATHER_API_BASE_URL", cfg.APIBaseURL)
	cfg.DatabaseURL = getenvDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.Schedule = getenvDefault("SCHEDULE", cfg.Schedule)
	cfg.Port = getenvDefault("PORT", cfg.Port)
	cfg.LogLevel = getenvDefault("LOG_LEVEL", cfg.LogLevel)

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return err
	}
	if cfg.RunTimeout, err = getenvDuration("RUN_TIMEOUT", cfg.RunTimeout); err != nil {
		return err
	}
	if cfg.StoreMaxHistory, err = getenvInt("STORE_MAX_HISTORY", cfg.StoreMaxHistory); err != nil {
		return err
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
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
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return d, nil
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return n, nil
}
