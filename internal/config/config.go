package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/swelljoe/wthr-screen/internal/weather"
)

// Config holds runtime settings for the screen host.
type Config struct {
	Port            string
	WeatherAPIKey   string
	WeatherAPIURL   string
	UserAgent       string
	DatabasePath    string
	DefaultCity     string
	ForecastDays    int
	SearchDebounce  time.Duration
	MinSearchLength int
	HTTPTimeout     time.Duration
	LogLevel        slog.Level
	AllowedOrigins  []string
}

const (
	DefaultCity           = "Surat"
	DefaultForecastDays   = 7
	DefaultSearchDebounce = 1000 * time.Millisecond
	DefaultMinSearchLen   = 3
	DefaultWeatherAPIURL  = "https://api.weatherapi.com/v1"
)

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	return Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		WeatherAPIKey:   os.Getenv("WEATHER_API_KEY"),
		WeatherAPIURL:   strings.TrimRight(getEnvOrDefault("WEATHER_API_URL", DefaultWeatherAPIURL), "/"),
		UserAgent:       getEnvOrDefault("WEATHER_USER_AGENT", weather.DefaultUserAgent),
		DatabasePath:    getEnvOrDefault("DATABASE_PATH", "wthr.db"),
		DefaultCity:     getEnvOrDefault("DEFAULT_CITY", DefaultCity),
		ForecastDays:    getIntOrDefault("FORECAST_DAYS", DefaultForecastDays),
		SearchDebounce:  getDurationOrDefault("SEARCH_DEBOUNCE", DefaultSearchDebounce),
		MinSearchLength: getIntOrDefault("MIN_SEARCH_LENGTH", DefaultMinSearchLen),
		HTTPTimeout:     getDurationOrDefault("HTTP_TIMEOUT", 10*time.Second),
		LogLevel:        parseLevel(os.Getenv("LOG_LEVEL")),
		AllowedOrigins:  splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer setting, using default", "key", key, "value", v, "default", defaultValue)
		return defaultValue
	}
	return n
}

// getDurationOrDefault accepts Go durations ("1s", "750ms") or a bare
// number of milliseconds.
func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration setting, using default", "key", key, "value", v, "default", defaultValue)
		return defaultValue
	}
	return d
}

func parseLevel(v string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
