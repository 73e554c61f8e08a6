package weather

import (
	"strings"
	"time"
)

// IconName maps a WeatherAPI condition text to a local icon name
func IconName(conditionText string, isDay bool) string {
	text := strings.ToLower(strings.TrimSpace(conditionText))

	// Order matters: "thundery outbreaks" and "rain with thunder" must win
	// over the plain rain match below.
	switch {
	case text == "":
		return "unknown"
	case strings.Contains(text, "thunder"):
		return "thunderstorm"
	case strings.Contains(text, "sunny"), text == "clear":
		if !isDay {
			return "clear_night"
		}
		return "sun"
	case strings.Contains(text, "partly cloudy"):
		if !isDay {
			return "partly_cloudy_night"
		}
		return "partly_cloudy"
	case strings.Contains(text, "overcast"), strings.Contains(text, "cloudy"):
		return "cloud"
	case strings.Contains(text, "mist"), strings.Contains(text, "fog"):
		return "mist"
	case strings.Contains(text, "heavy rain"), strings.Contains(text, "torrential"):
		return "heavy_rain"
	case strings.Contains(text, "snow"), strings.Contains(text, "blizzard"),
		strings.Contains(text, "sleet"), strings.Contains(text, "ice pellets"):
		return "snow"
	case strings.Contains(text, "rain"), strings.Contains(text, "drizzle"),
		strings.Contains(text, "shower"):
		return "moderate_rain"
	}

	return "moderate_rain"
}

// IconURL turns the protocol-relative icon paths WeatherAPI returns
// ("//cdn.weatherapi.com/...") into absolute https URLs.
func IconURL(icon string) string {
	switch {
	case icon == "":
		return ""
	case strings.HasPrefix(icon, "//"):
		return "https:" + icon
	case strings.HasPrefix(icon, "http://"):
		return "https://" + strings.TrimPrefix(icon, "http://")
	}
	return icon
}

// DayName returns the long English weekday for a YYYY-MM-DD date,
// falling back to the raw date when it does not parse.
func DayName(date string) string {
	if date == "" {
		return ""
	}

	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}

	return t.Weekday().String()
}
