package weather

// Location is a candidate returned by location search
type Location struct {
	ID      int64   `json:"id,omitempty"`
	Name    string  `json:"name"`
	Region  string  `json:"region"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
	URL     string  `json:"url,omitempty"`
}

// Snapshot is the current conditions plus forecast for one city, as
// returned by the forecast endpoint.
type Snapshot struct {
	Location SnapshotLocation `json:"location"`
	Current  Current          `json:"current"`
	Forecast Forecast         `json:"forecast"`
}

type SnapshotLocation struct {
	Name      string `json:"name"`
	Region    string `json:"region"`
	Country   string `json:"country"`
	LocalTime string `json:"localtime"`
}

type Condition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
	Code int    `json:"code"`
}

type Current struct {
	TempC      float64   `json:"temp_c"`
	FeelsLikeC float64   `json:"feelslike_c"`
	IsDay      int       `json:"is_day"`
	Condition  Condition `json:"condition"`
	WindKPH    float64   `json:"wind_kph"`
	Humidity   int       `json:"humidity"`
}

type Forecast struct {
	ForecastDay []ForecastDay `json:"forecastday"`
}

type ForecastDay struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Day   Day    `json:"day"`
	Astro Astro  `json:"astro"`
}

type Day struct {
	AvgTempC  float64   `json:"avgtemp_c"`
	MaxTempC  float64   `json:"maxtemp_c"`
	MinTempC  float64   `json:"mintemp_c"`
	Condition Condition `json:"condition"`
}

type Astro struct {
	Sunrise string `json:"sunrise"`
	Sunset  string `json:"sunset"`
}

// Sunrise returns today's sunrise, or "" when the forecast is empty.
func (s *Snapshot) Sunrise() string {
	if s == nil || len(s.Forecast.ForecastDay) == 0 {
		return ""
	}
	return s.Forecast.ForecastDay[0].Astro.Sunrise
}
