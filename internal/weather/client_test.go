package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// mockRoundTripper is a custom RoundTripper for testing
type mockRoundTripper struct {
	handler http.Handler
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	m.handler.ServeHTTP(rec, req)
	resp := rec.Result()
	return resp, nil
}

func newTestClient(handler http.HandlerFunc) *Client {
	return &Client{
		APIKey:    "test-key",
		BaseURL:   "https://api.weatherapi.test/v1",
		UserAgent: "test-agent",
		HTTPClient: &http.Client{
			Transport: &mockRoundTripper{handler: handler},
		},
	}
}

const londonForecast = `{
  "location": {"name": "London", "region": "City of London, Greater London", "country": "United Kingdom", "localtime": "2024-01-15 9:30"},
  "current": {"temp_c": 8.0, "feelslike_c": 5.9, "is_day": 1, "wind_kph": 15.1, "humidity": 81,
              "condition": {"text": "Partly cloudy", "icon": "//cdn.weatherapi.com/weather/64x64/day/116.png", "code": 1003}},
  "forecast": {"forecastday": [
    {"date": "2024-01-15", "day": {"avgtemp_c": 6.4, "maxtemp_c": 9.1, "mintemp_c": 3.2,
      "condition": {"text": "Patchy rain possible", "icon": "//cdn.weatherapi.com/weather/64x64/day/176.png", "code": 1063}},
     "astro": {"sunrise": "07:59 AM", "sunset": "04:21 PM"}},
    {"date": "2024-01-16", "day": {"avgtemp_c": 4.0, "condition": {"text": "Sunny", "icon": "//cdn.weatherapi.com/weather/64x64/day/113.png", "code": 1000}},
     "astro": {"sunrise": "07:58 AM", "sunset": "04:23 PM"}}
  ]}
}`

// TestFetchLocations_Success tests decoding of the search response and request shape
func TestFetchLocations_Success(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/search.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "London" {
			t.Errorf("expected q=London, got %q", got)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("expected key=test-key, got %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("expected User-Agent test-agent, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":2801268,"name":"London","region":"City of London, Greater London","country":"United Kingdom","lat":51.52,"lon":-0.11,"url":"london-city-of-london-greater-london-united-kingdom"}]`))
	})

	locations, err := newTestClient(handler).FetchLocations(context.Background(), " London ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(locations) != 1 {
		t.Fatalf("expected 1 location, got %d", len(locations))
	}

	loc := locations[0]
	if loc.Name != "London" || loc.Region != "City of London, Greater London" || loc.Country != "United Kingdom" {
		t.Errorf("unexpected location: %+v", loc)
	}
	if loc.Lat != 51.52 || loc.Lon != -0.11 {
		t.Errorf("unexpected coordinates: %v,%v", loc.Lat, loc.Lon)
	}
}

// TestFetchLocations_Empty tests that an empty array is not an error
func TestFetchLocations_Empty(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	locations, err := newTestClient(handler).FetchLocations(context.Background(), "xyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if locations == nil || len(locations) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", locations)
	}
}

// TestFetchLocations_EmptyQuery tests that no request is made for a blank query
func TestFetchLocations_EmptyQuery(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty query")
	})

	_, err := newTestClient(handler).FetchLocations(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
}

// TestFetchWeatherForecast_Success tests the forecast request parameters and decoding
func TestFetchWeatherForecast_Success(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/v1/forecast.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if q.Get("q") != "London" || q.Get("days") != "7" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		if q.Get("aqi") != "no" || q.Get("alerts") != "no" {
			t.Errorf("expected aqi=no and alerts=no, got %q", r.URL.RawQuery)
		}
		w.Write([]byte(londonForecast))
	})

	snap, err := newTestClient(handler).FetchWeatherForecast(context.Background(), "London", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Location.Name != "London" || snap.Location.Country != "United Kingdom" {
		t.Errorf("unexpected location: %+v", snap.Location)
	}
	if snap.Current.TempC != 8.0 || snap.Current.WindKPH != 15.1 || snap.Current.Humidity != 81 {
		t.Errorf("unexpected current conditions: %+v", snap.Current)
	}
	if snap.Current.Condition.Text != "Partly cloudy" {
		t.Errorf("unexpected condition text %q", snap.Current.Condition.Text)
	}
	if len(snap.Forecast.ForecastDay) != 2 {
		t.Fatalf("expected 2 forecast days, got %d", len(snap.Forecast.ForecastDay))
	}
	if snap.Forecast.ForecastDay[0].Day.AvgTempC != 6.4 {
		t.Errorf("unexpected avg temp %v", snap.Forecast.ForecastDay[0].Day.AvgTempC)
	}
	if snap.Sunrise() != "07:59 AM" {
		t.Errorf("unexpected sunrise %q", snap.Sunrise())
	}
}

// TestFetchWeatherForecast_NotFound tests mapping of the WeatherAPI error envelope
func TestFetchWeatherForecast_NotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":1006,"message":"No matching location found."}}`))
	})

	_, err := newTestClient(handler).FetchWeatherForecast(context.Background(), "Atlantis", 7)
	if !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError in chain, got %T", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "No matching location found." {
		t.Errorf("unexpected API error: %+v", apiErr)
	}
}

// TestFetchWeatherForecast_ServerError tests a non-JSON error body
func TestFetchWeatherForecast_ServerError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := newTestClient(handler).FetchWeatherForecast(context.Background(), "London", 7)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", apiErr.Status)
	}
	if errors.Is(err, ErrLocationNotFound) {
		t.Error("server error must not match ErrLocationNotFound")
	}
}

// TestFetchWeatherForecast_MalformedBody tests decode failures
func TestFetchWeatherForecast_MalformedBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"location":`))
	})

	if _, err := newTestClient(handler).FetchWeatherForecast(context.Background(), "London", 7); err == nil {
		t.Error("expected decode error")
	}
}

// TestFetchWeatherForecast_ContextCanceled tests that a canceled context aborts the request
func TestFetchWeatherForecast_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, "", 5*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.FetchWeatherForecast(ctx, "London", 7)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("k", "https://api.weatherapi.com/v1/", "", 3*time.Second)
	if client.BaseURL != "https://api.weatherapi.com/v1" {
		t.Errorf("expected trailing slash trimmed, got %q", client.BaseURL)
	}
	if client.UserAgent != DefaultUserAgent {
		t.Errorf("expected default user agent %q, got %q", DefaultUserAgent, client.UserAgent)
	}
	if client.HTTPClient.Timeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", client.HTTPClient.Timeout)
	}
}
