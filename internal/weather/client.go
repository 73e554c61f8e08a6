package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmptyQuery       = errors.New("city name is required")
	ErrLocationNotFound = errors.New("location not found")
)

// WeatherAPI error code for "No matching location found."
const codeNoLocation = 1006

// DefaultUserAgent identifies this module to the provider when none is configured.
const DefaultUserAgent = "wthr-screen/1.0 (+https://github.com/swelljoe/wthr-screen)"

// APIError is a non-200 response from WeatherAPI
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("weather API error: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("weather API error: %d (code %d): %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrLocationNotFound && e.Code == codeNoLocation
}

// Client handles WeatherAPI interactions
type Client struct {
	APIKey     string
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// NewClient creates a new WeatherAPI client
func NewClient(apiKey, baseURL, userAgent string, timeout time.Duration) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		APIKey:    apiKey,
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: userAgent,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	params.Set("key", c.APIKey)
	requestURL := c.BaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp.StatusCode, body)
	}

	return body, nil
}

// errorEnvelope is the body WeatherAPI sends with 4xx responses
type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeAPIError(status int, body []byte) error {
	apiErr := &APIError{Status: status}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	}
	return apiErr
}

// FetchLocations returns candidate locations matching a partial city name.
// An empty result is not an error.
func (c *Client) FetchLocations(ctx context.Context, cityName string) ([]Location, error) {
	cityName = strings.TrimSpace(cityName)
	if cityName == "" {
		return nil, ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("q", cityName)

	data, err := c.get(ctx, "/search.json", params)
	if err != nil {
		return nil, fmt.Errorf("failed to search locations: %w", err)
	}

	var locations []Location
	if err := json.Unmarshal(data, &locations); err != nil {
		return nil, fmt.Errorf("failed to decode locations: %w", err)
	}
	if locations == nil {
		locations = []Location{}
	}
	return locations, nil
}

// FetchWeatherForecast fetches current conditions and a days-long forecast
func (c *Client) FetchWeatherForecast(ctx context.Context, cityName string, days int) (*Snapshot, error) {
	cityName = strings.TrimSpace(cityName)
	if cityName == "" {
		return nil, ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("q", cityName)
	params.Set("days", strconv.Itoa(days))
	params.Set("aqi", "no")
	params.Set("alerts", "no")

	data, err := c.get(ctx, "/forecast.json", params)
	if err != nil {
		return nil, fmt.Errorf("failed to get forecast for %q: %w", cityName, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode forecast: %w", err)
	}
	return &snap, nil
}
