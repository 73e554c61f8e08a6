// Package screen implements the weather screen controller: it owns the
// current forecast, the location search state and the persisted city.
package screen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bep/debounce"

	"github.com/swelljoe/wthr-screen/internal/metrics"
	"github.com/swelljoe/wthr-screen/internal/weather"
)

// CityKey is the storage key of the last selected city.
const CityKey = "city"

// ErrSuperseded is returned when a newer request of the same kind was
// issued while this one was in flight. Its response was discarded.
var ErrSuperseded = errors.New("request superseded by a newer one")

type LocationSearcher interface {
	FetchLocations(ctx context.Context, cityName string) ([]weather.Location, error)
}

type ForecastFetcher interface {
	FetchWeatherForecast(ctx context.Context, cityName string, days int) (*weather.Snapshot, error)
}

type CityStore interface {
	GetData(ctx context.Context, key string) (string, error)
	StoreData(ctx context.Context, key, value string) error
}

// Options configures a Screen. Zero values fall back to the defaults in
// internal/config.
type Options struct {
	DefaultCity     string
	ForecastDays    int
	SearchDebounce  time.Duration
	MinSearchLength int
}

type Screen struct {
	locations LocationSearcher
	forecasts ForecastFetcher
	store     CityStore
	metrics   *metrics.Metrics
	logger    *slog.Logger
	opts      Options

	// Lifetime context for work started off the caller's goroutine.
	ctx    context.Context
	cancel context.CancelFunc

	debounced func(f func())

	// Serializes city writes so they land in forecast issue order.
	persistMu sync.Mutex

	mu            sync.Mutex
	phase         Phase
	searchVisible bool
	candidates    []weather.Location
	weather       *weather.Snapshot
	lastErr       error
	city          string
	searchSeq     uint64
	forecastSeq   uint64
	closed        bool
}

func New(locations LocationSearcher, forecasts ForecastFetcher, store CityStore, m *metrics.Metrics, logger *slog.Logger, opts Options) *Screen {
	if opts.DefaultCity == "" {
		opts.DefaultCity = "Surat"
	}
	if opts.ForecastDays <= 0 {
		opts.ForecastDays = 7
	}
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = time.Second
	}
	if opts.MinSearchLength <= 0 {
		opts.MinSearchLength = 3
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Screen{
		locations: locations,
		forecasts: forecasts,
		store:     store,
		metrics:   m,
		logger:    logger.With("component", "screen"),
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		debounced: debounce.New(opts.SearchDebounce),
		phase:     PhaseLoading,
	}
}

// Mount resolves the city to show (persisted or default) and loads its
// forecast.
func (s *Screen) Mount(ctx context.Context) error {
	city := s.opts.DefaultCity
	if s.store != nil {
		stored, err := s.store.GetData(ctx, CityKey)
		switch {
		case err != nil:
			s.logger.Warn("failed to read last city, using default", "default", city, "error", err)
		case stored != "":
			city = stored
		}
	}

	_, err := s.loadForecast(ctx, city)
	return err
}

// SearchTextChanged forwards typed text to location search once input has
// been quiet for the debounce window. Only the last value is searched.
func (s *Screen) SearchTextChanged(value string) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}

	s.debounced(func() { s.search(value) })
}

func (s *Screen) search(value string) {
	if utf8.RuneCountInString(value) < s.opts.MinSearchLength {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.searchSeq++
	seq := s.searchSeq
	s.mu.Unlock()

	logger := s.logger.With("query", value, "seq", seq)
	locations, err := s.locations.FetchLocations(s.ctx, value)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.searchSeq {
		s.metrics.ObserveRequest(metrics.KindSearch, metrics.OutcomeStale)
		logger.Debug("discarding stale search response")
		return
	}
	if err != nil {
		// Candidates from the previous search stay visible.
		s.metrics.ObserveRequest(metrics.KindSearch, metrics.OutcomeError)
		logger.Warn("location search failed", "error", err)
		return
	}

	s.metrics.ObserveRequest(metrics.KindSearch, metrics.OutcomeOK)
	s.candidates = locations
	logger.Debug("location search completed", "results", len(locations))
}

// SelectLocation switches the screen to loc, and persists loc.Name once its
// forecast has loaded. Any search in flight or pending is abandoned.
func (s *Screen) SelectLocation(ctx context.Context, loc weather.Location) error {
	s.mu.Lock()
	s.searchSeq++
	s.candidates = nil
	s.searchVisible = false
	closed := s.closed
	s.mu.Unlock()
	if !closed {
		s.debounced(func() {})
	}

	seq, err := s.loadForecast(ctx, loc.Name)
	if err != nil {
		return err
	}
	if s.store == nil {
		return nil
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	// A newer selection owns the stored city now.
	if !s.isCurrentForecast(seq) {
		s.logger.Debug("skipping persist of superseded selection", "city", loc.Name, "seq", seq)
		return ErrSuperseded
	}
	if err := s.store.StoreData(ctx, CityKey, loc.Name); err != nil {
		s.metrics.ObservePersistFailure()
		s.logger.Error("failed to persist last city", "city", loc.Name, "error", err)
	}
	return nil
}

func (s *Screen) isCurrentForecast(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq == s.forecastSeq
}

// Retry re-requests the forecast for the most recently requested city.
func (s *Screen) Retry(ctx context.Context) error {
	s.mu.Lock()
	city := s.city
	s.mu.Unlock()

	if city == "" {
		return s.Mount(ctx)
	}
	_, err := s.loadForecast(ctx, city)
	return err
}

func (s *Screen) ToggleSearch() {
	s.mu.Lock()
	s.searchVisible = !s.searchVisible
	s.mu.Unlock()
}

// loadForecast issues a sequenced forecast request and returns its sequence
// number. A nil error means the response was applied to the screen.
func (s *Screen) loadForecast(ctx context.Context, city string) (uint64, error) {
	s.mu.Lock()
	s.forecastSeq++
	seq := s.forecastSeq
	s.phase = PhaseLoading
	s.lastErr = nil
	s.city = city
	s.mu.Unlock()

	logger := s.logger.With("city", city, "seq", seq)
	logger.Info("requesting forecast", "days", s.opts.ForecastDays)

	snap, err := s.forecasts.FetchWeatherForecast(ctx, city, s.opts.ForecastDays)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.forecastSeq {
		s.metrics.ObserveRequest(metrics.KindForecast, metrics.OutcomeStale)
		logger.Debug("discarding stale forecast response")
		return seq, ErrSuperseded
	}
	if err != nil {
		s.metrics.ObserveRequest(metrics.KindForecast, metrics.OutcomeError)
		s.phase = PhaseError
		s.lastErr = err
		logger.Error("forecast request failed", "error", err)
		return seq, fmt.Errorf("failed to load forecast for %q: %w", city, err)
	}

	s.metrics.ObserveRequest(metrics.KindForecast, metrics.OutcomeOK)
	s.weather = snap
	s.phase = PhaseReady
	return seq, nil
}

// Close cancels in-flight searches and drops any pending debounced call.
func (s *Screen) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.debounced(func() {})
	s.cancel()
}
