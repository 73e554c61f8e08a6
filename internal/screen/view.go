package screen

import (
	"fmt"
	"strings"

	"github.com/swelljoe/wthr-screen/internal/weather"
)

type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// View is what the screen renders right now. Regions that are not shown
// in the current phase are left empty.
type View struct {
	Phase         Phase       `json:"phase"`
	Loading       bool        `json:"loading"`
	SearchVisible bool        `json:"search_visible"`
	Error         string      `json:"error,omitempty"`
	RetryCity     string      `json:"retry_city,omitempty"`
	Header        *Header     `json:"header,omitempty"`
	Current       *Current    `json:"current,omitempty"`
	Candidates    []Candidate `json:"candidates,omitempty"`
	Forecast      []DayTile   `json:"forecast,omitempty"`
}

type Header struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

type Current struct {
	TempC     float64 `json:"temp_c"`
	Condition string  `json:"condition"`
	Icon      string  `json:"icon"`
	WindKPH   float64 `json:"wind_kph"`
	Humidity  int     `json:"humidity"`
	Sunrise   string  `json:"sunrise"`
}

type Candidate struct {
	weather.Location
	Label string `json:"label"`
}

type DayTile struct {
	Date     string  `json:"date"`
	DayName  string  `json:"day_name"`
	IconURL  string  `json:"icon_url"`
	AvgTempC float64 `json:"avgtemp_c"`
}

// ShowCandidates reports whether the candidate list region is drawn.
func (v View) ShowCandidates() bool {
	return len(v.Candidates) > 0
}

// ShowForecast reports whether the daily forecast strip is drawn.
func (v View) ShowForecast() bool {
	return v.Phase == PhaseReady && !v.SearchVisible
}

func (s *Screen) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Phase:         s.phase,
		Loading:       s.phase == PhaseLoading,
		SearchVisible: s.searchVisible,
	}

	switch s.phase {
	case PhaseLoading:
		return v
	case PhaseError:
		if s.lastErr != nil {
			v.Error = s.lastErr.Error()
		}
		v.RetryCity = s.city
		return v
	}

	w := s.weather
	if w == nil {
		return v
	}
	v.Header = &Header{City: w.Location.Name, Country: w.Location.Country}
	v.Current = &Current{
		TempC:     w.Current.TempC,
		Condition: w.Current.Condition.Text,
		Icon:      weather.IconName(w.Current.Condition.Text, w.Current.IsDay != 0),
		WindKPH:   w.Current.WindKPH,
		Humidity:  w.Current.Humidity,
		Sunrise:   w.Sunrise(),
	}

	if s.searchVisible {
		for _, loc := range s.candidates {
			v.Candidates = append(v.Candidates, Candidate{Location: loc, Label: candidateLabel(loc)})
		}
		return v
	}

	for _, fd := range w.Forecast.ForecastDay {
		v.Forecast = append(v.Forecast, DayTile{
			Date:     fd.Date,
			DayName:  weather.DayName(fd.Date),
			IconURL:  weather.IconURL(fd.Day.Condition.Icon),
			AvgTempC: fd.Day.AvgTempC,
		})
	}
	return v
}

func candidateLabel(loc weather.Location) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{loc.Name, loc.Region, loc.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
