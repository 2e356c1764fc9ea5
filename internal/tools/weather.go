package tools

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultWeatherURL = "https://api.openweathermap.org"

// WeatherConfig configures the OpenWeatherMap client.
type WeatherConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client, for tests.
	HTTPClient *http.Client
}

// Weather looks up current conditions.
type Weather struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// WeatherReport is the current weather of one city.
type WeatherReport struct {
	City        string
	Country     string
	Description string
	TempC       float64
	FeelsLikeC  float64
	Humidity    int
	WindMS      float64
}

func (r WeatherReport) String() string {
	place := r.City
	if r.Country != "" {
		place += ", " + r.Country
	}
	return fmt.Sprintf("%s: %s, %.0f°C (feels like %.0f°C), humidity %d%%, wind %.1f m/s",
		place, r.Description, math.Round(r.TempC), math.Round(r.FeelsLikeC), r.Humidity, r.WindMS)
}

// NewWeather creates the client. A missing API key is not an error; Lookup
// then returns ErrNotConfigured.
func NewWeather(cfg WeatherConfig, log *slog.Logger) *Weather {
	if log == nil {
		log = slog.Default()
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultWeatherURL
	}
	return &Weather{
		apiKey:  cfg.APIKey,
		baseURL: base,
		http:    newHTTPClient(cfg.HTTPClient, cfg.Timeout),
		log:     log.With("component", "weather"),
	}
}

// Configured reports whether an API key is set.
func (w *Weather) Configured() bool { return w.apiKey != "" }

type owmResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
}

// Lookup returns the current weather for city in metric units.
func (w *Weather) Lookup(ctx context.Context, city string) (WeatherReport, error) {
	if !w.Configured() {
		return WeatherReport{}, ErrNotConfigured
	}
	city = strings.TrimSpace(city)
	if city == "" {
		return WeatherReport{}, ErrEmptyQuery
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", w.apiKey)
	q.Set("units", "metric")

	var out owmResponse
	if err := getJSON(ctx, w.http, w.baseURL+"/data/2.5/weather?"+q.Encode(), &out); err != nil {
		w.log.WarnContext(ctx, "Weather lookup failed", "city", city, "error", err)
		return WeatherReport{}, err
	}

	report := WeatherReport{
		City:       out.Name,
		Country:    out.Sys.Country,
		TempC:      out.Main.Temp,
		FeelsLikeC: out.Main.FeelsLike,
		Humidity:   out.Main.Humidity,
		WindMS:     out.Wind.Speed,
	}
	if report.City == "" {
		report.City = city
	}
	if len(out.Weather) > 0 {
		report.Description = out.Weather[0].Description
	}
	return report, nil
}
