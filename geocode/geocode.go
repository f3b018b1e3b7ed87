// Package geocode resolves free-text addresses to coordinates with a
// fixed fallback chain: geocoding API, then a static city table, then a
// state-level default point. Every resolution is logged with its source
// so data quality can be audited later.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	olc "github.com/google/open-location-code/go"
	"golang.org/x/time/rate"
)

// Source identifies how a coordinate was resolved.
type Source string

const (
	SourceAPI          Source = "api"
	SourceCityTable    Source = "city-table"
	SourceStateDefault Source = "state-default"
	SourceNone         Source = "none"
)

const defaultEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

// Point is a resolved coordinate. Lat and Lng are both zero only for
// the explicit "needs geocoding" placeholder (Source none).
type Point struct {
	Lat    float64
	Lng    float64
	Source Source
}

type apiResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type Geocoder struct {
	endpoint string
	apiKey   string
	client   *http.Client
	limiter  *rate.Limiter
}

type Option func(*Geocoder)

func WithEndpoint(endpoint string) Option {
	return func(g *Geocoder) {
		g.endpoint = endpoint
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(g *Geocoder) {
		g.client = hc
	}
}

// WithRateLimit overrides the politeness limiter, mainly for tests.
func WithRateLimit(l *rate.Limiter) Option {
	return func(g *Geocoder) {
		g.limiter = l
	}
}

func New(apiKey string, opts ...Option) *Geocoder {
	ans := &Geocoder{
		endpoint: defaultEndpoint,
		apiKey:   apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		// One request per second keeps us inside provider limits.
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}

	for _, opt := range opts {
		opt(ans)
	}

	return ans
}

// Geocode resolves an address, falling back to the city table and then
// the state default point when the API errors, rate-limits or returns
// nothing. The business name is only for logging.
func (g *Geocoder) Geocode(ctx context.Context, address, city, state, name string) Point {
	if address == "" && city != "" {
		address = city + ", " + state
	}

	if address != "" && g.apiKey != "" {
		if pt, err := g.geocodeAPI(ctx, address); err == nil {
			logResolution(name, address, pt)

			return pt
		} else {
			log.Printf("geocode API failed for %q: %v", name, err)
		}
	}

	if pt, ok := CityPoint(state, city); ok {
		pt.Source = SourceCityTable
		logResolution(name, address, pt)

		return pt
	}

	if pt, ok := StateDefault(state); ok {
		pt.Source = SourceStateDefault
		logResolution(name, address, pt)

		return pt
	}

	pt := Point{Source: SourceNone}
	logResolution(name, address, pt)

	return pt
}

func (g *Geocoder) geocodeAPI(ctx context.Context, address string) (Point, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return Point{}, err
	}

	u, err := url.Parse(g.endpoint)
	if err != nil {
		return Point{}, err
	}

	q := u.Query()
	q.Set("address", address)
	q.Set("key", g.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Point{}, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return Point{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Point{}, fmt.Errorf("geocoding API status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Point{}, fmt.Errorf("decode geocoding response: %w", err)
	}

	if payload.Status != "OK" || len(payload.Results) == 0 {
		return Point{}, fmt.Errorf("geocoding status %q with %d results", payload.Status, len(payload.Results))
	}

	loc := payload.Results[0].Geometry.Location

	return Point{Lat: loc.Lat, Lng: loc.Lng, Source: SourceAPI}, nil
}

func logResolution(name, address string, pt Point) {
	code := ""
	if pt.Source != SourceNone {
		code = olc.Encode(pt.Lat, pt.Lng, 10)
	}

	log.Printf("geocoded %q (%s) -> %.5f,%.5f source=%s plus_code=%s",
		name, strings.TrimSpace(address), pt.Lat, pt.Lng, pt.Source, code)
}
