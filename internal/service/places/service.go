// Package places lists hardware-related stores near a coordinate using
// OpenStreetMap (Overpass) and describes coordinates through Nominatim.
package places

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// ErrInvalidCoordinate is returned for NaN or out of range coordinates.
var ErrInvalidCoordinate = errors.New("invalid lat/lng")

// Config wires the upstream endpoints. Zero values fall back to the public
// OpenStreetMap services.
type Config struct {
	OverpassURL  string
	NominatimURL string
	UserAgent    string
	CacheTTL     time.Duration
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// Result is the ranked answer of a Nearby lookup.
type Result struct {
	Count   int         `json:"count"`
	Results []Candidate `json:"results"`
}

// Service answers places and reverse geocoding lookups, caching both.
type Service struct {
	overpass  *overpassClient
	nominatim *nominatimClient
	cache     *cache.Cache
	logger    *slog.Logger
}

// NewService builds a Service from cfg.
func NewService(cfg Config) *Service {
	if cfg.OverpassURL == "" {
		cfg.OverpassURL = DefaultOverpassURL
	}
	if cfg.NominatimURL == "" {
		cfg.NominatimURL = DefaultNominatimURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "asistente-hogar/1.0"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Service{
		overpass:  &overpassClient{endpoint: cfg.OverpassURL, userAgent: cfg.UserAgent, httpClient: cfg.HTTPClient},
		nominatim: &nominatimClient{endpoint: cfg.NominatimURL, userAgent: cfg.UserAgent, httpClient: cfg.HTTPClient},
		cache:     cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		logger:    cfg.Logger,
	}
}

// Nearby returns up to ResultCap stores of the requested categories sorted by
// distance. No matches yields an empty result, not an error.
func (s *Service) Nearby(ctx context.Context, q Query) (Result, error) {
	if err := validateCoordinate(q.Lat, q.Lng); err != nil {
		return Result{}, err
	}
	q = q.Normalize()

	key := fmt.Sprintf("nearby:%.4f:%.4f:%d:%s", q.Lat, q.Lng, q.Radius, strings.Join(q.Types, ","))
	if cached, found := s.cache.Get(key); found {
		s.logger.Debug("places cache hit", "key", key)
		return cached.(Result), nil
	}

	elements, err := s.overpass.search(ctx, BuildOverpassQuery(q))
	if err != nil {
		return Result{}, err
	}

	candidates := make([]Candidate, 0, len(elements))
	for _, el := range elements {
		candidates = append(candidates, toCandidate(el, q.Lat, q.Lng))
	}
	candidates = Rank(candidates, ResultCap)

	result := Result{Count: len(candidates), Results: candidates}
	s.cache.Set(key, result, cache.DefaultExpiration)
	s.logger.Info("places lookup", "types", q.Types, "radius", q.Radius, "elements", len(elements), "results", result.Count)
	return result, nil
}

// Reverse describes the neighbourhood or city of a coordinate.
func (s *Service) Reverse(ctx context.Context, lat, lng float64) (Location, error) {
	if err := validateCoordinate(lat, lng); err != nil {
		return Location{}, err
	}

	key := fmt.Sprintf("reverse:%.4f:%.4f", lat, lng)
	if cached, found := s.cache.Get(key); found {
		return cached.(Location), nil
	}

	loc, err := s.nominatim.reverse(ctx, lat, lng)
	if err != nil {
		return Location{}, err
	}

	s.cache.Set(key, loc, cache.DefaultExpiration)
	return loc, nil
}

func validateCoordinate(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.Abs(lat) > 90 || math.Abs(lng) > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}
