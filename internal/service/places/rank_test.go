package places

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func km(v float64) *float64 { return &v }

func TestRankOrdersByDistance(t *testing.T) {
	candidates := []Candidate{
		{Name: "a", DistanceKm: km(0.5)},
		{Name: "b", DistanceKm: km(3.0)},
		{Name: "c", DistanceKm: km(1.2)},
	}

	got := Rank(candidates, ResultCap)

	require.Len(t, got, 3)
	assert.Equal(t, 0.5, *got[0].DistanceKm)
	assert.Equal(t, 1.2, *got[1].DistanceKm)
	assert.Equal(t, 3.0, *got[2].DistanceKm)
}

func TestRankPutsUnknownDistanceLast(t *testing.T) {
	candidates := []Candidate{
		{Name: "unknown"},
		{Name: "far", DistanceKm: km(9.9)},
		{Name: "near", DistanceKm: km(0.1)},
	}

	got := Rank(candidates, ResultCap)

	assert.Equal(t, []string{"near", "far", "unknown"}, []string{got[0].Name, got[1].Name, got[2].Name})
}

func TestRankTruncates(t *testing.T) {
	candidates := make([]Candidate, 0, 30)
	for i := 30; i > 0; i-- {
		candidates = append(candidates, Candidate{DistanceKm: km(float64(i))})
	}

	got := Rank(candidates, ResultCap)

	require.Len(t, got, ResultCap)
	assert.Equal(t, 1.0, *got[0].DistanceKm)
	assert.Equal(t, 18.0, *got[ResultCap-1].DistanceKm)
}

func TestHaversineKm(t *testing.T) {
	assert.InDelta(t, 0, HaversineKm(-34.6, -58.4, -34.6, -58.4), 1e-9)

	// Obelisco to Plaza de Mayo, Buenos Aires: about 1.1 km.
	d := HaversineKm(-34.6037, -58.3816, -34.6083, -58.3712)
	assert.InDelta(t, 1.07, d, 0.1)

	// A degree of latitude is about 111 km.
	assert.InDelta(t, 111.19, HaversineKm(0, 0, 1, 0), 0.05)
	assert.False(t, math.IsNaN(HaversineKm(89.9, 0, -89.9, 180)))
}

func TestToCandidate(t *testing.T) {
	lat, lon := -34.60, -58.38
	node := element{
		Type: "node", ID: 1, Lat: &lat, Lon: &lon,
		Tags: map[string]string{"shop": "hardware", "name": "Ferretería Don José", "addr:street": "Corrientes", "addr:housenumber": "1234"},
	}

	c := toCandidate(node, -34.60, -58.38)
	assert.Equal(t, "Ferretería Don José", c.Name)
	assert.Equal(t, "ferretería", c.Category)
	assert.Equal(t, "Corrientes 1234", c.Address)
	require.NotNil(t, c.DistanceKm)
	assert.InDelta(t, 0, *c.DistanceKm, 1e-9)
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=-34.6,-58.38", c.Link)

	way := element{Type: "way", ID: 77, Center: &center{Lat: -34.61, Lon: -58.39}, Tags: map[string]string{"shop": "trade", "addr:full": "Ruta 8 km 50"}}
	c = toCandidate(way, -34.60, -58.38)
	assert.Equal(t, "Comercio", c.Name)
	assert.Equal(t, "corralón", c.Category)
	assert.Equal(t, "Ruta 8 km 50", c.Address)
	require.NotNil(t, c.Lat)

	noCoord := element{Type: "way", ID: 99, Tags: map[string]string{"shop": "paint"}}
	c = toCandidate(noCoord, -34.60, -58.38)
	assert.Nil(t, c.DistanceKm)
	assert.Equal(t, "pinturería", c.Category)
	assert.Equal(t, "https://www.openstreetmap.org/way/99", c.Link)
}
