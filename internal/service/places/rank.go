package places

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const earthRadiusKm = 6371.0

// Candidate is one store returned to the client.
type Candidate struct {
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Address    string   `json:"address"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	DistanceKm *float64 `json:"distance_km"`
	OpenNow    *bool    `json:"open_now"`
	Rating     *float64 `json:"rating"`
	Link       string   `json:"link"`
}

// HaversineKm is the great-circle distance between two coordinates.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Pow(math.Sin(dLng/2), 2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(math.Min(1, a)))
}

// Rank sorts candidates by ascending distance, unknown distances last, and
// keeps at most limit entries.
func Rank(candidates []Candidate, limit int) []Candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].DistanceKm, candidates[j].DistanceKm
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// toCandidate maps an Overpass element relative to the query origin.
func toCandidate(el element, originLat, originLng float64) Candidate {
	tags := el.Tags
	if tags == nil {
		tags = map[string]string{}
	}

	name := tags["name"]
	if name == "" {
		name = "Comercio"
	}

	c := Candidate{
		Name:     name,
		Category: labelFor(tags),
		Address:  addressFor(tags),
	}

	lat, lng, ok := el.coordinate()
	if !ok {
		if el.ID != 0 && el.Type != "" {
			c.Link = fmt.Sprintf("https://www.openstreetmap.org/%s/%d", el.Type, el.ID)
		}
		return c
	}

	dist := HaversineKm(originLat, originLng, lat, lng)
	c.Lat, c.Lng, c.DistanceKm = &lat, &lng, &dist
	c.Link = fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%s,%s", formatCoord(lat), formatCoord(lng))
	return c
}

func addressFor(tags map[string]string) string {
	parts := make([]string, 0, 3)
	for _, key := range []string{"addr:street", "addr:housenumber", "addr:city"} {
		if v := strings.TrimSpace(tags[key]); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	return tags["addr:full"]
}
