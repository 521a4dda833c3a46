package places

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultRadius = 2500
	MaxRadius     = 10000
	ResultCap     = 18
)

// Query asks for stores of the given categories around a coordinate. Radius
// is in meters.
type Query struct {
	Lat    float64
	Lng    float64
	Types  []string
	Radius int
}

// Normalize clamps the radius and drops unknown categories. An empty type
// list means every category.
func (q Query) Normalize() Query {
	switch {
	case q.Radius <= 0:
		q.Radius = DefaultRadius
	case q.Radius > MaxRadius:
		q.Radius = MaxRadius
	}

	seen := make(map[string]bool, len(q.Types))
	types := make([]string, 0, len(q.Types))
	for _, t := range q.Types {
		t = strings.ToLower(strings.TrimSpace(t))
		if IsCategory(t) && !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	if len(types) == 0 {
		types = AllCategories()
	}
	q.Types = types
	return q
}

// ParseTypes splits a comma separated category list.
func ParseTypes(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// BuildOverpassQuery renders the union of every filter clause of the
// requested categories, each bounded by the search circle.
func BuildOverpassQuery(q Query) string {
	q = q.Normalize()
	around := fmt.Sprintf("(around:%d,%s,%s);", q.Radius, formatCoord(q.Lat), formatCoord(q.Lng))

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, t := range q.Types {
		for _, filter := range categoryFilters[t] {
			for _, kind := range []string{"node", "way"} {
				b.WriteString("  ")
				b.WriteString(kind)
				b.WriteString(filter)
				b.WriteString(around)
				b.WriteString("\n")
			}
		}
	}
	b.WriteString(");\nout center tags;")
	return b.String()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
