package places

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const overpassFixture = `{
  "elements": [
    {"type": "node", "id": 1, "lat": -34.6300, "lon": -58.3816, "tags": {"shop": "paint", "name": "Pinturería Lejana"}},
    {"type": "node", "id": 2, "lat": -34.6082, "lon": -58.3816, "tags": {"shop": "hardware", "name": "Ferretería Cerca"}},
    {"type": "way", "id": 3, "center": {"lat": -34.6150, "lon": -58.3816}, "tags": {"shop": "electrical", "name": "Electricidad Media"}},
    {"type": "way", "id": 4, "tags": {"shop": "hardware"}}
  ]
}`

func newOverpassStub(t *testing.T, calls *int32, body string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)

		raw, _ := io.ReadAll(r.Body)
		form, err := url.ParseQuery(string(raw))
		assert.NoError(t, err)
		assert.Contains(t, form.Get("data"), "out center tags;")

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestNearbyRanksAndLabels(t *testing.T) {
	var calls int32
	srv := newOverpassStub(t, &calls, overpassFixture, http.StatusOK)
	defer srv.Close()

	svc := NewService(Config{OverpassURL: srv.URL})
	got, err := svc.Nearby(context.Background(), Query{Lat: -34.6037, Lng: -58.3816})
	require.NoError(t, err)

	require.Equal(t, 4, got.Count)
	names := []string{got.Results[0].Name, got.Results[1].Name, got.Results[2].Name, got.Results[3].Name}
	assert.Equal(t, []string{"Ferretería Cerca", "Electricidad Media", "Pinturería Lejana", "Comercio"}, names)
	assert.Equal(t, "electricidad", got.Results[1].Category)
	assert.Nil(t, got.Results[3].DistanceKm)

	// second identical query is served from cache
	_, err = svc.Nearby(context.Background(), Query{Lat: -34.6037, Lng: -58.3816})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNearbyEmptyIsNotAnError(t *testing.T) {
	var calls int32
	srv := newOverpassStub(t, &calls, `{"elements": []}`, http.StatusOK)
	defer srv.Close()

	svc := NewService(Config{OverpassURL: srv.URL})
	got, err := svc.Nearby(context.Background(), Query{Lat: 1, Lng: 1, Types: []string{"pintureria"}})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Count)
	assert.NotNil(t, got.Results)
}

func TestNearbyUpstreamStatus(t *testing.T) {
	var calls int32
	srv := newOverpassStub(t, &calls, "too busy", http.StatusTooManyRequests)
	defer srv.Close()

	svc := NewService(Config{OverpassURL: srv.URL})
	_, err := svc.Nearby(context.Background(), Query{Lat: 1, Lng: 1})

	var statusErr *UpstreamStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Status)
	assert.Equal(t, "too busy", statusErr.Body)
}

func TestNearbyRejectsInvalidCoordinate(t *testing.T) {
	svc := NewService(Config{OverpassURL: "http://127.0.0.1:0"})
	_, err := svc.Nearby(context.Background(), Query{Lat: math.NaN(), Lng: 1})
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}

func TestReverse(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "14", r.URL.Query().Get("zoom"))
		_, _ = w.Write([]byte(`{"display_name": "Palermo, Buenos Aires, Argentina", "address": {"suburb": "Palermo"}}`))
	}))
	defer srv.Close()

	svc := NewService(Config{NominatimURL: srv.URL, UserAgent: "test-agent/1.0"})
	loc, err := svc.Reverse(context.Background(), -34.58, -58.42)
	require.NoError(t, err)

	assert.Equal(t, "Palermo", loc.City)
	assert.Equal(t, "Palermo, Buenos Aires, Argentina", loc.Display)
	assert.Equal(t, "test-agent/1.0", gotUA)
}

func TestToLocationFallbacks(t *testing.T) {
	assert.Equal(t, Location{City: "Rosario", Display: "Rosario"}, toLocation(nominatimResponse{Address: map[string]string{"city": "Rosario", "suburb": "Centro"}}))
	assert.Equal(t, Location{Display: "Ubicación"}, toLocation(nominatimResponse{}))
}

func TestBuildOverpassQuery(t *testing.T) {
	q := BuildOverpassQuery(Query{Lat: -34.6, Lng: -58.4, Types: []string{"Pintureria", "bogus"}, Radius: 50000})

	assert.True(t, strings.HasPrefix(q, "[out:json][timeout:25];"))
	assert.Contains(t, q, `node["shop"="paint"](around:10000,-34.6,-58.4);`)
	assert.Contains(t, q, `way["shop"="paint"](around:10000,-34.6,-58.4);`)
	assert.NotContains(t, q, "hardware")
	assert.True(t, strings.HasSuffix(q, "out center tags;"))
}

func TestQueryNormalizeDefaults(t *testing.T) {
	q := Query{Types: []string{"unknown"}}.Normalize()
	assert.Equal(t, DefaultRadius, q.Radius)
	assert.Equal(t, AllCategories(), q.Types)

	all := BuildOverpassQuery(Query{})
	assert.Contains(t, all, `["shop"="hardware"]`)
	assert.Contains(t, all, `["trade"~"building_materials|construction",i]`)
	assert.Contains(t, all, `["shop"="electrical"]`)
}
