package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

const DefaultNominatimURL = "https://nominatim.openstreetmap.org/reverse"

// Location is a readable description of a coordinate.
type Location struct {
	City    string `json:"city"`
	Display string `json:"display"`
}

type nominatimResponse struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

type nominatimClient struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
}

func (c *nominatimClient) reverse(ctx context.Context, lat, lng float64) (Location, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return Location{}, fmt.Errorf("parse nominatim url: %w", err)
	}
	params := u.Query()
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("format", "jsonv2")
	params.Set("zoom", "14")
	params.Set("addressdetails", "1")
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Location{}, fmt.Errorf("build nominatim request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Location{}, &UpstreamStatusError{Service: "nominatim", Status: resp.StatusCode, Body: string(body)}
	}

	var payload nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Location{}, fmt.Errorf("decode nominatim response: %w", err)
	}
	return toLocation(payload), nil
}

func toLocation(payload nominatimResponse) Location {
	var city string
	for _, key := range []string{"city", "town", "village", "suburb", "neighbourhood"} {
		if v := payload.Address[key]; v != "" {
			city = v
			break
		}
	}

	display := payload.DisplayName
	if display == "" {
		display = city
	}
	if display == "" {
		display = "Ubicación"
	}
	return Location{City: city, Display: display}
}
