package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type fixedCount int

func (c fixedCount) Count() int { return int(c) }

func TestHealth(t *testing.T) {
	h := New(fixedCount(3))
	h.now = func() time.Time { return time.UnixMilli(1_700_000_000_123) }

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		OK       bool  `json:"ok"`
		TS       int64 `json:"ts"`
		Sessions int   `json:"sessions"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.OK || body.TS != 1_700_000_000_123 || body.Sessions != 3 {
		t.Fatalf("unexpected body %+v", body)
	}
}
