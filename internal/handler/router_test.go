package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/asistente-hogar/backend/internal/model/chat"
	"github.com/asistente-hogar/backend/internal/service/ai"
	chatService "github.com/asistente-hogar/backend/internal/service/chat"
	placesService "github.com/asistente-hogar/backend/internal/service/places"
	"github.com/asistente-hogar/backend/internal/service/ratelimit"
	"github.com/asistente-hogar/backend/internal/service/relay"
)

func newTestRouter() http.Handler {
	store := chatService.NewStore()
	model := ai.ModelFunc(func(context.Context, []chat.Turn, chat.Turn) (string, error) {
		return "ok", nil
	})
	return NewRouter(Services{
		Store:  store,
		Relay:  relay.New(store, ratelimit.New(ratelimit.Config{}), model, nil),
		Places: placesService.NewService(placesService.Config{}),
	})
}

func TestRouterServesRoutes(t *testing.T) {
	r := newTestRouter()

	cases := []struct {
		method, path, body string
		status             int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/start-session", "", http.StatusOK},
		{http.MethodPost, "/chat", `{"message":"hola"}`, http.StatusOK},
		{http.MethodGet, "/places?lat=x", "", http.StatusBadRequest},
		{http.MethodOptions, "/chat", "", http.StatusNoContent},
		{http.MethodGet, "/unknown", "", http.StatusNotFound},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		req.Header.Set("Origin", "http://localhost:5173")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		if resp.Code != tc.status {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.status, resp.Code)
		}
		if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Fatalf("%s %s: missing CORS header, got %q", tc.method, tc.path, got)
		}
	}
}

func TestRouterRejectsOversizedBody(t *testing.T) {
	r := newTestRouter()

	body := `{"message":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
