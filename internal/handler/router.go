package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/asistente-hogar/backend/internal/handler/chat"
	"github.com/asistente-hogar/backend/internal/handler/health"
	"github.com/asistente-hogar/backend/internal/handler/places"
	middlewarePkg "github.com/asistente-hogar/backend/internal/middleware"
	chatService "github.com/asistente-hogar/backend/internal/service/chat"
	placesService "github.com/asistente-hogar/backend/internal/service/places"
	"github.com/asistente-hogar/backend/internal/service/relay"
)

// MaxBodyBytes bounds JSON bodies; inline images travel as base64.
const MaxBodyBytes = 50 << 20

// Services are the dependencies the HTTP layer exposes.
type Services struct {
	Store  *chatService.Store
	Relay  *relay.Relay
	Places *placesService.Service
	Logger *slog.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(svc Services) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)
	r.Use(middlewarePkg.LimitBody(MaxBodyBytes))

	health.New(svc.Store).RegisterRoutes(r)
	chat.New(svc.Relay, svc.Store).RegisterRoutes(r)
	chat.NewWebSocketHandler(svc.Relay, svc.Logger).RegisterRoutes(r)

	if svc.Places != nil {
		places.New(svc.Places, svc.Logger).RegisterRoutes(r)
	}

	return r
}
