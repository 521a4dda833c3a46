package health

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/asistente-hogar/backend/pkg/utils"
)

// SessionCounter reports how many chat sessions are alive.
type SessionCounter interface {
	Count() int
}

// Handler serves the liveness probe.
type Handler struct {
	sessions SessionCounter
	now      func() time.Time
}

// New creates a health handler.
func New(sessions SessionCounter) *Handler {
	return &Handler{sessions: sessions, now: time.Now}
}

// RegisterRoutes registers GET /health on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"ts":       h.now().UnixMilli(),
		"sessions": h.sessions.Count(),
	})
}
