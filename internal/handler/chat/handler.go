package chat

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/asistente-hogar/backend/internal/model/chat"
	chatService "github.com/asistente-hogar/backend/internal/service/chat"
	"github.com/asistente-hogar/backend/internal/service/relay"
	"github.com/asistente-hogar/backend/pkg/utils"
)

// User facing replies, in the assistant's language.
const (
	msgEmptyInput   = "Enviá un mensaje o una imagen para empezar."
	msgInvalidBody  = "No pude leer tu mensaje."
	msgInvalidImage = "No pude leer la imagen adjunta."
	msgThrottled    = "Muchas solicitudes seguidas. Probá de nuevo en unos segundos."
	msgExhausted    = "Límite diario gratuito alcanzado."
	msgFailure      = "Lo siento, hubo un problema al procesar tu solicitud."
	msgUnavailable  = "El asistente no está disponible en este momento."
)

// Handler serves the session and chat endpoints.
type Handler struct {
	relay *relay.Relay
	store *chatService.Store
}

// New creates a chat handler.
func New(r *relay.Relay, store *chatService.Store) *Handler {
	return &Handler{relay: r, store: store}
}

// RegisterRoutes registers the chat routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/start-session", h.handleStartSession)
	r.Post("/start-session", h.handleStartSession)
	r.Post("/chat", h.handleChat)
	r.Get("/sessions/{sessionID}/history", h.handleHistory)
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	ImageData string `json:"imageData"`
}

type chatResponse struct {
	Response        string   `json:"response"`
	SessionID       string   `json:"sessionId,omitempty"`
	SuggestedPlaces []string `json:"suggestedPlaces,omitempty"`
	RetryAfter      *int     `json:"retryAfter,omitempty"`
	Exhausted       *bool    `json:"exhausted,omitempty"`
}

func (h *Handler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	session := h.store.CreateSession(r.Context())
	utils.RespondJSON(w, http.StatusOK, map[string]string{"sessionId": session.ID})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, chatResponse{Response: msgInvalidBody})
		return
	}

	result, err := h.relay.Chat(r.Context(), relay.Request{
		SessionID: payload.SessionID,
		Message:   payload.Message,
		ImageData: payload.ImageData,
	})
	if err != nil {
		status, body := chatErrorResponse(err)
		if body.RetryAfter != nil {
			w.Header().Set("Retry-After", strconv.Itoa(*body.RetryAfter))
		}
		utils.RespondJSON(w, status, body)
		return
	}

	utils.RespondJSON(w, http.StatusOK, chatResponse{
		Response:        result.Reply,
		SessionID:       result.SessionID,
		SuggestedPlaces: result.SuggestedPlaces,
	})
}

// chatErrorResponse maps a relay error to its HTTP status and body.
func chatErrorResponse(err error) (int, chatResponse) {
	var (
		throttled *relay.ThrottledError
		failure   *relay.UpstreamFailure
	)

	switch {
	case errors.Is(err, relay.ErrModelUnavailable):
		return http.StatusServiceUnavailable, chatResponse{Response: msgUnavailable}
	case errors.Is(err, chat.ErrInvalidImage):
		return http.StatusBadRequest, chatResponse{Response: msgInvalidImage}
	case errors.Is(err, relay.ErrEmptyInput):
		return http.StatusBadRequest, chatResponse{Response: msgEmptyInput}
	case errors.As(err, &throttled):
		retry := throttled.RetryAfterSeconds()
		exhausted := throttled.Exhausted
		msg := msgThrottled
		if exhausted {
			msg = msgExhausted
		}
		return http.StatusTooManyRequests, chatResponse{
			Response:   msg,
			SessionID:  throttled.SessionID,
			RetryAfter: &retry,
			Exhausted:  &exhausted,
		}
	case errors.As(err, &failure):
		return http.StatusInternalServerError, chatResponse{Response: msgFailure, SessionID: failure.SessionID}
	default:
		return http.StatusInternalServerError, chatResponse{Response: msgFailure}
	}
}

type historyPart struct {
	Text     string `json:"text,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
	Bytes    int    `json:"bytes,omitempty"`
}

type historyTurn struct {
	Role  chat.Role     `json:"role"`
	Parts []historyPart `json:"parts"`
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	turns, err := h.relay.History(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, chatService.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]historyTurn, 0, len(turns))
	for _, t := range turns {
		parts := make([]historyPart, 0, len(t.Parts))
		for _, p := range t.Parts {
			parts = append(parts, historyPart{Text: p.Text, MIMEType: p.MIMEType, Bytes: len(p.Data)})
		}
		out = append(out, historyTurn{Role: t.Role, Parts: parts})
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId": sessionID,
		"turns":     out,
	})
}
