// Package relay runs one conversational turn: it resolves the session,
// validates the content, applies the per-session rate limit, calls the model
// and records the exchange only when the model answered.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/asistente-hogar/backend/internal/analysis/trade"
	"github.com/asistente-hogar/backend/internal/model/chat"
	"github.com/asistente-hogar/backend/internal/service/ai"
	chatService "github.com/asistente-hogar/backend/internal/service/chat"
	"github.com/asistente-hogar/backend/internal/service/ratelimit"
)

const logMessageLimit = 160

// Request is one inbound chat turn. ImageData is an optional data URL.
type Request struct {
	SessionID string
	Message   string
	ImageData string
}

// Result is the successful outcome of a turn.
type Result struct {
	Reply           string
	SessionID       string
	SuggestedPlaces []string
}

// Relay coordinates the store, the limiter and the upstream model.
type Relay struct {
	store   *chatService.Store
	limiter *ratelimit.Limiter
	model   ai.Model
	logger  *slog.Logger
}

// New builds a Relay. model may be nil, in which case every turn fails with
// ErrModelUnavailable.
func New(store *chatService.Store, limiter *ratelimit.Limiter, model ai.Model, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		store:   store,
		limiter: limiter,
		model:   model,
		logger:  logger,
	}
}

// Available reports whether an upstream model is configured.
func (r *Relay) Available() bool {
	return r.model != nil
}

// Chat runs a single turn for req.
func (r *Relay) Chat(ctx context.Context, req Request) (Result, error) {
	if r.model == nil {
		return Result{}, ErrModelUnavailable
	}

	turn, err := buildUserTurn(req)
	if err != nil {
		return Result{}, err
	}

	sessionID, created := r.store.Resolve(ctx, req.SessionID)
	if created {
		r.logger.Info("session created", "session_id", sessionID, "requested", req.SessionID)
	}

	if decision := r.limiter.CheckAndConsume(sessionID); !decision.Allowed {
		r.logger.Warn("session throttled", "session_id", sessionID, "retry_after", decision.RetryAfter)
		return Result{}, &ThrottledError{SessionID: sessionID, RetryAfter: decision.RetryAfter}
	}

	history, err := r.store.GetHistory(ctx, sessionID)
	if err != nil {
		return Result{}, fmt.Errorf("load history: %w", err)
	}

	reply, err := r.model.Generate(ctx, history, turn)
	if err != nil {
		return Result{}, r.failure(sessionID, req.Message, err)
	}

	if err := r.store.AppendExchange(ctx, sessionID, turn, chat.ModelTurn(reply)); err != nil {
		return Result{}, fmt.Errorf("record exchange: %w", err)
	}

	return Result{
		Reply:           reply,
		SessionID:       sessionID,
		SuggestedPlaces: trade.Detect(req.Message),
	}, nil
}

// History returns the recorded turns of a session.
func (r *Relay) History(ctx context.Context, sessionID string) ([]chat.Turn, error) {
	return r.store.GetHistory(ctx, sessionID)
}

func (r *Relay) failure(sessionID, message string, err error) error {
	classified := ai.Classify(err)
	r.logger.Error("upstream call failed",
		"session_id", sessionID,
		"message", truncate(message, logMessageLimit),
		"kind", string(classified.Kind),
		"error", classified.Detail,
	)

	if classified.RateLimited() {
		return &ThrottledError{
			SessionID:  sessionID,
			RetryAfter: classified.RetryAfter,
			Exhausted:  classified.Kind == ai.KindQuotaExhausted,
		}
	}
	return &UpstreamFailure{SessionID: sessionID, Err: classified}
}

// buildUserTurn orders the parts text first, image second.
func buildUserTurn(req Request) (chat.Turn, error) {
	parts := make([]chat.Part, 0, 2)
	if text := strings.TrimSpace(req.Message); text != "" {
		parts = append(parts, chat.TextPart(text))
	}
	if strings.TrimSpace(req.ImageData) != "" {
		image, err := chat.ParseDataURL(req.ImageData)
		if err != nil {
			return chat.Turn{}, err
		}
		parts = append(parts, image)
	}
	if len(parts) == 0 {
		return chat.Turn{}, ErrEmptyInput
	}
	return chat.UserTurn(parts...), nil
}

// IsInputError reports whether err was caused by the request content.
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyInput) || errors.Is(err, chat.ErrInvalidImage)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "…"
}
