package ai

import (
	"context"

	"github.com/asistente-hogar/backend/internal/model/chat"
)

// Model is the upstream generative chat API. Implementations receive the
// prior history plus the new user turn and return the reply text. Failures
// are always *UpstreamError.
type Model interface {
	Generate(ctx context.Context, history []chat.Turn, turn chat.Turn) (string, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, history []chat.Turn, turn chat.Turn) (string, error)

func (f ModelFunc) Generate(ctx context.Context, history []chat.Turn, turn chat.Turn) (string, error) {
	return f(ctx, history, turn)
}
