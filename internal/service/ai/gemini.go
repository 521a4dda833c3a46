package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/asistente-hogar/backend/internal/model/chat"
)

// contentGenerator is the slice of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig configures the Gemini API backed model.
type GeminiConfig struct {
	APIKey            string
	Model             string
	SystemInstruction string
	Temperature       *float32
	TopP              *float32
	MaxOutputTokens   int32
}

// GeminiModel implements Model on top of the Gemini API.
type GeminiModel struct {
	models contentGenerator
	cfg    GeminiConfig
}

// NewGeminiModel creates a Gemini API client authenticated with an API key.
func NewGeminiModel(ctx context.Context, cfg GeminiConfig) (*GeminiModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiModel{models: client.Models, cfg: cfg}, nil
}

// Generate implements Model.
func (g *GeminiModel) Generate(ctx context.Context, history []chat.Turn, turn chat.Turn) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, t := range history {
		if c := toGenaiContent(t); c != nil {
			contents = append(contents, c)
		}
	}
	current := toGenaiContent(turn)
	if current == nil {
		return "", &UpstreamError{Kind: KindOther, Detail: "empty turn"}
	}
	contents = append(contents, current)

	cfg := &genai.GenerateContentConfig{
		Temperature: g.cfg.Temperature,
		TopP:        g.cfg.TopP,
	}
	if g.cfg.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(g.cfg.SystemInstruction, genai.RoleUser)
	}
	if g.cfg.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = g.cfg.MaxOutputTokens
	}

	res, err := g.models.GenerateContent(ctx, g.cfg.Model, contents, cfg)
	if err != nil {
		return "", Classify(fmt.Errorf("gemini generate content: %w", err))
	}

	text := res.Text()
	if text == "" {
		return "", &UpstreamError{Kind: KindOther, Detail: "gemini returned empty text"}
	}
	return text, nil
}

func toGenaiContent(t chat.Turn) *genai.Content {
	parts := make([]*genai.Part, 0, len(t.Parts))
	for _, p := range t.Parts {
		switch {
		case p.IsImage():
			parts = append(parts, genai.NewPartFromBytes(p.Data, p.MIMEType))
		case p.Text != "":
			parts = append(parts, genai.NewPartFromText(p.Text))
		}
	}
	if len(parts) == 0 {
		return nil
	}

	role := genai.Role(genai.RoleUser)
	if t.Role == chat.RoleModel {
		role = genai.RoleModel
	}
	return genai.NewContentFromParts(parts, role)
}
