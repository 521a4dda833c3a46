package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/asistente-hogar/backend/internal/model/chat"
)

// ChainModel runs the conversation through an eino chain: a chat template
// that prepends the system instruction, followed by any eino chat model.
type ChainModel struct {
	chatModel model.BaseChatModel
	system    string
	chain     compose.Runnable[map[string]any, *schema.Message]
	logger    *slog.Logger
}

// NewChainModel compiles the prompt chain around chatModel.
func NewChainModel(ctx context.Context, chatModel model.BaseChatModel, systemInstruction string, logger *slog.Logger) (*ChainModel, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", false),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ChainModel{
		chatModel: chatModel,
		system:    systemInstruction,
		chain:     runnable,
		logger:    logger,
	}, nil
}

// Generate implements Model.
func (c *ChainModel) Generate(ctx context.Context, history []chat.Turn, turn chat.Turn) (string, error) {
	messages := make([]*schema.Message, 0, len(history)+1)
	for _, t := range history {
		if msg := toSchemaMessage(t); msg != nil {
			messages = append(messages, msg)
		}
	}
	current := toSchemaMessage(turn)
	if current == nil {
		return "", &UpstreamError{Kind: KindOther, Detail: "empty turn"}
	}
	messages = append(messages, current)

	response, err := c.chain.Invoke(ctx, map[string]any{
		"system":  c.system,
		"history": messages,
	})
	if err != nil {
		return "", Classify(fmt.Errorf("failed to run AI chain: %w", err))
	}
	if response == nil || response.Content == "" {
		return "", &UpstreamError{Kind: KindOther, Detail: "chat model returned empty content"}
	}

	c.logger.Debug("chain generated response", "history", len(history), "length", len(response.Content))
	return response.Content, nil
}

func toSchemaMessage(t chat.Turn) *schema.Message {
	if t.Role == chat.RoleModel {
		text := t.Text()
		if text == "" {
			return nil
		}
		return schema.AssistantMessage(text, nil)
	}

	hasImage := false
	for _, p := range t.Parts {
		if p.IsImage() {
			hasImage = true
			break
		}
	}
	if !hasImage {
		text := t.Text()
		if text == "" {
			return nil
		}
		return schema.UserMessage(text)
	}

	parts := make([]schema.ChatMessagePart, 0, len(t.Parts))
	for _, p := range t.Parts {
		switch {
		case p.IsImage():
			parts = append(parts, schema.ChatMessagePart{
				Type: schema.ChatMessagePartTypeImageURL,
				ImageURL: &schema.ChatMessageImageURL{
					URL:      p.DataURL(),
					MIMEType: p.MIMEType,
				},
			})
		case p.Text != "":
			parts = append(parts, schema.ChatMessagePart{
				Type: schema.ChatMessagePartTypeText,
				Text: p.Text,
			})
		}
	}

	return &schema.Message{Role: schema.User, MultiContent: parts}
}
