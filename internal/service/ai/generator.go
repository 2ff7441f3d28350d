// Package ai produces assistant replies, either through an eino model chain
// or a deterministic rules table. Both honor the same contract so the output
// validator never knows which one spoke.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/lumen-creative/leadchat/internal/model/chat"
)

// modelWindow trims the history handed to the model to the most recent turns.
const modelWindow = 6

// Result is the generation contract shared by every generator.
type Result struct {
	Text         string
	ModelUsed    string
	TokensUsed   int
	CostEstimate float64
}

// Generator turns a conversation plus the latest visitor message into a
// reply. Failure here is recoverable; the pipeline substitutes the fixed
// fallback reply.
type Generator interface {
	Generate(ctx context.Context, history []chat.Message, userMessage string, conversationContext string) (Result, error)
}

// defaultInvokeTimeout bounds a model call when no timeout is configured.
const defaultInvokeTimeout = 30 * time.Second

// ModelGenerator delegates to the configured chat model through a compiled
// prompt chain.
type ModelGenerator struct {
	chain        compose.Runnable[map[string]any, *schema.Message]
	modelName    string
	costPerToken float64
	timeout      time.Duration
}

// NewModelGenerator compiles the reply chain over chatModel. costPer1K is the
// estimate applied to total token usage; timeout bounds every model call.
func NewModelGenerator(ctx context.Context, chatModel model.ChatModel, modelName string, costPer1K float64, timeout time.Duration) (*ModelGenerator, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile reply chain: %w", err)
	}

	if timeout <= 0 {
		timeout = defaultInvokeTimeout
	}

	return &ModelGenerator{
		chain:        runnable,
		modelName:    modelName,
		costPerToken: costPer1K / 1000,
		timeout:      timeout,
	}, nil
}

// Generate invokes the model with the context framing, a trimmed history
// window and the latest message.
func (g *ModelGenerator) Generate(ctx context.Context, history []chat.Message, userMessage string, conversationContext string) (Result, error) {
	input := map[string]any{
		"system":  SystemFraming(conversationContext),
		"history": buildHistoryMessages(history),
		"query":   userMessage,
	}

	// The request context carries no deadline of its own; a hung upstream
	// must surface as a normal generation failure.
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	response, err := g.chain.Invoke(ctx, input)
	if err != nil {
		return Result{}, fmt.Errorf("failed to run reply chain: %w", err)
	}
	if response == nil || response.Content == "" {
		return Result{}, fmt.Errorf("model returned an empty reply")
	}

	result := Result{
		Text:      response.Content,
		ModelUsed: g.modelName,
	}
	if response.ResponseMeta != nil && response.ResponseMeta.Usage != nil {
		result.TokensUsed = response.ResponseMeta.Usage.TotalTokens
		result.CostEstimate = float64(result.TokensUsed) * g.costPerToken
	}

	slog.Debug("generated model reply", "model", g.modelName, "tokens", result.TokensUsed, "length", len(result.Text))
	return result, nil
}

// buildHistoryMessages converts stored turns into schema messages, keeping
// the last modelWindow entries.
func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > modelWindow {
		startIdx = len(messages) - modelWindow
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}
