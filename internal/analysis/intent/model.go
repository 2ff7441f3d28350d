package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/lumen-creative/leadchat/internal/model/chat"
)

const classifierSystemPrompt = `You label messages sent to a creative agency's website assistant.
Respond with a single JSON object and nothing else:
{"intent": one of [pricing, consultation, web_design, seo, ai_integration, support, general],
 "confidence": number between 0 and 1,
 "sentiment": one of [positive, neutral, negative]}`

const classifierUserPrompt = `Conversation context: {context}
Message: {message}`

// defaultClassifyTimeout bounds a classification call when no timeout is
// configured.
const defaultClassifyTimeout = 30 * time.Second

// ModelBacked classifies with an LLM and falls back to the rule-based
// classifier on any invoke or parse failure, so the pipeline always gets a
// usable result. Entities always come from the rule extractors; the model is
// only trusted for intent and sentiment.
type ModelBacked struct {
	chain    compose.Runnable[map[string]any, *schema.Message]
	fallback *RuleBased
	timeout  time.Duration
}

// NewModelBacked compiles the classification chain over chatModel. timeout
// bounds each classification call; a slow model degrades to rules like any
// other failure.
func NewModelBacked(ctx context.Context, chatModel model.ChatModel, timeout time.Duration) (*ModelBacked, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(classifierSystemPrompt),
		schema.UserMessage(classifierUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile classifier chain: %w", err)
	}

	if timeout <= 0 {
		timeout = defaultClassifyTimeout
	}

	return &ModelBacked{chain: runnable, fallback: NewRuleBased(), timeout: timeout}, nil
}

// Classify invokes the model chain, parsing its JSON verdict. Any failure
// degrades to the rule-based result.
func (m *ModelBacked) Classify(ctx context.Context, message string, conversationContext string) chat.Classification {
	ruleResult := m.fallback.Classify(ctx, message, conversationContext)

	invokeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	msg, err := m.chain.Invoke(invokeCtx, map[string]any{
		"context": conversationContext,
		"message": message,
	})
	if err != nil {
		slog.Warn("model classifier invoke failed, using rules", "error", err)
		return ruleResult
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return ruleResult
	}

	parsed, err := parseVerdict(msg.Content)
	if err != nil {
		slog.Warn("model classifier output unparsable, using rules", "error", err)
		return ruleResult
	}

	intent, ok := parseIntent(parsed.Intent)
	if !ok {
		return ruleResult
	}

	result := chat.Classification{
		Intent:     intent,
		Confidence: clampConfidence(parsed.Confidence),
		Sentiment:  parseSentiment(parsed.Sentiment),
		Entities:   ruleResult.Entities,
	}
	return result
}

type verdict struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Sentiment  string  `json:"sentiment"`
}

// parseVerdict tolerates the model wrapping its JSON in code fences or prose.
func parseVerdict(content string) (verdict, error) {
	content = strings.TrimSpace(content)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return verdict{}, fmt.Errorf("no JSON object in classifier output")
	}

	var v verdict
	if err := json.Unmarshal([]byte(content[start:end+1]), &v); err != nil {
		return verdict{}, fmt.Errorf("decode classifier output: %w", err)
	}
	return v, nil
}

func parseIntent(raw string) (chat.Intent, bool) {
	switch chat.Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case chat.IntentPricing:
		return chat.IntentPricing, true
	case chat.IntentConsultation:
		return chat.IntentConsultation, true
	case chat.IntentWebDesign:
		return chat.IntentWebDesign, true
	case chat.IntentSEO:
		return chat.IntentSEO, true
	case chat.IntentAIIntegration:
		return chat.IntentAIIntegration, true
	case chat.IntentSupport:
		return chat.IntentSupport, true
	case chat.IntentGeneral:
		return chat.IntentGeneral, true
	default:
		return chat.IntentGeneral, false
	}
}

func parseSentiment(raw string) chat.Sentiment {
	switch chat.Sentiment(strings.ToLower(strings.TrimSpace(raw))) {
	case chat.SentimentPositive:
		return chat.SentimentPositive
	case chat.SentimentNegative:
		return chat.SentimentNegative
	default:
		return chat.SentimentNeutral
	}
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
