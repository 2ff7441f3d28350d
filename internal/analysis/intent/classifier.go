// Package intent maps free-form visitor text to a closed intent set, a
// three-way sentiment and a handful of extracted entities.
package intent

import (
	"context"
	"regexp"
	"strings"

	"github.com/lumen-creative/leadchat/internal/model/chat"
)

// Classifier is the strategy interface the pipeline depends on. RuleBased is
// the always-available implementation; ModelBacked wraps an LLM and falls
// back to rules when the model misbehaves.
type Classifier interface {
	Classify(ctx context.Context, message string, conversationContext string) chat.Classification
}

// bucket binds an intent to its trigger keywords and fixed confidence.
type bucket struct {
	intent     chat.Intent
	confidence float64
	keywords   []string
}

// buckets are evaluated in this order and the first hit wins. Ties are not
// broken by confidence; the fixed priority keeps behavior deterministic.
var buckets = []bucket{
	{
		intent:     chat.IntentPricing,
		confidence: 0.85,
		keywords: []string{
			"pricing", "price", "cost", "how much", "rate", "rates", "quote",
			"budget", "afford", "expensive", "cheap", "fee", "fees", "payment plan",
		},
	},
	{
		intent:     chat.IntentConsultation,
		confidence: 0.9,
		keywords: []string{
			"consultation", "consult", "meeting", "book a call", "schedule",
			"talk to someone", "speak with", "appointment", "discovery call", "demo",
		},
	},
	{
		intent:     chat.IntentWebDesign,
		confidence: 0.8,
		keywords: []string{
			"website", "web design", "webdesign", "landing page", "redesign",
			"web development", "online store", "ecommerce", "e-commerce", "portfolio site",
		},
	},
	{
		intent:     chat.IntentSEO,
		confidence: 0.8,
		keywords: []string{
			"seo", "search engine", "google ranking", "rank higher", "organic traffic",
			"keywords", "search results", "visibility",
		},
	},
	{
		intent:     chat.IntentAIIntegration,
		confidence: 0.8,
		keywords: []string{
			"chatbot", "automation", "ai integration", "artificial intelligence",
			"machine learning", "automate", "ai tool", "ai solution",
		},
	},
	{
		intent:     chat.IntentSupport,
		confidence: 0.75,
		keywords: []string{
			"help", "support", "issue", "problem", "broken", "not working",
			"bug", "error", "fix",
		},
	},
}

// Disjoint sentiment lexicons; anything else is neutral.
var (
	positiveWords = []string{
		"great", "awesome", "amazing", "love", "excellent", "perfect", "thanks",
		"thank you", "good", "nice", "excited", "interested", "wonderful", "fantastic",
	}
	negativeWords = []string{
		"bad", "terrible", "awful", "hate", "disappointed", "frustrating",
		"frustrated", "angry", "worst", "useless", "annoyed", "unhappy", "poor",
	}
)

// RuleBased is the deterministic keyword classifier.
type RuleBased struct{}

// NewRuleBased returns the rule-based classifier.
func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

// Classify runs keyword containment over the fixed buckets, the sentiment
// lexicons and the entity extractors. The conversation context is unused by
// the rule strategy; it exists for the model-backed implementation.
func (r *RuleBased) Classify(_ context.Context, message string, _ string) chat.Classification {
	normalized := strings.ToLower(strings.TrimSpace(message))

	result := chat.Classification{
		Intent:     chat.IntentGeneral,
		Confidence: 0.5,
		Sentiment:  chat.SentimentNeutral,
		Entities:   ExtractEntities(message),
	}

	for _, b := range buckets {
		if containsAny(normalized, b.keywords) {
			result.Intent = b.intent
			result.Confidence = b.confidence
			break
		}
	}

	switch {
	case containsAny(normalized, positiveWords):
		result.Sentiment = chat.SentimentPositive
	case containsAny(normalized, negativeWords):
		result.Sentiment = chat.SentimentNegative
	}

	return result
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Entity extraction patterns. Lightweight on purpose: recall over precision,
// since the lead merge is fill-if-absent and a later turn can add the rest.
var (
	budgetRe   = regexp.MustCompile(`(?i)[$€£]\s?\d+(?:,\d{3})*(?:\.\d+)?\s?[kK]?|\b\d+(?:,\d{3})*\s?(?:dollars|usd|eur|euros|pounds)\b`)
	companyRe  = regexp.MustCompile(`(?i)(?:my|our)\s+(?:company|business|agency|startup|brand)\s+(?:is\s+called|is|called|name\s+is)\s+([A-Za-z][A-Za-z0-9&.\- ]{1,40})`)
	emailRe    = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe    = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)
	timelineRe = regexp.MustCompile(`(?i)\basap\b|\burgent(?:ly)?\b|\bright away\b|(?:with)?in\s+\d+\s+(?:days?|weeks?|months?)|next\s+(?:week|month|quarter|year)|\bq[1-4]\b|by\s+(?:january|february|march|april|may|june|july|august|september|october|november|december)`)
)

// ExtractEntities pulls budget, company, email, phone and timeline mentions
// out of the raw message text.
func ExtractEntities(message string) map[string]string {
	entities := make(map[string]string)

	if m := budgetRe.FindString(message); m != "" {
		entities[chat.EntityBudget] = strings.TrimSpace(m)
	}
	if m := companyRe.FindStringSubmatch(message); len(m) > 1 {
		entities[chat.EntityCompany] = strings.TrimSpace(m[1])
	}
	if m := emailRe.FindString(message); m != "" {
		entities[chat.EntityEmail] = m
	}
	if m := phoneRe.FindString(message); m != "" {
		entities[chat.EntityPhone] = strings.TrimSpace(m)
	}
	if m := timelineRe.FindString(message); m != "" {
		entities[chat.EntityTimeline] = strings.TrimSpace(m)
	}

	if len(entities) == 0 {
		return nil
	}
	return entities
}
