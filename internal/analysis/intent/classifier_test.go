package intent

import (
	"context"
	"testing"

	"github.com/lumen-creative/leadchat/internal/model/chat"
)

func TestClassifyPricing(t *testing.T) {
	cls := NewRuleBased().Classify(context.Background(), "What's your pricing?", "")

	if cls.Intent != chat.IntentPricing {
		t.Fatalf("expected pricing intent, got %s", cls.Intent)
	}
	if cls.Confidence != 0.85 {
		t.Fatalf("unexpected confidence %v", cls.Confidence)
	}
}

func TestClassifyBuckets(t *testing.T) {
	cases := []struct {
		message string
		want    chat.Intent
	}{
		{"I'd like to book a call with your team", chat.IntentConsultation},
		{"we need a landing page for our launch", chat.IntentWebDesign},
		{"my organic traffic dropped last month", chat.IntentSEO},
		{"can you build a chatbot for us", chat.IntentAIIntegration},
		{"my site is broken", chat.IntentSupport},
		{"hello there", chat.IntentGeneral},
	}

	r := NewRuleBased()
	for _, tc := range cases {
		got := r.Classify(context.Background(), tc.message, "")
		if got.Intent != tc.want {
			t.Fatalf("message %q: expected %s, got %s", tc.message, tc.want, got.Intent)
		}
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// Mentions both pricing and web design; pricing wins by fixed priority,
	// not by confidence.
	cls := NewRuleBased().Classify(context.Background(), "how much does a website cost?", "")

	if cls.Intent != chat.IntentPricing {
		t.Fatalf("expected pricing to win the tie, got %s", cls.Intent)
	}
}

func TestClassifySentiment(t *testing.T) {
	r := NewRuleBased()

	cases := []struct {
		message string
		want    chat.Sentiment
	}{
		{"your work looks amazing, love it", chat.SentimentPositive},
		{"this is terrible, I'm so disappointed", chat.SentimentNegative},
		{"do you build mobile sites?", chat.SentimentNeutral},
	}

	for _, tc := range cases {
		got := r.Classify(context.Background(), tc.message, "")
		if got.Sentiment != tc.want {
			t.Fatalf("message %q: expected %s, got %s", tc.message, tc.want, got.Sentiment)
		}
	}
}

func TestExtractEntities(t *testing.T) {
	msg := "My company is called Brightleaf Goods, budget around $12,000, " +
		"need it within 3 months. Reach me at ana@brightleaf.com or +1 (555) 010-2030."
	entities := ExtractEntities(msg)

	if entities[chat.EntityCompany] == "" {
		t.Fatalf("expected company entity, got %v", entities)
	}
	if entities[chat.EntityBudget] != "$12,000" {
		t.Fatalf("unexpected budget entity %q", entities[chat.EntityBudget])
	}
	if entities[chat.EntityEmail] != "ana@brightleaf.com" {
		t.Fatalf("unexpected email entity %q", entities[chat.EntityEmail])
	}
	if entities[chat.EntityPhone] == "" {
		t.Fatalf("expected phone entity, got %v", entities)
	}
	if entities[chat.EntityTimeline] == "" {
		t.Fatalf("expected timeline entity, got %v", entities)
	}
}

func TestExtractEntitiesEmpty(t *testing.T) {
	if got := ExtractEntities("just saying hi"); got != nil {
		t.Fatalf("expected nil for no entities, got %v", got)
	}
}

func TestClassifyOnFilteredText(t *testing.T) {
	// Classification proceeds on sanitized text containing the marker.
	cls := NewRuleBased().Classify(context.Background(), "[FILTERED] also what is your pricing", "")

	if cls.Intent != chat.IntentPricing {
		t.Fatalf("expected pricing on filtered text, got %s", cls.Intent)
	}
}
