package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/lumen-creative/leadchat/internal/model/chat"
)

func TestRulesGeneratorTopicReply(t *testing.T) {
	g := NewRulesGenerator()

	res, err := g.Generate(context.Background(), nil, "How much does a website cost?", ContextGeneral)
	if err != nil {
		t.Fatalf("rules generator must not fail: %v", err)
	}
	if !strings.Contains(res.Text, "$3,500") {
		t.Fatalf("expected pricing reply, got %q", res.Text)
	}
	if res.ModelUsed != "rules-table" {
		t.Fatalf("unexpected model name %q", res.ModelUsed)
	}
	if res.TokensUsed != 0 || res.CostEstimate != 0 {
		t.Fatalf("rules replies must report zero usage: %+v", res)
	}
}

func TestRulesGeneratorDefaultReply(t *testing.T) {
	g := NewRulesGenerator()

	res, err := g.Generate(context.Background(), nil, "good morning", ContextGeneral)
	if err != nil {
		t.Fatalf("rules generator must not fail: %v", err)
	}
	if res.Text != rulesDefaultReply {
		t.Fatalf("expected default reply, got %q", res.Text)
	}
}

func TestRulesGeneratorCaseInsensitive(t *testing.T) {
	g := NewRulesGenerator()

	res, err := g.Generate(context.Background(), nil, "DO YOU BUILD CHATBOTS?", ContextGeneral)
	if err != nil {
		t.Fatalf("rules generator must not fail: %v", err)
	}
	if !strings.Contains(strings.ToLower(res.Text), "chatbot") {
		t.Fatalf("expected automation reply, got %q", res.Text)
	}
}

func TestSystemFraming(t *testing.T) {
	base := SystemFraming(ContextGeneral)
	if base != baseFraming {
		t.Fatalf("general context should use the base framing alone")
	}

	sales := SystemFraming(ContextSales)
	if !strings.HasPrefix(sales, baseFraming) || !strings.Contains(sales, "consultation") {
		t.Fatalf("sales framing missing emphasis: %q", sales)
	}

	if SystemFraming("made-up") != baseFraming {
		t.Fatalf("unknown context should fall back to the base framing")
	}
}

func TestValidContext(t *testing.T) {
	for _, c := range []string{"", ContextOnboarding, ContextBilling, ContextTechnical, ContextGeneral, ContextSales} {
		if !ValidContext(c) {
			t.Fatalf("context %q should be valid", c)
		}
	}
	if ValidContext("made-up") {
		t.Fatal("unknown context accepted")
	}
}

func TestSuggestionsForReturnsCopy(t *testing.T) {
	first := SuggestionsFor(chat.IntentPricing)
	if len(first) != 3 {
		t.Fatalf("expected 3 pricing suggestions, got %d", len(first))
	}

	first[0] = "mutated"
	second := SuggestionsFor(chat.IntentPricing)
	if second[0] == "mutated" {
		t.Fatal("SuggestionsFor leaked its backing array")
	}
}

func TestSuggestionsForUnknownIntent(t *testing.T) {
	got := SuggestionsFor(chat.Intent("mystery"))
	want := SuggestionsFor(chat.IntentGeneral)
	if len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("unknown intent should get general suggestions, got %v", got)
	}
}
