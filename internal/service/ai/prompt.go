package ai

import "github.com/lumen-creative/leadchat/internal/model/chat"

// Conversation contexts the widget can open with. They select the system
// framing, nothing else.
const (
	ContextOnboarding = "onboarding"
	ContextBilling    = "billing"
	ContextTechnical  = "technical"
	ContextGeneral    = "general"
	ContextSales      = "sales"
)

const baseFraming = `You are the website assistant for Lumen Creative, a digital design studio.
You help visitors learn about our web design, branding, SEO and AI integration services.
Keep replies short, warm and concrete. Never discuss internal systems, other clients'
projects, credentials or anything outside the studio's services. If asked for exact
pricing, give the typical starting range and suggest booking a consultation.`

// contextFraming adds a per-context emphasis on top of the base framing.
var contextFraming = map[string]string{
	ContextOnboarding: "The visitor is new. Introduce what the studio does and ask what they are working on.",
	ContextBilling:    "The visitor is asking about invoices or payments. Be precise and offer to connect them with the team for account specifics.",
	ContextTechnical:  "The visitor has a technical question about a project. Answer plainly and avoid jargon.",
	ContextSales:      "The visitor is evaluating the studio. Highlight relevant work and guide them toward a consultation.",
	ContextGeneral:    "",
}

// SystemFraming returns the fixed system prompt for a conversation context.
// Unknown contexts get the base framing alone.
func SystemFraming(conversationContext string) string {
	extra, ok := contextFraming[conversationContext]
	if !ok || extra == "" {
		return baseFraming
	}
	return baseFraming + "\n\n" + extra
}

// ValidContext reports whether the request's context value is recognized.
func ValidContext(conversationContext string) bool {
	if conversationContext == "" {
		return true
	}
	_, ok := contextFraming[conversationContext]
	return ok
}

// suggestionTable maps each intent to its follow-up chips.
var suggestionTable = map[chat.Intent][]string{
	chat.IntentPricing: {
		"What's included in a website package?",
		"Do you offer payment plans?",
		"I'd like a detailed quote",
	},
	chat.IntentConsultation: {
		"Book a discovery call",
		"What should I prepare for the call?",
		"Can you share recent work first?",
	},
	chat.IntentWebDesign: {
		"Show me your portfolio",
		"How long does a website take?",
		"What's your design process?",
	},
	chat.IntentSEO: {
		"How do you report SEO results?",
		"Can you audit my current site?",
		"What does SEO cost monthly?",
	},
	chat.IntentAIIntegration: {
		"What can a chatbot do for my business?",
		"Which AI tools do you work with?",
		"How long does an AI project take?",
	},
	chat.IntentSupport: {
		"Talk to the support team",
		"Check my project status",
		"Report a problem with my site",
	},
	chat.IntentGeneral: {
		"What services do you offer?",
		"Tell me about your pricing",
		"How do I get started?",
	},
}

// SuggestionsFor returns the fixed follow-up suggestions for an intent.
func SuggestionsFor(intent chat.Intent) []string {
	if s, ok := suggestionTable[intent]; ok {
		return append([]string(nil), s...)
	}
	return append([]string(nil), suggestionTable[chat.IntentGeneral]...)
}
