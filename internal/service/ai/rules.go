package ai

import (
	"context"
	"strings"

	"github.com/lumen-creative/leadchat/internal/model/chat"
)

// rulesEntry is one row of the deterministic answer table.
type rulesEntry struct {
	keywords []string
	reply    string
}

// rulesTable is scanned in order; the first keyword hit answers. It serves
// when no model collaborator is configured.
var rulesTable = []rulesEntry{
	{
		keywords: []string{"pricing", "price", "cost", "how much", "quote", "rates"},
		reply: "Our websites typically start around $3,500 and branding projects around $2,000 — " +
			"the exact number depends on scope. Tell me a bit about your project, or book a free " +
			"consultation and we'll put together a detailed quote.",
	},
	{
		keywords: []string{"consultation", "call", "meeting", "schedule", "appointment", "demo"},
		reply: "Happy to set that up. Our discovery calls are free, take about 30 minutes, and " +
			"you'll leave with a rough plan either way. What times usually work for you?",
	},
	{
		keywords: []string{"website", "web design", "landing page", "redesign", "ecommerce", "e-commerce"},
		reply: "We design and build custom websites — marketing sites, online stores and product " +
			"pages — with a focus on fast load times and conversion. Do you have an existing site, " +
			"or would this be from scratch?",
	},
	{
		keywords: []string{"seo", "search engine", "ranking", "organic traffic"},
		reply: "Our SEO work covers technical audits, on-page fixes and content strategy, with a " +
			"monthly report on rankings and traffic. Want us to take a look at your current site first?",
	},
	{
		keywords: []string{"chatbot", "automation", "ai", "artificial intelligence", "machine learning"},
		reply: "We integrate AI where it actually earns its keep: support chatbots, content " +
			"workflows and lead handling. What part of your business are you hoping to automate?",
	},
	{
		keywords: []string{"help", "support", "issue", "problem", "broken", "not working"},
		reply: "Sorry to hear that — our support team can help. Describe what's going on and I'll " +
			"pass it along, or email us and we'll pick it up right away.",
	},
}

const rulesDefaultReply = "Thanks for reaching out! We're a digital studio covering web design, " +
	"branding, SEO and AI integration. What are you working on?"

// RulesGenerator answers from the fixed topic table. It never fails, uses no
// tokens and reports a deterministic model name.
type RulesGenerator struct{}

// NewRulesGenerator returns the rules-table generator.
func NewRulesGenerator() *RulesGenerator {
	return &RulesGenerator{}
}

// Generate scans the table against the latest message; history and context
// are not consulted, which keeps the table trivially auditable.
func (g *RulesGenerator) Generate(_ context.Context, _ []chat.Message, userMessage string, _ string) (Result, error) {
	lower := strings.ToLower(userMessage)
	for _, entry := range rulesTable {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return Result{Text: entry.reply, ModelUsed: "rules-table"}, nil
			}
		}
	}
	return Result{Text: rulesDefaultReply, ModelUsed: "rules-table"}, nil
}
