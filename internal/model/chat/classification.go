package chat

// Intent is the closed set of conversation intents the pipeline recognizes.
type Intent string

const (
	IntentPricing       Intent = "pricing"
	IntentConsultation  Intent = "consultation"
	IntentWebDesign     Intent = "web_design"
	IntentSEO           Intent = "seo"
	IntentAIIntegration Intent = "ai_integration"
	IntentSupport       Intent = "support"
	IntentGeneral       Intent = "general"
)

// Sentiment is the three-way sentiment label.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Entity kinds the classifier may extract from a message.
const (
	EntityBudget   = "budget"
	EntityCompany  = "company"
	EntityEmail    = "email"
	EntityPhone    = "phone"
	EntityTimeline = "timeline"
)

// Classification is the transient output of a classifier run. It feeds the
// scoring engine and is partially folded into the session; it is never
// persisted as-is.
type Classification struct {
	Intent     Intent            `json:"intent"`
	Confidence float64           `json:"confidence"`
	Sentiment  Sentiment         `json:"sentiment"`
	Entities   map[string]string `json:"entities,omitempty"`
}

// Entity returns the extracted value for kind, or "".
func (c Classification) Entity(kind string) string {
	if c.Entities == nil {
		return ""
	}
	return c.Entities[kind]
}
