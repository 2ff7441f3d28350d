package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules is the immutable policy/reply/threshold value shared by every
// component. It is built once at startup — defaults first, then an optional
// YAML override — and passed in explicitly; nothing mutates it afterwards.
type Rules struct {
	// RestrictedTopics is the denylist applied to both inbound messages and
	// generated replies.
	RestrictedTopics []string `yaml:"restricted_topics"`

	// DeflectionReply is returned verbatim when an inbound message hits the
	// denylist.
	DeflectionReply string `yaml:"deflection_reply"`
	// DeflectionSuggestions accompany the deflection reply.
	DeflectionSuggestions []string `yaml:"deflection_suggestions"`

	// FallbackReply substitutes any generated reply that fails output
	// validation or any collaborator failure. It must name the human contact
	// channel.
	FallbackReply string `yaml:"fallback_reply"`
	// ContactChannel is the human escalation address named in FallbackReply.
	ContactChannel string `yaml:"contact_channel"`

	// AutoUpsertScore triggers a CRM push when the lead's email is known.
	AutoUpsertScore int `yaml:"auto_upsert_score"`
	// EmailPromptScore swaps in an email-capture suggestion when no email is
	// known yet.
	EmailPromptScore int `yaml:"email_prompt_score"`
	// EmailPromptSuggestion is the capture chip shown at that tier.
	EmailPromptSuggestion string `yaml:"email_prompt_suggestion"`
}

// DefaultRules returns the built-in rule set.
func DefaultRules() Rules {
	return Rules{
		RestrictedTopics: nil, // policy.DefaultDenylist applies
		DeflectionReply: "That's not something I can help with here — I'm the studio's project " +
			"assistant. I'd love to talk about your website, branding, SEO or AI plans instead.",
		DeflectionSuggestions: []string{
			"What services do you offer?",
			"Can I see some of your work?",
			"How do I book a consultation?",
		},
		FallbackReply: "Sorry, I'm having trouble answering right now. Please reach our team " +
			"directly at hello@lumencreative.studio and we'll get back to you the same day.",
		ContactChannel:        "hello@lumencreative.studio",
		AutoUpsertScore:       60,
		EmailPromptScore:      80,
		EmailPromptSuggestion: "Share your email so we can send you a tailored proposal",
	}
}

// LoadRules returns DefaultRules overlaid with the YAML file at path when
// path is non-empty. Only fields present in the file override the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	if rules.FallbackReply == "" || rules.DeflectionReply == "" {
		return Rules{}, fmt.Errorf("rules file %s must keep deflection and fallback replies non-empty", path)
	}
	if rules.AutoUpsertScore < 0 || rules.AutoUpsertScore > 100 ||
		rules.EmailPromptScore < 0 || rules.EmailPromptScore > 100 {
		return Rules{}, fmt.Errorf("rules file %s score thresholds must stay within [0,100]", path)
	}

	return rules, nil
}
