// Package outguard inspects generated replies before they reach the visitor:
// the shared restricted-topic denylist plus sensitive-data patterns. Callers
// must substitute the fixed fallback whenever Ok is false — partially
// redacted restricted content is still a leak.
package outguard

import (
	"regexp"

	"github.com/lumen-creative/leadchat/internal/analysis/policy"
)

// Issue codes reported by Validate.
const (
	IssueRestrictedTopic = "restricted_topic"
	IssueUUID            = "uuid_leak"
	IssueOpaqueToken     = "opaque_token"
	IssueAPIKey          = "api_key_shape"
	IssueJWT             = "jwt_shape"
	IssueEmail           = "email_address"
)

// Verdict is the outcome of validating one generated reply. SanitizedText is
// the redacted form, safe for logging; it is not what the visitor sees when
// Ok is false.
type Verdict struct {
	Ok            bool
	SanitizedText string
	Issues        []string
}

type sensitivePattern struct {
	code string
	re   *regexp.Regexp
}

var sensitivePatterns = []sensitivePattern{
	{IssueUUID, regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)},
	{IssueJWT, regexp.MustCompile(`\beyJ[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+`)},
	{IssueAPIKey, regexp.MustCompile(`\b(?:sk|pk|rk)[-_][A-Za-z0-9]{16,}|\b(?i:api[_-]?key|secret|bearer)\s*[:=]\s*\S+`)},
	{IssueOpaqueToken, regexp.MustCompile(`[A-Za-z0-9_\-]{60,}`)},
	{IssueEmail, regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)},
}

// Validator runs the outbound checks. It holds the same policy filter the
// inbound guard uses, so the two directions can never diverge.
type Validator struct {
	filter *policy.Filter
	// allowedEmails are addresses the reply may legitimately name, such as
	// the studio's own contact channel.
	allowedEmails map[string]bool
}

// New builds a validator over the shared policy filter. allowedEmails lists
// addresses exempt from the email leak check.
func New(filter *policy.Filter, allowedEmails ...string) *Validator {
	allowed := make(map[string]bool, len(allowedEmails))
	for _, e := range allowedEmails {
		allowed[e] = true
	}
	return &Validator{filter: filter, allowedEmails: allowed}
}

// Validate scans text; any hit flags Ok=false and redacts the offending span
// in SanitizedText.
func (v *Validator) Validate(text string) Verdict {
	verdict := Verdict{Ok: true, SanitizedText: text}

	if term := v.filter.Match(text); term != "" {
		verdict.Ok = false
		verdict.Issues = append(verdict.Issues, IssueRestrictedTopic)
		verdict.SanitizedText = v.filter.Redact(verdict.SanitizedText)
	}

	for _, p := range sensitivePatterns {
		matches := p.re.FindAllString(verdict.SanitizedText, -1)
		if len(matches) == 0 {
			continue
		}
		if p.code == IssueEmail && v.allEmailsAllowed(matches) {
			continue
		}
		verdict.Ok = false
		verdict.Issues = append(verdict.Issues, p.code)
		verdict.SanitizedText = p.re.ReplaceAllStringFunc(verdict.SanitizedText, func(m string) string {
			if p.code == IssueEmail && v.allowedEmails[m] {
				return m
			}
			return "[redacted]"
		})
	}

	return verdict
}

func (v *Validator) allEmailsAllowed(matches []string) bool {
	for _, m := range matches {
		if !v.allowedEmails[m] {
			return false
		}
	}
	return true
}
