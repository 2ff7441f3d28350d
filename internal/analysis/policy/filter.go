// Package policy implements the restricted-topic denylist shared by the
// inbound guard and the output validator. It is deliberately simpler than the
// sanitizer: a second, independent layer, not a replacement for it.
package policy

import (
	"regexp"
	"strings"
)

// DefaultDenylist covers subject matter the assistant must deflect rather
// than discuss: internal systems, credentials and the plumbing behind the
// site. Matching is case-insensitive substring.
var DefaultDenylist = []string{
	"database schema",
	"database structure",
	"system prompt",
	"internal architecture",
	"server configuration",
	"environment variable",
	"source code",
	"api key",
	"api keys",
	"access token",
	"password",
	"credentials",
	"admin panel",
	"security vulnerability",
	"penetration test",
}

// RedactedMarker replaces a denylisted term wherever Redact masks it.
const RedactedMarker = "[restricted]"

// Filter checks text against a fixed denylist. The same Filter instance is
// applied to the visitor message and to the generated reply, so the two
// directions can never drift apart.
type Filter struct {
	terms     []string
	redactRes []*regexp.Regexp
}

// NewFilter builds a filter over terms, falling back to DefaultDenylist when
// none are supplied. Terms are lowercased once at construction.
func NewFilter(terms []string) *Filter {
	if len(terms) == 0 {
		terms = DefaultDenylist
	}
	f := &Filter{}
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		f.terms = append(f.terms, t)
		f.redactRes = append(f.redactRes, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(t)))
	}
	return f
}

// IsRestricted reports whether text touches any denylisted topic.
func (f *Filter) IsRestricted(text string) bool {
	return f.Match(text) != ""
}

// Match returns the first denylisted term found in text, or "".
func (f *Filter) Match(text string) string {
	lower := strings.ToLower(text)
	for _, term := range f.terms {
		if strings.Contains(lower, term) {
			return term
		}
	}
	return ""
}

// Redact masks every denylisted term in text so raw restricted content is
// never persisted or logged.
func (f *Filter) Redact(text string) string {
	for _, re := range f.redactRes {
		text = re.ReplaceAllString(text, RedactedMarker)
	}
	return text
}
