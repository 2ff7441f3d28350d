// Package sanitize neutralizes prompt-injection idioms and payload-inflation
// tricks in visitor input before anything downstream sees it.
package sanitize

import (
	"regexp"
	"strings"
)

const (
	// FilteredMarker replaces a recognized injection pattern in place.
	FilteredMarker = "[FILTERED]"
	// TruncatedMarker flags a collapse or cut, so downstream knows the text
	// was shortened rather than typed that way.
	TruncatedMarker = "[TRUNCATED]"

	// MaxLength is the hard cap on sanitized input, in runes.
	MaxLength = 2000

	// runLimit is the repetition threshold: the same rune this many times in
	// a row collapses to a single instance plus TruncatedMarker.
	runLimit = 50
)

// injectionPatterns are applied in order; each match is replaced with
// FilteredMarker while the surrounding text is preserved. Filtering runs
// before the length cap so a pattern straddling the cut cannot survive it.
var injectionPatterns = []*regexp.Regexp{
	// "ignore previous instructions" and close variants
	regexp.MustCompile(`(?i)(ignore|disregard|forget)\s+(all\s+|any\s+)?(previous|prior|above|earlier)\s+(instructions?|prompts?|directions?|context|messages?)`),
	regexp.MustCompile(`(?i)forget\s+everything\s+(you\s+)?(know|were\s+told|learned)`),
	// role-override markers
	regexp.MustCompile(`(?i)(you\s+are\s+now|from\s+now\s+on\s+you\s+are|new\s+persona\s*:)`),
	regexp.MustCompile(`(?i)(pretend|act|roleplay)\s+(to\s+be|as\s+if|as\s+though|as)\b`),
	// fake conversation delimiters
	regexp.MustCompile(`(?i)<\|?\s*(system|assistant|user|im_start|im_end)\s*\|?>`),
	regexp.MustCompile(`(?i)\[\s*(system|assistant|user)\s*\]\s*:?`),
	regexp.MustCompile(`(?i)\b(system|assistant|developer)\s+(prompt|message|instructions?)\s*:`),
	// instruction re-seeding
	regexp.MustCompile(`(?i)new\s+(instructions?|rules?|directives?)\s*:`),
	regexp.MustCompile(`(?i)(reveal|show|print|output)\s+(your|the)\s+(system\s+prompt|instructions?|rules?)`),
	regexp.MustCompile(`(?i)\bjailbreak\b|\bDAN\s+mode\b`),
}

// Sanitize is total: it always returns some string and never fails. Order is
// load-bearing: injection filtering, then run collapse, then the length cap.
func Sanitize(raw string) string {
	out := raw
	for _, pattern := range injectionPatterns {
		out = pattern.ReplaceAllString(out, FilteredMarker)
	}
	out = collapseRuns(out)
	return capLength(out)
}

// collapseRuns truncates any rune repeated runLimit or more times in a row to
// one instance plus a marker. RE2 has no backreferences, so this is a scan.
func collapseRuns(text string) string {
	runes := []rune(text)
	if len(runes) < runLimit {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	runStart := 0
	for i := 1; i <= len(runes); i++ {
		if i < len(runes) && runes[i] == runes[runStart] {
			continue
		}
		runLen := i - runStart
		if runLen >= runLimit {
			b.WriteRune(runes[runStart])
			b.WriteString(TruncatedMarker)
		} else {
			for j := 0; j < runLen; j++ {
				b.WriteRune(runes[runStart])
			}
		}
		runStart = i
	}

	return b.String()
}

// capLength truncates to MaxLength runes with a trailing marker. Overflow is
// never rejected outright; the pipeline always gets some sanitized string.
func capLength(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxLength {
		return text
	}
	return string(runes[:MaxLength]) + TruncatedMarker
}
