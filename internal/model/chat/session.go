package chat

import "time"

// HistoryLimit bounds the rolling message history kept per session. Older
// turns are dropped, not archived.
const HistoryLimit = 10

// Session is the aggregate root for one visitor conversation: bounded history,
// accumulated lead attributes, the running score and the last classification
// summary. Destroyed passively by the store's TTL.
type Session struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
	// TurnCount counts every message ever appended. Unlike Messages it is
	// never trimmed, so engagement scoring sees the full conversation length.
	TurnCount      int            `json:"turnCount"`
	Lead           LeadAttributes `json:"leadAttributes"`
	LeadScore      int            `json:"leadScore"`
	Intent         Intent         `json:"intent"`
	Sentiment      Sentiment      `json:"sentiment"`
	CRMFingerprint string         `json:"crmFingerprint,omitempty"`
	LastActive     time.Time      `json:"lastActive"`
}

// NewSession returns an empty session for a first-contact visitor.
func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		Intent:    IntentGeneral,
		Sentiment: SentimentNeutral,
	}
}

// Append adds a turn and trims history to the last HistoryLimit messages.
// TurnCount keeps growing past the trim.
func (s *Session) Append(msg Message) {
	s.TurnCount++
	s.Messages = append(s.Messages, msg)
	if len(s.Messages) > HistoryLimit {
		s.Messages = s.Messages[len(s.Messages)-HistoryLimit:]
	}
}

// RaiseScore applies max(current, computed) so the score never regresses
// within a session.
func (s *Session) RaiseScore(computed int) {
	if computed > s.LeadScore {
		s.LeadScore = computed
	}
}

// Touch stamps the session as active now.
func (s *Session) Touch() {
	s.LastActive = time.Now().UTC()
}
