// Package pipeline runs one chat turn end to end: sanitize, policy-check,
// classify, score, generate, validate, persist, and conditionally push the
// lead to the CRM. Each turn is an independent request-scoped flow; the
// session store is the only shared state.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lumen-creative/leadchat/internal/analysis/intent"
	"github.com/lumen-creative/leadchat/internal/analysis/outguard"
	"github.com/lumen-creative/leadchat/internal/analysis/policy"
	"github.com/lumen-creative/leadchat/internal/analysis/sanitize"
	"github.com/lumen-creative/leadchat/internal/config"
	"github.com/lumen-creative/leadchat/internal/crm"
	"github.com/lumen-creative/leadchat/internal/model/chat"
	"github.com/lumen-creative/leadchat/internal/scoring"
	"github.com/lumen-creative/leadchat/internal/service/ai"
	sessionstore "github.com/lumen-creative/leadchat/internal/storage/session"
)

// sideEffectTimeout bounds the detached post-turn work (store write-back,
// CRM upsert) once the response is already determined.
const sideEffectTimeout = 15 * time.Second

// TurnRequest is one inbound chat turn, already decoded from JSON.
type TurnRequest struct {
	Message   string
	Context   string
	SessionID string
	// Optional client-held state, used only to seed a session the store does
	// not know (new visitor, or the stored session expired).
	LeadScore *int
	LeadData  *chat.LeadAttributes
	History   []chat.Message
}

// TurnResult is everything the handler needs for the response JSON.
type TurnResult struct {
	Response     string
	Suggestions  []string
	SessionID    string
	LeadScore    int
	Intent       chat.Intent
	Sentiment    chat.Sentiment
	Confidence   float64
	ModelUsed    string
	TokensUsed   int
	CostEstimate float64
}

// Service wires the pipeline stages together.
type Service struct {
	store      sessionstore.Store
	classifier intent.Classifier
	generator  ai.Generator
	filter     *policy.Filter
	validator  *outguard.Validator
	upserter   crm.Upserter // nil when no CRM is configured
	rules      config.Rules
	ttl        time.Duration
	logger     *slog.Logger

	// spawn runs post-turn side effects; tests replace it to run inline.
	spawn func(func())
}

// NewService assembles the pipeline. upserter may be nil.
func NewService(
	store sessionstore.Store,
	classifier intent.Classifier,
	generator ai.Generator,
	filter *policy.Filter,
	validator *outguard.Validator,
	upserter crm.Upserter,
	rules config.Rules,
	ttl time.Duration,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = sessionstore.DefaultTTL
	}
	return &Service{
		store:      store,
		classifier: classifier,
		generator:  generator,
		filter:     filter,
		validator:  validator,
		upserter:   upserter,
		rules:      rules,
		ttl:        ttl,
		logger:     logger,
		spawn:      func(fn func()) { go fn() },
	}
}

// ProcessTurn executes one chat turn. It only returns an error for malformed
// input; every collaborator failure is recovered into a renderable reply.
func (s *Service) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	if req.Message == "" {
		return nil, errors.New("message is required")
	}

	sanitized := sanitize.Sanitize(req.Message)
	sess := s.loadSession(ctx, req)

	// Inbound policy gate: short-circuit before any classification or model
	// call. The score does not advance and the restricted text is redacted
	// before it is persisted or logged.
	if term := s.filter.Match(sanitized); term != "" {
		s.logger.Info("inbound message deflected",
			"session", sess.ID, "topic", term, "message", s.filter.Redact(sanitized))

		sess.Append(chat.NewUserMessage(s.filter.Redact(sanitized)))
		sess.Append(chat.NewAssistantMessage(s.rules.DeflectionReply))
		sess.Touch()
		s.runSideEffects(sess, false)

		return &TurnResult{
			Response:    s.rules.DeflectionReply,
			Suggestions: append([]string(nil), s.rules.DeflectionSuggestions...),
			SessionID:   sess.ID,
			LeadScore:   sess.LeadScore,
			Intent:      sess.Intent,
			Sentiment:   sess.Sentiment,
		}, nil
	}

	cls := s.classifier.Classify(ctx, sanitized, req.Context)

	sess.Lead = sess.Lead.Merge(leadFromEntities(cls))

	// TurnCount, not len(Messages): history is trimmed to ten entries, and
	// the engagement bonuses need the full conversation length.
	turnsBefore := sess.TurnCount
	computed := scoring.Score(sanitized, cls, sess.LeadScore, turnsBefore)
	sess.RaiseScore(computed)

	reply, modelUsed, tokensUsed, cost := s.generateReply(ctx, sess, sanitized, req.Context)

	sess.Append(chat.NewUserMessage(sanitized))
	sess.Append(chat.NewAssistantMessage(reply))
	sess.Intent = cls.Intent
	sess.Sentiment = cls.Sentiment
	sess.Touch()

	suggestions := ai.SuggestionsFor(cls.Intent)
	promptForEmail := sess.Lead.Email == "" && sess.LeadScore >= s.rules.EmailPromptScore
	if promptForEmail {
		suggestions = append([]string{s.rules.EmailPromptSuggestion}, suggestions[:min(2, len(suggestions))]...)
	}

	s.runSideEffects(sess, true)

	return &TurnResult{
		Response:     reply,
		Suggestions:  suggestions,
		SessionID:    sess.ID,
		LeadScore:    sess.LeadScore,
		Intent:       cls.Intent,
		Sentiment:    cls.Sentiment,
		Confidence:   cls.Confidence,
		ModelUsed:    modelUsed,
		TokensUsed:   tokensUsed,
		CostEstimate: cost,
	}, nil
}

// CaptureLead is the explicit capture-form path: caller-supplied values win
// over stored ones, and CRM thresholds are re-checked immediately.
func (s *Service) CaptureLead(ctx context.Context, sessionID string, update chat.LeadAttributes) (*chat.Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessionstore.ErrNotFound) {
			return nil, err
		}
		s.logger.Warn("session read failed on lead capture", "session", sessionID, "error", err)
		return nil, sessionstore.ErrNotFound
	}

	sess.Lead = sess.Lead.Overwrite(update)
	sess.Touch()
	s.runSideEffects(sess, true)
	return sess, nil
}

// Session returns the stored session for the widget to restore.
func (s *Service) Session(ctx context.Context, sessionID string) (*chat.Session, error) {
	return s.store.Get(ctx, sessionID)
}

// loadSession fetches the session, degrading to a fresh one on any store
// failure — losing one turn of memory beats failing the chat.
func (s *Service) loadSession(ctx context.Context, req TurnRequest) *chat.Session {
	if req.SessionID != "" {
		sess, err := s.store.Get(ctx, req.SessionID)
		if err == nil {
			return sess
		}
		if !errors.Is(err, sessionstore.ErrNotFound) {
			s.logger.Warn("session read failed, starting fresh", "session", req.SessionID, "error", err)
		}
	}

	id := req.SessionID
	if id == "" {
		id = uuid.NewString()
	}

	sess := chat.NewSession(id)
	// Seed from client-held state so a visitor whose server-side session
	// expired does not lose the visible conversation.
	for _, msg := range req.History {
		if msg.Role == chat.RoleUser || msg.Role == chat.RoleAssistant {
			sess.Append(msg)
		}
	}
	if req.LeadScore != nil && *req.LeadScore > 0 && *req.LeadScore <= 100 {
		sess.LeadScore = *req.LeadScore
	}
	if req.LeadData != nil {
		sess.Lead = sess.Lead.Merge(*req.LeadData)
	}
	return sess
}

// generateReply runs the generator and the output validator, substituting the
// fixed fallback on any failure. The visitor never sees a raw upstream error
// or partially redacted text.
func (s *Service) generateReply(ctx context.Context, sess *chat.Session, sanitized, conversationContext string) (reply, modelUsed string, tokensUsed int, cost float64) {
	result, err := s.generator.Generate(ctx, sess.Messages, sanitized, conversationContext)
	if err != nil {
		s.logger.Warn("reply generation failed, using fallback", "session", sess.ID, "error", err)
		return s.rules.FallbackReply, "fallback", 0, 0
	}

	verdict := s.validator.Validate(result.Text)
	if !verdict.Ok {
		s.logger.Warn("generated reply failed validation, using fallback",
			"session", sess.ID, "issues", verdict.Issues, "reply", verdict.SanitizedText)
		return s.rules.FallbackReply, result.ModelUsed, result.TokensUsed, result.CostEstimate
	}

	return result.Text, result.ModelUsed, result.TokensUsed, result.CostEstimate
}

// leadFromEntities lifts classifier entities into lead attributes.
func leadFromEntities(cls chat.Classification) chat.LeadAttributes {
	return chat.LeadAttributes{
		Email:    cls.Entity(chat.EntityEmail),
		Phone:    cls.Entity(chat.EntityPhone),
		Company:  cls.Entity(chat.EntityCompany),
		Budget:   cls.Entity(chat.EntityBudget),
		Timeline: cls.Entity(chat.EntityTimeline),
	}
}

// runSideEffects executes the post-turn task list — session write-back and,
// when warranted, the CRM upsert — detached from the request so their failure
// or latency is structurally incapable of affecting the response.
func (s *Service) runSideEffects(sess *chat.Session, allowCRM bool) {
	var pushCRM bool
	var fingerprint string
	if allowCRM && s.upserter != nil && sess.Lead.Email != "" && sess.LeadScore >= s.rules.AutoUpsertScore {
		if fp := sess.Lead.Fingerprint(); fp != sess.CRMFingerprint {
			fingerprint = fp
			pushCRM = true
		}
	}

	// Snapshot for the detached goroutine; the caller's session must not be
	// shared across the request boundary.
	snapshot := *sess
	snapshot.Messages = append([]chat.Message(nil), sess.Messages...)

	s.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		// The fingerprint is committed only once the upsert succeeds, so a
		// transient CRM failure is retried on the next qualifying turn
		// instead of marking the attribute set as pushed.
		if pushCRM {
			if _, err := s.upserter.Upsert(ctx, snapshot.Lead, snapshot.LeadScore); err != nil {
				s.logger.Warn("CRM upsert failed, will retry on the next qualifying turn",
					"session", snapshot.ID, "error", err)
			} else {
				snapshot.CRMFingerprint = fingerprint
				s.logger.Info("lead pushed to CRM", "session", snapshot.ID, "score", snapshot.LeadScore)
			}
		}

		if err := s.store.Put(ctx, &snapshot, s.ttl); err != nil {
			s.logger.Warn("session write failed", "session", snapshot.ID, "error", err)
		}
	})
}
