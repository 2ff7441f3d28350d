// Package chatturn exposes the chat pipeline over HTTP. The UI only ever
// sees the response JSON here — never intermediate classification or scoring
// internals beyond the three summary fields.
package chatturn

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lumen-creative/leadchat/internal/config"
	"github.com/lumen-creative/leadchat/internal/model/chat"
	"github.com/lumen-creative/leadchat/internal/service/ai"
	"github.com/lumen-creative/leadchat/internal/service/pipeline"
	sessionstore "github.com/lumen-creative/leadchat/internal/storage/session"
	"github.com/lumen-creative/leadchat/pkg/utils"
)

// Handler serves the chat turn, session restore and lead capture endpoints.
type Handler struct {
	pipeline *pipeline.Service
	rules    config.Rules
	logger   *slog.Logger
}

// New creates the chat handler.
func New(pipelineSvc *pipeline.Service, rules config.Rules, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{pipeline: pipelineSvc, rules: rules, logger: logger}
}

// RegisterRoutes mounts the chat endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/session/{sessionID}", h.handleGetSession)
	r.Post("/lead", h.handleCaptureLead)
}

// turnPayload is the chat widget's request body.
type turnPayload struct {
	Message        string               `json:"message"`
	Context        string               `json:"context"`
	SessionID      string               `json:"sessionId"`
	LeadScore      *int                 `json:"leadScore,omitempty"`
	LeadData       *chat.LeadAttributes `json:"leadData,omitempty"`
	MessageHistory []chat.Message       `json:"messageHistory,omitempty"`
}

// turnResponse is the chat widget's response body.
type turnResponse struct {
	Success      bool     `json:"success"`
	Response     string   `json:"response"`
	Suggestions  []string `json:"suggestions"`
	SessionID    string   `json:"sessionId"`
	LeadScore    int      `json:"leadScore"`
	Intent       string   `json:"intent"`
	Sentiment    string   `json:"sentiment"`
	Confidence   float64  `json:"confidence,omitempty"`
	ModelUsed    string   `json:"modelUsed,omitempty"`
	CostEstimate float64  `json:"costEstimate,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// errorTurnResponse is the body for a failed turn. Suggestions stay an empty
// array rather than null so the widget can render the body unconditionally.
func errorTurnResponse(rules config.Rules) turnResponse {
	return turnResponse{
		Success:     false,
		Response:    rules.FallbackReply,
		Suggestions: []string{},
		Error:       "internal error",
	}
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload turnPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	conversationContext := payload.Context
	if !ai.ValidContext(conversationContext) {
		conversationContext = ai.ContextGeneral
	}

	result, err := h.pipeline.ProcessTurn(r.Context(), pipeline.TurnRequest{
		Message:   payload.Message,
		Context:   conversationContext,
		SessionID: payload.SessionID,
		LeadScore: payload.LeadScore,
		LeadData:  payload.LeadData,
		History:   payload.MessageHistory,
	})
	if err != nil {
		// No internal detail crosses this boundary; the visitor still gets a
		// renderable reply naming the contact channel.
		h.logger.Error("chat turn failed", "error", err)
		utils.RespondJSON(w, http.StatusInternalServerError, errorTurnResponse(h.rules))
		return
	}

	utils.RespondJSON(w, http.StatusOK, turnResponse{
		Success:      true,
		Response:     result.Response,
		Suggestions:  result.Suggestions,
		SessionID:    result.SessionID,
		LeadScore:    result.LeadScore,
		Intent:       string(result.Intent),
		Sentiment:    string(result.Sentiment),
		Confidence:   result.Confidence,
		ModelUsed:    result.ModelUsed,
		CostEstimate: result.CostEstimate,
	})
}

// sessionView is the visitor-safe projection of a stored session.
type sessionView struct {
	SessionID  string         `json:"sessionId"`
	Messages   []chat.Message `json:"messages"`
	LeadScore  int            `json:"leadScore"`
	Intent     string         `json:"intent"`
	Sentiment  string         `json:"sentiment"`
	LastActive string         `json:"lastActive"`
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sess, err := h.pipeline.Session(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, sessionstore.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		h.logger.Warn("session fetch failed", "session", sessionID, "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, sessionView{
		SessionID:  sess.ID,
		Messages:   sess.Messages,
		LeadScore:  sess.LeadScore,
		Intent:     string(sess.Intent),
		Sentiment:  string(sess.Sentiment),
		LastActive: sess.LastActive.Format(time.RFC3339),
	})
}

// capturePayload is the explicit capture-form body.
type capturePayload struct {
	SessionID string              `json:"sessionId"`
	Lead      chat.LeadAttributes `json:"lead"`
}

func (h *Handler) handleCaptureLead(w http.ResponseWriter, r *http.Request) {
	var payload capturePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	sess, err := h.pipeline.CaptureLead(r.Context(), payload.SessionID, payload.Lead)
	if err != nil {
		if errors.Is(err, sessionstore.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		h.logger.Warn("lead capture failed", "session", payload.SessionID, "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"sessionId": sess.ID,
		"leadScore": sess.LeadScore,
	})
}
