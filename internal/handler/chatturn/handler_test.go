package chatturn

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lumen-creative/leadchat/internal/analysis/intent"
	"github.com/lumen-creative/leadchat/internal/analysis/outguard"
	"github.com/lumen-creative/leadchat/internal/analysis/policy"
	"github.com/lumen-creative/leadchat/internal/config"
	"github.com/lumen-creative/leadchat/internal/model/chat"
	"github.com/lumen-creative/leadchat/internal/service/ai"
	"github.com/lumen-creative/leadchat/internal/service/pipeline"
	sessionstore "github.com/lumen-creative/leadchat/internal/storage/session"
)

func newTestRouter(t *testing.T) (http.Handler, *sessionstore.MemoryStore) {
	t.Helper()

	store := sessionstore.NewMemoryStore()
	filter := policy.NewFilter(policy.DefaultDenylist)
	rules := config.DefaultRules()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := pipeline.NewService(
		store,
		intent.NewRuleBased(),
		ai.NewRulesGenerator(),
		filter,
		outguard.New(filter, rules.ContactChannel),
		nil,
		rules,
		time.Hour,
		logger,
	)

	r := chi.NewRouter()
	r.Route("/api", func(api chi.Router) {
		New(svc, rules, logger).RegisterRoutes(api)
	})
	return r, store
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestChatRejectsBadJSON(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postJSON(t, router, "/api/chat", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid JSON, got %d", rec.Code)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postJSON(t, router, "/api/chat", `{"message":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank message, got %d", rec.Code)
	}
}

func TestChatReturnsTurnResponse(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postJSON(t, router, "/api/chat", `{"message":"What does a website cost?","context":"sales"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp turnResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	if resp.Response == "" || resp.SessionID == "" {
		t.Fatalf("incomplete response: %+v", resp)
	}
	if resp.Intent != string(chat.IntentPricing) {
		t.Fatalf("expected pricing intent, got %q", resp.Intent)
	}
	if len(resp.Suggestions) == 0 {
		t.Fatalf("expected suggestions, got %+v", resp)
	}
}

func TestChatCoercesUnknownContext(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postJSON(t, router, "/api/chat", `{"message":"hello","context":"bogus-context"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown context should be coerced, got %d", rec.Code)
	}
}

func TestErrorTurnResponseStaysRenderable(t *testing.T) {
	body, err := json.Marshal(errorTurnResponse(config.DefaultRules()))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if !strings.Contains(string(body), `"suggestions":[]`) {
		t.Fatalf("suggestions must encode as an empty array, got %s", body)
	}
	if !strings.Contains(string(body), `"success":false`) {
		t.Fatalf("unexpected error body: %s", body)
	}

	var resp turnResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("error body not decodable: %v", err)
	}
	if resp.Response != config.DefaultRules().FallbackReply {
		t.Fatalf("error body missing fallback reply: %q", resp.Response)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/session/unknown-id", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetSessionReturnsStoredState(t *testing.T) {
	router, store := newTestRouter(t)

	sess := chat.NewSession("sess-widget")
	sess.Append(chat.NewUserMessage("hi"))
	sess.LeadScore = 35
	sess.Touch()
	if err := store.Put(context.Background(), sess, time.Hour); err != nil {
		t.Fatalf("seed put failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/session/sess-widget", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var view sessionView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("invalid session JSON: %v", err)
	}
	if view.SessionID != "sess-widget" || view.LeadScore != 35 || len(view.Messages) != 1 {
		t.Fatalf("unexpected session view: %+v", view)
	}
	if _, err := time.Parse(time.RFC3339, view.LastActive); err != nil {
		t.Fatalf("lastActive not RFC3339: %q", view.LastActive)
	}
}

func TestCaptureLeadRequiresSessionID(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postJSON(t, router, "/api/lead", `{"lead":{"email":"ana@brightleaf.com"}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCaptureLeadUnknownSession(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postJSON(t, router, "/api/lead", `{"sessionId":"nope","lead":{"email":"ana@brightleaf.com"}}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
