package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/moderation-service/internal/config"
	"github.com/spec-kit/moderation-service/internal/domain"
)

func completionReply(content string) string {
	reply, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(reply)
}

func testClient(endpoint string) *CompletionClient {
	return NewCompletionClient(config.AIConfig{
		Endpoint:       endpoint,
		APIKey:         "test-key",
		Model:          "test-model",
		TimeoutSeconds: 5,
		RetryBackoffMs: 1,
	}, zap.NewNop())
}

func testTranscript() []domain.ChatMessage {
	return []domain.ChatMessage{
		{Username: "Steve", Message: "buy gold at example.com", Timestamp: time.Now()},
	}
}

func TestAnalyzeParsesProseWrappedJSON(t *testing.T) {
	content := "Here is my assessment:\n" +
		`{"analysis": "Steve advertised gold selling.", "suggestedAction": {"punishmentTypeId": "spam", "severity": "regular"}, "confidence": 0.9}` +
		"\nLet me know if you need more."
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}
		w.Write([]byte(completionReply(content))) //nolint:errcheck
	}))
	defer server.Close()

	result, err := testClient(server.URL).Analyze(context.Background(), "instructions", testTranscript(), "Steve")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Analysis != "Steve advertised gold selling." {
		t.Errorf("analysis = %q", result.Analysis)
	}
	if result.SuggestedAction == nil || result.SuggestedAction.PunishmentTypeID != "spam" {
		t.Fatalf("suggested action = %+v, want spam", result.SuggestedAction)
	}
	if result.SuggestedAction.Severity != domain.SeverityRegular {
		t.Errorf("severity = %s, lowercase input must normalize to REGULAR", result.SuggestedAction.Severity)
	}
	if result.Confidence == nil || *result.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", result.Confidence)
	}
}

func TestAnalyzeNonJSONReplyDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(completionReply("I cannot review this transcript."))) //nolint:errcheck
	}))
	defer server.Close()

	result, err := testClient(server.URL).Analyze(context.Background(), "instructions", testTranscript(), "Steve")
	if err != nil {
		t.Fatalf("malformed model text must not error: %v", err)
	}
	if result.SuggestedAction != nil {
		t.Errorf("suggested action = %+v, want nil", result.SuggestedAction)
	}
	if result.Analysis == "" {
		t.Error("fallback analysis text missing")
	}
}

func TestAnalyzeRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(completionReply(`{"analysis": "ok", "suggestedAction": null}`))) //nolint:errcheck
	}))
	defer server.Close()

	result, err := testClient(server.URL).Analyze(context.Background(), "instructions", testTranscript(), "Steve")
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
	if result.Analysis != "ok" {
		t.Errorf("analysis = %q", result.Analysis)
	}
}

func TestAnalyzeRetryExhaustion(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Analyze(context.Background(), "instructions", testTranscript(), "Steve")
	if err == nil {
		t.Fatal("expected an error after retry exhaustion")
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want exactly one retry", calls.Load())
	}
}

func TestAnalyzeClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Analyze(context.Background(), "instructions", testTranscript(), "Steve")
	if err == nil {
		t.Fatal("expected an error for a 401 response")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, 4xx responses must not be retried", calls.Load())
	}
}

func TestAnalyzeMissingEndpoint(t *testing.T) {
	_, err := testClient("").Analyze(context.Background(), "instructions", testTranscript(), "Steve")
	if err == nil {
		t.Fatal("expected an error without a configured endpoint")
	}
}

func TestParseAnalysisInvalidSeverityNormalized(t *testing.T) {
	result := ParseAnalysis(`{"analysis": "x", "suggestedAction": {"punishmentTypeId": "spam", "severity": "EXTREME"}}`, "Steve")
	if result.SuggestedAction == nil {
		t.Fatal("suggested action dropped")
	}
	if result.SuggestedAction.Severity != domain.SeverityRegular {
		t.Errorf("severity = %s, want REGULAR", result.SuggestedAction.Severity)
	}
}

func TestParseAnalysisEmptyTypeIDDropsAction(t *testing.T) {
	result := ParseAnalysis(`{"analysis": "x", "suggestedAction": {"punishmentTypeId": "", "severity": "LOW"}}`, "Steve")
	if result.SuggestedAction != nil {
		t.Errorf("suggested action = %+v, want nil for an empty type id", result.SuggestedAction)
	}
}
