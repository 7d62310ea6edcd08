package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/moderation-service/internal/config"
	"github.com/spec-kit/moderation-service/internal/domain"
	apperrors "github.com/spec-kit/moderation-service/pkg/util"
)

// AnalysisResult is the typed moderation suggestion parsed from the
// model's free-text reply.
type AnalysisResult struct {
	Analysis        string
	SuggestedAction *domain.SuggestedAction
	Confidence      *float64
}

// AnalysisClient performs one moderation analysis call.
type AnalysisClient interface {
	Analyze(ctx context.Context, instructions string, transcript []domain.ChatMessage, accusedName string) (*AnalysisResult, error)
}

// CompletionClient calls a chat-completions style endpoint. A returned
// error always means the service itself failed; malformed replies degrade
// to a nil suggestion instead.
type CompletionClient struct {
	endpoint   string
	apiKey     string
	model      string
	backoff    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// NewCompletionClient constructs the client from config.
func NewCompletionClient(cfg config.AIConfig, logger *zap.Logger) *CompletionClient {
	return &CompletionClient{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		backoff:  cfg.RetryBackoff(),
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Analyze sends the transcript and instructions and parses the reply.
// One bounded retry with backoff covers transient transport failures.
func (c *CompletionClient) Analyze(ctx context.Context, instructions string, transcript []domain.ChatMessage, accusedName string) (*AnalysisResult, error) {
	if c.endpoint == "" {
		return nil, apperrors.NewExternalServiceError("ai endpoint", errors.New("AI_ENDPOINT not configured"))
	}

	payload, err := json.Marshal(completionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: instructions},
			{Role: "user", Content: transcriptPrompt(transcript, accusedName)},
		},
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff):
			case <-ctx.Done():
				return nil, apperrors.NewExternalServiceError("ai endpoint", ctx.Err())
			}
			c.logger.Warn("retrying ai call", zap.Error(lastErr))
		}

		content, retryable, err := c.call(ctx, payload)
		if err == nil {
			return ParseAnalysis(content, accusedName), nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, apperrors.NewExternalServiceError("ai endpoint", lastErr)
}

func (c *CompletionClient) call(ctx context.Context, payload []byte) (content string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", true, err
	}
	if resp.StatusCode >= 500 {
		return "", true, fmt.Errorf("ai endpoint returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("ai endpoint returned %d", resp.StatusCode)
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", false, fmt.Errorf("malformed completion envelope: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", false, errors.New("completion response has no choices")
	}
	return parsed.Choices[0].Message.Content, false, nil
}

func transcriptPrompt(transcript []domain.ChatMessage, accusedName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Accused player: %s\n\nTranscript:\n", accusedName)
	for _, msg := range transcript {
		fmt.Fprintf(&b, "[%s] %s: %s\n", msg.Timestamp.UTC().Format(time.RFC3339), msg.Username, msg.Message)
	}
	return b.String()
}

type suggestionEnvelope struct {
	Analysis        string `json:"analysis"`
	SuggestedAction *struct {
		PunishmentTypeID string `json:"punishmentTypeId"`
		Severity         string `json:"severity"`
	} `json:"suggestedAction"`
	Confidence *float64 `json:"confidence"`
}

// ParseAnalysis extracts the JSON contract from the model's reply. It
// tolerates surrounding prose, missing optional fields and outright
// non-JSON text; a parse failure yields a nil suggestion and a synthetic
// analysis string, never an error.
func ParseAnalysis(content, accusedName string) *AnalysisResult {
	fallback := &AnalysisResult{
		Analysis: fmt.Sprintf("The model reply for %s could not be parsed; no action suggested.", accusedName),
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return fallback
	}

	var envelope suggestionEnvelope
	if err := json.Unmarshal([]byte(content[start:end+1]), &envelope); err != nil {
		return fallback
	}

	result := &AnalysisResult{
		Analysis:   strings.TrimSpace(envelope.Analysis),
		Confidence: envelope.Confidence,
	}
	if result.Analysis == "" {
		result.Analysis = fmt.Sprintf("The model returned no analysis text for %s.", accusedName)
	}
	if envelope.SuggestedAction != nil && envelope.SuggestedAction.PunishmentTypeID != "" {
		severity := domain.Severity(strings.ToUpper(envelope.SuggestedAction.Severity))
		if !domain.ValidSeverity(severity) {
			severity = domain.SeverityRegular
		}
		result.SuggestedAction = &domain.SuggestedAction{
			PunishmentTypeID: envelope.SuggestedAction.PunishmentTypeID,
			Severity:         severity,
		}
	}
	return result
}
