// Package ai holds the LLM collaborators: the narrative report completer and
// the entity extractor.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/newspulse/internal/adapters/config"
	"github.com/selivandex/newspulse/internal/adapters/httpx"
	"github.com/selivandex/newspulse/pkg/logger"
	"github.com/selivandex/newspulse/pkg/retry"
)

const reportAPIURL = "https://api.anthropic.com/v1/messages"

// Message is one role-tagged prompt segment.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ReportClient generates text completions for narrative reports. It fails
// closed: an empty or erroring completion is an error, never an empty string.
type ReportClient struct {
	apiKey    string
	model     string
	maxTokens int
	baseURL   string
	client    *http.Client
	policy    retry.Policy
}

// NewReportClient creates the report completion client.
func NewReportClient(cfg *config.AIConfig, policy retry.Policy) *ReportClient {
	if policy.Retryable == nil {
		policy.Retryable = httpx.IsRetryable
	}
	return &ReportClient{
		apiKey:    cfg.ReportAPIKey,
		model:     cfg.ReportModel,
		maxTokens: cfg.ReportMaxTokens,
		baseURL:   reportAPIURL,
		client:    &http.Client{Timeout: 60 * time.Second},
		policy:    policy,
	}
}

// Complete sends the ordered message list and returns the completion text.
// Messages with the system role become the system prompt; the rest keep their
// roles. The call is retry-guarded like every other outbound request.
func (c *ReportClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("report API key is not configured")
	}

	var system string
	chat := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			system = m.Content
			continue
		}
		chat = append(chat, m)
	}

	return retry.Do(ctx, c.policy, "ai.report", func(ctx context.Context) (string, error) {
		return c.completeOnce(ctx, system, chat)
	})
}

func (c *ReportClient) completeOnce(ctx context.Context, system string, messages []Message) (string, error) {
	reqBody := map[string]interface{}{
		"model":      c.model,
		"max_tokens": c.maxTokens,
		"system":     system,
		"messages":   messages,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	startTime := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &httpx.StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Content) == 0 || result.Content[0].Text == "" {
		return "", fmt.Errorf("empty completion in response")
	}

	logger.Debug("report completion received",
		zap.Duration("latency", time.Since(startTime)),
		zap.Int("chars", len(result.Content[0].Text)),
	)

	return result.Content[0].Text, nil
}
