package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// AnthropicGateway classifies sections through the Anthropic Messages API.
type AnthropicGateway struct {
	apiKey     string
	model      string
	httpClient *http.Client
	stats      *LLMStats
}

func NewAnthropicGateway(apiKey, model string) *AnthropicGateway {
	return &AnthropicGateway{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		stats: NewLLMStats(time.Hour),
	}
}

func (g *AnthropicGateway) Model() string {
	return g.model
}

func (g *AnthropicGateway) Stats() StatsSnapshot {
	return g.stats.Snapshot()
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *AnthropicGateway) Classify(ctx context.Context, in Input) (*Record, error) {
	reqBody := anthropicRequest{
		Model:     g.model,
		MaxTokens: 8192,
		System:    SystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: BuildPrompt(in)},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.anthropic.com/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", g.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	start := time.Now()
	resp, err := g.httpClient.Do(httpReq)
	g.stats.Record(time.Since(start).Milliseconds())
	if err != nil {
		return nil, &Failure{Kind: KindError, Detail: fmt.Sprintf("anthropic api: %s", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &Failure{Kind: KindError, Detail: fmt.Sprintf("read response: %s", err)}
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Failure{Kind: KindError, Detail: fmt.Sprintf("anthropic api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))}
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, &Failure{Kind: KindError, Detail: fmt.Sprintf("decode response: %s", err)}
	}
	if apiResp.Error != nil {
		return nil, &Failure{Kind: KindError, Detail: fmt.Sprintf("anthropic error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)}
	}
	if len(apiResp.Content) == 0 {
		return nil, &Failure{Kind: KindError, Detail: "empty response from anthropic"}
	}

	text := stripCodeBlock(apiResp.Content[0].Text)

	var rec Record
	if err := json.Unmarshal([]byte(text), &rec); err != nil {
		return nil, &Failure{Kind: KindError, Detail: fmt.Sprintf("parse record json: %s (raw: %s)", err, truncate(text, 200))}
	}
	if err := ValidateRecord(&rec, in.Title); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Close releases resources.
func (g *AnthropicGateway) Close() {
	g.httpClient.CloseIdleConnections()
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}
