package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
)

// recordSchema is the strict response schema the model must satisfy.
var recordSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"section_type": map[string]any{
			"type": "string",
			"enum": []string{"endpoint", "concept", "overview", "other"},
		},
		"related_endpoints": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"filename": map[string]any{"type": "string"},
		"content":  map[string]any{"type": "string"},
	},
	"required":             []string{"section_type", "related_endpoints", "filename", "content"},
	"additionalProperties": false,
}

// OpenAIGateway classifies sections through the OpenAI chat completions API
// using a strict JSON-schema response format.
type OpenAIGateway struct {
	client openai.Client
	model  string
	stats  *LLMStats
}

func NewOpenAIGateway(apiKey, model string) *OpenAIGateway {
	return &OpenAIGateway{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		stats:  NewLLMStats(time.Hour),
	}
}

func (g *OpenAIGateway) Model() string {
	return g.model
}

func (g *OpenAIGateway) Stats() StatsSnapshot {
	return g.stats.Snapshot()
}

func (g *OpenAIGateway) Classify(ctx context.Context, in Input) (*Record, error) {
	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(BuildPrompt(in)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "classified_section",
					Schema: recordSchema,
					Strict: openai.Bool(true),
				},
			},
		},
	})
	g.stats.Record(time.Since(start).Milliseconds())

	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && (apiErr.StatusCode == 429 || apiErr.StatusCode >= 500) {
			return nil, &RetryableError{StatusCode: apiErr.StatusCode, Message: apiErr.Error()}
		}
		return nil, &Failure{Kind: KindError, Detail: fmt.Sprintf("openai api: %s", err)}
	}
	if len(resp.Choices) == 0 {
		return nil, &Failure{Kind: KindError, Detail: "empty response from openai"}
	}

	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return nil, &Failure{Kind: KindRefusal, Detail: msg.Refusal}
	}

	var rec Record
	if err := json.Unmarshal([]byte(stripCodeBlock(msg.Content)), &rec); err != nil {
		return nil, &Failure{Kind: KindError, Detail: fmt.Sprintf("parse record json: %s (raw: %s)", err, truncate(msg.Content, 200))}
	}
	if err := ValidateRecord(&rec, in.Title); err != nil {
		return nil, err
	}
	return &rec, nil
}
