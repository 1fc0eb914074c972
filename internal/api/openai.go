package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"rivals-scout/internal/config"
	"rivals-scout/internal/constants"

	"github.com/valyala/fasthttp"
)

// ErrNoParsedResult means the model answered without a usable structured
// result.
var ErrNoParsedResult = errors.New("model response has no parsed result")

// OpenAIClient calls an OpenAI-compatible chat completions endpoint with a
// JSON schema response format.
type OpenAIClient struct {
	baseURL string
	model   string
	client  *fasthttp.Client
}

func NewOpenAIClient(cfg *config.Config) *OpenAIClient {
	return &OpenAIClient{
		baseURL: cfg.OpenAIAPIURL,
		model:   cfg.OpenAIModel,
		client:  newHTTPClient(constants.VisionAPITimeout),
	}
}

func (c *OpenAIClient) Provider() string { return config.ProviderOpenAI }

func (c *OpenAIClient) Model() string { return c.model }

type chatRequest struct {
	Model          string         `json:"model"`
	Temperature    float64        `json:"temperature"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type responseFormat struct {
	Type       string     `json:"type"`
	JSONSchema jsonSchema `json:"json_schema"`
}

type jsonSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// UsernamesSchema is the structured output requested from every provider.
var UsernamesSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"usernames": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required":             []string{"usernames"},
	"additionalProperties": false,
}

func (c *OpenAIClient) ExtractUsernames(ctx context.Context, apiKey, imageDataURL, prompt string) ([]string, error) {
	resp, err := doRequest[chatResponse](ctx, c.client, request{
		method:  fasthttp.MethodPost,
		url:     c.baseURL + "/chat/completions",
		headers: map[string]string{"Authorization": "Bearer " + apiKey},
		body: chatRequest{
			Model:       c.model,
			Temperature: constants.VisionTemperature,
			Messages: []chatMessage{{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: prompt},
					{Type: "image_url", ImageURL: &imageURL{URL: imageDataURL}},
				},
			}},
			ResponseFormat: responseFormat{
				Type: "json_schema",
				JSONSchema: jsonSchema{
					Name:   "usernames",
					Strict: true,
					Schema: UsernamesSchema,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, ErrNoParsedResult
	}
	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return nil, fmt.Errorf("%w: refused: %s", ErrNoParsedResult, msg.Refusal)
	}
	return parseUsernames(msg.Content)
}

// parseUsernames decodes {"usernames": [...]}. A missing or null array counts
// as no result; an empty array is a valid result.
func parseUsernames(content string) ([]string, error) {
	if content == "" {
		return nil, ErrNoParsedResult
	}
	var out struct {
		Usernames *[]string `json:"usernames"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoParsedResult, err)
	}
	if out.Usernames == nil {
		return nil, ErrNoParsedResult
	}
	return *out.Usernames, nil
}
