package api

import (
	"context"
	"fmt"
	"rivals-scout/internal/config"
	"rivals-scout/internal/constants"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const jsonOnlyInstruction = `Respond with only a JSON object of the form {"usernames": ["..."]} and nothing else.`

// AnthropicClient extracts usernames through the Anthropic messages API.
// A client is built per call because the credential is supplied per call.
type AnthropicClient struct {
	baseURL string
	model   string
}

func NewAnthropicClient(cfg *config.Config) *AnthropicClient {
	return &AnthropicClient{
		baseURL: cfg.AnthropicAPIURL,
		model:   cfg.AnthropicModel,
	}
}

func (c *AnthropicClient) Provider() string { return config.ProviderAnthropic }

func (c *AnthropicClient) Model() string { return c.model }

func (c *AnthropicClient) ExtractUsernames(ctx context.Context, apiKey, imageDataURL, prompt string) ([]string, error) {
	mediaType, data, err := SplitDataURL(imageDataURL)
	if err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if c.baseURL != "" {
		opts = append(opts, option.WithBaseURL(c.baseURL))
	}
	client := anthropic.NewClient(opts...)

	msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   constants.VisionMaxTokens,
		Temperature: anthropic.Float(constants.VisionTemperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mediaType, data),
				anthropic.NewTextBlock(prompt+"\n\n"+jsonOnlyInstruction),
			),
		},
	})
	if err != nil {
		return nil, err
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return parseUsernames(stripCodeFence(block.Text))
		}
	}
	return nil, ErrNoParsedResult
}

// SplitDataURL splits "data:<media>;base64,<data>" into its media type and
// payload.
func SplitDataURL(s string) (mediaType, data string, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", "", fmt.Errorf("image is not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || payload == "" {
		return "", "", fmt.Errorf("image data URL has no payload")
	}
	mediaType, enc, _ := strings.Cut(meta, ";")
	if enc != "base64" {
		return "", "", fmt.Errorf("image data URL must be base64 encoded")
	}
	if mediaType == "" {
		mediaType = "image/png"
	}
	return mediaType, payload, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
