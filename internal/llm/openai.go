package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Veraticus/retitle/internal/common"
)

const (
	defaultOpenAIURL   = "https://api.openai.com/v1"
	defaultOpenAIModel = "gpt-4o-mini"
)

// openAIClient implements the Client interface for OpenAI and compatible
// servers such as LM Studio.
type openAIClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

func newOpenAIClient(cfg Config) (Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIURL
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: OpenAI API key is required", common.ErrMissingConfig)
		}
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	return &openAIClient{
		httpClient:  newHTTPClient(cfg.timeout()),
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: cfg.temperature(),
		maxTokens:   cfg.maxTokens(),
	}, nil
}

type openAIContentPart struct {
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

type openAIMessage struct {
	Content any    `json:"content"`
	Role    string `json:"role"`
}

// openAIResponse represents the chat completion response structure.
type openAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
}

// Generate sends a chat completion request.
func (c *openAIClient) Generate(ctx context.Context, req Request) (string, error) {
	images, err := encodeImages(req.Images)
	if err != nil {
		return "", err
	}

	var messages []openAIMessage
	if req.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	}

	if len(images) == 0 {
		messages = append(messages, openAIMessage{Role: "user", Content: req.Prompt})
	} else {
		parts := []openAIContentPart{{Type: "text", Text: req.Prompt}}
		for _, img := range images {
			parts = append(parts, openAIContentPart{Type: "image_url", ImageURL: &openAIImageURL{URL: img.dataURL()}})
		}
		messages = append(messages, openAIMessage{Role: "user", Content: parts})
	}

	body := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	var resp openAIResponse
	if err := postJSON(ctx, c.httpClient, "OpenAI", c.baseURL+"/chat/completions", headers, body, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", &common.RetryableError{Err: fmt.Errorf("no completion choices returned"), Retryable: true}
	}

	return cleanReply(resp.Choices[0].Message.Content), nil
}
