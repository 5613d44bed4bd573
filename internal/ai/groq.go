package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/agri-advisor/internal/common"
)

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

type GroqConfig struct {
	APIKey      string
	BaseURL     string
	TextModel   string
	VisionModel string
}

// GroqClient talks to Groq's OpenAI-compatible chat completions endpoint.
type GroqClient struct {
	cfg     GroqConfig
	httpCfg common.HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewGroqClient(client *http.Client, cfg GroqConfig, limiter *rate.Limiter) *GroqClient {
	cfg.BaseURL = strings.TrimRight(common.FirstNonEmpty(cfg.BaseURL, defaultGroqBaseURL), "/")
	return &GroqClient{
		cfg:     cfg,
		httpCfg: newHTTPConfig(client, limiter),
		circuit: common.NewCircuitBreaker("groq"),
	}
}

type chatContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a single user prompt to the text model.
func (c *GroqClient) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	return c.chat(ctx, c.cfg.TextModel, chatMessage{Role: "user", Content: prompt}, opts)
}

// CompleteWithImage sends a prompt plus a PNG image to the vision model.
func (c *GroqClient) CompleteWithImage(ctx context.Context, prompt string, png []byte, opts Options) (string, error) {
	msg := chatMessage{
		Role: "user",
		Content: []chatContentPart{
			{Type: "text", Text: prompt},
			{Type: "image_url", ImageURL: &chatImageURL{
				URL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
			}},
		},
	}
	return c.chat(ctx, c.cfg.VisionModel, msg, opts)
}

func (c *GroqClient) chat(ctx context.Context, model string, msg chatMessage, opts Options) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("groq api key is not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []chatMessage{msg},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		TopP:        opts.TopP,
	})
	if err != nil {
		return "", err
	}

	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	resp, err := common.DoWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return "", fmt.Errorf("groq %s: %w", model, err)
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode groq response: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
