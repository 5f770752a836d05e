package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNoAPIKey is returned by NewClient when the configured env var is unset.
	ErrNoAPIKey = errors.New("missing API key")
	// ErrNoCompletion is returned when the service responds without any generated text.
	ErrNoCompletion = errors.New("no completion returned")
)

// Client is an OpenAI-compatible chat-completions client implementing the assistant.Completer interface.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
	maxRetries  int
}

// Config configures the OpenAI-compatible chat client.
type Config struct {
	BaseURL     string
	APIKeyEnv   string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
	MaxRetries  int
}

// NewClient creates a new chat client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w in env %s", ErrNoAPIKey, cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      key,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      &http.Client{Timeout: t},
		maxRetries:  cfg.MaxRetries,
	}, nil
}

// Name returns the identifier of this completer implementation.
func (c *Client) Name() string { return "openai" }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type reqBody struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream"`
}

// Complete sends prompt as a single user message and returns the generated text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/chat/completions", c.baseURL)
	data, err := json.Marshal(reqBody{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() == nil && attempt < c.maxRetries {
				if err := sleep(ctx, retryDelay(attempt)); err != nil {
					return "", err
				}
				continue
			}
			return "", err
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			if attempt < c.maxRetries {
				// Respect Retry-After if provided
				wait := retryDelay(attempt)
				if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
					wait = time.Duration(secs) * time.Second
				}
				if err := sleep(ctx, wait); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("openai chat failed: %s", resp.Status)
		}

		if resp.StatusCode >= 300 {
			_ = resp.Body.Close()
			return "", fmt.Errorf("openai chat failed: %s", resp.Status)
		}

		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			if attempt < c.maxRetries {
				if err := sleep(ctx, retryDelay(attempt)); err != nil {
					return "", err
				}
				continue
			}
			return "", err
		}
		if text, ok := decode(payload); ok {
			return text, nil
		}
		if attempt < c.maxRetries {
			if err := sleep(ctx, retryDelay(attempt)); err != nil {
				return "", err
			}
			continue
		}
		return "", ErrNoCompletion
	}
	return "", ErrNoCompletion
}

// decode accepts the OpenAI shape and falls back to the Ollama and Gemini ones.
func decode(payload []byte) (string, bool) {
	var openaiOut struct {
		Choices []struct {
			Message message `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(payload, &openaiOut); err == nil {
		if len(openaiOut.Choices) > 0 && openaiOut.Choices[0].Message.Content != "" {
			return openaiOut.Choices[0].Message.Content, true
		}
	}
	// Ollama-native shape: { "message": { "content": "..." } }
	var ollamaOut struct {
		Message message `json:"message"`
	}
	if err := json.Unmarshal(payload, &ollamaOut); err == nil && ollamaOut.Message.Content != "" {
		return ollamaOut.Message.Content, true
	}
	var geminiOut struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(payload, &geminiOut); err == nil {
		if len(geminiOut.Candidates) > 0 && len(geminiOut.Candidates[0].Content.Parts) > 0 {
			if text := geminiOut.Candidates[0].Content.Parts[0].Text; text != "" {
				return text, true
			}
		}
	}
	return "", false
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
