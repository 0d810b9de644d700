// Package openai talks to OpenAI-compatible chat-completions endpoints.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/resume-assistant/internal/ai"
	"github.com/spigell/resume-assistant/internal/utils"
)

const (
	defaultModel   = "general"
	defaultTimeout = 60 * time.Second
	contentType    = "application/json"
	roleUser       = "user"

	retryBase  = 500 * time.Millisecond
	retryLimit = 10 * time.Second
	// maxErrorBody limits how much of an error response is kept in the error text.
	maxErrorBody = 300
)

// ErrEmptyResponse is returned when the endpoint answers without any content.
var ErrEmptyResponse = errors.New("model api returned empty response")

// Config configures the chat-completions client. MaxRetries counts retries after the first attempt.
type Config struct {
	URL        string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// Client implements ai.Generator against an OpenAI-compatible endpoint.
type Client struct {
	url        string
	apiKey     string
	model      string
	maxRetries int
	logger     *zap.Logger
	wait       func(ctx context.Context, d time.Duration) error

	HTTPClient *http.Client
}

var _ ai.Generator = (*Client)(nil)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float32   `json:"temperature"`
	TopP        float32   `json:"top_p"`
}

// chatEnvelope accepts both the choices shape and the plain "output" shape
// some compatible gateways return.
type chatEnvelope struct {
	Choices []struct {
		Message struct {
			Content string `mapstructure:"content"`
		} `mapstructure:"message"`
		Text string `mapstructure:"text"`
	} `mapstructure:"choices"`
	Output any `mapstructure:"output"`
}

func New(cfg Config, logger *zap.Logger) (*Client, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, errors.New("model api url is required")
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("model api key is required")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		url:        url,
		apiKey:     apiKey,
		model:      model,
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger,
		wait:       utils.WaitFor,
		HTTPClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// GenerateContent sends prompt as a single user message and returns the reply text.
// Rate limiting and server errors are retried up to the configured number of times.
func (c *Client) GenerateContent(ctx context.Context, prompt string, opts ai.Options) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []message{{Role: roleUser, Content: prompt}},
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := utils.Backoff(attempt-1, retryBase, retryLimit)
			var retryable *retryableError
			if errors.As(lastErr, &retryable) && retryable.after > 0 {
				delay = retryable.after
			}

			c.logger.Warn("retrying model request",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)

			if err := c.wait(ctx, delay); err != nil {
				return "", err
			}
		}

		out, err := c.do(ctx, body)
		if err == nil {
			return out, nil
		}

		lastErr = err
		var retryable *retryableError
		if !errors.As(err, &retryable) {
			return "", err
		}
	}

	return "", fmt.Errorf("model request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) do(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	c.logger.Debug("make request", zap.String("url", c.url), zap.String("model", c.model))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", err
		}
		return "", &retryableError{err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &retryableError{err: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return "", &retryableError{
			err:   statusError(resp, data),
			after: retryAfter(resp.Header.Get("Retry-After")),
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", statusError(resp, data)
	}

	return decodeContent(data)
}

func decodeContent(data []byte) (string, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", fmt.Errorf("decode model response: %w", err)
	}

	var envelope chatEnvelope
	if err := mapstructure.Decode(raw, &envelope); err != nil {
		return "", fmt.Errorf("decode model response: %w", err)
	}

	content := ""
	if len(envelope.Choices) > 0 {
		content = envelope.Choices[0].Message.Content
		if content == "" {
			content = envelope.Choices[0].Text
		}
	} else {
		content = outputText(envelope.Output)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyResponse
	}

	return content, nil
}

func outputText(output any) string {
	switch val := output.(type) {
	case string:
		return val
	case map[string]any:
		if text, ok := val["text"].(string); ok {
			return text
		}
	}
	return ""
}

type retryableError struct {
	err   error
	after time.Duration
}

func (e *retryableError) Error() string { return e.err.Error() }

func (e *retryableError) Unwrap() error { return e.err }

func statusError(resp *http.Response, body []byte) error {
	detail := utils.TruncateForLog(string(body), maxErrorBody)
	if detail == "" {
		return fmt.Errorf("bad status: %s", resp.Status)
	}
	return fmt.Errorf("bad status: %s: %s", resp.Status, detail)
}

func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs <= 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if d > retryLimit {
		return retryLimit
	}
	return d
}
