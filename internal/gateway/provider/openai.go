package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"upbot/internal/logger"
)

// OpenAIChatClient talks to any OpenAI-compatible /v1/chat/completions
// endpoint. Transport-level retry (429/5xx) is handled here; the decision
// requester owns the parse-level retry budget separately.
type OpenAIChatClient struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int // transport retries; defaults to 2

	httpClient *http.Client
}

func (c *OpenAIChatClient) ID() string { return c.Model }

func (c *OpenAIChatClient) SupportsVision() bool { return true }

// SetHTTPClient sets the HTTP client for testing.
func (c *OpenAIChatClient) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

func (c *OpenAIChatClient) endpoint() string {
	url := c.BaseURL
	if url == "" {
		url = "https://api.openai.com/v1"
	}
	url = strings.TrimRight(url, "/")
	// Tolerate configs that already include the full path.
	url = strings.TrimSuffix(url, "/chat/completions")
	return url + "/chat/completions"
}

func (c *OpenAIChatClient) client() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	c.httpClient = &http.Client{Timeout: timeout}
	return c.httpClient
}

func (c *OpenAIChatClient) Call(ctx context.Context, payload ChatPayload) (string, error) {
	messages := []map[string]any{}
	if payload.System != "" {
		messages = append(messages, map[string]any{"role": "system", "content": payload.System})
	}
	for _, part := range payload.User {
		if strings.TrimSpace(part) == "" {
			continue
		}
		messages = append(messages, map[string]any{"role": "user", "content": part})
	}
	for _, img := range payload.Images {
		if img.DataURI == "" {
			continue
		}
		messages = append(messages, map[string]any{
			"role": "user",
			"content": []map[string]any{
				{"type": "image_url", "image_url": map[string]string{"url": img.DataURI}},
			},
		})
	}

	body := map[string]any{"model": c.Model, "messages": messages}
	if payload.ExpectJSON {
		body["response_format"] = map[string]string{"type": "json_object"}
	}
	if payload.MaxTokens > 0 {
		body["max_tokens"] = payload.MaxTokens
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	logger.LogLLMRequest(c.ID(), payload.System, strings.Join(payload.User, "\n---\n"), len(payload.Images))

	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(raw))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.APIKey)
		}
		resp, err := c.client().Do(req)
		if err != nil {
			lastErr = err
			break
		}
		if resp.StatusCode/100 == 2 {
			var r struct {
				Choices []struct {
					Message struct {
						Content string `json:"content"`
					} `json:"message"`
				} `json:"choices"`
			}
			derr := json.NewDecoder(resp.Body).Decode(&r)
			resp.Body.Close()
			if derr != nil {
				return "", derr
			}
			if len(r.Choices) == 0 {
				return "", fmt.Errorf("provider %s: empty choices", c.ID())
			}
			content := r.Choices[0].Message.Content
			logger.LogLLMResponse(c.ID(), content)
			return content, nil
		}
		msg := decodeAPIError(resp)
		resp.Body.Close()
		if retriable(resp.StatusCode) && attempt < maxRetries {
			wait := retryAfter(resp, attempt)
			logger.Warnf("provider %s: status=%d (%s), retrying in %s", c.ID(), resp.StatusCode, msg, wait)
			lastErr = fmt.Errorf("status=%d: %s", resp.StatusCode, msg)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		lastErr = fmt.Errorf("status=%d: %s", resp.StatusCode, msg)
		break
	}
	return "", lastErr
}

func retriable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func decodeAPIError(resp *http.Response) string {
	var eresp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&eresp)
	if msg := strings.TrimSpace(eresp.Error.Message); msg != "" {
		return msg
	}
	return resp.Status
}

func retryAfter(resp *http.Response, attempt int) time.Duration {
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	wait := 800 * time.Millisecond << attempt
	if wait > 8*time.Second {
		wait = 8 * time.Second
	}
	return wait
}
