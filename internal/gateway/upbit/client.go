// Package upbit implements the exchange.Exchange interface against the
// Upbit REST API (https://docs.upbit.com).
package upbit

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"upbot/internal/config"
)

// Client wraps the subset of the Upbit REST API upbot needs. Safe for
// concurrent use; the underlying http.Client handles pooling.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	accessKey  string
	secretKey  string
}

func NewClient(cfg config.UpbitConfig) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("upbit.base_url cannot be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing upbit.base_url failed: %w", err)
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
		accessKey:  strings.TrimSpace(cfg.AccessKey),
		secretKey:  strings.TrimSpace(cfg.SecretKey),
	}, nil
}

// SetHTTPClient sets the HTTP client for testing.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// SetBaseURL points the client at a test server.
func (c *Client) SetBaseURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	c.baseURL = parsed
	return nil
}

// authToken builds the per-request JWT Upbit expects: HS256 over
// {access_key, nonce} plus a SHA-512 hash of the query string when the
// request carries parameters.
func (c *Client) authToken(query url.Values) (string, error) {
	if c.accessKey == "" || c.secretKey == "" {
		return "", fmt.Errorf("upbit credentials not configured")
	}
	claims := jwt.MapClaims{
		"access_key": c.accessKey,
		"nonce":      uuid.NewString(),
	}
	if len(query) > 0 {
		sum := sha512.Sum512([]byte(query.Encode()))
		claims["query_hash"] = hex.EncodeToString(sum[:])
		claims["query_hash_alg"] = "SHA512"
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.secretKey))
}

type apiError struct {
	Error struct {
		Name    any    `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

// doRequest issues one call. Private endpoints pass signed=true; query is
// sent as the URL query for GET and as a JSON body for POST (Upbit signs the
// url-encoded form of the same parameters either way).
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, signed bool, out any) error {
	endpoint := *c.baseURL
	endpoint.Path = strings.TrimRight(endpoint.Path, "/") + path

	var body io.Reader
	if method == http.MethodGet {
		if len(query) > 0 {
			endpoint.RawQuery = query.Encode()
		}
	} else if len(query) > 0 {
		params := make(map[string]string, len(query))
		for k := range query {
			params[k] = query.Get(k)
		}
		raw, err := json.Marshal(params)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if signed {
		token, err := c.authToken(query)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode/100 != 2 {
		var e apiError
		if json.Unmarshal(payload, &e) == nil && e.Error.Message != "" {
			return fmt.Errorf("upbit %s %s: %s (status %d)", method, path, e.Error.Message, resp.StatusCode)
		}
		return fmt.Errorf("upbit %s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("upbit %s %s: decoding response failed: %w", method, path, err)
	}
	return nil
}
