package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Sentinel errors callers branch on. Wrapped responses keep the raw body for
// logs, so always match with errors.Is.
var (
	ErrInvalidAPIKey = errors.New("vision: invalid api key")
	ErrRateLimited   = errors.New("vision: rate limited")
	ErrBlocked       = errors.New("vision: response blocked")
	ErrEmptyResponse = errors.New("vision: empty response")
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Provider is the narrow contract pipeline stages depend on.
type Provider interface {
	GenerateContent(ctx context.Context, contents []*Content, opts ...Option) (*GenerateResponse, error)
}

type Client struct {
	apiKey       string
	baseURL      string
	defaultModel string
	httpClient   *http.Client
}

type ClientOption func(*Client)

func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithDefaultModel(model string) ClientOption {
	return func(c *Client) {
		c.defaultModel = model
	}
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		defaultModel: "gemini-2.0-flash",
		httpClient:   &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) GenerateContent(ctx context.Context, contents []*Content, opts ...Option) (*GenerateResponse, error) {
	cfg := callConfig{model: c.defaultModel}
	for _, opt := range opts {
		opt(&cfg)
	}

	payload := GenerateRequest{Contents: contents}
	genCfg := &GenerationConfig{
		Temperature:     cfg.temperature,
		MaxOutputTokens: cfg.maxTokens,
	}
	if cfg.schema != nil {
		genCfg.ResponseMimeType = "application/json"
		genCfg.ResponseSchema = cfg.schema
	}
	payload.GenerationConfig = genCfg

	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, cfg.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadJson))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, statusError(res.StatusCode, resBody)
	}

	var genRes GenerateResponse
	if err := json.Unmarshal(resBody, &genRes); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if genRes.PromptFeedback != nil && genRes.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: %s", ErrBlocked, genRes.PromptFeedback.BlockReason)
	}
	if len(genRes.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}
	if reason := genRes.Candidates[0].FinishReason; reason == "SAFETY" || reason == "RECITATION" {
		return nil, fmt.Errorf("%w: finish reason %s", ErrBlocked, reason)
	}
	if genRes.Text() == "" {
		return nil, ErrEmptyResponse
	}

	return &genRes, nil
}

func statusError(status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d, body %s", ErrInvalidAPIKey, status, string(body))
	case http.StatusBadRequest:
		// The API reports bad keys as 400 with a typed reason.
		if bytes.Contains(body, []byte("API_KEY_INVALID")) || bytes.Contains(body, []byte("API key not valid")) {
			return fmt.Errorf("%w: status %d, body %s", ErrInvalidAPIKey, status, string(body))
		}
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d, body %s", ErrRateLimited, status, string(body))
	}
	return fmt.Errorf(
		"status error, got status %d. with response body %s",
		status,
		string(body),
	)
}
