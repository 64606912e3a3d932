package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"EstateLink/pkg/logger"
)

const (
	pushPath      = "/v2/bot/message/push"
	multicastPath = "/v2/bot/message/multicast"

	// LINE caps multicast fan-out per call.
	multicastLimit = 500

	requestTimeout = 30 * time.Second
)

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

type multicastRequest struct {
	To       []string      `json:"to"`
	Messages []textMessage `json:"messages"`
}

// HTTPClient talks to the LINE Messaging API with bearer-token auth.
type HTTPClient struct {
	base  string
	token string
	http  *http.Client
}

func NewHTTPClient(base, token string) *HTTPClient {
	return &HTTPClient{
		base:  base,
		token: token,
		http: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Push sends one text message to a single user ID.
func (c *HTTPClient) Push(ctx context.Context, to, text string) (*PushResult, error) {
	if err := c.precheck(to, text); err != nil {
		return nil, err
	}

	body := pushRequest{
		To:       to,
		Messages: []textMessage{{Type: "text", Text: text}},
	}

	result, err := c.post(ctx, pushPath, body)
	if err != nil {
		logger.Logger.Error("Failed to push LINE message",
			zap.String("to", to),
			zap.Error(err),
		)
		return result, err
	}

	logger.Logger.Info("LINE message pushed successfully",
		zap.String("to", to),
		zap.String("request_id", result.RequestID),
	)

	return result, nil
}

// Multicast sends the same text to up to 500 user IDs.
func (c *HTTPClient) Multicast(ctx context.Context, to []string, text string) (*PushResult, error) {
	if c.token == "" {
		return nil, ErrMissingChannelToken
	}
	if len(to) == 0 {
		return nil, ErrEmptyRecipient
	}
	if len(to) > multicastLimit {
		return nil, ErrTooManyRecipients
	}
	if text == "" {
		return nil, ErrEmptyMessage
	}

	body := multicastRequest{
		To:       to,
		Messages: []textMessage{{Type: "text", Text: text}},
	}

	result, err := c.post(ctx, multicastPath, body)
	if err != nil {
		logger.Logger.Error("Failed to multicast LINE message",
			zap.Int("recipients", len(to)),
			zap.Error(err),
		)
		return result, err
	}

	logger.Logger.Info("LINE multicast sent successfully",
		zap.Int("recipients", len(to)),
		zap.String("request_id", result.RequestID),
	)

	return result, nil
}

func (c *HTTPClient) precheck(to, text string) error {
	if c.token == "" {
		return ErrMissingChannelToken
	}
	if to == "" {
		return ErrEmptyRecipient
	}
	if text == "" {
		return ErrEmptyMessage
	}
	return nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body interface{}) (*PushResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("LINE API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	result := &PushResult{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get("X-Line-Request-Id"),
		Body:       string(respBody),
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, fmt.Errorf("LINE API error: status=%d body=%s", resp.StatusCode, result.Body)
	}

	return result, nil
}
