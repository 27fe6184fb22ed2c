// Package whatsapp is the client for the WhatsApp template messaging gateway.
//
// One call sends one template to many receivers. Calls are paced by a token
// bucket limiter and bounded by a per-call timeout; there are no retries.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const sendPath = "/api/v1/sendTemplateMessages"

// ErrRejected is returned when the gateway answers without a truthy result.
var ErrRejected = errors.New("whatsapp gateway rejected batch")

// Param is one named template parameter.
type Param struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Receiver is one recipient of a template batch.
type Receiver struct {
	WhatsAppNumber string  `json:"whatsappNumber"`
	CustomParams   []Param `json:"customParams"`
}

// Batch is the request body for one gateway call.
type Batch struct {
	TemplateName  string     `json:"template_name"`
	BroadcastName string     `json:"broadcast_name"`
	Receivers     []Receiver `json:"receivers"`
}

// Client is the HTTP client for the gateway.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a gateway client. requestsPerMinute <= 0 disables pacing.
func NewClient(endpoint, token string, timeout time.Duration, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60.0)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   strings.TrimRight(endpoint, "/"),
		token:      token,
		timeout:    timeout,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}
}

// SendTemplateMessages posts one batch. Any transport error, non-2xx status
// or falsy result fails the whole batch.
func (c *Client) SendTemplateMessages(ctx context.Context, batch Batch) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+sendPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(c.token))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request %s: %w", sendPath, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway %s returned %d: %s", sendPath, resp.StatusCode, truncate(body, 200))
	}

	var result struct {
		Result any `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !truthy(result.Result) {
		return fmt.Errorf("%w: template=%s body=%s", ErrRejected, batch.TemplateName, truncate(body, 200))
	}

	c.logger.Debug("Template batch accepted",
		"template", batch.TemplateName,
		"receivers", len(batch.Receivers),
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// ParamsFromMap converts a parameter map to the gateway list, sorted by name
// so identical maps always produce identical bodies.
func ParamsFromMap(params map[string]string) []Param {
	out := make([]Param, 0, len(params))
	for name, value := range params {
		out = append(out, Param{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func bearer(token string) string {
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return token
	}
	return "Bearer " + token
}

// truthy follows the gateway's loose notion of success: true, non-empty
// strings, non-zero numbers and non-empty collections.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
