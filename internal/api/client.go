// Package api is the HTTP client for the shortener backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/clickdash/internal/logger"
	"github.com/j-veylop/clickdash/internal/models"
)

// RequestIDHeader carries a per-request UUID for backend log correlation.
const RequestIDHeader = "X-Request-ID"

const genericAnalyticsMessage = "failed to load analytics"

// Client talks to one shortener backend.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a client for baseURL. A nil hc uses a client without a
// timeout; cancellation comes from the caller's context.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the backend origin without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type analyticsResponse struct {
	DailyStats     models.BucketMap `json:"daily_stats"`
	MonthlyStats   models.BucketMap `json:"monthly_stats"`
	UserAgentStats models.BucketMap `json:"user_agent_stats"`
	Clicks         []clickResponse  `json:"clicks"`
	TotalClicks    int              `json:"total_clicks"`
}

var requiredAnalyticsFields = []string{"daily_stats", "monthly_stats", "user_agent_stats", "clicks"}

type clickResponse struct {
	ClickedAt string  `json:"clicked_at"`
	UserAgent string  `json:"user_agent"`
	IPAddress *string `json:"ip_address"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// FetchAnalytics issues one read for alias. There is no retry.
func (c *Client) FetchAnalytics(ctx context.Context, alias string) (*models.Snapshot, error) {
	endpoint := c.baseURL + "/analytics/" + url.PathEscape(alias)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Op: "build analytics request", Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")

	logger.Debug("fetching analytics", "alias", alias, "request_id", requestID)

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusNotFound:
		return nil, ErrNotFound
	case status < 200 || status > 299:
		return nil, &ServerError{Status: status, Message: analyticsErrorMessage(body)}
	}

	if err := checkAnalyticsFields(body); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}

	var resp analyticsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}

	snapshot, err := resp.toSnapshot()
	if err != nil {
		return nil, &MalformedResponseError{Err: err}
	}
	return snapshot, nil
}

// checkAnalyticsFields rejects a body that is not an object or lacks one of
// the stats collections. A null collection counts as missing.
func checkAnalyticsFields(body []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("response body is null")
	}
	for _, name := range requiredAnalyticsFields {
		raw, ok := fields[name]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return fmt.Errorf("missing field %q", name)
		}
	}
	return nil
}

func (r *analyticsResponse) toSnapshot() (*models.Snapshot, error) {
	clicks := make([]models.ClickEvent, 0, len(r.Clicks))
	for i, c := range r.Clicks {
		at, err := time.Parse(time.RFC3339Nano, c.ClickedAt)
		if err != nil {
			return nil, fmt.Errorf("click %d: %w", i, err)
		}
		event := models.ClickEvent{OccurredAt: at, UserAgent: c.UserAgent}
		if c.IPAddress != nil && *c.IPAddress != "" {
			event.OriginAddress = *c.IPAddress
			event.HasOrigin = true
		}
		clicks = append(clicks, event)
	}

	return &models.Snapshot{
		TotalClicks:   r.TotalClicks,
		DailyStats:    r.DailyStats,
		MonthlyStats:  r.MonthlyStats,
		CategoryStats: r.UserAgentStats,
		RecentClicks:  clicks,
	}, nil
}

func analyticsErrorMessage(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return genericAnalyticsMessage
}

// CreateRequest is the body of a create call. Custom may be empty.
type CreateRequest struct {
	URL    string `json:"url"`
	Custom string `json:"custom,omitempty"`
}

// CreateResult is a created short link.
type CreateResult struct {
	Alias    string
	ShortURL string
}

type createResponse struct {
	Alias         string `json:"alias"`
	ShortURL      string `json:"shortUrl"`
	ShortURLSnake string `json:"short_url"`
}

// Shorten creates a short link. Non-structured error bodies are surfaced as
// the raw text.
func (c *Client) Shorten(ctx context.Context, in CreateRequest) (*CreateResult, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode create request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/shorten", bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Op: "build create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}

	if status < 200 || status > 299 {
		return nil, classifyCreateError(status, body)
	}

	var resp createResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}
	if resp.Alias == "" {
		return nil, &MalformedResponseError{Err: errors.New("response has no alias")}
	}

	result := &CreateResult{Alias: resp.Alias, ShortURL: resp.ShortURL}
	if result.ShortURL == "" {
		result.ShortURL = resp.ShortURLSnake
	}
	if result.ShortURL == "" {
		result.ShortURL = c.baseURL + "/s/" + url.PathEscape(resp.Alias)
	}
	return result, nil
}

func classifyCreateError(status int, body []byte) error {
	message := strings.TrimSpace(string(body))
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		message = e.Error
	}

	lower := strings.ToLower(message)
	switch {
	case status == http.StatusConflict || strings.Contains(lower, "alias already exists"):
		return ErrAliasTaken
	case strings.Contains(lower, "invalid alias"), strings.Contains(lower, "invalid url format"):
		return ErrInvalidAlias
	case strings.Contains(lower, "invalid url"):
		return ErrInvalidURL
	}

	if message == "" {
		message = fmt.Sprintf("error: %d", status)
	}
	return &ServerError{Status: status, Message: message}
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Op: "read response body", Err: err}
	}

	logger.Debug("backend response", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode)
	return body, resp.StatusCode, nil
}
