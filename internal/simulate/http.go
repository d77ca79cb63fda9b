package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/wordlebot/internal/domain/types"
)

// Client talks to the wordlebot HTTP API.
type Client struct {
	base   string
	client *http.Client
}

// NewClient creates a client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %w: %d", ErrUnhealthy, ErrStatus, resp.StatusCode)
	}
	return nil
}

// Post submits one message and returns the served outcome. In async mode the
// outcome is "accepted".
func (c *Client) Post(ctx context.Context, req types.MessageRequest, async bool) (string, error) { //nolint:gocritic // hugeParam: request is a value type
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal message: %w", err)
	}
	path := "/messages"
	if async {
		path += "?async=true"
	}
	resp, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
	default:
		return "", statusError(resp)
	}
	var out types.MessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode message response: %w", err)
	}
	return out.Outcome, nil
}

// Leaderboard fetches GET /leaderboard for the all-time scope.
func (c *Client) Leaderboard(ctx context.Context, guildID string, limit int) (types.Leaderboard, error) {
	q := url.Values{}
	q.Set("scope", "all")
	q.Set("limit", strconv.Itoa(limit))
	if guildID != "" {
		q.Set("guild_id", guildID)
	}
	resp, err := c.do(ctx, http.MethodGet, "/leaderboard?"+q.Encode(), nil)
	if err != nil {
		return types.Leaderboard{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return types.Leaderboard{}, statusError(resp)
	}
	var lb types.Leaderboard
	if err := json.NewDecoder(resp.Body).Decode(&lb); err != nil {
		return types.Leaderboard{}, fmt.Errorf("decode leaderboard: %w", err)
	}
	return lb, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%w: HTTP %d: %s", ErrStatus, resp.StatusCode, strings.TrimSpace(string(msg)))
}
