package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cuesync/internal/services"
)

// Client talks to a running daemon.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient builds a client for the daemon listening on bind
// ("127.0.0.1:7491" or a full URL).
func NewClient(bind, token string, httpClient *http.Client) *Client {
	base := strings.TrimSpace(bind)
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	if httpClient == nil {
		// Translation can take minutes.
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Client{baseURL: strings.TrimRight(base, "/"), token: token, httpClient: httpClient}
}

// RemoteError is a non-2xx daemon reply.
type RemoteError struct {
	Status  int
	Kind    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("daemon: http %d: %s", e.Status, e.Message)
}

// Unwrap maps the reply kind back to its marker so callers can use errors.Is.
func (e *RemoteError) Unwrap() error {
	switch e.Kind {
	case "not_found":
		return services.ErrNotFound
	case "validation":
		return services.ErrValidation
	case "configuration":
		return services.ErrConfiguration
	case "stale":
		return services.ErrStale
	case "external":
		return services.ErrExternal
	default:
		return nil
	}
}

// Status fetches the daemon status.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Load loads text onto the page's player.
func (c *Client) Load(ctx context.Context, text string) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.do(ctx, http.MethodPost, "/api/load", LoadRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Extract reads subtitles from the page's player.
func (c *Client) Extract(ctx context.Context) (string, error) {
	var resp TextResponse
	if err := c.do(ctx, http.MethodPost, "/api/extract", struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Translate translates text (or the pending session text when empty).
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	var resp TextResponse
	if err := c.do(ctx, http.MethodPost, "/api/translate", TextRequest{Text: text}, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Navigate reports a page navigation.
func (c *Client) Navigate(ctx context.Context, req NavigateRequest) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.do(ctx, http.MethodPost, "/api/navigate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Tick advances the player clock.
func (c *Client) Tick(ctx context.Context, t float64) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.do(ctx, http.MethodPost, "/api/tick", TickRequest{Time: t}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr ErrorResponse
		if json.Unmarshal(payload, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = strings.TrimSpace(string(payload))
		}
		return &RemoteError{Status: resp.StatusCode, Kind: apiErr.Kind, Message: apiErr.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
