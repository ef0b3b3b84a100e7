// Package userservice talks to the remote user service that stores
// per-extension user records, and exposes a small proxy in front of it.
package userservice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"formdeck/internal/config"
)

// Header names understood by the user service.
const (
	HeaderToken     = "x-roamjs-token"
	HeaderExtension = "x-roamjs-extension"
	HeaderDev       = "x-roamjs-dev"
)

// Config holds the developer credentials used for every call.
type Config struct {
	URL            string
	ExtensionID    string
	Email          string
	DeveloperToken string
	Dev            bool
	Timeout        time.Duration
}

// ConfigFromSettings converts the loaded auth settings.
func ConfigFromSettings(a config.Auth) Config {
	return Config{
		URL:            a.URL,
		ExtensionID:    a.ExtensionID,
		Email:          a.Email,
		DeveloperToken: a.DeveloperToken,
		Dev:            a.Dev,
		Timeout:        a.Timeout,
	}
}

// User is a user record. Besides email and id it may carry any
// extension-specific keys.
type User map[string]any

// Email returns the record's email.
func (u User) Email() string {
	s, _ := u["email"].(string)
	return s
}

// ID returns the record's id.
func (u User) ID() string {
	s, _ := u["id"].(string)
	return s
}

// UpstreamError is a non-2xx answer from the user service. Body holds the
// raw response so callers can relay it unchanged.
type UpstreamError struct {
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	if msg := errorMessage(e.Body); msg != "" {
		return msg
	}
	return fmt.Sprintf("user service: HTTP %d", e.StatusCode)
}

// errorMessage pulls a human readable message out of an error body.
func errorMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return string(bytes.TrimSpace(body))
}

// Client wraps HTTP calls to the user service.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a client. A zero timeout means 30 seconds.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
}

// authorization is the developer bearer credential:
// base64("<email>:<developer token>").
func (c *Client) authorization() string {
	raw := c.cfg.Email + ":" + c.cfg.DeveloperToken
	return "Bearer " + base64.StdEncoding.EncodeToString([]byte(raw))
}

func (c *Client) do(ctx context.Context, method, token string, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.URL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.authorization())
	req.Header.Set(HeaderToken, token)
	req.Header.Set(HeaderExtension, c.cfg.ExtensionID)
	if c.cfg.Dev {
		req.Header.Set(HeaderDev, "true")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, unauthorizedError(&UpstreamError{StatusCode: resp.StatusCode, Body: respBody})
	}
	return respBody, nil
}

// GetUser fetches the user record behind token.
func (c *Client) GetUser(ctx context.Context, token string) (User, error) {
	data, err := c.do(ctx, http.MethodGet, token, nil)
	if err != nil {
		return nil, err
	}
	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return user, nil
}

// PutUser merges data into the user record behind token and returns the
// service's raw answer.
func (c *Client) PutUser(ctx context.Context, token string, data map[string]any) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodPut, token, data)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return json.RawMessage("{}"), nil
	}
	return json.RawMessage(body), nil
}
