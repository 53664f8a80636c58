// Package identity talks to the hosted identity provider (a GoTrue-compatible
// REST API) for email/password signup and login.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/driveclone/backend/internal/config"
	"github.com/driveclone/backend/pkg/logger"
)

const (
	signUpPath = "/auth/v1/signup"
	signInPath = "/auth/v1/token?grant_type=password"
)

// User is the provider's user object. Raw keeps the full upstream JSON so it
// can be relayed to the caller unchanged.
type User struct {
	ID    string          `json:"id"`
	Email string          `json:"email"`
	Raw   json.RawMessage `json:"-"`
}

// UpstreamError is returned when the provider answers with a non-200 status.
type UpstreamError struct {
	Status int
	Body   json.RawMessage
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("identity provider returned status %d: %s", e.Status, string(e.Body))
}

// MalformedResponseError is returned when a 200 response carries no user id.
type MalformedResponseError struct {
	Op  string
	Raw json.RawMessage
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("invalid %s response", e.Op)
}

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func New(cfg config.IdentityConfig) *Client {
	return &Client{
		BaseURL: cfg.URL,
		APIKey:  cfg.APIKey,
		HTTPClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp registers a new account. Providers that require email confirmation
// answer with the bare user object instead of a session, so both shapes are
// accepted.
func (c *Client) SignUp(ctx context.Context, email, password string) (*User, error) {
	raw, err := c.post(ctx, signUpPath, email, password)
	if err != nil {
		logger.Warn("identity_signup_rejected", map[string]interface{}{"email": email, "error": err.Error()})
		return nil, err
	}

	user, err := extractUser(raw, true)
	if err != nil {
		return nil, &MalformedResponseError{Op: "signup", Raw: raw}
	}

	logger.Info("identity_signup_success", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// SignIn exchanges email and password for a provider session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*User, error) {
	raw, err := c.post(ctx, signInPath, email, password)
	if err != nil {
		logger.Warn("identity_login_rejected", map[string]interface{}{"email": email, "error": err.Error()})
		return nil, err
	}

	user, err := extractUser(raw, false)
	if err != nil {
		return nil, &MalformedResponseError{Op: "login", Raw: raw}
	}

	logger.Info("identity_login_success", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

func (c *Client) post(ctx context.Context, path, email, password string) (json.RawMessage, error) {
	payload, err := json.Marshal(credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read identity response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: asJSON(body)}
	}

	return asJSON(body), nil
}

func extractUser(raw json.RawMessage, allowTopLevel bool) (*User, error) {
	var envelope struct {
		User json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}

	userJSON := envelope.User
	if isEmptyJSON(userJSON) {
		if !allowTopLevel {
			return nil, fmt.Errorf("missing user object")
		}
		userJSON = raw
	}

	var user User
	if err := json.Unmarshal(userJSON, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("missing user id")
	}
	user.Raw = userJSON
	return &user, nil
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// asJSON keeps valid JSON bodies as-is and wraps anything else as a JSON string.
func asJSON(body []byte) json.RawMessage {
	if json.Valid(body) && len(bytes.TrimSpace(body)) > 0 {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}
