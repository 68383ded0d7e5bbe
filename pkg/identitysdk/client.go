package identitysdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the identity service. It holds no session state: callers
// keep the token returned by Login and pass it to the bearer operations.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/api/register", "", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RegistrationStatus(ctx context.Context, email string) (*RegistrationStatusResponse, error) {
	var out RegistrationStatusResponse
	path := "/api/register/check?email=" + url.QueryEscape(email)
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendCode(ctx context.Context, email string) (*SendCodeResponse, error) {
	var out SendCodeResponse
	if err := c.do(ctx, http.MethodPost, "/api/verification/send", "", EmailRequest{Email: email}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CheckCode(ctx context.Context, req CheckCodeRequest) error {
	var out StatusResponse
	return c.do(ctx, http.MethodPost, "/api/verification/check", "", req, &out, http.StatusOK)
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth", "", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword changes the password of the token's account after checking
// the old one.
func (c *Client) ResetPassword(ctx context.Context, token string, req ResetPasswordRequest) error {
	var out StatusResponse
	return c.do(ctx, http.MethodPost, "/api/password/reset", token, req, &out, http.StatusOK)
}

// ChangePassword sets a new password using only the bearer token.
func (c *Client) ChangePassword(ctx context.Context, token string, req ChangePasswordRequest) error {
	var out StatusResponse
	return c.do(ctx, http.MethodPost, "/api/password/change", token, req, &out, http.StatusOK)
}

// ForgotPassword mails a temporary password to email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	var out StatusResponse
	return c.do(ctx, http.MethodPost, "/api/password/forgot", "", EmailRequest{Email: email}, &out, http.StatusOK)
}

// ConfirmForgotPassword sets a new password using an emailed verification code.
func (c *Client) ConfirmForgotPassword(ctx context.Context, req ForgotConfirmRequest) error {
	var out StatusResponse
	return c.do(ctx, http.MethodPost, "/api/password/forgot/confirm", "", req, &out, http.StatusOK)
}

func (c *Client) Me(ctx context.Context, token string) (*AccountResponse, error) {
	var out AccountResponse
	if err := c.do(ctx, http.MethodGet, "/api/me", token, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Livez(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/livez", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Readyz(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/readyz", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends body as JSON (when non-nil) and decodes the response into target.
func (c *Client) do(ctx context.Context, method, path, token string, body, target any, expectedStatus int) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		if err := parseErrorResponse(resp, bodyBytes); err != nil {
			return err
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
