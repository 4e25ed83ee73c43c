package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/netx"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	ID string `json:"id"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Register creates an account and returns its id.
func (c *HTTPClient) Register(ctx context.Context, username, email, password string) (string, error) {
	var resp registerResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", "",
		registerRequest{Username: username, Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Login exchanges credentials for a bearer token.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "",
		loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login: empty token in response")
	}
	return resp.Token, nil
}

// WhoAmI returns the account the token was issued to.
func (c *HTTPClient) WhoAmI(ctx context.Context, token string) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	code, data, err := netx.DoJSON(ctx, c.http, method, c.baseURL+path, token, in)
	if err != nil {
		if code == 0 {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return err
	}

	if code < 200 || code > 299 {
		var er errorResponse
		if json.Unmarshal(data, &er) != nil || er.Error == "" {
			er.Error = http.StatusText(code)
		}
		return &APIError{StatusCode: code, Message: er.Error}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
