package client

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

	"github.com/dmitrijs2005/devconnector/internal/client/models"
	"github.com/dmitrijs2005/devconnector/internal/common"
)

const maxResponseBody = 1 << 20

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the API rooted at baseURL. Every
// request is bounded by timeout; zero means no client-side limit.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type tokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type meResponse struct {
	Success bool        `json:"success"`
	Data    models.User `json:"data"`
}

type errorsResponse struct {
	Errors []struct {
		Msg string `json:"msg"`
	} `json:"errors"`
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) (string, error) {
	var out tokenResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", RequestOptions{}, body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	var out tokenResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", RequestOptions{}, body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *HTTPClient) Me(ctx context.Context, opts RequestOptions) (*models.User, error) {
	var out meResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", opts, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *HTTPClient) Logout(ctx context.Context, opts RequestOptions) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", opts, nil, nil)
}

func (c *HTTPClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", RequestOptions{}, nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, opts RequestOptions, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.Token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+opts.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}

	if err := mapStatus(resp.StatusCode, data); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func mapStatus(code int, body []byte) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusBadRequest:
		var er errorsResponse
		if err := json.Unmarshal(body, &er); err != nil || len(er.Errors) == 0 {
			return &ValidationError{Messages: []string{http.StatusText(code)}}
		}
		ve := &ValidationError{Messages: make([]string, len(er.Errors))}
		for i, e := range er.Errors {
			ve.Messages[i] = e.Msg
		}
		return ve
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusBadGateway, code == http.StatusServiceUnavailable, code == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: status %d", ErrUnavailable, code)
	default:
		return fmt.Errorf("%w: status %d", ErrServer, code)
	}
}
