// Package backendapi is the HTTP client for the registration backend.
package backendapi

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

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/gitnudge/portal/internal/domain/account"
	apperrors "github.com/gitnudge/portal/internal/errors"
	"github.com/gitnudge/portal/internal/ports"
)

// Backend endpoint paths.
const (
	VerifyTokenPath = "/api/auth/verify-token"
	RegisterPath    = "/api/auth/register"
	DeleteUserPath  = "/api/user/delete"
)

const maxResponseBytes = 1 << 20

var _ ports.BackendAPI = (*Client)(nil)

// Config captures the client settings.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	ErrorsPath string       // JMESPath locating field errors in register responses
	Client     *http.Client // Optional, built from Timeout when nil
}

// Client calls the backend. It never retries; each failure is reported to
// the caller once.
type Client struct {
	baseURL    string
	errorsPath string
	client     *http.Client
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("backend base url %q must be an absolute http(s) URL", cfg.BaseURL)
	}

	errorsPath := strings.TrimSpace(cfg.ErrorsPath)
	if errorsPath == "" {
		errorsPath = "errors"
	}
	if _, err := jmespath.Compile(errorsPath); err != nil {
		return nil, fmt.Errorf("compile errors path %q: %w", errorsPath, err)
	}

	hc := cfg.Client
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{baseURL: base, errorsPath: errorsPath, client: hc}, nil
}

// VerifyToken posts the ID token as a bearer credential.
func (c *Client) VerifyToken(ctx context.Context, idToken string) (account.VerifyResult, error) {
	if idToken == "" {
		return account.VerifyResult{}, apperrors.Unauthorized("id token is required")
	}

	var out account.VerifyResult
	if _, err := c.call(ctx, http.MethodPost, VerifyTokenPath, idToken, nil, &out); err != nil {
		return account.VerifyResult{}, apperrors.MapUpstreamError(err, "verify token")
	}
	return out, nil
}

// Register posts the registration form. Field errors are extracted from the
// body with the configured JMESPath expression.
func (c *Client) Register(ctx context.Context, req account.RegisterRequest) (account.RegisterResult, error) {
	var doc any
	if _, err := c.call(ctx, http.MethodPost, RegisterPath, "", req, &doc); err != nil {
		return account.RegisterResult{}, apperrors.MapUpstreamError(err, "register")
	}

	obj, _ := doc.(map[string]any)
	success, _ := obj["success"].(bool)
	message, _ := obj["message"].(string)

	found, err := jmespath.Search(c.errorsPath, doc)
	if err != nil {
		return account.RegisterResult{}, apperrors.Wrapf(err, apperrors.ErrCodeUpstream, "evaluate errors path %q", c.errorsPath)
	}

	return account.RegisterResult{
		Success: success,
		Message: message,
		Errors:  fieldErrors(found),
	}, nil
}

// DeleteUser sends the destructive delete call for uid.
func (c *Client) DeleteUser(ctx context.Context, idToken, uid string) (account.DeleteResult, error) {
	if idToken == "" {
		return account.DeleteResult{}, apperrors.Unauthorized("id token is required")
	}
	if uid == "" {
		return account.DeleteResult{}, apperrors.ValidationField("uid", "uid is required")
	}

	var out account.DeleteResult
	if _, err := c.call(ctx, http.MethodDelete, DeleteUserPath, idToken, account.DeleteRequest{UID: uid}, &out); err != nil {
		return account.DeleteResult{}, apperrors.MapUpstreamError(err, "delete user")
	}
	return out, nil
}

// call performs one request and decodes the JSON body into out whatever the
// status code, since the backend reports failures through the body.
func (c *Client) call(ctx context.Context, method, path, bearer string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read %s response: %w", path, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, &statusError{status: resp.StatusCode, path: path, cause: err}
	}
	return resp.StatusCode, nil
}

// statusError reports a response whose body was not the expected JSON.
type statusError struct {
	status int
	path   string
	cause  error
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s returned status %d with undecodable body: %v", e.path, e.status, e.cause)
}

func (e *statusError) Unwrap() error { return e.cause }

// StatusCode returns the HTTP status of an undecodable response, or 0.
func StatusCode(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.status
	}
	return 0
}
