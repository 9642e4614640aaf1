package backendapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitnudge/portal/internal/domain/account"
	apperrors "github.com/gitnudge/portal/internal/errors"
)

type recordedRequest struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

func newTestBackend(t *testing.T, status int, respBody string) (*Client, *recordedRequest) {
	t.Helper()

	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.auth = r.Header.Get("Authorization")
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c, rec
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "api.example.com"})
	assert.Error(t, err)

	_, err = NewClient(Config{BaseURL: "ftp://api.example.com"})
	assert.Error(t, err)

	_, err = NewClient(Config{BaseURL: "https://api.example.com", ErrorsPath: "errors[?"})
	assert.ErrorContains(t, err, "compile errors path")

	c, err := NewClient(Config{BaseURL: " https://api.example.com/ "})
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", c.baseURL)
	assert.Equal(t, "errors", c.errorsPath)
}

func TestVerifyToken(t *testing.T) {
	c, rec := newTestBackend(t, http.StatusOK, `{"success":true,"isNewUser":true}`)

	res, err := c.VerifyToken(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, account.VerifyResult{Success: true, IsNewUser: true}, res)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, VerifyTokenPath, rec.path)
	assert.Equal(t, "Bearer id-token", rec.auth)
}

func TestVerifyToken_RejectedBody(t *testing.T) {
	c, _ := newTestBackend(t, http.StatusUnauthorized, `{"success":false}`)

	res, err := c.VerifyToken(context.Background(), "id-token")
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestVerifyToken_MissingToken(t *testing.T) {
	c, rec := newTestBackend(t, http.StatusOK, `{}`)

	_, err := c.VerifyToken(context.Background(), "")
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Empty(t, rec.path, "no request should be sent")
}

func TestRegister_Success(t *testing.T) {
	c, rec := newTestBackend(t, http.StatusOK, `{"success":true}`)

	req := account.RegisterRequest{GoogleID: "sub-1", NotificationEmail: "n@example.com", GitName: "octo", Time: "21:30"}
	res, err := c.Register(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Nil(t, res.Errors)

	assert.Equal(t, RegisterPath, rec.path)
	assert.Empty(t, rec.auth)
	assert.Equal(t, map[string]any{
		"googleId":          "sub-1",
		"notificationEmail": "n@example.com",
		"gitName":           "octo",
		"time":              "21:30",
	}, rec.body)
}

func TestRegister_FieldErrors(t *testing.T) {
	c, _ := newTestBackend(t, http.StatusBadRequest,
		`{"success":false,"errors":{"gitName":"GitHub user not found","notificationEmail":["invalid","taken"]}}`)

	res, err := c.Register(context.Background(), account.RegisterRequest{GoogleID: "sub-1"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, map[string]string{
		"gitName":           "GitHub user not found",
		"notificationEmail": "invalid; taken",
	}, res.Errors)
}

func TestRegister_CustomErrorsPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"detail":{"violations":[{"field":"gitName","message":"taken"}]}}`)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, ErrorsPath: "detail.violations"})
	require.NoError(t, err)

	res, err := c.Register(context.Background(), account.RegisterRequest{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"gitName": "taken"}, res.Errors)
}

func TestRegister_UndecodableBody(t *testing.T) {
	c, _ := newTestBackend(t, http.StatusBadGateway, `<html>bad gateway</html>`)

	_, err := c.Register(context.Background(), account.RegisterRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))
	assert.Equal(t, http.StatusBadGateway, StatusCode(err))
}

func TestRegister_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewClient(Config{BaseURL: base})
	require.NoError(t, err)

	_, err = c.Register(context.Background(), account.RegisterRequest{})
	assert.True(t, apperrors.IsUpstream(err))
}

func TestRegister_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	// Cleanups run last-in first-out: the handler is released before Close waits on it.
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Register(ctx, account.RegisterRequest{})
	assert.True(t, apperrors.IsTimeout(err), "got %v", err)
}

func TestDeleteUser(t *testing.T) {
	c, rec := newTestBackend(t, http.StatusOK, `{"success":true}`)

	res, err := c.DeleteUser(context.Background(), "id-token", "sub-1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, DeleteUserPath, rec.path)
	assert.Equal(t, "Bearer id-token", rec.auth)
	assert.Equal(t, map[string]any{"uid": "sub-1"}, rec.body)
}

func TestDeleteUser_Failure(t *testing.T) {
	c, _ := newTestBackend(t, http.StatusNotFound, `{"success":false,"message":"user not found"}`)

	res, err := c.DeleteUser(context.Background(), "id-token", "sub-1")
	require.NoError(t, err)
	assert.Equal(t, account.DeleteResult{Success: false, Message: "user not found"}, res)
}

func TestDeleteUser_Preconditions(t *testing.T) {
	c, rec := newTestBackend(t, http.StatusOK, `{"success":true}`)

	_, err := c.DeleteUser(context.Background(), "", "sub-1")
	assert.True(t, apperrors.IsUnauthorized(err))

	_, err = c.DeleteUser(context.Background(), "tok", "")
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, rec.path)
}
